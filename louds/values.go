package louds

// ValueColumn is the contiguous array of values aligned with the terminal
// entries of one encoding tier, in suffix order.
type ValueColumn struct {
	values []Value
}

// NewValueColumn flattens the per-level value slices of [startLevel,
// endLevel) into one column.
func NewValueColumn(valuesPerLevel [][]Value, startLevel, endLevel int) *ValueColumn {
	num := 0
	for level := startLevel; level < endLevel; level++ {
		num += len(valuesPerLevel[level])
	}

	values := make([]Value, 0, num)
	for level := startLevel; level < endLevel; level++ {
		values = append(values, valuesPerLevel[level]...)
	}

	return &ValueColumn{values: values}
}

// NumValues returns the number of stored values.
func (vc *ValueColumn) NumValues() int {
	return len(vc.values)
}

// Read returns the value at terminal ordinal pos.
func (vc *ValueColumn) Read(pos int) Value {
	return vc.values[pos]
}

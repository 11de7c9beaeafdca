package louds

// MemoryUsage returns the approximate in-memory footprint of the vector in
// bytes, backing words plus the rank index.
func (rv *RankBitvector) MemoryUsage() int {
	return rv.BitsSize() + rv.lutSize()
}

// MemoryUsage returns the approximate in-memory footprint of the vector in
// bytes, backing words plus the select index.
func (sv *SelectBitvector) MemoryUsage() int {
	return sv.BitsSize() + sv.lutSize()
}

// MemoryUsage returns the label storage footprint in bytes.
func (lv *LabelVector) MemoryUsage() int {
	return len(lv.labels)
}

// MemoryUsage returns the suffix storage footprint in bytes.
func (sc *SuffixColumn) MemoryUsage() int {
	return sc.BitsSize()
}

// MemoryUsage returns the value storage footprint in bytes.
func (vc *ValueColumn) MemoryUsage() int {
	return len(vc.values) * 8
}

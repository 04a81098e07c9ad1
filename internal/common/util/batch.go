package util

// BatchSizes splits total items into consecutive batches of batchSize, with the final batch holding the
// remainder.  No empty batch is ever produced, so a total of zero yields no batches at all.
func BatchSizes(total int, batchSize int) []int {
	if total <= 0 || batchSize <= 0 {
		return []int{}
	}
	n := total / batchSize
	remainder := total % batchSize
	sizes := make([]int, n, n+1)
	for i := range sizes {
		sizes[i] = batchSize
	}
	if remainder != 0 {
		sizes = append(sizes, remainder)
	}
	return sizes
}

package utils

// IsPowerOfTwo checks if a number is a power of 2
func IsPowerOfTwo(n int) bool {
	return n > 0 && (n&(n-1)) == 0
}

// Log2 computes the base-2 logarithm of a power of 2
func Log2(n int) int {
	if !IsPowerOfTwo(n) {
		return -1
	}

	result := 0
	for n > 1 {
		n >>= 1
		result++
	}
	return result
}

// NextPowerOfTwo returns the smallest power of 2 >= n.
// A height of zero rounds up to a single row so an empty trace still has a domain.
func NextPowerOfTwo(n int) int {
	if n <= 0 {
		return 1
	}
	if IsPowerOfTwo(n) {
		return n
	}

	power := 1
	for power < n {
		power <<= 1
	}
	return power
}

// ChunkBounds splits [0, n) into consecutive chunks of at most size elements.
// The returned pairs are half-open [start, end) ranges in ascending order.
func ChunkBounds(n, size int) [][2]int {
	if n <= 0 {
		return nil
	}
	if size <= 0 {
		size = n
	}

	bounds := make([][2]int, 0, (n+size-1)/size)
	for start := 0; start < n; start += size {
		end := start + size
		if end > n {
			end = n
		}
		bounds = append(bounds, [2]int{start, end})
	}
	return bounds
}

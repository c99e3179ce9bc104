package common

// ZigZag maps a zigzag scan position to its row-major index in an 8x8 block.
// Diagonals are walked by ascending row+col, alternating direction, so low
// frequencies come first.
var ZigZag = [BlockLen]int{
	0, 1, 8, 16, 9, 2, 3, 10,
	17, 24, 32, 25, 18, 11, 4, 5,
	12, 19, 26, 33, 40, 48, 41, 34,
	27, 20, 13, 6, 7, 14, 21, 28,
	35, 42, 49, 56, 57, 50, 43, 36,
	29, 22, 15, 23, 30, 37, 44, 51,
	58, 59, 52, 45, 38, 31, 39, 46,
	53, 60, 61, 54, 47, 55, 62, 63,
}

// Scan reorders a quantized block into zigzag order
func Scan(q *QuantizedBlock) [BlockLen]int32 {
	var seq [BlockLen]int32
	for k, idx := range ZigZag {
		seq[k] = q[idx]
	}
	return seq
}

// Unscan places a zigzag sequence back into row-major order
func Unscan(seq *[BlockLen]int32) QuantizedBlock {
	var q QuantizedBlock
	for k, idx := range ZigZag {
		q[idx] = seq[k]
	}
	return q
}

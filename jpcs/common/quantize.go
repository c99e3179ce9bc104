package common

import "math"

// QuantizedBlock is an 8x8 grid of quantized coefficients, row-major
type QuantizedBlock [BlockLen]int32

// Quantize divides each coefficient by its table entry and rounds to the
// nearest integer (ties to even). This is the only lossy step of the pipeline.
func Quantize(b *Block, t *QuantTable) QuantizedBlock {
	var q QuantizedBlock
	for i := 0; i < BlockLen; i++ {
		q[i] = int32(math.RoundToEven(b[i] / float64(t[i])))
	}
	return q
}

// Dequantize multiplies each quantized coefficient back by its table entry
func Dequantize(q *QuantizedBlock, t *QuantTable) Block {
	var b Block
	for i := 0; i < BlockLen; i++ {
		b[i] = float64(q[i]) * float64(t[i])
	}
	return b
}

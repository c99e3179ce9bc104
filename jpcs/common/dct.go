package common

import "math"

// dctMatrix[u*8+x] = 0.5*alpha(u)*cos((2x+1)*u*pi/16),
// where alpha(0) = 1/sqrt(2) and alpha(u) = 1 for u > 0.
var dctMatrix [BlockLen]float64

func init() {
	for u := 0; u < BlockSize; u++ {
		alpha := 1.0
		if u == 0 {
			alpha = 1 / math.Sqrt2
		}
		for x := 0; x < BlockSize; x++ {
			dctMatrix[u*BlockSize+x] = 0.5 * alpha * math.Cos(float64((2*x+1)*u)*math.Pi/(2*BlockSize))
		}
	}
}

// ForwardDCT computes the orthonormal 2D DCT-II of an 8x8 block:
//
//	C(u,v) = 0.25*alpha(u)*alpha(v) * sum_x sum_y f(x,y)*cos((2x+1)u*pi/16)*cos((2y+1)v*pi/16)
//
// The first block index is the row. It runs as two 1D passes (rows then
// columns) and matches the direct quadruple sum to floating-point precision.
func ForwardDCT(in *Block) Block {
	var tmp, out Block

	// 1D DCT along each row (second index)
	for x := 0; x < BlockSize; x++ {
		row := in[x*BlockSize : x*BlockSize+BlockSize]
		for v := 0; v < BlockSize; v++ {
			basis := dctMatrix[v*BlockSize : v*BlockSize+BlockSize]
			var sum float64
			for y := 0; y < BlockSize; y++ {
				sum += basis[y] * row[y]
			}
			tmp[x*BlockSize+v] = sum
		}
	}

	// 1D DCT along each column (first index)
	for v := 0; v < BlockSize; v++ {
		for u := 0; u < BlockSize; u++ {
			basis := dctMatrix[u*BlockSize : u*BlockSize+BlockSize]
			var sum float64
			for x := 0; x < BlockSize; x++ {
				sum += basis[x] * tmp[x*BlockSize+v]
			}
			out[u*BlockSize+v] = sum
		}
	}

	return out
}

// InverseDCT computes the 2D DCT-III, the exact inverse of ForwardDCT:
//
//	f(x,y) = 0.25 * sum_u sum_v alpha(u)*alpha(v)*C(u,v)*cos((2x+1)u*pi/16)*cos((2y+1)v*pi/16)
func InverseDCT(in *Block) Block {
	var tmp, out Block

	for u := 0; u < BlockSize; u++ {
		row := in[u*BlockSize : u*BlockSize+BlockSize]
		for y := 0; y < BlockSize; y++ {
			var sum float64
			for v := 0; v < BlockSize; v++ {
				sum += dctMatrix[v*BlockSize+y] * row[v]
			}
			tmp[u*BlockSize+y] = sum
		}
	}

	for y := 0; y < BlockSize; y++ {
		for x := 0; x < BlockSize; x++ {
			var sum float64
			for u := 0; u < BlockSize; u++ {
				sum += dctMatrix[u*BlockSize+x] * tmp[u*BlockSize+y]
			}
			out[x*BlockSize+y] = sum
		}
	}

	return out
}

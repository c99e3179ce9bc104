package common

import "fmt"

// BlockSize is the edge length of a transform block
const BlockSize = 8

// BlockLen is the number of samples in a block
const BlockLen = BlockSize * BlockSize

// Block is an 8x8 tile of real samples in row-major order (index = row*8 + col).
// It holds spatial samples before the forward transform and frequency
// coefficients after it.
type Block [BlockLen]float64

// Plane is a single color channel stored row-major.
type Plane struct {
	Width  int
	Height int
	Pix    []float64
}

// NewPlane allocates a zeroed plane
func NewPlane(width, height int) *Plane {
	return &Plane{
		Width:  width,
		Height: height,
		Pix:    make([]float64, width*height),
	}
}

// At returns the sample at (x, y)
func (p *Plane) At(x, y int) float64 {
	return p.Pix[y*p.Width+x]
}

// DivCeil returns ceil(a/b) for positive b
func DivCeil(a, b int) int {
	return (a + b - 1) / b
}

// BlockCount returns the number of blocks Partition produces for a plane of
// the given size.
func BlockCount(width, height int) int {
	return DivCeil(width, BlockSize) * DivCeil(height, BlockSize)
}

// Partition splits a plane into blocks in row-major block order. Blocks that
// cross the right or bottom edge are zero-padded.
func Partition(p *Plane) []Block {
	blocksWide := DivCeil(p.Width, BlockSize)
	blocksHigh := DivCeil(p.Height, BlockSize)
	blocks := make([]Block, 0, blocksWide*blocksHigh)

	for by := 0; by < blocksHigh; by++ {
		for bx := 0; bx < blocksWide; bx++ {
			var b Block
			for y := 0; y < BlockSize; y++ {
				srcY := by*BlockSize + y
				if srcY >= p.Height {
					break
				}
				for x := 0; x < BlockSize; x++ {
					srcX := bx*BlockSize + x
					if srcX >= p.Width {
						break
					}
					b[y*BlockSize+x] = p.Pix[srcY*p.Width+srcX]
				}
			}
			blocks = append(blocks, b)
		}
	}

	return blocks
}

// Reassemble is the inverse of Partition: it places each block at its
// row-major position and drops the padding beyond width x height.
//
// len(blocks) must equal BlockCount(width, height); anything else is a
// programming error and panics.
func Reassemble(blocks []Block, height, width int) *Plane {
	if want := BlockCount(width, height); len(blocks) != want {
		panic(fmt.Sprintf("common: Reassemble got %d blocks, want %d for %dx%d", len(blocks), want, width, height))
	}

	blocksWide := DivCeil(width, BlockSize)
	p := NewPlane(width, height)

	for i := range blocks {
		bx := i % blocksWide
		by := i / blocksWide
		for y := 0; y < BlockSize; y++ {
			dstY := by*BlockSize + y
			if dstY >= height {
				break
			}
			for x := 0; x < BlockSize; x++ {
				dstX := bx*BlockSize + x
				if dstX >= width {
					break
				}
				p.Pix[dstY*width+dstX] = blocks[i][y*BlockSize+x]
			}
		}
	}

	return p
}

package baseline

import (
	"fmt"

	"github.com/cocosip/go-jpcs/jpcs/common"
)

// Decoder turns CompressedImages back into RGB pixel buffers
type Decoder struct {
	luma   common.QuantTable
	chroma common.QuantTable
}

// NewDecoder creates a decoder. opts must match the options used to encode;
// nil uses DefaultOptions.
func NewDecoder(opts *Options) (*Decoder, error) {
	if opts == nil {
		opts = DefaultOptions()
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	dec := &Decoder{}
	dec.luma, dec.chroma = opts.Tables()
	return dec, nil
}

var defaultDecoder, _ = NewDecoder(nil)

// DecodeImage decodes a CompressedImage with the default tables into an
// interleaved RGB buffer of Width*Height*3 bytes.
func DecodeImage(img *CompressedImage) ([]byte, error) {
	return defaultDecoder.Decode(img)
}

// Decode reverses Encoder.Encode
func (dec *Decoder) Decode(img *CompressedImage) ([]byte, error) {
	if img == nil {
		return nil, fmt.Errorf("%w: nil image", common.ErrInvalidDimensions)
	}
	if img.Width <= 0 || img.Height <= 0 {
		return nil, common.ErrInvalidDimensions
	}
	if img.BlockSize != common.BlockSize {
		return nil, fmt.Errorf("%w: %d", common.ErrUnsupportedBlockSize, img.BlockSize)
	}

	want := common.BlockCount(img.Width, img.Height)
	for _, ch := range []struct {
		name   string
		blocks []common.RunLengthBlock
	}{
		{"Y", img.Y},
		{"Cb", img.Cb},
		{"Cr", img.Cr},
	} {
		if len(ch.blocks) != want {
			return nil, fmt.Errorf("%w: %s has %d blocks, want %d for %dx%d",
				common.ErrTileCountMismatch, ch.name, len(ch.blocks), want, img.Width, img.Height)
		}
	}

	y := decodeChannel(img.Y, &dec.luma, img.Width, img.Height)
	cb := decodeChannel(img.Cb, &dec.chroma, img.Width, img.Height)
	cr := decodeChannel(img.Cr, &dec.chroma, img.Width, img.Height)

	return common.PlanesToRGB(y, cb, cr), nil
}

// decodeChannel is the exact inverse of encodeChannel
func decodeChannel(rle []common.RunLengthBlock, table *common.QuantTable, width, height int) *common.Plane {
	blocks := make([]common.Block, len(rle))

	forEachBlock(len(rle), func(i int) {
		seq := common.DecodeSequence(rle[i])
		q := common.Unscan(&seq)
		coef := common.Dequantize(&q, table)
		blocks[i] = common.InverseDCT(&coef)
	})

	return common.Reassemble(blocks, height, width)
}

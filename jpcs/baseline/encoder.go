package baseline

import (
	"fmt"
	"math"

	"github.com/cocosip/go-jpcs/jpcs/common"
)

// Encoder turns RGB pixel buffers into CompressedImages
type Encoder struct {
	luma   common.QuantTable
	chroma common.QuantTable
}

// NewEncoder creates an encoder. A nil opts uses DefaultOptions.
func NewEncoder(opts *Options) (*Encoder, error) {
	if opts == nil {
		opts = DefaultOptions()
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	enc := &Encoder{}
	enc.luma, enc.chroma = opts.Tables()
	return enc, nil
}

var defaultEncoder, _ = NewEncoder(nil)

// EncodeImage encodes an interleaved RGB buffer with the default tables
func EncodeImage(pixelData []byte, width, height int) (*CompressedImage, error) {
	return defaultEncoder.Encode(pixelData, width, height)
}

// Encode converts the pixels to YCbCr and runs each channel through the
// block pipeline. Y uses the luma table, Cb and Cr the chroma table.
func (enc *Encoder) Encode(pixelData []byte, width, height int) (*CompressedImage, error) {
	if width <= 0 || height <= 0 || uint64(width) > math.MaxUint32 || uint64(height) > math.MaxUint32 {
		return nil, common.ErrInvalidDimensions
	}
	// width*height*3 must fit in an int
	if uint64(width)*uint64(height) > math.MaxInt/3 {
		return nil, fmt.Errorf("%w: %dx%d pixels exceed the addressable buffer size", common.ErrInvalidDimensions, width, height)
	}

	if len(pixelData) < width*height*3 {
		return nil, common.ErrBufferTooSmall
	}

	y, cb, cr := common.RGBToPlanes(pixelData, width, height)

	return &CompressedImage{
		Version:   Version,
		Width:     width,
		Height:    height,
		BlockSize: common.BlockSize,
		Y:         encodeChannel(y, &enc.luma),
		Cb:        encodeChannel(cb, &enc.chroma),
		Cr:        encodeChannel(cr, &enc.chroma),
	}, nil
}

// encodeChannel runs DCT, quantization, zigzag scan and run-length coding on
// every block of a plane, in row-major block order.
func encodeChannel(p *common.Plane, table *common.QuantTable) []common.RunLengthBlock {
	blocks := common.Partition(p)
	out := make([]common.RunLengthBlock, len(blocks))

	forEachBlock(len(blocks), func(i int) {
		coef := common.ForwardDCT(&blocks[i])
		q := common.Quantize(&coef, table)
		out[i] = common.RunLengthEncode(common.Scan(&q))
	})

	return out
}

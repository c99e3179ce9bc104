package baseline

import (
	"bytes"
	"fmt"

	"github.com/cocosip/go-jpcs/codec"
	"github.com/cocosip/go-jpcs/jpcs/common"
)

var _ codec.Codec = (*Codec)(nil)

// Codec implements the codec.Codec interface for JPCS containers
type Codec struct {
	name string
	ext  string
	zstd bool
}

// NewCodec creates the plain JPCS codec (".jpc")
func NewCodec() *Codec {
	return &Codec{name: "jpcs", ext: ".jpc"}
}

// NewZstdCodec creates the zstd-wrapped JPCS codec (".jpcz")
func NewZstdCodec() *Codec {
	return &Codec{name: "jpcs-zstd", ext: ".jpcz", zstd: true}
}

// Encode encodes interleaved RGB pixel data into container bytes
func (c *Codec) Encode(params codec.EncodeParams) ([]byte, error) {
	if params.Components != 3 {
		return nil, common.ErrInvalidComponents
	}

	opts, err := optionsFrom(params.Options)
	if err != nil {
		return nil, err
	}

	enc, err := NewEncoder(opts)
	if err != nil {
		return nil, err
	}

	img, err := enc.Encode(params.PixelData, params.Width, params.Height)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	buf.Grow(img.EncodedSize())
	if c.zstd {
		err = WriteContainerZstd(&buf, img)
	} else {
		err = WriteContainer(&buf, img)
	}
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Decode decodes container bytes into interleaved RGB pixel data
func (c *Codec) Decode(data []byte, options codec.Options) (*codec.DecodeResult, error) {
	opts, err := optionsFrom(options)
	if err != nil {
		return nil, err
	}

	dec, err := NewDecoder(opts)
	if err != nil {
		return nil, err
	}

	var img *CompressedImage
	if c.zstd {
		img, err = ReadContainerZstd(bytes.NewReader(data))
	} else {
		img, err = ReadContainer(bytes.NewReader(data))
	}
	if err != nil {
		return nil, err
	}

	pixels, err := dec.Decode(img)
	if err != nil {
		return nil, fmt.Errorf("%s decode: %w", c.name, err)
	}

	return &codec.DecodeResult{
		PixelData:  pixels,
		Width:      img.Width,
		Height:     img.Height,
		Components: 3,
	}, nil
}

// Extension returns the file extension
func (c *Codec) Extension() string {
	return c.ext
}

// Name returns the codec name
func (c *Codec) Name() string {
	return c.name
}

func init() {
	codec.Register(NewCodec())
	codec.Register(NewZstdCodec())
}

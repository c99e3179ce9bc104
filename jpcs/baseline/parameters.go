package baseline

import (
	"fmt"

	"github.com/cocosip/go-jpcs/codec"
	"github.com/cocosip/go-jpcs/jpcs/common"
)

// DefaultQuality leaves the standard tables unscaled
const DefaultQuality = 50

// ChromaTable selects the quantization table used for Cb and Cr
type ChromaTable int

const (
	// ChromaSameAsLuma quantizes chroma with the luminance table. Version 2
	// JPCS files are written this way.
	ChromaSameAsLuma ChromaTable = iota

	// ChromaStandard uses the Annex K chrominance table
	ChromaStandard
)

// String returns the flag spelling of the table choice
func (c ChromaTable) String() string {
	switch c {
	case ChromaSameAsLuma:
		return "same"
	case ChromaStandard:
		return "standard"
	default:
		return fmt.Sprintf("ChromaTable(%d)", int(c))
	}
}

// ParseChromaTable parses "same" or "standard"
func ParseChromaTable(s string) (ChromaTable, error) {
	switch s {
	case "same", "":
		return ChromaSameAsLuma, nil
	case "standard":
		return ChromaStandard, nil
	default:
		return 0, fmt.Errorf("%w: chroma table %q", codec.ErrInvalidParameter, s)
	}
}

// Options contains encoding options for JPCS.
//
// The tables are not stored in the container, so a file must be decoded with
// the same Quality and Chroma it was encoded with.
type Options struct {
	codec.BaseOptions

	Chroma ChromaTable
}

// DefaultOptions returns the options matching the standard tables
func DefaultOptions() *Options {
	return &Options{
		BaseOptions: codec.BaseOptions{Quality: DefaultQuality},
		Chroma:      ChromaSameAsLuma,
	}
}

// Validate validates the options
func (o *Options) Validate() error {
	if err := o.BaseOptions.Validate(); err != nil {
		return err
	}
	if o.Chroma != ChromaSameAsLuma && o.Chroma != ChromaStandard {
		return fmt.Errorf("%w: chroma table %d", codec.ErrInvalidParameter, int(o.Chroma))
	}
	return nil
}

// Tables returns the luma and chroma quantization tables for these options
func (o *Options) Tables() (luma, chroma common.QuantTable) {
	quality := o.Quality
	if quality == 0 {
		quality = DefaultQuality
	}

	luma = common.ScaleQuantTable(common.DefaultLuminanceQuantTable, quality)
	switch o.Chroma {
	case ChromaStandard:
		chroma = common.ScaleQuantTable(common.DefaultChrominanceQuantTable, quality)
	default:
		chroma = luma
	}
	return luma, chroma
}

// optionsFrom extracts JPCS options from generic codec options
func optionsFrom(opts codec.Options) (*Options, error) {
	if opts == nil {
		return DefaultOptions(), nil
	}
	o, ok := opts.(*Options)
	if !ok {
		return nil, fmt.Errorf("%w: options of type %T", codec.ErrInvalidParameter, opts)
	}
	if o == nil {
		return DefaultOptions(), nil
	}
	if err := o.Validate(); err != nil {
		return nil, err
	}
	return o, nil
}

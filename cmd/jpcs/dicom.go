package main

import (
	"encoding/binary"
	"errors"
	"fmt"
	"image"
	"os"
	"strings"

	"github.com/cocosip/go-dicom/pkg/dicom/parser"
	"github.com/cocosip/go-dicom/pkg/dicom/tag"
	"github.com/cocosip/go-dicom/pkg/dicom/transfer"
	"github.com/cocosip/go-dicom/pkg/imaging"
	dicomcodec "github.com/cocosip/go-dicom/pkg/imaging/codec"
)

// A DICOM Part 10 file starts with a 128-byte preamble followed by "DICM"
const (
	dicomPreambleSize = 128
	dicomMagic        = "DICM"

	maxDICOMObjectSize = 100 * 1024 * 1024
)

var (
	errNoPixelData          = errors.New("dicom: no image pixel data")
	errUnsupportedPixelData = errors.New("dicom: unsupported pixel layout")
)

func isDICOM(data []byte) bool {
	end := dicomPreambleSize + len(dicomMagic)
	return len(data) >= end && string(data[dicomPreambleSize:end]) == dicomMagic
}

// dicomFrame describes the first frame of a DICOM image after any
// encapsulated transfer syntax has been transcoded to native pixels.
type dicomFrame struct {
	width, height int
	samples       int
	signed        bool
	photometric   string
}

// decodeDICOM reads the first frame of a DICOM file. data is the file
// content and is only used when path is "-", since the parser reads from
// a path.
func decodeDICOM(path string, data []byte) (image.Image, error) {
	if path == "-" {
		tmp, err := os.CreateTemp("", "jpcs-*.dcm")
		if err != nil {
			return nil, err
		}
		defer os.Remove(tmp.Name())
		if _, err := tmp.Write(data); err != nil {
			tmp.Close()
			return nil, err
		}
		if err := tmp.Close(); err != nil {
			return nil, err
		}
		path = tmp.Name()
	}

	res, err := parser.ParseFile(path,
		parser.WithReadOption(parser.ReadAll),
		parser.WithLargeObjectSize(maxDICOMObjectSize),
	)
	if err != nil {
		return nil, fmt.Errorf("dicom: parse: %w", err)
	}
	ds := res.Dataset
	if ds == nil {
		return nil, errNoPixelData
	}

	if res.TransferSyntax != nil && res.TransferSyntax.IsEncapsulated() {
		tr := dicomcodec.NewTranscoder(res.TransferSyntax, transfer.ExplicitVRLittleEndian)
		if ds, err = tr.Transcode(ds); err != nil {
			return nil, fmt.Errorf("dicom: transcode %s: %w", res.TransferSyntax.UID().UID(), err)
		}
	}

	f := dicomFrame{
		width:   int(ds.TryGetUInt16(tag.Columns, 0)),
		height:  int(ds.TryGetUInt16(tag.Rows, 0)),
		samples: int(ds.TryGetUInt16(tag.SamplesPerPixel, 0)),
		signed:  ds.TryGetUInt16(tag.PixelRepresentation, 0) != 0,
	}
	if f.width == 0 || f.height == 0 {
		return nil, errNoPixelData
	}
	if f.samples == 0 {
		f.samples = 1
	}
	if pi, ok := ds.GetString(tag.PhotometricInterpretation); ok {
		f.photometric = strings.TrimSpace(pi)
	}

	pd, err := imaging.CreatePixelData(ds)
	if err != nil {
		return nil, fmt.Errorf("dicom: pixel data: %w", err)
	}
	frame, err := pd.GetFrame(0)
	if err != nil {
		return nil, fmt.Errorf("dicom: frame 0: %w", err)
	}

	return frameImage(frame, f)
}

// frameImage converts native little-endian DICOM samples into an image.
// 8-bit RGB and 8-bit grayscale map directly. 16-bit grayscale is windowed
// to its own min/max range. Color samples must be interleaved RGB.
func frameImage(frame []byte, f dicomFrame) (image.Image, error) {
	pixels := f.width * f.height
	if pixels == 0 || len(frame) < pixels*f.samples {
		return nil, fmt.Errorf("%w: %d bytes for %dx%dx%d", errNoPixelData, len(frame), f.width, f.height, f.samples)
	}
	bytesPerSample := len(frame) / (pixels * f.samples)

	switch {
	case f.samples == 3 && bytesPerSample == 1:
		if f.photometric != "" && f.photometric != "RGB" {
			return nil, fmt.Errorf("%w: photometric %s", errUnsupportedPixelData, f.photometric)
		}
		img := image.NewNRGBA(image.Rect(0, 0, f.width, f.height))
		for i := 0; i < pixels; i++ {
			copy(img.Pix[i*4:i*4+3], frame[i*3:i*3+3])
			img.Pix[i*4+3] = 0xff
		}
		return img, nil

	case f.samples == 1 && bytesPerSample == 1:
		img := image.NewGray(image.Rect(0, 0, f.width, f.height))
		copy(img.Pix, frame[:pixels])
		if f.photometric == "MONOCHROME1" {
			invert(img.Pix)
		}
		return img, nil

	case f.samples == 1 && bytesPerSample == 2:
		return windowGray16(frame, f), nil

	default:
		return nil, fmt.Errorf("%w: %d samples of %d bytes", errUnsupportedPixelData, f.samples, bytesPerSample)
	}
}

// windowGray16 maps the frame's min..max sample range onto 0..255
func windowGray16(frame []byte, f dicomFrame) *image.Gray {
	pixels := f.width * f.height
	values := make([]int32, pixels)
	lo, hi := int32(1<<30), int32(-1<<30)
	for i := range values {
		u := binary.LittleEndian.Uint16(frame[i*2:])
		v := int32(u)
		if f.signed {
			v = int32(int16(u))
		}
		values[i] = v
		lo = min(lo, v)
		hi = max(hi, v)
	}
	if hi == lo {
		hi = lo + 1
	}

	img := image.NewGray(image.Rect(0, 0, f.width, f.height))
	span := float64(hi - lo)
	for i, v := range values {
		img.Pix[i] = uint8(float64(v-lo)/span*255 + 0.5)
	}
	if f.photometric == "MONOCHROME1" {
		invert(img.Pix)
	}
	return img
}

func invert(pix []byte) {
	for i := range pix {
		pix[i] = 255 - pix[i]
	}
}

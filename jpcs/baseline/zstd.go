package baseline

import (
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"
)

// WriteContainerZstd writes img as a JPCS stream wrapped in a zstd frame.
// The run-length pairs compress well since most runs and values are small.
func WriteContainerZstd(w io.Writer, img *CompressedImage) error {
	enc, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedBetterCompression))
	if err != nil {
		return fmt.Errorf("jpcs: zstd writer: %w", err)
	}

	if err := WriteContainer(enc, img); err != nil {
		enc.Close()
		return err
	}
	return enc.Close()
}

// ReadContainerZstd reads a JPCS stream written by WriteContainerZstd
func ReadContainerZstd(r io.Reader) (*CompressedImage, error) {
	dec, err := zstd.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("jpcs: zstd reader: %w", err)
	}
	defer dec.Close()

	return ReadContainer(dec)
}

package common

import "errors"

// Format errors returned while reading a JPCS container
var (
	ErrInvalidSignature     = errors.New("invalid JPCS signature")
	ErrUnsupportedVersion   = errors.New("unsupported JPCS version")
	ErrUnsupportedBlockSize = errors.New("unsupported block size")
	ErrTruncated            = errors.New("truncated JPCS data")
	ErrTileCountMismatch    = errors.New("tile count does not match image dimensions")
)

// Input errors returned by the encoder
var (
	ErrInvalidDimensions = errors.New("invalid image dimensions")
	ErrInvalidComponents = errors.New("invalid number of components")
	ErrBufferTooSmall    = errors.New("buffer too small")
)

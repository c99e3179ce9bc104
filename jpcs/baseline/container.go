package baseline

import (
	"bufio"
	"fmt"
	"io"
	"math"

	"github.com/cocosip/go-jpcs/jpcs/common"
)

const (
	// Signature is the magic value at the start of every JPCS stream
	Signature = "JPCS"

	// Version is the only container version this package reads or writes
	Version = 2

	// HeaderSize is the fixed size of the header preceding the block data:
	// signature, version, width, height, tile size and three block counts.
	HeaderSize = 4 + 1 + 4 + 4 + 1 + 3*4

	pairSize = 3
)

// Upper bound on slice capacity reserved from a header count. Larger counts
// still decode, the slices just grow as blocks are actually read.
const maxPrealloc = 1 << 16

// CompressedImage is the run-length coded form of one image. Each channel
// holds one RunLengthBlock per tile in row-major tile order.
type CompressedImage struct {
	// Version is the container version the image was read from, or the
	// version it will be written as.
	Version int

	Width     int
	Height    int
	BlockSize int

	Y  []common.RunLengthBlock
	Cb []common.RunLengthBlock
	Cr []common.RunLengthBlock
}

// channels returns the three channels in container order
func (img *CompressedImage) channels() [3][]common.RunLengthBlock {
	return [3][]common.RunLengthBlock{img.Y, img.Cb, img.Cr}
}

// PairCount returns the total number of run-length pairs across all channels
func (img *CompressedImage) PairCount() int {
	n := 0
	for _, ch := range img.channels() {
		for _, blk := range ch {
			n += len(blk)
		}
	}
	return n
}

// EncodedSize returns the number of bytes WriteContainer produces for img
func (img *CompressedImage) EncodedSize() int {
	size := HeaderSize
	for _, ch := range img.channels() {
		size += 2 * len(ch)
	}
	return size + pairSize*img.PairCount()
}

// WriteContainer serializes img to w
func WriteContainer(w io.Writer, img *CompressedImage) error {
	if err := validateForWrite(img); err != nil {
		return err
	}

	bw := bufio.NewWriter(w)
	cw := common.NewWriter(bw)

	if err := writeHeader(cw, img); err != nil {
		return fmt.Errorf("jpcs: write header: %w", err)
	}

	for _, ch := range img.channels() {
		for _, blk := range ch {
			if err := writeBlock(cw, blk); err != nil {
				return fmt.Errorf("jpcs: write block: %w", err)
			}
		}
	}

	return bw.Flush()
}

func validateForWrite(img *CompressedImage) error {
	if img == nil {
		return fmt.Errorf("%w: nil image", common.ErrInvalidDimensions)
	}
	if img.Width <= 0 || img.Height <= 0 || uint64(img.Width) > math.MaxUint32 || uint64(img.Height) > math.MaxUint32 {
		return common.ErrInvalidDimensions
	}
	if img.BlockSize != common.BlockSize {
		return fmt.Errorf("%w: %d", common.ErrUnsupportedBlockSize, img.BlockSize)
	}
	for _, ch := range img.channels() {
		if uint64(len(ch)) > math.MaxUint32 {
			return fmt.Errorf("jpcs: %d blocks in one channel exceeds the container limit", len(ch))
		}
		for _, blk := range ch {
			if len(blk) > math.MaxUint16 {
				return fmt.Errorf("jpcs: %d pairs in one block exceeds the container limit", len(blk))
			}
		}
	}
	return nil
}

func writeHeader(w *common.Writer, img *CompressedImage) error {
	if err := w.WriteBytes([]byte(Signature)); err != nil {
		return err
	}
	if err := w.WriteByte(Version); err != nil {
		return err
	}
	if err := w.WriteUint32(uint32(img.Width)); err != nil {
		return err
	}
	if err := w.WriteUint32(uint32(img.Height)); err != nil {
		return err
	}
	if err := w.WriteByte(byte(img.BlockSize)); err != nil {
		return err
	}
	for _, ch := range img.channels() {
		if err := w.WriteUint32(uint32(len(ch))); err != nil {
			return err
		}
	}
	return nil
}

func writeBlock(w *common.Writer, blk common.RunLengthBlock) error {
	if err := w.WriteUint16(uint16(len(blk))); err != nil {
		return err
	}
	for _, p := range blk {
		if err := w.WriteByte(p.Run); err != nil {
			return err
		}
		if err := w.WriteInt16(p.Value); err != nil {
			return err
		}
	}
	return nil
}

// ReadContainer parses a JPCS stream. The signature, version and tile size
// are checked before any block data is read, and a stream that ends early
// fails with ErrTruncated. No partial image is returned on error.
func ReadContainer(r io.Reader) (*CompressedImage, error) {
	cr := common.NewReader(bufio.NewReader(r))

	img, counts, err := readHeader(cr)
	if err != nil {
		return nil, fmt.Errorf("jpcs: read header: %w", err)
	}

	var chans [3][]common.RunLengthBlock
	for c, count := range counts {
		blocks := make([]common.RunLengthBlock, 0, min(count, maxPrealloc))
		for i := 0; i < count; i++ {
			blk, err := readBlock(cr)
			if err != nil {
				return nil, fmt.Errorf("jpcs: read block %d of channel %d: %w", i, c, err)
			}
			blocks = append(blocks, blk)
		}
		chans[c] = blocks
	}

	img.Y, img.Cb, img.Cr = chans[0], chans[1], chans[2]
	return img, nil
}

func readHeader(r *common.Reader) (*CompressedImage, [3]int, error) {
	var counts [3]int

	sig := make([]byte, len(Signature))
	if err := r.ReadFull(sig); err != nil {
		return nil, counts, err
	}
	if string(sig) != Signature {
		return nil, counts, fmt.Errorf("%w: %q", common.ErrInvalidSignature, sig)
	}

	version, err := r.ReadByte()
	if err != nil {
		return nil, counts, err
	}
	if version != Version {
		return nil, counts, fmt.Errorf("%w: %d", common.ErrUnsupportedVersion, version)
	}

	width, err := r.ReadUint32()
	if err != nil {
		return nil, counts, err
	}
	height, err := r.ReadUint32()
	if err != nil {
		return nil, counts, err
	}

	blockSize, err := r.ReadByte()
	if err != nil {
		return nil, counts, err
	}
	if blockSize != common.BlockSize {
		return nil, counts, fmt.Errorf("%w: %d", common.ErrUnsupportedBlockSize, blockSize)
	}

	for i := range counts {
		n, err := r.ReadUint32()
		if err != nil {
			return nil, counts, err
		}
		counts[i] = int(n)
	}

	return &CompressedImage{
		Version:   int(version),
		Width:     int(width),
		Height:    int(height),
		BlockSize: int(blockSize),
	}, counts, nil
}

func readBlock(r *common.Reader) (common.RunLengthBlock, error) {
	n, err := r.ReadUint16()
	if err != nil {
		return nil, err
	}

	blk := make(common.RunLengthBlock, n)
	for i := range blk {
		run, err := r.ReadByte()
		if err != nil {
			return nil, err
		}
		value, err := r.ReadInt16()
		if err != nil {
			return nil, err
		}
		blk[i] = common.RunLengthPair{Run: run, Value: value}
	}
	return blk, nil
}

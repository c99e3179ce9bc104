// Command jpcs encodes images into JPCS containers and decodes them back.
//
// Usage:
//
//	jpcs enc [options] <input>       PNG/JPEG/GIF/BMP/TIFF/WebP/DICOM → JPCS (use "-" for stdin)
//	jpcs dec [options] <input.jpc>   JPCS → PNG/JPEG/GIF/BMP/TIFF (-o - for stdout)
//	jpcs info <input.jpc>            Display container header and statistics
package main

import (
	"bytes"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/cocosip/go-jpcs/codec"
	"github.com/cocosip/go-jpcs/jpcs/baseline"
	"github.com/cocosip/go-jpcs/jpcs/common"
)

const (
	defaultMaxWidth  = 800
	defaultMaxHeight = 533
	defaultView      = "view_from_jpc.png"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "enc":
		err = runEnc(os.Args[2:])
	case "dec":
		err = runDec(os.Args[2:])
	case "info":
		err = runInfo(os.Args[2:])
	case "-h", "-help", "--help", "help":
		printUsage()
		return
	default:
		fmt.Fprintf(os.Stderr, "jpcs: unknown command %q\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "jpcs: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `Usage:
  jpcs enc [options] <input>       Encode PNG/JPEG/GIF/BMP/TIFF/WebP/DICOM to JPCS
  jpcs dec [options] <input.jpc>   Decode JPCS to PNG, JPEG, GIF, BMP or TIFF
  jpcs info <input.jpc>            Show container header and statistics

Use "-" as input to read from stdin, "-o -" to write to stdout.
Files ending in .jpcz are zstd-compressed containers.

Run "jpcs <command> -h" for command-specific options.
`)
}

// openInput returns an io.ReadCloser for the given path.
// If path is "-", stdin is returned (caller should not close).
func openInput(path string) (io.ReadCloser, error) {
	if path == "-" {
		return io.NopCloser(os.Stdin), nil
	}
	return os.Open(path)
}

func readInput(path string) ([]byte, error) {
	in, err := openInput(path)
	if err != nil {
		return nil, err
	}
	defer in.Close()
	return io.ReadAll(in)
}

// writeOutput writes data to path, or stdout for "-". A failed write removes
// the partial file.
func writeOutput(path string, write func(w io.Writer) error) error {
	if path == "-" {
		return write(os.Stdout)
	}

	out, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(out); err != nil {
		out.Close()
		os.Remove(path)
		return err
	}
	if err := out.Close(); err != nil {
		os.Remove(path)
		return err
	}
	return nil
}

// addTableFlags registers the flags that select quantization tables. The
// decoder must be given the same values the encoder used.
func addTableFlags(fs *flag.FlagSet) (quality *int, chroma *string) {
	quality = fs.Int("q", baseline.DefaultQuality, "quality 1-100 (50 = standard tables)")
	chroma = fs.String("chroma", "same", "chroma table: same (luma table) or standard")
	return quality, chroma
}

func tableOptions(quality int, chroma string) (*baseline.Options, error) {
	table, err := baseline.ParseChromaTable(strings.ToLower(chroma))
	if err != nil {
		return nil, err
	}

	opts := baseline.DefaultOptions()
	opts.Quality = quality
	opts.Chroma = table
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return opts, nil
}

// --- enc ---

func runEnc(args []string) error {
	fs := flag.NewFlagSet("enc", flag.ContinueOnError)
	output := fs.String("o", "", `output path (default: <input>.jpc, "-" for stdout)`)
	maxWidth := fs.Int("max-width", defaultMaxWidth, "resize when wider than this (0 = never)")
	maxHeight := fs.Int("max-height", defaultMaxHeight, "resize when taller than this (0 = never)")
	quality, chroma := addTableFlags(fs)
	verbose := fs.Bool("v", false, "print progress")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		return fmt.Errorf("enc: missing input file\nUsage: jpcs enc [options] <input>")
	}
	inputPath := fs.Arg(0)

	opts, err := tableOptions(*quality, *chroma)
	if err != nil {
		return fmt.Errorf("enc: %w", err)
	}

	outputPath := *output
	if outputPath == "" {
		if inputPath == "-" {
			outputPath = "output.jpc"
		} else {
			base := strings.TrimSuffix(filepath.Base(inputPath), filepath.Ext(inputPath))
			outputPath = base + ".jpc"
		}
	}

	c, err := outputCodec(outputPath)
	if err != nil {
		return fmt.Errorf("enc: %w", err)
	}

	// Progress goes to stderr when the container itself goes to stdout
	report := io.Writer(os.Stdout)
	if outputPath == "-" {
		report = os.Stderr
	}

	data, err := readInput(inputPath)
	if err != nil {
		return fmt.Errorf("enc: reading input: %w", err)
	}

	img, format, err := loadImage(inputPath, data)
	if err != nil {
		return fmt.Errorf("enc: decoding input: %w", err)
	}

	b := img.Bounds()
	if *verbose {
		fmt.Fprintf(report, "Loaded %s image %dx%d\n", format, b.Dx(), b.Dy())
	}

	img, resized := fitImage(img, *maxWidth, *maxHeight)
	if resized && *verbose {
		fmt.Fprintf(report, "Resized to %dx%d\n", img.Bounds().Dx(), img.Bounds().Dy())
	}

	pixels, width, height := rgbPixels(img)

	encoded, err := c.Encode(codec.EncodeParams{
		PixelData:  pixels,
		Width:      width,
		Height:     height,
		Components: 3,
		Options:    opts,
	})
	if err != nil {
		return fmt.Errorf("enc: %w", err)
	}

	if err := writeOutput(outputPath, func(w io.Writer) error {
		_, err := w.Write(encoded)
		return err
	}); err != nil {
		return fmt.Errorf("enc: %w", err)
	}

	blocks := common.BlockCount(width, height)
	fmt.Fprintf(report, "Encoded %s → %s (%dx%d, %d tiles per channel)\n",
		inputPath, outputPath, width, height, blocks)
	writeSizeReport(report, sizeReport{raw: len(pixels), input: len(data), container: len(encoded)})
	return nil
}

// outputCodec picks the codec from the output extension, defaulting to the
// plain container for stdout and unknown extensions.
func outputCodec(path string) (codec.Codec, error) {
	if c, err := codec.ForPath(path); err == nil {
		return c, nil
	}
	return codec.Get("jpcs")
}

type sizeReport struct {
	raw       int
	input     int
	container int
}

func (r sizeReport) rawRatio() float64 {
	return float64(r.raw) / float64(r.container)
}

func (r sizeReport) inputRatio() float64 {
	return float64(r.input) / float64(r.container)
}

func writeSizeReport(w io.Writer, r sizeReport) {
	fmt.Fprintf(w, "Raw RGB:    %10d bytes\n", r.raw)
	fmt.Fprintf(w, "Input file: %10d bytes\n", r.input)
	fmt.Fprintf(w, "Container:  %10d bytes\n", r.container)
	fmt.Fprintf(w, "Raw/container ratio:   %.2f:1\n", r.rawRatio())
	fmt.Fprintf(w, "Input/container ratio: %.2f:1\n", r.inputRatio())
}

// --- dec ---

func runDec(args []string) error {
	fs := flag.NewFlagSet("dec", flag.ContinueOnError)
	output := fs.String("o", defaultView, `output path, format from extension ("-" for PNG on stdout)`)
	quality, chroma := addTableFlags(fs)
	verbose := fs.Bool("v", false, "print progress")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		return fmt.Errorf("dec: missing input file\nUsage: jpcs dec [options] <input.jpc>")
	}
	inputPath := fs.Arg(0)
	outputPath := *output

	opts, err := tableOptions(*quality, *chroma)
	if err != nil {
		return fmt.Errorf("dec: %w", err)
	}

	report := io.Writer(os.Stdout)
	if outputPath == "-" {
		report = os.Stderr
	}

	data, err := readInput(inputPath)
	if err != nil {
		return fmt.Errorf("dec: reading input: %w", err)
	}

	c, err := containerCodec(data)
	if err != nil {
		return fmt.Errorf("dec: %w", err)
	}

	if *verbose {
		fmt.Fprintf(report, "Reading %s container (%d bytes)\n", c.Name(), len(data))
		fmt.Fprintf(report, "Reconstructing channels...\n")
	}

	result, err := c.Decode(data, opts)
	if err != nil {
		return fmt.Errorf("dec: %w", err)
	}

	if *verbose {
		fmt.Fprintf(report, "Reconstructed %dx%d image\n", result.Width, result.Height)
	}

	img := rgbImage(result.PixelData, result.Width, result.Height)
	format := outputFormat(outputPath)

	if err := writeOutput(outputPath, func(w io.Writer) error {
		return encodeImage(w, img, format)
	}); err != nil {
		return fmt.Errorf("dec: %w", err)
	}

	fmt.Fprintf(report, "Decoded %s → %s\n", inputPath, outputPath)
	return nil
}

// containerCodec picks the codec from the leading magic bytes
func containerCodec(data []byte) (codec.Codec, error) {
	switch {
	case bytes.HasPrefix(data, []byte(baseline.Signature)):
		return codec.Get("jpcs")
	case bytes.HasPrefix(data, zstdMagic):
		return codec.Get("jpcs-zstd")
	default:
		return nil, fmt.Errorf("%w: not a JPCS container", common.ErrInvalidSignature)
	}
}

var zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}

// --- info ---

func runInfo(args []string) error {
	fs := flag.NewFlagSet("info", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		return fmt.Errorf("info: missing input file\nUsage: jpcs info <input.jpc>")
	}
	inputPath := fs.Arg(0)

	data, err := readInput(inputPath)
	if err != nil {
		return fmt.Errorf("info: reading input: %w", err)
	}

	c, err := containerCodec(data)
	if err != nil {
		return fmt.Errorf("info: %w", err)
	}

	var img *baseline.CompressedImage
	if c.Name() == "jpcs-zstd" {
		img, err = baseline.ReadContainerZstd(bytes.NewReader(data))
	} else {
		img, err = baseline.ReadContainer(bytes.NewReader(data))
	}
	if err != nil {
		return fmt.Errorf("info: %w", err)
	}

	printInfo(os.Stdout, inputPath, c.Name(), len(data), img)
	return nil
}

func printInfo(w io.Writer, path, codecName string, fileSize int, img *baseline.CompressedImage) {
	fmt.Fprintf(w, "File:       %s\n", path)
	fmt.Fprintf(w, "Codec:      %s\n", codecName)
	fmt.Fprintf(w, "Version:    %d\n", img.Version)
	fmt.Fprintf(w, "Dimensions: %dx%d\n", img.Width, img.Height)
	fmt.Fprintf(w, "Tile size:  %d\n", img.BlockSize)
	fmt.Fprintf(w, "Tiles:      Y=%d Cb=%d Cr=%d\n", len(img.Y), len(img.Cb), len(img.Cr))

	for _, ch := range []struct {
		name   string
		blocks []common.RunLengthBlock
	}{
		{"Y", img.Y},
		{"Cb", img.Cb},
		{"Cr", img.Cr},
	} {
		pairs, zero := 0, 0
		for _, blk := range ch.blocks {
			pairs += len(blk)
			if len(blk) == 1 && blk[0] == (common.RunLengthPair{}) {
				zero++
			}
		}
		fmt.Fprintf(w, "  %-2s  pairs=%d all-zero tiles=%d\n", ch.name, pairs, zero)
	}

	fmt.Fprintf(w, "Pairs:      %d\n", img.PairCount())
	fmt.Fprintf(w, "Container:  %d bytes\n", img.EncodedSize())
	if fileSize != img.EncodedSize() {
		fmt.Fprintf(w, "File size:  %d bytes (%.2f:1 vs container)\n",
			fileSize, float64(img.EncodedSize())/float64(fileSize))
	}

	if want := common.BlockCount(img.Width, img.Height); len(img.Y) != want || len(img.Cb) != want || len(img.Cr) != want {
		fmt.Fprintf(w, "Warning:    %v (want %d per channel)\n", common.ErrTileCountMismatch, want)
	}
}

package main

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"golang.org/x/image/bmp"

	"github.com/cocosip/go-jpcs/jpcs/baseline"
	"github.com/cocosip/go-jpcs/jpcs/common"
)

// binaryPath holds the path to the compiled jpcs binary. Set in TestMain.
var binaryPath string

func TestMain(m *testing.M) {
	tmp, err := os.MkdirTemp("", "jpcs-test-bin-*")
	if err != nil {
		panic(err)
	}

	binaryPath = filepath.Join(tmp, "jpcs")
	cmd := exec.Command("go", "build", "-o", binaryPath, ".")
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		// Mark binary as empty so tests skip gracefully.
		binaryPath = ""
	}

	code := m.Run()
	os.RemoveAll(tmp)
	os.Exit(code)
}

// skipIfNoBinary skips the test when the binary was not built.
func skipIfNoBinary(t *testing.T) {
	t.Helper()
	if binaryPath == "" {
		t.Skip("jpcs binary not built; skipping")
	}
}

// runJpcs executes jpcs with the given arguments and returns stdout, stderr
// and any error.
func runJpcs(t *testing.T, args ...string) (stdout, stderr []byte, err error) {
	t.Helper()
	cmd := exec.Command(binaryPath, args...)
	var outBuf, errBuf bytes.Buffer
	cmd.Stdout = &outBuf
	cmd.Stderr = &errBuf
	err = cmd.Run()
	return outBuf.Bytes(), errBuf.Bytes(), err
}

func gradientImage(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{
				R: uint8(x * 255 / max(w-1, 1)),
				G: uint8(y * 255 / max(h-1, 1)),
				B: 128,
				A: 255,
			})
		}
	}
	return img
}

// createTestPNG writes a gradient PNG into dir and returns its path.
func createTestPNG(t *testing.T, dir string, w, h int) string {
	t.Helper()
	path := filepath.Join(dir, "input.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("creating test PNG: %v", err)
	}
	if err := png.Encode(f, gradientImage(w, h)); err != nil {
		f.Close()
		t.Fatalf("encoding test PNG: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("closing test PNG: %v", err)
	}
	return path
}

// --- helper tests ---

func TestFitImage(t *testing.T) {
	tests := []struct {
		name        string
		w, h        int
		maxW, maxH  int
		wantW       int
		wantH       int
		wantResized bool
	}{
		{"Smaller", 640, 480, 800, 533, 640, 480, false},
		{"Exact", 800, 533, 800, 533, 800, 533, false},
		{"Too wide", 1024, 400, 800, 533, 800, 533, true},
		{"Too tall", 300, 600, 800, 533, 800, 533, true},
		{"Width only", 1000, 900, 500, 0, 500, 900, true},
		{"Disabled", 2000, 2000, 0, 0, 2000, 2000, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := image.NewNRGBA(image.Rect(0, 0, tt.w, tt.h))
			got, resized := fitImage(src, tt.maxW, tt.maxH)
			if resized != tt.wantResized {
				t.Errorf("resized = %v, want %v", resized, tt.wantResized)
			}
			if b := got.Bounds(); b.Dx() != tt.wantW || b.Dy() != tt.wantH {
				t.Errorf("size = %dx%d, want %dx%d", b.Dx(), b.Dy(), tt.wantW, tt.wantH)
			}
		})
	}
}

func TestRGBPixelsRoundTrip(t *testing.T) {
	src := gradientImage(13, 7)

	pixels, w, h := rgbPixels(src)
	if w != 13 || h != 7 || len(pixels) != 13*7*3 {
		t.Fatalf("rgbPixels() = %d bytes %dx%d", len(pixels), w, h)
	}

	back := rgbImage(pixels, w, h)
	if !bytes.Equal(back.Pix, src.Pix) {
		t.Errorf("rgbImage(rgbPixels(img)) differs from img")
	}
}

func TestRGBPixelsDropsAlphaAndOffset(t *testing.T) {
	// Sub-image with a non-zero origin and translucent pixels
	full := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	full.SetNRGBA(2, 2, color.NRGBA{R: 10, G: 20, B: 30, A: 40})
	sub := full.SubImage(image.Rect(2, 2, 4, 4))

	pixels, w, h := rgbPixels(sub)
	if w != 2 || h != 2 {
		t.Fatalf("size = %dx%d, want 2x2", w, h)
	}
	if pixels[0] != 10 || pixels[1] != 20 || pixels[2] != 30 {
		t.Errorf("first pixel = %v, want [10 20 30]", pixels[:3])
	}
}

func TestOutputFormat(t *testing.T) {
	tests := map[string]string{
		"view_from_jpc.png": "png",
		"a.JPG":             "jpeg",
		"a.jpeg":            "jpeg",
		"a.gif":             "gif",
		"a.bmp":             "bmp",
		"a.tif":             "tiff",
		"a.tiff":            "tiff",
		"-":                 "png",
		"noext":             "png",
	}
	for path, want := range tests {
		if got := outputFormat(path); got != want {
			t.Errorf("outputFormat(%q) = %q, want %q", path, got, want)
		}
	}
}

func TestEncodeImageFormats(t *testing.T) {
	img := gradientImage(16, 16)
	for _, format := range []string{"png", "jpeg", "gif", "bmp", "tiff"} {
		var buf bytes.Buffer
		if err := encodeImage(&buf, img, format); err != nil {
			t.Errorf("encodeImage(%s) error = %v", format, err)
			continue
		}
		if _, got, err := loadImage("x."+format, buf.Bytes()); err != nil || got != format {
			t.Errorf("loadImage(%s output) = %q, %v", format, got, err)
		}
	}

	if err := encodeImage(&bytes.Buffer{}, img, "xcf"); !errors.Is(err, errUnknownFormat) {
		t.Errorf("encodeImage(xcf) error = %v, want errUnknownFormat", err)
	}
}

func TestContainerCodec(t *testing.T) {
	tests := []struct {
		name     string
		data     []byte
		wantName string
	}{
		{"Plain", []byte("JPCS\x02"), "jpcs"},
		{"Zstd", []byte{0x28, 0xb5, 0x2f, 0xfd, 0x00}, "jpcs-zstd"},
	}
	for _, tt := range tests {
		c, err := containerCodec(tt.data)
		if err != nil {
			t.Errorf("%s: containerCodec() error = %v", tt.name, err)
			continue
		}
		if c.Name() != tt.wantName {
			t.Errorf("%s: codec = %q, want %q", tt.name, c.Name(), tt.wantName)
		}
	}

	if _, err := containerCodec([]byte("\x89PNG")); !errors.Is(err, common.ErrInvalidSignature) {
		t.Errorf("PNG data: error = %v, want ErrInvalidSignature", err)
	}
}

func TestSizeReport(t *testing.T) {
	r := sizeReport{raw: 1200, input: 600, container: 300}
	if r.rawRatio() != 4 {
		t.Errorf("rawRatio() = %v, want 4", r.rawRatio())
	}
	if r.inputRatio() != 2 {
		t.Errorf("inputRatio() = %v, want 2", r.inputRatio())
	}

	var buf bytes.Buffer
	writeSizeReport(&buf, r)
	out := buf.String()
	for _, want := range []string{"1200 bytes", "600 bytes", "300 bytes", "4.00:1", "2.00:1"} {
		if !strings.Contains(out, want) {
			t.Errorf("report missing %q:\n%s", want, out)
		}
	}
}

func TestPrintInfo(t *testing.T) {
	rgb, w, h := rgbPixels(gradientImage(20, 12))
	img, err := baseline.EncodeImage(rgb, w, h)
	if err != nil {
		t.Fatalf("EncodeImage failed: %v", err)
	}

	var buf bytes.Buffer
	printInfo(&buf, "x.jpc", "jpcs", img.EncodedSize(), img)
	out := buf.String()

	for _, want := range []string{"Dimensions: 20x12", "Tile size:  8", "Tiles:      Y=6 Cb=6 Cr=6"} {
		if !strings.Contains(out, want) {
			t.Errorf("info missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "Warning") {
		t.Errorf("unexpected warning:\n%s", out)
	}

	// The version line reflects the image, not the package constant
	img.Version = 7
	buf.Reset()
	printInfo(&buf, "x.jpc", "jpcs", img.EncodedSize(), img)
	if !strings.Contains(buf.String(), "Version:    7") {
		t.Errorf("info does not report the parsed version:\n%s", buf.String())
	}
}

// --- in-process command tests ---

func TestRunEncDec(t *testing.T) {
	for _, ext := range []string{".jpc", ".jpcz"} {
		t.Run(ext, func(t *testing.T) {
			dir := t.TempDir()
			input := createTestPNG(t, dir, 24, 16)
			container := filepath.Join(dir, "out"+ext)
			view := filepath.Join(dir, "view.png")

			if err := runEnc([]string{"-o", container, input}); err != nil {
				t.Fatalf("runEnc failed: %v", err)
			}
			if err := runInfo([]string{container}); err != nil {
				t.Fatalf("runInfo failed: %v", err)
			}
			if err := runDec([]string{"-o", view, container}); err != nil {
				t.Fatalf("runDec failed: %v", err)
			}

			f, err := os.Open(view)
			if err != nil {
				t.Fatalf("opening output: %v", err)
			}
			defer f.Close()

			decoded, err := png.Decode(f)
			if err != nil {
				t.Fatalf("decoding output PNG: %v", err)
			}
			if b := decoded.Bounds(); b.Dx() != 24 || b.Dy() != 16 {
				t.Errorf("output size = %dx%d, want 24x16", b.Dx(), b.Dy())
			}
		})
	}
}

func TestRunEncResizesAndReadsBMP(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "input.bmp")
	f, err := os.Create(input)
	if err != nil {
		t.Fatal(err)
	}
	if err := bmp.Encode(f, gradientImage(50, 30)); err != nil {
		t.Fatal(err)
	}
	f.Close()

	container := filepath.Join(dir, "small.jpc")
	if err := runEnc([]string{"-max-width", "16", "-max-height", "8", "-o", container, input}); err != nil {
		t.Fatalf("runEnc failed: %v", err)
	}

	data, err := os.ReadFile(container)
	if err != nil {
		t.Fatal(err)
	}
	img, err := baseline.ReadContainer(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("ReadContainer failed: %v", err)
	}
	if img.Width != 16 || img.Height != 8 {
		t.Errorf("container size = %dx%d, want 16x8", img.Width, img.Height)
	}
}

func TestRunEncErrors(t *testing.T) {
	dir := t.TempDir()
	input := createTestPNG(t, dir, 8, 8)

	tests := []struct {
		name string
		args []string
	}{
		{"Missing input", nil},
		{"Bad quality", []string{"-q", "200", input}},
		{"Bad chroma", []string{"-chroma", "cmyk", input}},
		{"Nonexistent input", []string{filepath.Join(dir, "missing.png")}},
	}
	for _, tt := range tests {
		if err := runEnc(tt.args); err == nil {
			t.Errorf("%s: runEnc() succeeded, want error", tt.name)
		}
	}
}

func TestRunDecRejectsNonContainer(t *testing.T) {
	dir := t.TempDir()
	input := createTestPNG(t, dir, 8, 8)

	err := runDec([]string{"-o", filepath.Join(dir, "v.png"), input})
	if !errors.Is(err, common.ErrInvalidSignature) {
		t.Errorf("runDec() error = %v, want ErrInvalidSignature", err)
	}
}

// --- binary tests ---

func TestBinary_EncDecInfo(t *testing.T) {
	skipIfNoBinary(t)
	dir := t.TempDir()
	input := createTestPNG(t, dir, 32, 32)
	container := filepath.Join(dir, "out.jpc")
	view := filepath.Join(dir, "view.bmp")

	stdout, stderr, err := runJpcs(t, "enc", "-o", container, input)
	if err != nil {
		t.Fatalf("enc failed: %v\nstderr: %s", err, stderr)
	}
	if !strings.Contains(string(stdout), "Raw/container ratio") {
		t.Errorf("enc output missing size report:\n%s", stdout)
	}

	stdout, stderr, err = runJpcs(t, "info", container)
	if err != nil {
		t.Fatalf("info failed: %v\nstderr: %s", err, stderr)
	}
	if !strings.Contains(string(stdout), "Dimensions: 32x32") {
		t.Errorf("info output:\n%s", stdout)
	}

	_, stderr, err = runJpcs(t, "dec", "-v", "-o", view, container)
	if err != nil {
		t.Fatalf("dec failed: %v\nstderr: %s", err, stderr)
	}
	data, err := os.ReadFile(view)
	if err != nil {
		t.Fatalf("reading output: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("BM")) {
		t.Errorf("output is not a BMP file")
	}
}

func TestBinary_EncToStdout(t *testing.T) {
	skipIfNoBinary(t)
	dir := t.TempDir()
	input := createTestPNG(t, dir, 8, 8)

	stdout, stderr, err := runJpcs(t, "enc", "-o", "-", input)
	if err != nil {
		t.Fatalf("enc failed: %v\nstderr: %s", err, stderr)
	}
	if !bytes.HasPrefix(stdout, []byte("JPCS")) {
		t.Errorf("stdout does not start with the JPCS signature")
	}
	if !strings.Contains(string(stderr), "Container:") {
		t.Errorf("size report should go to stderr when writing to stdout:\n%s", stderr)
	}
}

func TestBinary_UnknownCommand(t *testing.T) {
	skipIfNoBinary(t)
	_, stderr, err := runJpcs(t, "transcode")
	if err == nil {
		t.Fatal("expected non-zero exit")
	}
	if !strings.Contains(string(stderr), "unknown command") {
		t.Errorf("stderr = %s", stderr)
	}
}

func TestBinary_NoArgs(t *testing.T) {
	skipIfNoBinary(t)
	_, stderr, err := runJpcs(t)
	if err == nil {
		t.Fatal("expected non-zero exit")
	}
	if !strings.Contains(string(stderr), "Usage:") {
		t.Errorf("stderr = %s", stderr)
	}
}

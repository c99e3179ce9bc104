package main

import (
	"bytes"
	"errors"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"path/filepath"
	"strings"

	"golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	"golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

var errUnknownFormat = errors.New("unknown output format")

// loadImage decodes a DICOM file or any registered image format
func loadImage(path string, data []byte) (image.Image, string, error) {
	if isDICOM(data) {
		img, err := decodeDICOM(path, data)
		return img, "dicom", err
	}
	return image.Decode(bytes.NewReader(data))
}

// fitImage scales img to exactly maxWidth x maxHeight when either dimension
// is larger. A zero limit leaves that dimension unbounded.
func fitImage(img image.Image, maxWidth, maxHeight int) (image.Image, bool) {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()

	tooWide := maxWidth > 0 && w > maxWidth
	tooTall := maxHeight > 0 && h > maxHeight
	if !tooWide && !tooTall {
		return img, false
	}

	if maxWidth > 0 {
		w = maxWidth
	}
	if maxHeight > 0 {
		h = maxHeight
	}

	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst, true
}

// rgbPixels flattens img into a row-major RGB buffer. Alpha is dropped
// without compositing.
func rgbPixels(img image.Image) ([]byte, int, int) {
	b := img.Bounds()

	nrgba, ok := img.(*image.NRGBA)
	if !ok || nrgba.Rect.Min != (image.Point{}) {
		nrgba = image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
		draw.Draw(nrgba, nrgba.Bounds(), img, b.Min, draw.Src)
	}

	w, h := b.Dx(), b.Dy()
	pixels := make([]byte, w*h*3)
	for y := 0; y < h; y++ {
		row := nrgba.Pix[y*nrgba.Stride : y*nrgba.Stride+w*4]
		out := pixels[y*w*3 : (y+1)*w*3]
		for x := 0; x < w; x++ {
			out[x*3+0] = row[x*4+0]
			out[x*3+1] = row[x*4+1]
			out[x*3+2] = row[x*4+2]
		}
	}
	return pixels, w, h
}

// rgbImage wraps a row-major RGB buffer as an opaque image
func rgbImage(pixels []byte, width, height int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for i, j := 0, 0; i+2 < len(pixels) && j < len(img.Pix); i, j = i+3, j+4 {
		img.Pix[j+0] = pixels[i+0]
		img.Pix[j+1] = pixels[i+1]
		img.Pix[j+2] = pixels[i+2]
		img.Pix[j+3] = 0xff
	}
	return img
}

// outputFormat picks the encoder from the file extension, defaulting to PNG
func outputFormat(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg":
		return "jpeg"
	case ".gif":
		return "gif"
	case ".bmp":
		return "bmp"
	case ".tif", ".tiff":
		return "tiff"
	default:
		return "png"
	}
}

func encodeImage(w io.Writer, img image.Image, format string) error {
	switch format {
	case "png":
		return png.Encode(w, img)
	case "jpeg":
		return jpeg.Encode(w, img, &jpeg.Options{Quality: 90})
	case "gif":
		return gif.Encode(w, img, nil)
	case "bmp":
		return bmp.Encode(w, img)
	case "tiff":
		return tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate})
	default:
		return errUnknownFormat
	}
}

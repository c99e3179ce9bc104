package common

import "math"

// RGBToYCbCr converts one RGB pixel to full-range BT.601 YCbCr.
// Each output is rounded to the nearest integer and clamped to [0,255].
func RGBToYCbCr(r, g, b uint8) (y, cb, cr uint8) {
	rf, gf, bf := float64(r), float64(g), float64(b)

	yy := 0.299*rf + 0.587*gf + 0.114*bf
	cbv := -0.168736*rf - 0.331264*gf + 0.5*bf + 128
	crv := 0.5*rf - 0.418688*gf - 0.081312*bf + 128

	return clampSample(yy), clampSample(cbv), clampSample(crv)
}

// YCbCrToRGB is the inverse of RGBToYCbCr. Inputs are real-valued so that
// decoded planes can be converted without an intermediate rounding step.
func YCbCrToRGB(y, cb, cr float64) (r, g, b uint8) {
	cbShift := cb - 128
	crShift := cr - 128

	rv := y + 1.402*crShift
	gv := y - 0.344136*cbShift - 0.714136*crShift
	bv := y + 1.772*cbShift

	return clampSample(rv), clampSample(gv), clampSample(bv)
}

// RGBToPlanes splits an interleaved RGB buffer [R0,G0,B0,R1,...] into
// Y, Cb and Cr planes.
func RGBToPlanes(rgb []byte, width, height int) (y, cb, cr *Plane) {
	y = NewPlane(width, height)
	cb = NewPlane(width, height)
	cr = NewPlane(width, height)

	for i := 0; i < width*height; i++ {
		yy, cbv, crv := RGBToYCbCr(rgb[i*3], rgb[i*3+1], rgb[i*3+2])
		y.Pix[i] = float64(yy)
		cb.Pix[i] = float64(cbv)
		cr.Pix[i] = float64(crv)
	}

	return
}

// PlanesToRGB interleaves three YCbCr planes of equal size back into RGB.
func PlanesToRGB(y, cb, cr *Plane) []byte {
	n := y.Width * y.Height
	rgb := make([]byte, n*3)

	for i := 0; i < n; i++ {
		rgb[i*3], rgb[i*3+1], rgb[i*3+2] = YCbCrToRGB(y.Pix[i], cb.Pix[i], cr.Pix[i])
	}

	return rgb
}

func clampSample(v float64) uint8 {
	v = math.RoundToEven(v)
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}

package common

// QuantTable holds 64 positive divisors in row-major order
type QuantTable [BlockLen]int32

// Standard JPEG quantization tables (ITU-T T.81 Annex K)

// DefaultLuminanceQuantTable is the standard luminance quantization table
var DefaultLuminanceQuantTable = QuantTable{
	16, 11, 10, 16, 24, 40, 51, 61,
	12, 12, 14, 19, 26, 58, 60, 55,
	14, 13, 16, 24, 40, 57, 69, 56,
	14, 17, 22, 29, 51, 87, 80, 62,
	18, 22, 37, 56, 68, 109, 103, 77,
	24, 35, 55, 64, 81, 104, 113, 92,
	49, 64, 78, 87, 103, 121, 120, 101,
	72, 92, 95, 98, 112, 100, 103, 99,
}

// DefaultChrominanceQuantTable is the standard chrominance quantization table
var DefaultChrominanceQuantTable = QuantTable{
	17, 18, 24, 47, 99, 99, 99, 99,
	18, 21, 26, 66, 99, 99, 99, 99,
	24, 26, 56, 99, 99, 99, 99, 99,
	47, 66, 99, 99, 99, 99, 99, 99,
	99, 99, 99, 99, 99, 99, 99, 99,
	99, 99, 99, 99, 99, 99, 99, 99,
	99, 99, 99, 99, 99, 99, 99, 99,
	99, 99, 99, 99, 99, 99, 99, 99,
}

// ScaleQuantTable scales a quantization table by quality factor (1-100)
func ScaleQuantTable(baseTable QuantTable, quality int) QuantTable {
	var result QuantTable

	// Quality 50 = no scaling
	// Quality < 50: coarser steps, higher compression
	// Quality > 50: finer steps, lower compression
	var scale int
	if quality < 50 {
		scale = 5000 / quality
	} else {
		scale = 200 - quality*2
	}

	for i := 0; i < BlockLen; i++ {
		val := (baseTable[i]*int32(scale) + 50) / 100
		if val < 1 {
			val = 1
		}
		if val > 255 {
			val = 255
		}
		result[i] = val
	}

	return result
}

// Valid reports whether every entry is a positive divisor
func (t *QuantTable) Valid() bool {
	for _, v := range t {
		if v <= 0 {
			return false
		}
	}
	return true
}

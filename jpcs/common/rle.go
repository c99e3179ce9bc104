package common

import "math"

// RunLengthPair is a count of zeros followed by one coefficient value
type RunLengthPair struct {
	Run   uint8
	Value int16
}

// RunLengthBlock is the run-length form of one zigzag sequence. Zeros after
// the last nonzero coefficient are not stored. A block whose coefficients are
// all zero is the single pair {0, 0}.
type RunLengthBlock []RunLengthPair

// allZeroPair marks a block with no nonzero coefficient
var allZeroPair = RunLengthPair{Run: 0, Value: 0}

// RunLengthEncode encodes a zigzag sequence as (run, value) pairs up to and
// including its last nonzero value. Values beyond the int16 range saturate.
func RunLengthEncode(seq [BlockLen]int32) RunLengthBlock {
	last := -1
	for i, v := range seq {
		if v != 0 {
			last = i
		}
	}
	if last == -1 {
		return RunLengthBlock{allZeroPair}
	}

	var out RunLengthBlock
	run := 0
	for _, v := range seq[:last+1] {
		if v == 0 {
			run++
			continue
		}
		out = append(out, RunLengthPair{Run: uint8(run), Value: saturateInt16(v)})
		run = 0
	}

	return out
}

// RunLengthDecode expands pairs back into exactly total values. Short input
// is zero-padded and long input truncated; decoding never fails.
func RunLengthDecode(rle RunLengthBlock, total int) []int32 {
	if total < 0 {
		total = 0
	}
	out := make([]int32, 0, total)
	if len(rle) == 1 && rle[0] == allZeroPair {
		return out[:total]
	}

	for _, p := range rle {
		for i := 0; i < int(p.Run) && len(out) < total; i++ {
			out = append(out, 0)
		}
		if len(out) == total {
			break
		}
		out = append(out, int32(p.Value))
	}

	// the backing array beyond len(out) is still zero
	return out[:total]
}

// DecodeSequence decodes a run-length block into a full zigzag sequence
func DecodeSequence(rle RunLengthBlock) [BlockLen]int32 {
	var seq [BlockLen]int32
	copy(seq[:], RunLengthDecode(rle, BlockLen))
	return seq
}

func saturateInt16(v int32) int16 {
	if v > math.MaxInt16 {
		return math.MaxInt16
	}
	if v < math.MinInt16 {
		return math.MinInt16
	}
	return int16(v)
}

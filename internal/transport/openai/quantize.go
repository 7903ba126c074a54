package openai

import (
	"math"

	"github.com/kailas-cloud/vecmcp/internal/domain"
)

// quantize converts a float embedding to the requested dtype, still as floats.
// int8/uint8 scale each component; binary/ubinary pack sign bits eight per value,
// so their length is ceil(len(v)/8).
func quantize(v []float32, dtype domain.OutputDType) []float32 {
	switch dtype {
	case domain.OutputInt8:
		out := make([]float32, len(v))
		for i, x := range v {
			out[i] = clamp(float32(math.Round(float64(x)*127)), -128, 127)
		}
		return out
	case domain.OutputUint8:
		out := make([]float32, len(v))
		for i, x := range v {
			out[i] = clamp(float32(math.Round((float64(x)+1)*127.5)), 0, 255)
		}
		return out
	case domain.OutputBinary, domain.OutputUbinary:
		packed := packSignBits(v)
		out := make([]float32, len(packed))
		for i, b := range packed {
			if dtype == domain.OutputBinary {
				out[i] = float32(int8(b))
			} else {
				out[i] = float32(b)
			}
		}
		return out
	default:
		return v
	}
}

// packSignBits sets bit 7-(i%8) of byte i/8 when v[i] > 0.
func packSignBits(v []float32) []byte {
	packed := make([]byte, (len(v)+7)/8)
	for i, x := range v {
		if x > 0 {
			packed[i/8] |= 1 << (7 - uint(i%8))
		}
	}
	return packed
}

func clamp(x, lo, hi float32) float32 {
	return max(lo, min(hi, x))
}

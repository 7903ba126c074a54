package document

import (
	"encoding/binary"
	"math"
)

// Vector dtype header bytes of a SubtypeVector binary.
const (
	DTypeFloat32   byte = 0x27
	DTypeInt8      byte = 0x03
	DTypePackedBit byte = 0x10
)

const vectorHeaderLen = 2 // dtype, padding

// VectorEncoding identifies how a binary vector decoded.
type VectorEncoding int

// Decode outcomes.
const (
	VectorUndecodable VectorEncoding = iota
	VectorFloat32
	VectorBits
)

// DecodedVector is the tagged result of decoding a binary vector.
type DecodedVector struct {
	Encoding VectorEncoding
	Length   int
}

// OK reports whether any decoding succeeded.
func (d DecodedVector) OK() bool { return d.Encoding != VectorUndecodable }

// DecodeVector decodes b as a float32 vector, falling back to a packed bit vector.
func DecodeVector(b Binary) DecodedVector {
	if n, ok := Float32Len(b); ok {
		return DecodedVector{Encoding: VectorFloat32, Length: n}
	}
	if n, ok := BitLen(b); ok {
		return DecodedVector{Encoding: VectorBits, Length: n}
	}
	return DecodedVector{Encoding: VectorUndecodable}
}

// Float32Len returns the element count of a float32 vector binary.
func Float32Len(b Binary) (int, bool) {
	if !hasHeader(b, DTypeFloat32) || b.Data[1] != 0 {
		return 0, false
	}
	payload := len(b.Data) - vectorHeaderLen
	if payload%4 != 0 {
		return 0, false
	}
	return payload / 4, true
}

// BitLen returns the bit count of a packed bit vector binary.
func BitLen(b Binary) (int, bool) {
	if !hasHeader(b, DTypePackedBit) {
		return 0, false
	}
	padding := int(b.Data[1])
	payload := len(b.Data) - vectorHeaderLen
	if padding > 7 || (payload == 0 && padding != 0) {
		return 0, false
	}
	return payload*8 - padding, true
}

// Float32s decodes a float32 vector binary.
func Float32s(b Binary) ([]float32, bool) {
	n, ok := Float32Len(b)
	if !ok {
		return nil, false
	}
	out := make([]float32, n)
	for i := range out {
		off := vectorHeaderLen + i*4
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(b.Data[off:]))
	}
	return out, true
}

// Int8s decodes an int8 vector binary.
func Int8s(b Binary) ([]int8, bool) {
	if !hasHeader(b, DTypeInt8) || b.Data[1] != 0 {
		return nil, false
	}
	out := make([]int8, len(b.Data)-vectorHeaderLen)
	for i := range out {
		out[i] = int8(b.Data[vectorHeaderLen+i])
	}
	return out, true
}

// NewFloat32Vector encodes v as a float32 vector binary.
func NewFloat32Vector(v []float32) Binary {
	data := make([]byte, vectorHeaderLen+len(v)*4)
	data[0] = DTypeFloat32
	for i, f := range v {
		binary.LittleEndian.PutUint32(data[vectorHeaderLen+i*4:], math.Float32bits(f))
	}
	return Binary{Subtype: SubtypeVector, Data: data}
}

// NewInt8Vector encodes v as an int8 vector binary.
func NewInt8Vector(v []int8) Binary {
	data := make([]byte, vectorHeaderLen+len(v))
	data[0] = DTypeInt8
	for i, x := range v {
		data[vectorHeaderLen+i] = byte(x)
	}
	return Binary{Subtype: SubtypeVector, Data: data}
}

// NewBitVector encodes packed bits; padding is the count of unused low bits in the last byte.
func NewBitVector(packed []byte, padding byte) Binary {
	data := make([]byte, vectorHeaderLen+len(packed))
	data[0] = DTypePackedBit
	data[1] = padding
	copy(data[vectorHeaderLen:], packed)
	return Binary{Subtype: SubtypeVector, Data: data}
}

func hasHeader(b Binary, dtype byte) bool {
	return b.Subtype == SubtypeVector && len(b.Data) >= vectorHeaderLen && b.Data[0] == dtype
}

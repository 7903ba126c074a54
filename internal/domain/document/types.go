package document

// Numeric wrapper kinds and the binary kind of the extended-JSON document model.
// Plain JSON numbers decode to int64 (integral) or float64.
type (
	// Int32 is a {"$numberInt": "..."} value.
	Int32 int32
	// Int64 is a {"$numberLong": "..."} value.
	Int64 int64
	// Double is a {"$numberDouble": "..."} value.
	Double float64
	// Decimal128 is a {"$numberDecimal": "..."} value kept in its decimal string form.
	Decimal128 string
)

// Binary subtypes.
const (
	SubtypeGeneric byte = 0x00
	SubtypeUUID    byte = 0x04
	SubtypeVector  byte = 0x09
)

// Binary is a {"$binary": {"base64": "...", "subType": "hh"}} value.
type Binary struct {
	Subtype byte
	Data    []byte
}

// IsNumeric reports whether v is a native number or one of the numeric wrapper kinds.
func IsNumeric(v any) bool {
	switch v.(type) {
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		return true
	case Int32, Int64, Double, Decimal128:
		return true
	default:
		return false
	}
}

package userstore

// FieldType is the closed set of storage types a user property column can have.
// Scalar types have an array counterpart for multi-valued properties.
type FieldType int

const (
	FieldTypeInvalid FieldType = iota
	FieldTypeString
	FieldTypeLong
	FieldTypeDouble
	FieldTypeBoolean
	FieldTypeTimestamp
	FieldTypeStringArray
	FieldTypeLongArray
	FieldTypeDoubleArray
	FieldTypeBooleanArray
)

// String returns the canonical name of the field type.
func (t FieldType) String() string {
	switch t {
	case FieldTypeString:
		return "STRING"
	case FieldTypeLong:
		return "LONG"
	case FieldTypeDouble:
		return "DOUBLE"
	case FieldTypeBoolean:
		return "BOOLEAN"
	case FieldTypeTimestamp:
		return "TIMESTAMP"
	case FieldTypeStringArray:
		return "ARRAY_STRING"
	case FieldTypeLongArray:
		return "ARRAY_LONG"
	case FieldTypeDoubleArray:
		return "ARRAY_DOUBLE"
	case FieldTypeBooleanArray:
		return "ARRAY_BOOLEAN"
	default:
		return "INVALID"
	}
}

// IsArray reports whether the field type is an array type.
func (t FieldType) IsArray() bool {
	switch t {
	case FieldTypeStringArray, FieldTypeLongArray, FieldTypeDoubleArray, FieldTypeBooleanArray:
		return true
	default:
		return false
	}
}

// Elem returns the element type of an array field type, or the type itself for scalars.
func (t FieldType) Elem() FieldType {
	switch t {
	case FieldTypeStringArray:
		return FieldTypeString
	case FieldTypeLongArray:
		return FieldTypeLong
	case FieldTypeDoubleArray:
		return FieldTypeDouble
	case FieldTypeBooleanArray:
		return FieldTypeBoolean
	default:
		return t
	}
}

// Column describes one resolved column of a tenant's user table.
type Column struct {
	Name   string    `json:"name"`
	Type   FieldType `json:"type"`
	Unique bool      `json:"unique"`
}

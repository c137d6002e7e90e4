package domain

import (
	"database/sql/driver"
	"fmt"
)

// RawJSON is an opaque JSON document stored as-is in a jsonb column.
// An empty value is persisted as NULL and rendered as null.
type RawJSON []byte

// Value implements driver.Valuer
func (j RawJSON) Value() (driver.Value, error) {
	if len(j) == 0 {
		return nil, nil
	}
	return string(j), nil
}

// Scan implements sql.Scanner
func (j *RawJSON) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*j = nil
	case []byte:
		*j = append(RawJSON(nil), v...)
	case string:
		*j = RawJSON(v)
	default:
		return fmt.Errorf("cannot scan %T into RawJSON", src)
	}
	return nil
}

// MarshalJSON implements json.Marshaler
func (j RawJSON) MarshalJSON() ([]byte, error) {
	if len(j) == 0 {
		return []byte("null"), nil
	}
	return j, nil
}

// UnmarshalJSON implements json.Unmarshaler
func (j *RawJSON) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*j = nil
		return nil
	}
	*j = append(RawJSON(nil), data...)
	return nil
}

// IsEmpty reports whether no document is stored
func (j RawJSON) IsEmpty() bool {
	return len(j) == 0 || string(j) == "null"
}

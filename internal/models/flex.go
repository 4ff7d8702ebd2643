package models

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// FlexInt decodes an integer sent either as a JSON number or a string.
// Anything else decodes to zero instead of failing the whole payload.
type FlexInt int

// UnmarshalJSON implements json.Unmarshaler
func (f *FlexInt) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*f = 0
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err == nil {
		if i, err := n.Int64(); err == nil {
			*f = FlexInt(i)
			return nil
		}
		if fl, err := n.Float64(); err == nil {
			*f = FlexInt(int(fl))
			return nil
		}
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if i, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
			*f = FlexInt(i)
			return nil
		}
	}

	*f = 0
	return nil
}

// FlexFloat decodes a float sent either as a JSON number or a string.
// Malformed values decode to nil.
type FlexFloat struct {
	Value *float64
}

// UnmarshalJSON implements json.Unmarshaler
func (f *FlexFloat) UnmarshalJSON(data []byte) error {
	f.Value = nil
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}

	var v float64
	if err := json.Unmarshal(data, &v); err == nil {
		f.Value = &v
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		s = strings.TrimSpace(s)
		// MLB stats sends rates like ".287"
		if parsed, err := strconv.ParseFloat(s, 64); err == nil {
			f.Value = &parsed
		}
	}
	return nil
}

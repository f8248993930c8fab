package models

import (
	"encoding/json"
	"strconv"
	"strings"
)

// FlexFloat and FlexInt implement the never-reject ingestion policy:
// numeric fields arriving as strings or as garbage coerce to zero
// instead of failing the whole record. A log that cannot be parsed
// perfectly is still a log worth keeping.

type FlexFloat float64

func (f *FlexFloat) UnmarshalJSON(data []byte) error {
	*f = FlexFloat(coerceFloat(string(data)))
	return nil
}

type FlexInt int64

func (i *FlexInt) UnmarshalJSON(data []byte) error {
	*i = FlexInt(coerceInt(string(data)))
	return nil
}

func coerceFloat(raw string) float64 {
	raw = unquote(raw)
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0
	}
	return v
}

func coerceInt(raw string) int64 {
	raw = unquote(raw)
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		// Accept integral floats like "10.0" before giving up.
		if fv, ferr := strconv.ParseFloat(raw, 64); ferr == nil {
			v = int64(fv)
		} else {
			return 0
		}
	}
	// Sizes are non-negative; a negative value is as malformed as any
	// other garbage and coerces the same way.
	if v < 0 {
		return 0
	}
	return v
}

func unquote(raw string) string {
	raw = strings.TrimSpace(raw)
	if len(raw) >= 2 && raw[0] == '"' && raw[len(raw)-1] == '"' {
		if s, err := strconv.Unquote(raw); err == nil {
			return strings.TrimSpace(s)
		}
	}
	return raw
}

// CoerceFloatString applies the same policy to a textual value, used
// when decoding a record blob back into a LogRecord.
func CoerceFloatString(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return v
}

// CoerceIntString is the integer counterpart of CoerceFloatString.
func CoerceIntString(s string) int64 {
	return coerceInt(strings.TrimSpace(s))
}

var _ json.Unmarshaler = (*FlexFloat)(nil)
var _ json.Unmarshaler = (*FlexInt)(nil)

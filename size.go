package mailcraft

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Size is a pixel dimension such as a font size or padding. The editor and
// the generation service send these as numbers, fractional numbers or CSS
// strings like "32px", so decoding accepts all three. Values that carry no
// usable number (for example "auto") decode to zero.
type Size int

// ParseSize reads a pixel value from s, rounding fractions.
func ParseSize(s string) (Size, bool) {
	s = strings.TrimSpace(strings.ToLower(s))
	s = strings.TrimSpace(strings.TrimSuffix(s, "px"))
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return Size(math.Round(f)), true
}

func (s *Size) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*s = 0
		return nil
	}
	if data[0] == '"' {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		*s, _ = ParseSize(str)
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		// Booleans and objects carry no size.
		*s = 0
		return nil
	}
	*s = Size(math.Round(f))
	return nil
}

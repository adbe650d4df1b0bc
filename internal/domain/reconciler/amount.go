package reconciler

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"unicode"
)

// Amount is a tolerant numeric field from an order document.
//
// Upstream systems send amounts as JSON numbers, numeric strings, MongoDB
// extended-JSON wrappers, or junk. Strings are read up to the end of their
// leading number ("10.00 USD" is 10); a value with no leading number is 0.
// Decoding never fails. Present reports whether the key existed with a
// non-null value.
type Amount struct {
	value   float64
	integer float64
	present bool
}

// NewAmount returns a present amount with the given value.
func NewAmount(v float64) Amount {
	v = finiteOrZero(v)
	return Amount{value: v, integer: math.Trunc(v), present: true}
}

// Float returns the numeric value (0 when missing or non-numeric).
func (a Amount) Float() float64 {
	return a.value
}

// Int returns the integer reading used for quantities: numbers truncate
// toward zero and strings keep only their leading integer ("2.9 units" is 2).
func (a Amount) Int() int64 {
	return int64(a.integer)
}

// Present reports whether the field was set to a non-null value.
func (a Amount) Present() bool {
	return a.present
}

// MarshalJSON writes the amount back as a plain number (null when absent).
func (a Amount) MarshalJSON() ([]byte, error) {
	if !a.present {
		return []byte("null"), nil
	}
	return json.Marshal(a.value)
}

// UnmarshalJSON never returns an error; unparseable values become 0.
func (a *Amount) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*a = Amount{}
		return nil
	}

	*a = Amount{present: true}

	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err == nil {
			a.value = parseNumber(s)
			a.integer = parseInteger(s)
		}
	case '{':
		inner := parseExtendedJSONNumber(data)
		a.value, a.integer = inner.value, inner.integer
	case '[', 't', 'f':
		// arrays and booleans coerce to 0
	default:
		a.value = parseNumber(string(data))
		a.integer = math.Trunc(a.value)
	}
	return nil
}

// parseExtendedJSONNumber handles {"$numberDecimal": "12.30"} and friends,
// which appear when embedded Mongo documents are rendered as JSON.
func parseExtendedJSONNumber(data []byte) Amount {
	var wrapper map[string]json.RawMessage
	if err := json.Unmarshal(data, &wrapper); err != nil {
		return Amount{}
	}
	for _, key := range []string{"$numberDecimal", "$numberDouble", "$numberInt", "$numberLong"} {
		raw, ok := wrapper[key]
		if !ok {
			continue
		}
		var inner Amount
		_ = inner.UnmarshalJSON(raw)
		return inner
	}
	return Amount{}
}

// parseNumber reads the leading decimal number of s: optional sign, digits
// with an optional fraction, and an optional exponent. Trailing text is
// ignored. No leading number, or one out of float64 range, yields 0.
func parseNumber(s string) float64 {
	s = strings.TrimLeftFunc(s, unicode.IsSpace)

	i := 0
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		i++
	}
	digits := 0
	for ; i < len(s) && isDigit(s[i]); i++ {
		digits++
	}
	if i < len(s) && s[i] == '.' {
		i++
		for ; i < len(s) && isDigit(s[i]); i++ {
			digits++
		}
	}
	if digits == 0 {
		return 0
	}
	end := i

	// An exponent only counts when it has digits.
	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		j := i + 1
		if j < len(s) && (s[j] == '+' || s[j] == '-') {
			j++
		}
		k := j
		for ; k < len(s) && isDigit(s[k]); k++ {
		}
		if k > j {
			end = k
		}
	}

	f, err := strconv.ParseFloat(s[:end], 64)
	if err != nil {
		return 0
	}
	return finiteOrZero(f)
}

// parseInteger reads the leading integer of s, in hex when prefixed with
// 0x. Anything after the digits, including a fraction, is ignored.
func parseInteger(s string) float64 {
	s = strings.TrimLeftFunc(s, unicode.IsSpace)

	sign := 1.0
	if s != "" && (s[0] == '+' || s[0] == '-') {
		if s[0] == '-' {
			sign = -1
		}
		s = s[1:]
	}

	if len(s) > 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		end := 2
		for ; end < len(s) && isHexDigit(s[end]); end++ {
		}
		n, err := strconv.ParseUint(s[2:end], 16, 64)
		if err != nil {
			return 0
		}
		return sign * float64(n)
	}

	end := 0
	for ; end < len(s) && isDigit(s[end]); end++ {
	}
	if end == 0 {
		return 0
	}
	f, err := strconv.ParseFloat(s[:end], 64)
	if err != nil {
		return 0
	}
	return sign * finiteOrZero(f)
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isHexDigit(c byte) bool {
	return isDigit(c) || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

func finiteOrZero(f float64) float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

// Text is a tolerant identifier field: strings are kept, numbers are kept
// in their literal form, and everything else reads as empty.
type Text string

// UnmarshalJSON never returns an error.
func (t *Text) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	*t = ""
	if len(data) == 0 {
		return nil
	}
	switch {
	case data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err == nil {
			*t = Text(s)
		}
	case data[0] == '-' || (data[0] >= '0' && data[0] <= '9'):
		*t = Text(data)
	}
	return nil
}

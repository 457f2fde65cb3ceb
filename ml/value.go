package ml

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

type ValueKind uint8

const (
	Missing ValueKind = iota
	Number
	Text
)

func (k ValueKind) String() string {
	switch k {
	case Number:
		return "number"
	case Text:
		return "text"
	default:
		return "missing"
	}
}

// Value is one raw feature cell as it arrived on the wire.
type Value struct {
	kind ValueKind
	num  float64
	text string
}

// FeatureMap is the raw name to value input of a single prediction.
type FeatureMap map[string]Value

func NumberValue(f float64) Value {
	return Value{kind: Number, num: f}
}

func TextValue(s string) Value {
	return Value{kind: Text, text: s}
}

func MissingValue() Value {
	return Value{}
}

func (v Value) Kind() ValueKind {
	return v.kind
}

// Float coerces the value to a finite number. Anything that does not parse,
// and any NaN or Inf, becomes 0.
func (v Value) Float() float64 {
	switch v.kind {
	case Number:
		return finiteOrZero(v.num)
	case Text:
		return parseDecimal(v.text)
	default:
		return 0
	}
}

// parseDecimal accepts plain decimal notation only; hex literals and digit
// separators that strconv would otherwise read are treated as garbage.
func parseDecimal(s string) float64 {
	s = strings.TrimSpace(s)
	digits := strings.TrimPrefix(strings.TrimPrefix(s, "-"), "+")
	if strings.HasPrefix(digits, "0x") || strings.HasPrefix(digits, "0X") || strings.ContainsRune(s, '_') {
		return 0
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return finiteOrZero(f)
}

func (v Value) String() string {
	switch v.kind {
	case Number:
		return strconv.FormatFloat(v.num, 'g', -1, 64)
	case Text:
		return v.text
	default:
		return ""
	}
}

// UnmarshalJSON never fails on well-formed JSON: booleans become 1/0,
// null, arrays and objects become Missing.
func (v *Value) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	*v = Value{}
	if len(data) == 0 {
		return nil
	}
	switch data[0] {
	case 'n', '[', '{':
		return nil
	case 't':
		*v = NumberValue(1)
		return nil
	case 'f':
		*v = NumberValue(0)
		return nil
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = TextValue(s)
		return nil
	}
	f, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		// out of range literals such as 1e400
		return nil
	}
	*v = NumberValue(f)
	return nil
}

func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case Number:
		if math.IsNaN(v.num) || math.IsInf(v.num, 0) {
			return []byte("null"), nil
		}
		return []byte(strconv.FormatFloat(v.num, 'g', -1, 64)), nil
	case Text:
		return json.Marshal(v.text)
	default:
		return []byte("null"), nil
	}
}

func finiteOrZero(f float64) float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

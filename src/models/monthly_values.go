package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// MonthValue is the amount of one month column.
type MonthValue struct {
	Month string
	Value float64
}

// MonthlyValues maps month labels to amounts while keeping header order.
// It encodes to a JSON object whose keys follow that order.
type MonthlyValues []MonthValue

// Get returns the value for month. Labels are compared case-insensitively.
func (m MonthlyValues) Get(month string) (float64, bool) {
	for _, mv := range m {
		if mv.Month == month {
			return mv.Value, true
		}
	}
	for _, mv := range m {
		if strings.EqualFold(mv.Month, month) {
			return mv.Value, true
		}
	}
	return 0, false
}

// Set replaces the value of month or appends it at the end.
func (m *MonthlyValues) Set(month string, value float64) {
	for i := range *m {
		if (*m)[i].Month == month {
			(*m)[i].Value = value
			return
		}
	}
	*m = append(*m, MonthValue{Month: month, Value: value})
}

// Values returns the amounts in header order.
func (m MonthlyValues) Values() []float64 {
	out := make([]float64, len(m))
	for i, mv := range m {
		out[i] = mv.Value
	}
	return out
}

// Clone returns a copy of m.
func (m MonthlyValues) Clone() MonthlyValues {
	if m == nil {
		return nil
	}
	return append(MonthlyValues(nil), m...)
}

func (m MonthlyValues) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, mv := range m {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(mv.Month)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(mv.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (m *MonthlyValues) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*m = nil
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("monthly values: expected object, got %v", tok)
	}
	out := MonthlyValues{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		month, ok := tok.(string)
		if !ok {
			return fmt.Errorf("monthly values: expected month key, got %v", tok)
		}
		var value float64
		if err := dec.Decode(&value); err != nil {
			return fmt.Errorf("monthly values: month %q: %w", month, err)
		}
		out = append(out, MonthValue{Month: month, Value: value})
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*m = out
	return nil
}

package model

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Column maps a record field key to the label shown in the table header.
type Column struct {
	Key   string
	Label string
}

// ColumnFormat is an ordered field-key -> label mapping. Order is column order.
// On the wire it is a JSON object whose members keep that order.
type ColumnFormat []Column

// Labels returns the labels in column order.
func (f ColumnFormat) Labels() []string {
	labels := make([]string, len(f))
	for i, c := range f {
		labels[i] = c.Label
	}
	return labels
}

func (f ColumnFormat) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, c := range f {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(c.Key)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(c.Label)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (f *ColumnFormat) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("column format: %w", err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("column format: expected object, got %v", tok)
	}

	var out ColumnFormat
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("column format: %w", err)
		}
		key, _ := keyTok.(string)
		var label string
		if err := dec.Decode(&label); err != nil {
			return fmt.Errorf("column format: label for %q: %w", key, err)
		}
		out = append(out, Column{Key: key, Label: label})
	}
	if _, err := dec.Token(); err != nil {
		return fmt.Errorf("column format: %w", err)
	}

	*f = out
	return nil
}

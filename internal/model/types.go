package model

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrMissingField is returned when a server reply lacks a required field.
var ErrMissingField = errors.New("missing field")

// Record is one product row as returned by the server, keyed by column label.
type Record map[string]any

// Text returns the display text stored under key, or "" when absent.
func (r Record) Text(key string) string {
	v, ok := r[key]
	if !ok || v == nil {
		return ""
	}
	switch val := v.(type) {
	case string:
		return val
	case json.Number:
		return val.String()
	case fmt.Stringer:
		return val.String()
	default:
		return fmt.Sprint(val)
	}
}

// PageRequest is the body of a paginated product query.
type PageRequest struct {
	DesiredResultsFormat ColumnFormat `json:"desiredResultsFormat"`
	PageNumber           int          `json:"pageNumber"`
	RowsPerPage          int          `json:"rowsPerPage"`
}

// ProductPage is one page of products plus the total page count.
type ProductPage struct {
	Products      []Record `json:"products"`
	NumberOfPages int      `json:"numberOfPages"`
}

// ReferenceCheck is the server verdict on a product reference.
type ReferenceCheck struct {
	Valid    bool         `json:"ref_validity"`
	Messages MessageBatch `json:"messages_object"`
}

func (r *ReferenceCheck) UnmarshalJSON(data []byte) error {
	var wire struct {
		Valid    *bool         `json:"ref_validity"`
		Messages *MessageBatch `json:"messages_object"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	switch {
	case wire.Valid == nil:
		return fmt.Errorf("%w: ref_validity", ErrMissingField)
	case wire.Messages == nil:
		return fmt.Errorf("%w: messages_object", ErrMissingField)
	}
	r.Valid = *wire.Valid
	r.Messages = *wire.Messages
	return nil
}

// ProductForm carries the raw add-product form fields.
type ProductForm struct {
	Name      string
	Price     string
	Reference string
}

package model

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrUnknownCategory is returned when a message batch names a category
// outside the closed {error, success} set.
var ErrUnknownCategory = errors.New("unknown message category")

// Category classifies a message batch and selects the message box it merges into.
type Category int

const (
	CategoryError Category = iota
	CategorySuccess
)

func (c Category) String() string {
	switch c {
	case CategoryError:
		return "error"
	case CategorySuccess:
		return "success"
	default:
		return fmt.Sprintf("Category(%d)", int(c))
	}
}

// ParseCategory maps the wire name of a category to its value.
func ParseCategory(s string) (Category, error) {
	switch s {
	case "error":
		return CategoryError, nil
	case "success":
		return CategorySuccess, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownCategory, s)
}

func (c Category) MarshalJSON() ([]byte, error) {
	switch c {
	case CategoryError, CategorySuccess:
		return json.Marshal(c.String())
	}
	return nil, fmt.Errorf("%w: %d", ErrUnknownCategory, int(c))
}

func (c *Category) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("category: %w", err)
	}
	parsed, err := ParseCategory(s)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// MessageBatch is a group of messages of one category produced by the server.
// The zero value is an empty error batch. Decoding rejects a missing or
// unknown category.
type MessageBatch struct {
	Category Category `json:"category"`
	Messages []string `json:"messages"`
}

func (b *MessageBatch) UnmarshalJSON(data []byte) error {
	var wire struct {
		Category *Category `json:"category"`
		Messages []string  `json:"messages"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	if wire.Category == nil {
		return fmt.Errorf("%w: category missing", ErrUnknownCategory)
	}
	b.Category = *wire.Category
	b.Messages = wire.Messages
	return nil
}

// ErrorBatch builds an error batch.
func ErrorBatch(messages ...string) MessageBatch {
	return MessageBatch{Category: CategoryError, Messages: messages}
}

// SuccessBatch builds a success batch.
func SuccessBatch(messages ...string) MessageBatch {
	return MessageBatch{Category: CategorySuccess, Messages: messages}
}

// NewMessageBatch validates a wire category name and builds the batch.
func NewMessageBatch(category string, messages []string) (MessageBatch, error) {
	c, err := ParseCategory(category)
	if err != nil {
		return MessageBatch{}, err
	}
	return MessageBatch{Category: c, Messages: messages}, nil
}

package model

import (
	"errors"
	"math"
	"strconv"
	"strings"
)

// MaxPrice is the largest price the catalogue can store (DECIMAL(12, 2)).
const MaxPrice = 9999999999.99

// ErrInvalidPrice is returned for a price that is not a finite, non-negative
// number within MaxPrice.
var ErrInvalidPrice = errors.New("invalid price")

// ParsePrice parses a form price. NaN, infinities, negatives and values
// above MaxPrice are rejected.
func ParsePrice(s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v < 0 || v > MaxPrice {
		return 0, ErrInvalidPrice
	}
	return v, nil
}

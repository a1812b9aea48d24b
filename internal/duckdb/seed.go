package duckdb

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"

	"gopkg.in/yaml.v3"
)

// ProductSeed is one fixture entry.
type ProductSeed struct {
	Name      string  `yaml:"name"`
	Price     float64 `yaml:"price"`
	Reference string  `yaml:"reference"`
}

type seedFile struct {
	Products []ProductSeed `yaml:"products"`
}

// LoadSeed reads a YAML fixture of the form:
//
//	products:
//	  - name: Hex bolt M6
//	    price: 0.12
//	    reference: HB-M6
func LoadSeed(path string) ([]ProductSeed, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed %s: %w", path, err)
	}
	var f seedFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse seed %s: %w", path, err)
	}
	return f.Products, nil
}

// SeedProducts inserts seeds in order, skipping references that already
// exist. It returns how many products were inserted.
func (s *Store) SeedProducts(ctx context.Context, seeds []ProductSeed) (int, error) {
	inserted := 0
	for _, p := range seeds {
		_, err := s.CreateProduct(ctx, p.Name, p.Price, p.Reference)
		switch {
		case errors.Is(err, ErrDuplicateReference):
			log.Printf("duckdb: seed skipped existing reference %q", p.Reference)
		case err != nil:
			return inserted, fmt.Errorf("seed %q: %w", p.Reference, err)
		default:
			inserted++
		}
	}
	return inserted, nil
}

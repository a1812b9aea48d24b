// Package inventory talks to the upstream inventory service over HTTP.
package inventory

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tinytelemetry/stockroom/internal/model"
)

// Endpoint paths exposed by the inventory service.
const (
	PathHost            = "/utils/host"
	PathCheckReference  = "/products/check_reference"
	PathCreateProduct   = "/products/create"
	PathProductsPage    = "/products/get_all_paginated"
	RequestIDHeader     = "X-Request-ID"
	maxErrorBodyPreview = 256
)

// Client implements model.InventoryAPI over HTTP.
type Client struct {
	baseURL string
	http    *http.Client
}

var _ model.InventoryAPI = (*Client)(nil)

// NewClient creates a client for the service rooted at baseURL.
// A zero timeout leaves requests bounded only by their context.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// Host asks the service for the host name it is reachable under.
func (c *Client) Host(ctx context.Context) (string, error) {
	var resp struct {
		Host string `json:"host"`
	}
	if err := c.do(ctx, http.MethodGet, PathHost, "", nil, &resp); err != nil {
		return "", err
	}
	if resp.Host == "" {
		return "", fmt.Errorf("inventory: %s: empty host", PathHost)
	}
	return resp.Host, nil
}

// CheckReference asks whether a product reference is still free.
func (c *Client) CheckReference(ctx context.Context, reference string) (model.ReferenceCheck, error) {
	form := url.Values{}
	form.Set("reference", reference)

	var resp model.ReferenceCheck
	err := c.do(ctx, http.MethodPost, PathCheckReference,
		"application/x-www-form-urlencoded", strings.NewReader(form.Encode()), &resp)
	if err != nil {
		return model.ReferenceCheck{}, err
	}
	return resp, nil
}

// CreateProduct submits the add-product form and returns the server's messages.
func (c *Client) CreateProduct(ctx context.Context, p model.ProductForm) (model.MessageBatch, error) {
	form := url.Values{}
	form.Set("name", p.Name)
	form.Set("price", p.Price)
	form.Set("reference", p.Reference)

	var resp model.MessageBatch
	err := c.do(ctx, http.MethodPost, PathCreateProduct,
		"application/x-www-form-urlencoded", strings.NewReader(form.Encode()), &resp)
	if err != nil {
		return model.MessageBatch{}, err
	}
	return resp, nil
}

// ProductsPage fetches one page of products shaped by req.DesiredResultsFormat.
func (c *Client) ProductsPage(ctx context.Context, req model.PageRequest) (model.ProductPage, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return model.ProductPage{}, fmt.Errorf("inventory: marshal page request: %w", err)
	}

	var resp model.ProductPage
	if err := c.do(ctx, http.MethodPost, PathProductsPage, "application/json", bytes.NewReader(body), &resp); err != nil {
		return model.ProductPage{}, err
	}
	return resp, nil
}

// do performs one request and decodes the JSON reply into dest.
func (c *Client) do(ctx context.Context, method, path, contentType string, body io.Reader, dest any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("inventory: build %s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(RequestIDHeader, uuid.NewString())
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("inventory: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		preview, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyPreview))
		return fmt.Errorf("inventory: %s %s: status %d: %s", method, path, resp.StatusCode, bytes.TrimSpace(preview))
	}

	dec := json.NewDecoder(resp.Body)
	dec.UseNumber()
	if err := dec.Decode(dest); err != nil {
		return fmt.Errorf("inventory: decode %s: %w", path, err)
	}
	return nil
}

package model

import "context"

// InventoryAPI is the upstream inventory service as seen by the client.
type InventoryAPI interface {
	Host(ctx context.Context) (string, error)
	CheckReference(ctx context.Context, reference string) (ReferenceCheck, error)
	CreateProduct(ctx context.Context, form ProductForm) (MessageBatch, error)
	ProductsPage(ctx context.Context, req PageRequest) (ProductPage, error)
}

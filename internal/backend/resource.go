package backend

import (
	"context"
	"fmt"
)

// Resource exposes the collaborator's per-entity operations for one record
// type. The path shapes follow the collaborator's convention, e.g.
// GET /supplier/find_supplier_id/{id} and POST /supplier/create_supplier.
type Resource[T any] struct {
	client *Client
	name   string
}

// NewResource binds a record type to its entity name on the collaborator.
func NewResource[T any](client *Client, name string) *Resource[T] {
	return &Resource[T]{client: client, name: name}
}

// List fetches all records.
func (r *Resource[T]) List(ctx context.Context) ([]T, error) {
	var out []T
	if err := r.client.get(ctx, "/"+r.name, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Find fetches a single record by id.
func (r *Resource[T]) Find(ctx context.Context, id string) (T, error) {
	var out T
	path := fmt.Sprintf("/%s/find_%s_id/%s", r.name, r.name, escape(id))
	if err := r.client.get(ctx, path, &out); err != nil {
		return out, err
	}
	return out, nil
}

// Create persists a new record and returns the created payload.
func (r *Resource[T]) Create(ctx context.Context, record T) (T, error) {
	var out T
	path := fmt.Sprintf("/%s/create_%s", r.name, r.name)
	if err := r.client.send(ctx, "POST", path, record, &out); err != nil {
		return out, err
	}
	return out, nil
}

// Update replaces a record wholesale. Partial patches are not part of the
// contract.
func (r *Resource[T]) Update(ctx context.Context, id string, record T) (T, error) {
	var out T
	path := fmt.Sprintf("/%s/update_%s/%s", r.name, r.name, escape(id))
	if err := r.client.send(ctx, "PUT", path, record, &out); err != nil {
		return out, err
	}
	return out, nil
}

// Delete soft-deletes a record; the collaborator flips its status flag rather
// than removing the row.
func (r *Resource[T]) Delete(ctx context.Context, id string) error {
	path := fmt.Sprintf("/%s/delete_%s/%s", r.name, r.name, escape(id))
	return r.client.send(ctx, "DELETE", path, nil, nil)
}

// IDExists asks whether an identifier is already taken.
func (r *Resource[T]) IDExists(ctx context.Context, id string) (bool, error) {
	var out bool
	path := fmt.Sprintf("/%s/%s_id_exists/%s", r.name, r.name, escape(id))
	if err := r.client.get(ctx, path, &out); err != nil {
		return false, err
	}
	return out, nil
}

// Package repository turns raw blobs from a storage backend into the invoice
// collection and back.
package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"tmsbilling/internal/domain"
	"tmsbilling/internal/port"
)

type invoiceStore struct {
	blobs port.BlobStore
	key   string
	log   logrus.FieldLogger
}

// NewInvoiceStore creates an InvoiceStore persisting the whole collection
// under key in blobs.
func NewInvoiceStore(blobs port.BlobStore, key string, log logrus.FieldLogger) port.InvoiceStore {
	return &invoiceStore{blobs: blobs, key: key, log: log.WithField("module", "invoiceStore")}
}

func (s *invoiceStore) Load(ctx context.Context) (*domain.Store, error) {
	data, err := s.blobs.Get(ctx, s.key)
	if errors.Is(err, port.ErrBlobNotFound) {
		return emptyStore(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("invoiceStore.Load: %w", err)
	}

	store, err := Decode(data)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"key":   s.key,
			"bytes": len(data),
		}).WithError(err).Warn("invoiceStore.Load: falling back to empty store")
		return emptyStore(), nil
	}
	return store, nil
}

func (s *invoiceStore) Save(ctx context.Context, store *domain.Store) error {
	data, err := Encode(store)
	if err != nil {
		return fmt.Errorf("invoiceStore.Save: %w", err)
	}
	if err := s.blobs.Put(ctx, s.key, data); err != nil {
		return fmt.Errorf("invoiceStore.Save: %w", err)
	}
	return nil
}

// Decode parses a stored blob. Empty input is an empty store; anything that
// is not a {"invoices": [...]} object is ErrStorageCorrupt.
func Decode(data []byte) (*domain.Store, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return emptyStore(), nil
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrStorageCorrupt, err)
	}

	store := emptyStore()
	invoices, ok := raw["invoices"]
	if !ok || bytes.Equal(bytes.TrimSpace(invoices), []byte("null")) {
		return store, nil
	}
	if err := json.Unmarshal(invoices, &store.Invoices); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrStorageCorrupt, err)
	}
	for i := range store.Invoices {
		inv := &store.Invoices[i]
		if inv.Items == nil {
			inv.Items = []domain.InvoiceItem{}
		}
		if inv.Payments == nil {
			inv.Payments = []domain.Payment{}
		}
	}
	return store, nil
}

// Encode serializes a store. A nil store encodes as an empty collection.
func Encode(store *domain.Store) ([]byte, error) {
	if store == nil {
		store = emptyStore()
	}
	out := domain.Store{Invoices: store.Invoices}
	if out.Invoices == nil {
		out.Invoices = []domain.Invoice{}
	}
	return json.Marshal(out)
}

func emptyStore() *domain.Store {
	return &domain.Store{Invoices: []domain.Invoice{}}
}

package file

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tmsbilling/internal/port"
)

func TestBlobStore_GetMissing(t *testing.T) {
	s, err := NewBlobStore(t.TempDir())
	require.NoError(t, err)

	_, err = s.Get(context.Background(), "tms_billing_store")

	assert.ErrorIs(t, err, port.ErrBlobNotFound)
}

func TestBlobStore_PutGet(t *testing.T) {
	dir := t.TempDir()
	s, err := NewBlobStore(dir)
	require.NoError(t, err)

	require.NoError(t, s.Put(context.Background(), "tms_billing_store", []byte(`{"invoices":[]}`)))
	require.NoError(t, s.Put(context.Background(), "tms_billing_store", []byte(`{"invoices":[{}]}`)))

	got, err := s.Get(context.Background(), "tms_billing_store")
	require.NoError(t, err)
	assert.Equal(t, `{"invoices":[{}]}`, string(got))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestBlobStore_SanitizesKey(t *testing.T) {
	dir := t.TempDir()
	s, err := NewBlobStore(dir)
	require.NoError(t, err)

	require.NoError(t, s.Put(context.Background(), "../escape/key", []byte("x")))

	_, err = os.Stat(filepath.Join(dir, ".._escape_key.json"))
	assert.NoError(t, err)
	assert.NoError(t, s.Ping(context.Background()))
}

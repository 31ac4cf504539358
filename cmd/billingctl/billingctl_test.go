package main

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tmsbilling/internal/logger"
	"tmsbilling/internal/repository"
	"tmsbilling/internal/repository/memory"
	"tmsbilling/internal/service"
)

var fixedNow = time.Date(2025, time.June, 10, 11, 0, 0, 0, time.UTC)

func newTestApp(t *testing.T) (*app, *bytes.Buffer) {
	t.Helper()
	out := &bytes.Buffer{}
	a := newApp(out)
	store := repository.NewInvoiceStore(memory.NewBlobStore(), "tms_billing_store", logger.Discard())
	a.invoices = service.NewInvoiceService(store, memory.NewLocker(), service.InvoiceServiceConfig{
		LockKey: "tms_billing_store",
		Now:     func() time.Time { return fixedNow },
	}, logger.Discard())
	return a, out
}

func run(t *testing.T, a *app, args ...string) error {
	t.Helper()
	cmd := newRootCmd(a)
	cmd.SetArgs(args)
	cmd.SetOut(a.out)
	cmd.SetErr(a.out)
	return cmd.ExecuteContext(context.Background())
}

func TestParseItem(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		desc    string
		amount  float64
		wantErr bool
	}{
		{name: "simple", raw: "Linehaul=48000", desc: "Linehaul", amount: 48000},
		{name: "last equals splits", raw: "Toll a=b=250.5", desc: "Toll a=b", amount: 250.5},
		{name: "trims spaces", raw: " Loading = 1500 ", desc: "Loading", amount: 1500},
		{name: "no separator", raw: "Loading", wantErr: true},
		{name: "empty description", raw: "=100", wantErr: true},
		{name: "bad amount", raw: "Loading=abc", wantErr: true},
		{name: "nan amount", raw: "Loading=NaN", wantErr: true},
		{name: "infinite amount", raw: "Loading=+Inf", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item, err := parseItem(tt.raw)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.desc, item.Description)
			assert.InDelta(t, tt.amount, item.Amount, 0.0001)
		})
	}
}

func TestCreateListAndPay(t *testing.T) {
	a, out := newTestApp(t)

	require.NoError(t, run(t, a, "next-number"))
	assert.Equal(t, "INV-2025-0001\n", out.String())
	out.Reset()

	require.NoError(t, run(t, a, "create", "--booking", "BK-1", "--due", "2025-07-01",
		"--item", "Linehaul=1000", "--item", "Loading=500"))
	assert.Contains(t, out.String(), "created INV-2025-0001")
	assert.Contains(t, out.String(), "₹1,500.00")
	out.Reset()

	invoices, err := a.invoices.List(context.Background(), service.ListFilter{})
	require.NoError(t, err)
	require.Len(t, invoices, 1)

	require.NoError(t, run(t, a, "pay", invoices[0].ID.String(), "--amount", "1500", "--method", "NEFT", "--date", "2025-06-09"))
	assert.Equal(t, "INV-2025-0001 is Paid, balance ₹0.00\n", out.String())
	out.Reset()

	require.NoError(t, run(t, a, "list", "--status", "Paid"))
	assert.Contains(t, out.String(), "NUMBER")
	assert.Contains(t, out.String(), "INV-2025-0001")
	out.Reset()

	require.NoError(t, run(t, a, "list", "--status", "Unpaid"))
	assert.NotContains(t, out.String(), "INV-2025-0001")
}

func TestList_InvalidStatus(t *testing.T) {
	a, _ := newTestApp(t)
	err := run(t, a, "list", "--status", "Cancelled")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid --status")
}

func TestPay_InvalidID(t *testing.T) {
	a, _ := newTestApp(t)
	err := run(t, a, "pay", "not-a-uuid", "--amount", "10")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid invoice id")
}

func TestPay_NonFiniteAmount(t *testing.T) {
	a, _ := newTestApp(t)
	require.NoError(t, run(t, a, "create", "--booking", "BK-1", "--due", "2025-07-01", "--item", "Linehaul=1000"))
	invoices, err := a.invoices.List(context.Background(), service.ListFilter{})
	require.NoError(t, err)
	require.Len(t, invoices, 1)

	err = run(t, a, "pay", invoices[0].ID.String(), "--amount", "NaN")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "finite")

	got, err := a.invoices.GetByID(context.Background(), invoices[0].ID)
	require.NoError(t, err)
	assert.Empty(t, got.Payments)
}

func TestCreate_MissingFlags(t *testing.T) {
	a, _ := newTestApp(t)
	err := run(t, a, "create", "--booking", "BK-1")
	assert.Error(t, err)
}

func TestExportPDF(t *testing.T) {
	a, out := newTestApp(t)
	dir := t.TempDir()

	img := imaging.New(800, 2400, color.White)
	img = imaging.Overlay(img, imaging.New(800, 100, color.Black), image.Pt(0, 0), 1)
	snapshot := filepath.Join(dir, "invoice.png")
	require.NoError(t, imaging.Save(img, snapshot))

	pdfPath := filepath.Join(dir, "INV-2025-0001.pdf")
	require.NoError(t, run(t, a, "export-pdf", "--snapshot", snapshot, "--width", "800", "--out", pdfPath))
	assert.Contains(t, out.String(), "wrote "+pdfPath)

	data, err := os.ReadFile(pdfPath)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF-")))
}

func TestExportPDF_BadSnapshotRemovesOutput(t *testing.T) {
	a, _ := newTestApp(t)
	dir := t.TempDir()
	snapshot := filepath.Join(dir, "broken.png")
	require.NoError(t, os.WriteFile(snapshot, []byte("not an image"), 0o600))

	pdfPath := filepath.Join(dir, "out.pdf")
	err := run(t, a, "export-pdf", "--snapshot", snapshot, "--width", "800", "--out", pdfPath)
	require.Error(t, err)
	_, statErr := os.Stat(pdfPath)
	assert.True(t, os.IsNotExist(statErr))
}

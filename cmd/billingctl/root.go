package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"tmsbilling/internal/bootstrap"
	"tmsbilling/internal/config"
	"tmsbilling/internal/logger"
	"tmsbilling/internal/service"
)

var version = "0.1.0"

// app holds what every subcommand needs. invoices is opened lazily so
// commands that never touch the store (export-pdf) work without one.
type app struct {
	out      io.Writer
	log      *logrus.Logger
	cfg      *config.Config
	backend  *bootstrap.Backend
	invoices service.InvoiceService
	jsonOut  bool
	verbose  bool
}

func newApp(out io.Writer) *app {
	return &app{out: out, log: logger.Discard()}
}

func (a *app) loadConfig() error {
	if a.cfg != nil {
		return nil
	}
	_ = godotenv.Load()
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	a.cfg = cfg
	if a.verbose {
		a.log = logger.New(cfg.Log)
	}
	return nil
}

func (a *app) invoiceService(ctx context.Context) (service.InvoiceService, error) {
	if a.invoices != nil {
		return a.invoices, nil
	}
	if err := a.loadConfig(); err != nil {
		return nil, err
	}
	backend, err := bootstrap.OpenBackend(ctx, a.cfg, a.log)
	if err != nil {
		return nil, err
	}
	a.backend = backend
	a.invoices = bootstrap.InvoiceService(backend, a.cfg, a.log)
	return a.invoices, nil
}

func (a *app) close() {
	if a.backend != nil {
		if err := a.backend.Close(); err != nil {
			a.log.WithError(err).Warn("closing invoice store")
		}
	}
}

func (a *app) printJSON(v any) error {
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "billingctl",
		Short: "billingctl - manage TMS invoices from the command line",
		Long: `billingctl works directly against the configured invoice store
(TMSBILL_STORE_BACKEND) to list, create and pay invoices, preview the next
invoice number, and turn invoice snapshots into paginated A4 PDFs.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if a.verbose {
				return a.loadConfig()
			}
			return nil
		},
	}
	root.PersistentFlags().BoolVar(&a.jsonOut, "json", false, "print results as JSON")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "log to stdout using TMSBILL_LOG_* settings")

	root.AddCommand(
		newListCmd(a),
		newCreateCmd(a),
		newPayCmd(a),
		newNextNumberCmd(a),
		newExportPDFCmd(a),
	)
	return root
}

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"tmsbilling/internal/bootstrap"
	"tmsbilling/internal/port"
	"tmsbilling/internal/render"
)

func newExportPDFCmd(a *app) *cobra.Command {
	var snapshotPath, outPath string
	var width float64

	cmd := &cobra.Command{
		Use:   "export-pdf",
		Short: "Paginate an invoice snapshot (PNG/JPEG) into an A4 PDF",
		Long: `export-pdf supersamples a rendered invoice snapshot, slices it across
portrait A4 pages and writes the PDF. --width is the CSS pixel width of the
element the snapshot was taken from; it picks the capture scale.`,
		Example: `  billingctl export-pdf --snapshot invoice.png --width 800 --out INV-2025-0001.pdf`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			snapshot, err := os.Open(snapshotPath)
			if err != nil {
				return fmt.Errorf("opening snapshot: %w", err)
			}
			defer snapshot.Close()

			out, err := os.Create(outPath)
			if err != nil {
				return fmt.Errorf("creating output: %w", err)
			}

			exporter := bootstrap.Exporter(a.log)
			res, err := exporter.ExportPDF(cmd.Context(), render.ExportRequest{
				Region:   port.Region{Width: width, Snapshot: snapshot},
				FileName: filepath.Base(outPath),
			}, out)
			if cerr := out.Close(); err == nil {
				err = cerr
			}
			if err != nil {
				_ = os.Remove(outPath)
				return err
			}

			if a.jsonOut {
				return a.printJSON(res)
			}
			fmt.Fprintf(a.out, "wrote %s (%d pages, scale %.2f)\n", outPath, res.Pages, res.Scale)
			return nil
		},
	}
	cmd.Flags().StringVar(&snapshotPath, "snapshot", "", "PNG or JPEG snapshot of the rendered invoice")
	cmd.Flags().Float64Var(&width, "width", 0, "CSS pixel width of the captured element")
	cmd.Flags().StringVarP(&outPath, "out", "o", "invoice.pdf", "output PDF path")
	_ = cmd.MarkFlagRequired("snapshot")
	return cmd
}

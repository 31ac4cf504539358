package main

import (
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"tmsbilling/internal/domain"
	"tmsbilling/internal/finance"
	"tmsbilling/internal/money"
	"tmsbilling/internal/service"
)

func newListCmd(a *app) *cobra.Command {
	var filter service.ListFilter
	var status string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List invoices with derived totals and status",
		Example: `  billingctl list --status Overdue
  billingctl list --query bk-10 --due-from 2025-01-01 --due-to 2025-03-31`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if status != "" {
				filter.Status = domain.InvoiceStatus(status)
				if !domain.ValidStatusFilters[filter.Status] {
					return fmt.Errorf("invalid --status %q: want All, Unpaid, Paid or Overdue", status)
				}
			}
			svc, err := a.invoiceService(cmd.Context())
			if err != nil {
				return err
			}
			invoices, err := svc.List(cmd.Context(), filter)
			if err != nil {
				return err
			}
			if a.jsonOut {
				return a.printJSON(invoices)
			}

			tw := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "NUMBER\tBOOKING\tDUE\tSTATUS\tTOTAL\tPAID\tBALANCE\tID")
			for i := range invoices {
				inv := &invoices[i]
				t := finance.ComputeTotals(inv)
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
					inv.InvoiceNumber, inv.BookingID, inv.DueDate, inv.Status,
					money.FormatINR(t.Total), money.FormatINR(t.Paid), money.FormatINR(t.Balance), inv.ID)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringVar(&status, "status", "", "filter by derived status (All, Unpaid, Paid, Overdue)")
	cmd.Flags().StringVarP(&filter.Query, "query", "q", "", "case-insensitive match on invoice number or booking id")
	cmd.Flags().StringVar(&filter.DueFrom, "due-from", "", "earliest due date, YYYY-MM-DD (inclusive)")
	cmd.Flags().StringVar(&filter.DueTo, "due-to", "", "latest due date, YYYY-MM-DD (inclusive)")
	return cmd
}

// parseItem reads "description=amount". The last '=' separates the amount.
func parseItem(raw string) (service.CreateInvoiceItemInput, error) {
	i := strings.LastIndex(raw, "=")
	if i <= 0 {
		return service.CreateInvoiceItemInput{}, fmt.Errorf("invalid --item %q: want description=amount", raw)
	}
	amount, err := strconv.ParseFloat(strings.TrimSpace(raw[i+1:]), 64)
	if err != nil {
		return service.CreateInvoiceItemInput{}, fmt.Errorf("invalid --item %q: %w", raw, err)
	}
	if !finance.IsFinite(amount) {
		return service.CreateInvoiceItemInput{}, fmt.Errorf("invalid --item %q: amount must be a finite number", raw)
	}
	return service.CreateInvoiceItemInput{Description: strings.TrimSpace(raw[:i]), Amount: amount}, nil
}

func newCreateCmd(a *app) *cobra.Command {
	var input service.CreateInvoiceInput
	var items []string

	cmd := &cobra.Command{
		Use:     "create",
		Short:   "Create an invoice with the next invoice number",
		Example: `  billingctl create --booking BK-1042 --due 2025-07-31 --item "Linehaul Pune-Delhi=48000" --item "Loading=1500"`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, raw := range items {
				item, err := parseItem(raw)
				if err != nil {
					return err
				}
				input.Items = append(input.Items, item)
			}
			svc, err := a.invoiceService(cmd.Context())
			if err != nil {
				return err
			}
			inv, err := svc.Create(cmd.Context(), input)
			if err != nil {
				return err
			}
			if a.jsonOut {
				return a.printJSON(inv)
			}
			fmt.Fprintf(a.out, "created %s (%s) total %s\n", inv.InvoiceNumber, inv.ID, money.FormatINR(inv.TotalAmount))
			return nil
		},
	}
	cmd.Flags().StringVar(&input.BookingID, "booking", "", "booking id the invoice bills")
	cmd.Flags().StringVar(&input.DueDate, "due", "", "due date, YYYY-MM-DD")
	cmd.Flags().StringArrayVar(&items, "item", nil, `line item as "description=amount" (repeatable)`)
	_ = cmd.MarkFlagRequired("booking")
	_ = cmd.MarkFlagRequired("due")
	return cmd
}

func newPayCmd(a *app) *cobra.Command {
	var input service.RecordPaymentInput
	var method string

	cmd := &cobra.Command{
		Use:     "pay <invoice-id>",
		Short:   "Record a payment against an invoice",
		Example: `  billingctl pay 0b7c...e1 --amount 25000 --method NEFT --date 2025-06-10`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid invoice id %q: %w", args[0], err)
			}
			if !finance.IsFinite(input.Amount) {
				return fmt.Errorf("invalid --amount %v: must be a finite number", input.Amount)
			}
			input.PaymentMethod = domain.PaymentMethod(method)
			if !input.PaymentMethod.IsKnown() {
				a.log.WithField("method", method).Warn("recording payment with an unlisted method")
			}

			svc, err := a.invoiceService(cmd.Context())
			if err != nil {
				return err
			}
			inv, err := svc.RecordPayment(cmd.Context(), id, input)
			if err != nil {
				return err
			}
			if a.jsonOut {
				return a.printJSON(inv)
			}
			t := finance.ComputeTotals(inv)
			fmt.Fprintf(a.out, "%s is %s, balance %s\n", inv.InvoiceNumber, inv.Status, money.FormatINR(t.Balance))
			return nil
		},
	}
	cmd.Flags().Float64Var(&input.Amount, "amount", 0, "amount received")
	cmd.Flags().StringVar(&method, "method", string(domain.PaymentMethodUPI), "payment method (UPI, NEFT, COD, Card, Cash, Cheque, or any other label)")
	cmd.Flags().StringVar(&input.PaymentDate, "date", "", "payment date, RFC 3339 or YYYY-MM-DD (default now)")
	_ = cmd.MarkFlagRequired("amount")
	return cmd
}

func newNextNumberCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "next-number",
		Short: "Preview the invoice number the next create would allocate",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.invoiceService(cmd.Context())
			if err != nil {
				return err
			}
			next, err := svc.NextInvoiceNumber(cmd.Context())
			if err != nil {
				return err
			}
			if a.jsonOut {
				return a.printJSON(map[string]string{"invoice_number": next})
			}
			fmt.Fprintln(a.out, next)
			return nil
		},
	}
}

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dmitrijs2005/invoicekeeper/internal/client/models"
	"github.com/dmitrijs2005/invoicekeeper/internal/client/staging"
)

var errNotLoggedIn = errors.New("please login first")

const previewWait = 2 * time.Second

func writeRows(w io.Writer, rows []models.InvoiceRow) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSERIAL\tDEVICE\tCUSTOMER\tDATE\tAMOUNT")
	for _, r := range rows {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n", r.ID, r.Serial, r.Device, r.Customer, r.Date, r.Amount)
	}
	_ = tw.Flush()
}

func (a *App) printInvoices(list []models.Invoice) {
	if a.sync.Demo() {
		fmt.Fprintln(a.out, "(demonstration data)")
	}
	if len(list) == 0 {
		fmt.Fprintln(a.out, "No invoices found.")
		return
	}
	writeRows(a.out, models.Rows(list))
}

// List prints the cached invoices.
func (a *App) List(ctx context.Context) error {
	a.printInvoices(a.sync.Snapshot())
	return nil
}

// Search filters the cached invoices by serial, device and customer.
func (a *App) Search(ctx context.Context) error {
	var c models.SearchCriteria
	var err error

	if c.Serial, err = GetSimpleText(a.reader, "Serial number contains (empty for any)", a.out); err != nil {
		return err
	}
	if c.Device, err = GetSimpleText(a.reader, "Device contains (empty for any)", a.out); err != nil {
		return err
	}
	if c.Customer, err = GetSimpleText(a.reader, "Customer contains (empty for any)", a.out); err != nil {
		return err
	}

	a.printInvoices(models.Filter(a.sync.Snapshot(), c))
	return nil
}

// Attach stages a file for the next invoice.
func (a *App) Attach(ctx context.Context, path string) error {
	if path == "" {
		return errors.New("usage: attach <path>")
	}

	c, err := staging.CandidateFromPath(path)
	if err != nil {
		return err
	}

	f, err := a.stager.Stage(c)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Staged %s (%s, %s)\n", f.Name, f.FormattedSize, f.MIMEType)
	if f.IsImage() {
		pctx, cancel := context.WithTimeout(ctx, previewWait)
		defer cancel()
		url, err := f.Preview(pctx)
		if err != nil {
			a.log.Warn(ctx, "preview failed", "file", f.Name, "error", err)
			return nil
		}
		fmt.Fprintf(a.out, "Preview ready (%d characters)\n", len(url))
	}
	return nil
}

// Detach removes the staged file.
func (a *App) Detach(ctx context.Context) error {
	a.stager.Remove()
	fmt.Fprintln(a.out, "Attachment removed.")
	return nil
}

// Add prompts for the invoice form and submits it with the staged file, if
// any.
func (a *App) Add(ctx context.Context) error {
	if !a.isLoggedIn() {
		return errNotLoggedIn
	}

	d := models.InvoiceDraft{InvoiceDate: time.Now().Format(time.DateOnly)}
	fields := []struct {
		prompt string
		dst    *string
		// keep the prefilled value on empty input
		keep bool
	}{
		{prompt: "Serial number", dst: &d.SerialNumber},
		{prompt: "Invoice date (YYYY-MM-DD, empty for today)", dst: &d.InvoiceDate, keep: true},
		{prompt: "Device name", dst: &d.DeviceName},
		{prompt: "Customer name", dst: &d.CustomerName},
		{prompt: "Customer email (optional)", dst: &d.CustomerEmail},
		{prompt: "Customer phone (optional)", dst: &d.CustomerPhone},
		{prompt: "Amount", dst: &d.Amount},
		{prompt: "Payment status (pending/paid, empty for pending)", dst: &d.PaymentStatus},
		{prompt: "Payment method (optional)", dst: &d.PaymentMethod},
		{prompt: "Notes (optional)", dst: &d.Notes},
	}

	for _, fld := range fields {
		v, err := GetSimpleText(a.reader, fld.prompt, a.out)
		if err != nil {
			return err
		}
		if v == "" && fld.keep {
			continue
		}
		*fld.dst = v
	}

	if f := a.stager.Current(); f != nil {
		d.Attachment = f.Attachment()
	}

	res := a.newController("Save Invoice").SubmitInvoice(ctx, a.invoices, d)
	if res.OK() {
		a.stager.Remove()
		if res.Invoice != nil {
			fmt.Fprintf(a.out, "Invoice #%d created.\n", res.Invoice.ID)
		}
		a.sync.Refresh(ctx)
	}
	return a.follow(ctx)
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid invoice id %q", s)
	}
	return id, nil
}

// Delete removes an invoice after confirmation; the cache is refreshed by
// the service.
func (a *App) Delete(ctx context.Context, arg string) error {
	if !a.isLoggedIn() {
		return errNotLoggedIn
	}
	id, err := parseID(arg)
	if err != nil {
		return err
	}

	answer, err := GetSimpleText(a.reader, fmt.Sprintf("Delete invoice %d? (y/N)", id), a.out)
	if err != nil {
		return err
	}
	if !strings.EqualFold(answer, "y") && !strings.EqualFold(answer, "yes") {
		fmt.Fprintln(a.out, "Cancelled.")
		return nil
	}

	if err := a.invoices.Delete(ctx, id); err != nil {
		return a.checkAuth(err)
	}
	fmt.Fprintln(a.out, "Invoice deleted!")
	return a.List(ctx)
}

// Show fetches one invoice from the backend.
func (a *App) Show(ctx context.Context, arg string) error {
	if !a.isLoggedIn() {
		return errNotLoggedIn
	}
	id, err := parseID(arg)
	if err != nil {
		return err
	}

	inv, err := a.invoices.Get(ctx, id)
	if err != nil {
		return a.checkAuth(err)
	}

	row := models.NewInvoiceRow(*inv)
	tw := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	for _, kv := range [][2]string{
		{"ID", row.ID},
		{"Serial", row.Serial},
		{"Date", row.Date},
		{"Device", row.Device},
		{"Customer", row.Customer},
		{"Email", inv.CustomerEmail},
		{"Phone", inv.CustomerPhone},
		{"Amount", row.Amount},
		{"Status", inv.PaymentStatus},
		{"Method", inv.PaymentMethod},
		{"Notes", inv.Notes},
	} {
		if kv[1] == "" {
			continue
		}
		fmt.Fprintf(tw, "%s:\t%s\n", kv[0], kv[1])
	}
	return tw.Flush()
}

// Stats prints the per-user summary.
func (a *App) Stats(ctx context.Context) error {
	if !a.isLoggedIn() {
		return errNotLoggedIn
	}

	st, err := a.invoices.Stats(ctx)
	if err != nil {
		return a.checkAuth(err)
	}

	fmt.Fprintf(a.out, "Invoices: %d (pending %d, paid %d)\n", st.TotalInvoices, st.PendingInvoices, st.PaidInvoices)
	fmt.Fprintf(a.out, "Revenue: $%.2f paid, $%.2f pending\n", st.TotalRevenue, st.PendingRevenue)
	return nil
}

// Sync refreshes the cache now and lists it.
func (a *App) Sync(ctx context.Context) error {
	if !a.isLoggedIn() {
		return errNotLoggedIn
	}
	a.sync.Refresh(ctx)
	return a.List(ctx)
}

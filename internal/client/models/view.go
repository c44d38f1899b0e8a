package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const notAvailable = "N/A"

// InvoiceRow is the display form of an invoice in listings.
type InvoiceRow struct {
	ID       string
	Serial   string
	Device   string
	Customer string
	Date     string
	Amount   string
}

// Rows converts invoices to display rows, preserving order.
func Rows(invoices []Invoice) []InvoiceRow {
	rows := make([]InvoiceRow, 0, len(invoices))
	for _, inv := range invoices {
		rows = append(rows, NewInvoiceRow(inv))
	}
	return rows
}

func NewInvoiceRow(inv Invoice) InvoiceRow {
	return InvoiceRow{
		ID:       strconv.FormatInt(inv.ID, 10),
		Serial:   orNA(inv.SerialNumber),
		Device:   orNA(inv.DeviceName),
		Customer: orNA(inv.CustomerName),
		Date:     FormatDate(inv.InvoiceDate),
		Amount:   fmt.Sprintf("$%.2f", inv.Amount),
	}
}

// FormatDate renders an ISO date (or timestamp) as "02 Jan 2006".
// Values that do not parse are returned unchanged.
func FormatDate(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return notAvailable
	}
	for _, layout := range []string{time.DateOnly, time.RFC3339, "2006-01-02T15:04:05.999999"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("02 Jan 2006")
		}
	}
	return s
}

func orNA(s string) string {
	if strings.TrimSpace(s) == "" {
		return notAvailable
	}
	return s
}

// SearchCriteria filters invoices by case-insensitive substring. Empty
// fields match everything.
type SearchCriteria struct {
	Serial   string
	Device   string
	Customer string
}

func (c SearchCriteria) Empty() bool {
	return c.Serial == "" && c.Device == "" && c.Customer == ""
}

// Filter returns the invoices matching every non-empty criterion, in order.
func Filter(invoices []Invoice, c SearchCriteria) []Invoice {
	serial := strings.ToLower(strings.TrimSpace(c.Serial))
	device := strings.ToLower(strings.TrimSpace(c.Device))
	customer := strings.ToLower(strings.TrimSpace(c.Customer))

	out := make([]Invoice, 0, len(invoices))
	for _, inv := range invoices {
		if !contains(inv.SerialNumber, serial) || !contains(inv.DeviceName, device) || !contains(inv.CustomerName, customer) {
			continue
		}
		out = append(out, inv)
	}
	return out
}

func contains(field, needle string) bool {
	return needle == "" || strings.Contains(strings.ToLower(field), needle)
}

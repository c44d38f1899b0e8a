package models

// Payment statuses known to the backend. Other values are passed through.
const (
	PaymentStatusPending = "pending"
	PaymentStatusPaid    = "paid"
)

// Invoice is the backend record. The client only ever holds read copies.
type Invoice struct {
	ID            int64   `json:"id"`
	SerialNumber  string  `json:"serial_number"`
	DeviceName    string  `json:"device_name"`
	CustomerName  string  `json:"customer_name"`
	CustomerEmail string  `json:"customer_email,omitempty"`
	CustomerPhone string  `json:"customer_phone,omitempty"`
	InvoiceDate   string  `json:"invoice_date"`
	Amount        float64 `json:"amount"`
	PaymentStatus string  `json:"payment_status"`
	PaymentMethod string  `json:"payment_method,omitempty"`
	Notes         string  `json:"notes,omitempty"`
	FilePath      string  `json:"file_path,omitempty"`
	CreatedAt     *string `json:"created_at,omitempty"`
	UpdatedAt     *string `json:"updated_at,omitempty"`
}

// InvoiceInput is the body of create and update requests.
type InvoiceInput struct {
	SerialNumber  string  `json:"serial_number"`
	DeviceName    string  `json:"device_name"`
	CustomerName  string  `json:"customer_name"`
	CustomerEmail string  `json:"customer_email"`
	CustomerPhone string  `json:"customer_phone"`
	InvoiceDate   string  `json:"invoice_date"`
	Amount        float64 `json:"amount"`
	PaymentStatus string  `json:"payment_status"`
	PaymentMethod string  `json:"payment_method"`
	Notes         string  `json:"notes"`
}

// InvoiceDraft is the invoice form as typed by the user. Amount is kept as
// text until validation parses it.
type InvoiceDraft struct {
	SerialNumber  string
	InvoiceDate   string
	DeviceName    string
	CustomerName  string
	CustomerEmail string
	CustomerPhone string
	Amount        string
	PaymentStatus string
	PaymentMethod string
	Notes         string

	// Attachment is the staged file, if any. It is not transmitted.
	Attachment *Attachment
}

// Attachment identifies a staged file referenced by a draft.
type Attachment struct {
	Name      string
	SizeBytes int64
	MIMEType  string
}

// Stats is the per-user summary served by /api/invoices/stats.
type Stats struct {
	TotalInvoices   int64   `json:"total_invoices"`
	PendingInvoices int64   `json:"pending_invoices"`
	PaidInvoices    int64   `json:"paid_invoices"`
	TotalRevenue    float64 `json:"total_revenue"`
	PendingRevenue  float64 `json:"pending_revenue"`
}

// DemoInvoices is the fixed dataset shown when the backend cannot be read.
// A fresh slice is returned on each call.
func DemoInvoices() []Invoice {
	return []Invoice{
		{
			ID:            1,
			SerialNumber:  "DEMO-001",
			DeviceName:    "Demo Device",
			CustomerName:  "Demo Customer",
			InvoiceDate:   "2025-01-01",
			Amount:        100.00,
			PaymentStatus: PaymentStatusPending,
		},
	}
}

package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/invoicekeeper/internal/client/client"
	"github.com/dmitrijs2005/invoicekeeper/internal/client/models"
	"github.com/dmitrijs2005/invoicekeeper/internal/logging"
)

var ErrInvalidAmount = errors.New("amount must be a number greater than zero")

// InvoiceService performs authenticated invoice operations.
//
// Mutations never touch the local cache directly: a successful Update or
// Delete asks the Refresher to reload it. A rejected token on any call clears
// the stored session.
type InvoiceService interface {
	Create(ctx context.Context, draft models.InvoiceDraft) (*models.Invoice, error)
	Get(ctx context.Context, id int64) (*models.Invoice, error)
	Update(ctx context.Context, id int64, draft models.InvoiceDraft) (*models.Invoice, error)
	Delete(ctx context.Context, id int64) error
	Stats(ctx context.Context) (*models.Stats, error)
}

type invoiceService struct {
	client   client.Client
	sessions SessionStore
	cache    Refresher
	log      logging.Logger
}

func NewInvoiceService(c client.Client, sessions SessionStore, cache Refresher, log logging.Logger) InvoiceService {
	return &invoiceService{
		client:   c,
		sessions: sessions,
		cache:    cache,
		log:      log.With("component", "invoices"),
	}
}

func (s *invoiceService) Create(ctx context.Context, draft models.InvoiceDraft) (*models.Invoice, error) {
	in, err := InputFromDraft(draft)
	if err != nil {
		return nil, err
	}

	if a := draft.Attachment; a != nil {
		// no upload endpoint exists yet; the file stays local
		s.log.Warn(ctx, "attachment is not uploaded",
			"name", a.Name, "size_bytes", a.SizeBytes, "mime_type", a.MIMEType)
	}

	inv, err := s.client.CreateInvoice(ctx, in)
	if err != nil {
		return nil, s.fail(ctx, "create invoice", err)
	}
	return inv, nil
}

func (s *invoiceService) Get(ctx context.Context, id int64) (*models.Invoice, error) {
	inv, err := s.client.GetInvoice(ctx, id)
	if err != nil {
		return nil, s.fail(ctx, "get invoice", err)
	}
	return inv, nil
}

func (s *invoiceService) Update(ctx context.Context, id int64, draft models.InvoiceDraft) (*models.Invoice, error) {
	in, err := InputFromDraft(draft)
	if err != nil {
		return nil, err
	}

	inv, err := s.client.UpdateInvoice(ctx, id, in)
	if err != nil {
		return nil, s.fail(ctx, "update invoice", err)
	}
	s.cache.Refresh(ctx)
	return inv, nil
}

func (s *invoiceService) Delete(ctx context.Context, id int64) error {
	if err := s.client.DeleteInvoice(ctx, id); err != nil {
		return s.fail(ctx, "delete invoice", err)
	}
	s.cache.Refresh(ctx)
	return nil
}

func (s *invoiceService) Stats(ctx context.Context) (*models.Stats, error) {
	st, err := s.client.Stats(ctx)
	if err != nil {
		return nil, s.fail(ctx, "get stats", err)
	}
	return st, nil
}

func (s *invoiceService) fail(ctx context.Context, op string, err error) error {
	if errors.Is(err, client.ErrUnauthorized) {
		if cerr := s.sessions.Clear(ctx); cerr != nil {
			s.log.Error(ctx, "clear session", "error", cerr)
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}

// InputFromDraft converts the typed form into a request body. Text fields are
// trimmed; an empty payment status becomes pending.
func InputFromDraft(d models.InvoiceDraft) (models.InvoiceInput, error) {
	amount, err := strconv.ParseFloat(strings.TrimSpace(d.Amount), 64)
	if err != nil || math.IsNaN(amount) || math.IsInf(amount, 0) || amount <= 0 {
		return models.InvoiceInput{}, ErrInvalidAmount
	}

	status := strings.TrimSpace(d.PaymentStatus)
	if status == "" {
		status = models.PaymentStatusPending
	}

	return models.InvoiceInput{
		SerialNumber:  strings.TrimSpace(d.SerialNumber),
		DeviceName:    strings.TrimSpace(d.DeviceName),
		CustomerName:  strings.TrimSpace(d.CustomerName),
		CustomerEmail: strings.TrimSpace(d.CustomerEmail),
		CustomerPhone: strings.TrimSpace(d.CustomerPhone),
		InvoiceDate:   strings.TrimSpace(d.InvoiceDate),
		Amount:        amount,
		PaymentStatus: status,
		PaymentMethod: strings.TrimSpace(d.PaymentMethod),
		Notes:         strings.TrimSpace(d.Notes),
	}, nil
}

package services

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"

	"github.com/localbookr/marketplace-backend/internal/models"
)

var exportHeader = []string{"ID", "Date", "Time", "Customer", "Phone", "Service", "Provider", "Area", "Status", "Amount"}

// ExportService renders bookings for spreadsheets
type ExportService struct {
	bookings BookingStore
}

// NewExportService creates an export service
func NewExportService(bookings BookingStore) *ExportService {
	return &ExportService{bookings: bookings}
}

// WriteCSV writes the bookings matching filter as CSV, header first
func (s *ExportService) WriteCSV(ctx context.Context, w io.Writer, filter models.BookingFilter) (int, error) {
	bookings, err := s.bookings.List(ctx, filter)
	if err != nil {
		return 0, err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(exportHeader); err != nil {
		return 0, err
	}
	for _, b := range bookings {
		if err := cw.Write(exportRow(&b)); err != nil {
			return 0, fmt.Errorf("failed to write booking %s: %w", b.ID, err)
		}
	}
	cw.Flush()
	return len(bookings), cw.Error()
}

func exportRow(b *models.BookingDetail) []string {
	provider := "Unassigned"
	if b.ProviderName != nil && *b.ProviderName != "" {
		provider = *b.ProviderName
	}
	return []string{
		b.ID.String(),
		b.Date,
		b.Time,
		b.CustomerName,
		b.CustomerPhone,
		b.ServiceName,
		provider,
		b.Area,
		string(b.Status),
		formatAmount(b.Amount),
	}
}

package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/clinic-scheduling-api/internal/models"
	"github.com/noah-isme/clinic-scheduling-api/pkg/export"
)

// ExportFormat enumerates supported booking export encodings.
type ExportFormat string

const (
	ExportFormatCSV ExportFormat = "csv"
	ExportFormatPDF ExportFormat = "pdf"
)

// ExportResult is a rendered export ready to stream.
type ExportResult struct {
	Filename    string
	ContentType string
	Payload     []byte
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

// ExportService renders a therapist's bookings as CSV or PDF.
type ExportService struct {
	therapists therapistRepository
	bookings   bookingRangeReader
	csv        csvRenderer
	pdf        pdfRenderer
	location   *time.Location
	logger     *zap.Logger
	now        func() time.Time
}

// NewExportService constructs an ExportService.
func NewExportService(therapists therapistRepository, bookings bookingRangeReader, location *time.Location, logger *zap.Logger, csv csvRenderer, pdf pdfRenderer) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if location == nil {
		location = time.Local
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &ExportService{
		therapists: therapists,
		bookings:   bookings,
		csv:        csv,
		pdf:        pdf,
		location:   location,
		logger:     logger,
		now:        time.Now,
	}
}

// ExportBookings renders bookings starting in [from, to).
func (s *ExportService) ExportBookings(ctx context.Context, therapistID string, format ExportFormat, from, to time.Time) (*ExportResult, error) {
	if !to.After(from) {
		return nil, validationError(nil, "to must be after from")
	}
	therapist, err := s.therapists.FindByID(ctx, therapistID)
	if err != nil {
		return nil, lookupError(err, "therapist not found", "failed to load therapist")
	}
	bookings, err := s.bookings.ListByTherapistRange(ctx, therapistID, from, to)
	if err != nil {
		return nil, storageUnavailable(err, "failed to load bookings")
	}

	dataset := s.buildDataset(bookings)
	title := fmt.Sprintf("Bookings %s %s - %s", therapist.Name, from.In(s.location).Format("2006-01-02"), to.In(s.location).Format("2006-01-02"))

	var (
		payload     []byte
		contentType string
	)
	switch format {
	case ExportFormatCSV:
		payload, err = s.csv.Render(dataset)
		contentType = "text/csv"
	case ExportFormatPDF:
		payload, err = s.pdf.Render(dataset, title)
		contentType = "application/pdf"
	default:
		return nil, validationError(nil, fmt.Sprintf("unsupported format %q", format))
	}
	if err != nil {
		s.logger.Error("booking export render failed", zap.String("therapist_id", therapistID), zap.Error(err))
		return nil, err
	}

	return &ExportResult{
		Filename:    s.buildFilename(therapist.Name, format),
		ContentType: contentType,
		Payload:     payload,
	}, nil
}

func (s *ExportService) buildFilename(name string, format ExportFormat) string {
	timestamp := s.now().UTC().Format("20060102_150405")
	return fmt.Sprintf("bookings_%s_%s.%s", sanitizeFilename(strings.ToLower(name)), timestamp, format)
}

func sanitizeFilename(raw string) string {
	if raw == "" {
		return "na"
	}
	replacer := strings.NewReplacer(" ", "_", "/", "-", "\\", "-", ":", "-", "..", ".", "__", "_")
	result := replacer.Replace(raw)
	if len(result) > 100 {
		return result[:100]
	}
	return result
}

func (s *ExportService) buildDataset(bookings []models.Booking) export.Dataset {
	rows := make([]map[string]string, 0, len(bookings))
	for _, b := range bookings {
		start := b.SessionStart.In(s.location)
		rows = append(rows, map[string]string{
			"Date":    start.Format("2006-01-02"),
			"Start":   start.Format(clockLayout),
			"Minutes": fmt.Sprintf("%d", b.DurationMinutes),
			"Client":  b.ClientName,
			"Email":   b.ClientEmail,
			"Status":  string(b.Status),
			"Payment": string(b.PaymentStatus),
			"Amount":  fmt.Sprintf("%.2f", b.Amount),
		})
	}
	return export.Dataset{
		Headers: []string{"Date", "Start", "Minutes", "Client", "Email", "Status", "Payment", "Amount"},
		Rows:    rows,
		Widths:  []float64{2.2, 1.2, 1.3, 3, 4, 2, 1.6, 1.7},
	}
}

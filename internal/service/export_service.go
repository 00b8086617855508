package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kursplatform/kurs-api/internal/models"
	appErrors "github.com/kursplatform/kurs-api/pkg/errors"
	"github.com/kursplatform/kurs-api/pkg/export"
)

type exportUserLister interface {
	ListDetails(ctx context.Context) ([]models.UserDetail, error)
}

type exportEnrollmentLister interface {
	ListReportRows(ctx context.Context) ([]models.EnrollmentReportRow, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

type reportArchiver interface {
	Save(filename string, data []byte) (string, error)
}

// ExportService renders the admin reports: the user list as CSV and the
// enrollment list as PDF.
type ExportService struct {
	users       exportUserLister
	enrollments exportEnrollmentLister
	csv         csvRenderer
	pdf         pdfRenderer
	archive     reportArchiver
	logger      *zap.Logger
}

// NewExportService constructs an ExportService. The archive is
// optional; when present every rendered report is also written to it.
func NewExportService(users exportUserLister, enrollments exportEnrollmentLister, csv csvRenderer, pdf pdfRenderer, archive reportArchiver, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &ExportService{users: users, enrollments: enrollments, csv: csv, pdf: pdf, archive: archive, logger: logger}
}

func (s *ExportService) archiveCopy(filename string, payload []byte) {
	if s.archive == nil {
		return
	}
	if _, err := s.archive.Save(filename, payload); err != nil {
		s.logger.Warn("failed to archive report copy", zap.String("filename", filename), zap.Error(err))
	}
}

// UsersCSV renders the user report.
func (s *ExportService) UsersCSV(ctx context.Context) ([]byte, error) {
	users, err := s.users.ListDetails(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list users")
	}

	dataset := export.Dataset{
		Headers: []string{"Ad", "Email", "Rol", "Kayıt Tarihi", "Gönderilen Mesaj", "Alınan Mesaj", "Kurs Kaydı"},
	}
	for _, u := range users {
		dataset.Rows = append(dataset.Rows, map[string]string{
			"Ad":               u.Name,
			"Email":            u.Email,
			"Rol":              string(u.Role),
			"Kayıt Tarihi":     u.CreatedAt.Format("2006-01-02"),
			"Gönderilen Mesaj": fmt.Sprintf("%d", u.SentMessages),
			"Alınan Mesaj":     fmt.Sprintf("%d", u.ReceivedMessages),
			"Kurs Kaydı":       fmt.Sprintf("%d", u.Enrollments),
		})
	}

	payload, err := s.csv.Render(dataset)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv")
	}
	s.archiveCopy(fmt.Sprintf("kullanicilar-%s.csv", time.Now().Format("2006-01-02")), payload)
	s.logger.Info("user report rendered", zap.Int("rows", len(dataset.Rows)))
	return payload, nil
}

// EnrollmentsPDF renders the enrollment report.
func (s *ExportService) EnrollmentsPDF(ctx context.Context) ([]byte, error) {
	rows, err := s.enrollments.ListReportRows(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list enrollments")
	}

	dataset := export.Dataset{
		Headers: []string{"Kullanıcı", "Email", "Kurs", "Kategori", "İlerleme", "Kayıt Tarihi"},
	}
	for _, row := range rows {
		dataset.Rows = append(dataset.Rows, map[string]string{
			"Kullanıcı":    row.UserName,
			"Email":        row.UserEmail,
			"Kurs":         row.CourseTitle,
			"Kategori":     row.CategoryName,
			"İlerleme":     fmt.Sprintf("%%%.0f", row.Progress),
			"Kayıt Tarihi": row.EnrolledAt.Format("2006-01-02"),
		})
	}

	title := fmt.Sprintf("Kurs Kayıtları - %s", time.Now().Format("2006-01-02"))
	payload, err := s.pdf.Render(dataset, title)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf")
	}
	s.archiveCopy(fmt.Sprintf("kurs-kayitlari-%s.pdf", time.Now().Format("2006-01-02")), payload)
	s.logger.Info("enrollment report rendered", zap.Int("rows", len(dataset.Rows)))
	return payload, nil
}

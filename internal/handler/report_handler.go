package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kursplatform/kurs-api/internal/service"
	"github.com/kursplatform/kurs-api/pkg/response"
)

// ReportHandler streams the admin reports.
type ReportHandler struct {
	service *service.ExportService
}

// NewReportHandler creates a new handler.
func NewReportHandler(svc *service.ExportService) *ReportHandler {
	return &ReportHandler{service: svc}
}

// UsersCSV godoc
// @Summary Download the user report as CSV
// @Tags Admin
// @Produce text/csv
// @Security BearerAuth
// @Success 200 {file} file
// @Router /admin/reports/users [get]
func (h *ReportHandler) UsersCSV(c *gin.Context) {
	payload, err := h.service.UsersCSV(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	filename := fmt.Sprintf("kullanicilar-%s.csv", time.Now().Format("2006-01-02"))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename=%q`, filename))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", payload)
}

// EnrollmentsPDF godoc
// @Summary Download the enrollment report as PDF
// @Tags Admin
// @Produce application/pdf
// @Security BearerAuth
// @Success 200 {file} file
// @Router /admin/reports/enrollments [get]
func (h *ReportHandler) EnrollmentsPDF(c *gin.Context) {
	payload, err := h.service.EnrollmentsPDF(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	filename := fmt.Sprintf("kurs-kayitlari-%s.pdf", time.Now().Format("2006-01-02"))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename=%q`, filename))
	c.Data(http.StatusOK, "application/pdf", payload)
}

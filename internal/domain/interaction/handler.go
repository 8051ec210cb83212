package interaction

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/meditrack/meditrack/internal/domain/medication"
	"github.com/meditrack/meditrack/internal/platform/apperr"
)

// MedicationSource provides the stored medication list for a patient.
type MedicationSource interface {
	ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*medication.Medication, int, error)
}

// Handler exposes the safety engine over HTTP.
type Handler struct {
	svc  *Service
	meds MedicationSource
}

// NewHandler builds the safety handler. meds may be nil when no
// persistence layer is wired; the per-patient report then returns 503.
func NewHandler(svc *Service, meds MedicationSource) *Handler {
	return &Handler{svc: svc, meds: meds}
}

// RegisterRoutes mounts the safety endpoints on the API group.
func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.POST("/safety/interactions", h.CheckInteractions)
	api.POST("/safety/timing", h.ValidateTiming)
	api.POST("/safety/report", h.Report)
	api.GET("/patients/:patientId/safety-report", h.PatientReport)
}

type checkRequest struct {
	Medications []medication.Medication `json:"medications"`
}

// CheckInteractions handles POST /safety/interactions.
func (h *Handler) CheckInteractions(c echo.Context) error {
	var req checkRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	results, err := h.svc.CheckInteractions(c.Request().Context(), req.Medications)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, map[string]any{"interactions": results})
}

// ValidateTiming handles POST /safety/timing.
func (h *Handler) ValidateTiming(c echo.Context) error {
	var req checkRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	conflicts := h.svc.ValidateTiming(req.Medications)
	return c.JSON(http.StatusOK, map[string]any{"timing_conflicts": conflicts})
}

// Report handles POST /safety/report with an explicit medication list.
func (h *Handler) Report(c echo.Context) error {
	var req checkRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	report, err := h.svc.Report(c.Request().Context(), req.Medications)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, report)
}

// PatientReport handles GET /patients/:patientId/safety-report by
// loading the patient's stored medications first.
func (h *Handler) PatientReport(c echo.Context) error {
	if h.meds == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "medication store not configured")
	}
	patientID, err := uuid.Parse(c.Param("patientId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid patient id")
	}
	stored, _, err := h.meds.ListByPatient(c.Request().Context(), patientID, 500, 0)
	if err != nil {
		return httpError(err)
	}
	meds := make([]medication.Medication, 0, len(stored))
	for _, m := range stored {
		meds = append(meds, *m)
	}
	report, err := h.svc.Report(c.Request().Context(), meds)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, report)
}

func httpError(err error) error {
	switch {
	case apperr.IsValidation(err):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case strings.Contains(err.Error(), "not found"):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
}

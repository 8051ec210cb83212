package escalation

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/meditrack/meditrack/internal/platform/apperr"
)

// Handler exposes missed-dose escalation over HTTP.
type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes mounts the escalation endpoints on the API group.
func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.POST("/escalations/evaluate", h.Evaluate)
}

type evaluateRequest struct {
	PatientID    uuid.UUID `json:"patient_id"`
	MedicationID uuid.UUID `json:"medication_id"`
	MissedAt     time.Time `json:"missed_at"`
}

// Evaluate handles POST /escalations/evaluate.
func (h *Handler) Evaluate(c echo.Context) error {
	var req evaluateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.PatientID == uuid.Nil || req.MedicationID == uuid.Nil {
		return echo.NewHTTPError(http.StatusBadRequest, "patient_id and medication_id are required")
	}
	if req.MissedAt.IsZero() {
		return echo.NewHTTPError(http.StatusBadRequest, "missed_at is required")
	}

	a, err := h.svc.Evaluate(c.Request().Context(), req.PatientID, req.MedicationID, req.MissedAt)
	if err != nil {
		if apperr.IsValidation(err) {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
	return c.JSON(http.StatusOK, a)
}

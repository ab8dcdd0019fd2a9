package controllers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/Anantbhardwaj2003/Event-Management/internal/delivery/http/helpers"
	"github.com/Anantbhardwaj2003/Event-Management/internal/delivery/http/middleware"
	"github.com/Anantbhardwaj2003/Event-Management/internal/domain"
)

type AttendanceController struct {
	Logger  *slog.Logger
	Service domain.AttendanceService
}

func NewAttendanceController(logger *slog.Logger, svc domain.AttendanceService) *AttendanceController {
	return &AttendanceController{
		Logger:  logger,
		Service: svc,
	}
}

// AttendanceResponse is the data payload for join and leave calls.
type AttendanceResponse struct {
	Status        string `json:"status"`
	AttendeeCount int    `json:"attendee_count"`
}

// AttendanceSuccessResponse is the success response envelope for join and leave calls (200).
type AttendanceSuccessResponse struct {
	Data  AttendanceResponse `json:"data"`
	Error *helpers.APIError  `json:"error"`
}

// JoinEvent godoc
// @Summary Join an event
// @Description Adds the authenticated user to the event's attendee set. Joining twice is rejected.
// @Tags attendance
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID"
// @Success 200 {object} controllers.AttendanceSuccessResponse "data contains status and attendee_count"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request (already joined)"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /api/events/{eventID}/join [put]
func (c *AttendanceController) JoinEvent(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventID")
	if eventID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing eventID")
		return
	}
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	count, err := c.Service.Join(r.Context(), eventID, userID)
	if err != nil {
		c.writeAttendanceError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, AttendanceResponse{Status: "joined", AttendeeCount: count})
}

// LeaveEvent godoc
// @Summary Leave an event
// @Description Removes the authenticated user from the event's attendee set. Leaving without having joined is rejected.
// @Tags attendance
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID"
// @Success 200 {object} controllers.AttendanceSuccessResponse "data contains status and attendee_count"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request (not joined)"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /api/events/{eventID}/leave [put]
func (c *AttendanceController) LeaveEvent(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventID")
	if eventID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing eventID")
		return
	}
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	count, err := c.Service.Leave(r.Context(), eventID, userID)
	if err != nil {
		c.writeAttendanceError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, AttendanceResponse{Status: "left", AttendeeCount: count})
}

func (c *AttendanceController) writeAttendanceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "event not found")
	case errors.Is(err, domain.ErrAlreadyJoined):
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, domain.ErrAlreadyJoined.Error())
	case errors.Is(err, domain.ErrNotJoined):
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, domain.ErrNotJoined.Error())
	default:
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
	}
}

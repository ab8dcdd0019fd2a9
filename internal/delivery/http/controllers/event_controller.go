package controllers

import (
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Anantbhardwaj2003/Event-Management/internal/delivery/http/helpers"
	"github.com/Anantbhardwaj2003/Event-Management/internal/delivery/http/middleware"
	"github.com/Anantbhardwaj2003/Event-Management/internal/domain"
)

const maxUploadBytes = 32 << 20

// dateLayouts are the accepted formats for the event date field.
var dateLayouts = []string{time.RFC3339, "2006-01-02"}

func parseEventDate(s string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q, want RFC3339 or YYYY-MM-DD", s)
}

type EventController struct {
	Logger  *slog.Logger
	Service domain.EventService
	Files   domain.FileStore
}

func NewEventController(logger *slog.Logger, svc domain.EventService, files domain.FileStore) *EventController {
	return &EventController{
		Logger:  logger,
		Service: svc,
		Files:   files,
	}
}

// CreateEventRequest is the request body for POST /api/events. The image is
// uploaded separately as a multipart file part named "image".
type CreateEventRequest struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Date        string   `json:"date"`
	Category    string   `json:"category"`
	Location    string   `json:"location"`
	Tags        []string `json:"tags"`
}

// Validate implements helpers.Validator.
func (c CreateEventRequest) Validate() []string {
	var errs []string
	for field, value := range map[string]string{
		"name":        c.Name,
		"description": c.Description,
		"date":        c.Date,
		"category":    c.Category,
		"location":    c.Location,
	} {
		if strings.TrimSpace(value) == "" {
			errs = append(errs, field+" is required")
		}
	}
	if c.Date != "" {
		if _, err := parseEventDate(c.Date); err != nil {
			errs = append(errs, err.Error())
		}
	}
	return errs
}

// CreateEventSuccessResponse is the success response envelope for POST /api/events (201).
type CreateEventSuccessResponse struct {
	Data  *domain.Event     `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// CreateEvent godoc
// @Summary Create a new event
// @Description Create a new event. Accepts application/json, or multipart/form-data with the same fields plus an optional "image" file part. The authenticated user becomes the owner.
// @Tags events
// @Accept json
// @Accept mpfd
// @Produce json
// @Security BearerAuth
// @Param event body CreateEventRequest true "Event data"
// @Success 201 {object} controllers.CreateEventSuccessResponse "data contains the created event"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /api/events [post]
func (c *EventController) CreateEvent(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}

	var req CreateEventRequest
	var imageURL string
	if isMultipart(r) {
		if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
			helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, err.Error())
			return
		}
		req = CreateEventRequest{
			Name:        r.FormValue("name"),
			Description: r.FormValue("description"),
			Date:        r.FormValue("date"),
			Category:    r.FormValue("category"),
			Location:    r.FormValue("location"),
			Tags:        formTags(r.MultipartForm.Value["tags"]),
		}
		if !helpers.RunValidation(w, req) {
			return
		}
		url, ok := c.uploadImage(w, r)
		if !ok {
			return
		}
		imageURL = url
	} else {
		if !helpers.DecodeAndValidate(w, r, &req) {
			return
		}
	}

	date, _ := parseEventDate(req.Date)
	event := domain.NewEvent(userID, req.Name, req.Description, req.Category, req.Location, date, imageURL, req.Tags, time.Time{}, time.Time{})
	if err := c.Service.CreateEvent(r.Context(), event); err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, err.Error())
			return
		}
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, event)
}

// ListEventsSuccessResponse is the success response envelope for GET /api/events (200).
type ListEventsSuccessResponse struct {
	Data  []*domain.EventSummary `json:"data"`
	Error *helpers.APIError      `json:"error"`
}

// ListEvents godoc
// @Summary List events
// @Description Lists events. Optional filters: category (exact match), timeframe ("past" for date <= now, anything else non-empty for date > now), search (case-insensitive match on name, description, or location). List items carry an attendee count, never attendee identities.
// @Tags events
// @Produce json
// @Param category query string false "Exact category filter"
// @Param timeframe query string false "past or upcoming"
// @Param search query string false "Substring search over name, description, location"
// @Success 200 {object} controllers.ListEventsSuccessResponse "data contains event summaries"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /api/events [get]
func (c *EventController) ListEvents(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := domain.EventFilter{
		Category:  strings.TrimSpace(q.Get("category")),
		Timeframe: strings.TrimSpace(q.Get("timeframe")),
		Search:    strings.TrimSpace(q.Get("search")),
	}
	events, err := c.Service.ListEvents(r.Context(), filter)
	if err != nil {
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, events)
}

// GetEventResponse is the response body for GET /api/events/{eventID}: the full
// event plus its owner and attendee identities resolved to users. Owner is
// null when the owning user no longer exists.
type GetEventResponse struct {
	Event     *domain.Event  `json:"event"`
	Owner     *domain.User   `json:"owner"`
	Attendees []*domain.User `json:"attendees"`
}

// GetEventSuccessResponse is the success response envelope for GET /api/events/{eventID} (200).
type GetEventSuccessResponse struct {
	Data  GetEventResponse  `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// GetEvent godoc
// @Summary Get an event by ID
// @Description Returns the full event, with owner and attendee identities resolved.
// @Tags events
// @Produce json
// @Param eventID path string true "Event ID"
// @Success 200 {object} controllers.GetEventSuccessResponse "data contains event, owner, and attendees"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /api/events/{eventID} [get]
func (c *EventController) GetEvent(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventID")
	if eventID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing eventID")
		return
	}
	detail, err := c.Service.GetEvent(r.Context(), eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "event not found")
			return
		}
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, GetEventResponse{Event: detail.Event, Owner: detail.Owner, Attendees: detail.Attendees})
}

// UpdateEventRequest is the request body for PUT /api/events/{eventID}.
// Omitted fields are unchanged; present fields overwrite, including overwrites
// to the empty string.
type UpdateEventRequest struct {
	Name        *string   `json:"name"`
	Description *string   `json:"description"`
	Date        *string   `json:"date"`
	Category    *string   `json:"category"`
	Location    *string   `json:"location"`
	Tags        *[]string `json:"tags"`
}

// Validate implements helpers.Validator.
func (u UpdateEventRequest) Validate() []string {
	var errs []string
	if u.Date != nil {
		if _, err := parseEventDate(*u.Date); err != nil {
			errs = append(errs, err.Error())
		}
	}
	return errs
}

// UpdateEventSuccessResponse is the success response envelope for PUT /api/events/{eventID} (200).
type UpdateEventSuccessResponse struct {
	Data  *domain.Event     `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// UpdateEvent godoc
// @Summary Update an event
// @Description Updates event fields. Only the owner can update; a non-owner receives the same 404 as a missing event. Accepts application/json or multipart/form-data with an optional "image" file part. Omitted fields are unchanged.
// @Tags events
// @Accept json
// @Accept mpfd
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID"
// @Param body body UpdateEventRequest true "Fields to update (all optional)"
// @Success 200 {object} controllers.UpdateEventSuccessResponse "data contains the updated event"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /api/events/{eventID} [put]
func (c *EventController) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventID")
	if eventID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing eventID")
		return
	}
	requesterID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}

	var req UpdateEventRequest
	var imageURL *string
	if isMultipart(r) {
		if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
			helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, err.Error())
			return
		}
		req = UpdateEventRequest{
			Name:        multipartValue(r, "name"),
			Description: multipartValue(r, "description"),
			Date:        multipartValue(r, "date"),
			Category:    multipartValue(r, "category"),
			Location:    multipartValue(r, "location"),
		}
		if tags, present := r.MultipartForm.Value["tags"]; present {
			parsed := formTags(tags)
			req.Tags = &parsed
		}
		if !helpers.RunValidation(w, req) {
			return
		}
		if _, _, err := r.FormFile("image"); err == nil {
			url, ok := c.uploadImage(w, r)
			if !ok {
				return
			}
			imageURL = &url
		}
	} else {
		if !helpers.DecodeAndValidate(w, r, &req) {
			return
		}
	}

	update := domain.EventUpdate{
		Name:        req.Name,
		Description: req.Description,
		Category:    req.Category,
		Location:    req.Location,
		Tags:        req.Tags,
		Image:       imageURL,
	}
	if req.Date != nil {
		date, _ := parseEventDate(*req.Date)
		update.Date = &date
	}

	event, err := c.Service.UpdateEvent(r.Context(), eventID, requesterID, update)
	if err != nil {
		// A non-owner gets the same response as a missing event so that the
		// endpoint does not reveal which events exist.
		if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrForbidden) {
			helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "event not found")
			return
		}
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, event)
}

// DeleteEventResponse is the data payload for DELETE /api/events/{eventID} (200).
type DeleteEventResponse struct {
	Status string `json:"status"`
}

// DeleteEventSuccessResponse is the success response envelope for DELETE /api/events/{eventID} (200).
type DeleteEventSuccessResponse struct {
	Data  DeleteEventResponse `json:"data"`
	Error *helpers.APIError   `json:"error"`
}

// DeleteEvent godoc
// @Summary Delete an event
// @Description Deletes an event permanently. Only the owner can delete; a non-owner receives the same 404 as a missing event.
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID"
// @Success 200 {object} controllers.DeleteEventSuccessResponse "data contains status"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /api/events/{eventID} [delete]
func (c *EventController) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventID")
	if eventID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing eventID")
		return
	}
	requesterID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	if err := c.Service.DeleteEvent(r.Context(), eventID, requesterID); err != nil {
		if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrForbidden) {
			helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "event not found")
			return
		}
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, DeleteEventResponse{Status: "deleted"})
}

func isMultipart(r *http.Request) bool {
	ct, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && ct == "multipart/form-data"
}

// multipartValue returns a pointer to the form value when the key is present,
// nil otherwise. Presence, not truthiness, decides whether a field updates.
func multipartValue(r *http.Request, key string) *string {
	values, present := r.MultipartForm.Value[key]
	if !present || len(values) == 0 {
		return nil
	}
	return &values[0]
}

// formTags flattens repeated tags form values and comma-separated lists into
// one ordered slice.
func formTags(values []string) []string {
	tags := make([]string, 0, len(values))
	for _, v := range values {
		for _, tag := range strings.Split(v, ",") {
			tag = strings.TrimSpace(tag)
			if tag != "" {
				tags = append(tags, tag)
			}
		}
	}
	return tags
}

// uploadImage stores the "image" file part, if any, and returns its URL.
// The bool result is false when a response was already written.
func (c *EventController) uploadImage(w http.ResponseWriter, r *http.Request) (string, bool) {
	file, header, err := r.FormFile("image")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return "", true
		}
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, err.Error())
		return "", false
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	objectName := uuid.NewString() + path.Ext(header.Filename)
	url, err := c.Files.Upload(r.Context(), objectName, contentType, file, header.Size)
	if err != nil {
		if errors.Is(err, domain.ErrUploadsDisabled) {
			helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, domain.ErrUploadsDisabled.Error())
			return "", false
		}
		c.Logger.ErrorContext(r.Context(), "image upload failed", "path", r.URL.Path, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, "image upload failed")
		return "", false
	}
	return url, true
}

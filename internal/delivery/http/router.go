package http

import (
	"log/slog"
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/Anantbhardwaj2003/Event-Management/internal/delivery/http/controllers"
	"github.com/Anantbhardwaj2003/Event-Management/internal/delivery/http/middleware"
	"github.com/Anantbhardwaj2003/Event-Management/internal/domain"
)

// NewRouter initializes the HTTP router with all application routes
func NewRouter(
	eventController *controllers.EventController,
	attendanceController *controllers.AttendanceController,
	wsHandler http.HandlerFunc,
	verifier domain.TokenVerifier,
	logger *slog.Logger,
) *http.ServeMux {
	mux := http.NewServeMux()
	auth := middleware.RequireAuth(verifier, logger)

	// Events
	mux.HandleFunc("POST /api/events", auth(eventController.CreateEvent))
	mux.HandleFunc("GET /api/events", eventController.ListEvents)
	mux.HandleFunc("GET /api/events/{eventID}", eventController.GetEvent)
	mux.HandleFunc("PUT /api/events/{eventID}", auth(eventController.UpdateEvent))
	mux.HandleFunc("DELETE /api/events/{eventID}", auth(eventController.DeleteEvent))

	// Attendance
	mux.HandleFunc("PUT /api/events/{eventID}/join", auth(attendanceController.JoinEvent))
	mux.HandleFunc("PUT /api/events/{eventID}/leave", auth(attendanceController.LeaveEvent))

	// Live attendance channel
	mux.HandleFunc("GET /ws", wsHandler)

	// Swagger
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	return mux
}

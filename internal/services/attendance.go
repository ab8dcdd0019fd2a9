package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Anantbhardwaj2003/Event-Management/internal/domain"
)

type attendanceService struct {
	eventRepo      domain.EventRepository
	userRepo       domain.UserRepository
	emailService   domain.EmailService
	logger         *slog.Logger
	contextTimeout time.Duration
}

// NewAttendanceService creates the shared join/leave mutation path used by
// both the HTTP endpoints and the live channel.
func NewAttendanceService(
	eventRepo domain.EventRepository,
	userRepo domain.UserRepository,
	emailService domain.EmailService,
	logger *slog.Logger,
	timeout time.Duration,
) domain.AttendanceService {
	return &attendanceService{
		eventRepo:      eventRepo,
		userRepo:       userRepo,
		emailService:   emailService,
		logger:         logger,
		contextTimeout: timeout,
	}
}

func (s *attendanceService) Join(ctx context.Context, eventID, userID string) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	count, err := s.eventRepo.AddAttendee(ctx, eventID, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrAlreadyJoined) {
			return 0, err
		}
		return 0, fmt.Errorf("add attendee: %w", err)
	}

	// Confirmation mail is best effort; a mail failure never fails the join.
	s.sendJoinConfirmation(ctx, eventID, userID)

	return count, nil
}

func (s *attendanceService) Leave(ctx context.Context, eventID, userID string) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	count, err := s.eventRepo.RemoveAttendee(ctx, eventID, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrNotJoined) {
			return 0, err
		}
		return 0, fmt.Errorf("remove attendee: %w", err)
	}
	return count, nil
}

func (s *attendanceService) sendJoinConfirmation(ctx context.Context, eventID, userID string) {
	if s.emailService == nil {
		return
	}
	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		s.logger.WarnContext(ctx, "join confirmation skipped", "event_id", eventID, "err", err)
		return
	}
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil || user.Email == "" {
		s.logger.WarnContext(ctx, "join confirmation skipped", "user_id", userID, "err", err)
		return
	}
	data := &domain.JoinConfirmationEmailData{
		Email:         user.Email,
		Name:          user.Name,
		EventName:     event.Name,
		EventDate:     event.Date,
		EventLocation: event.Location,
	}
	if err := s.emailService.SendJoinConfirmation(ctx, data); err != nil {
		s.logger.WarnContext(ctx, "join confirmation failed", "event_id", eventID, "user_id", userID, "err", err)
	}
}

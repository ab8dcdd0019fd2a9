package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Anantbhardwaj2003/Event-Management/internal/domain"
)

type eventService struct {
	eventRepo      domain.EventRepository
	userRepo       domain.UserRepository
	contextTimeout time.Duration
}

// NewEventService creates an EventService with the given repositories.
func NewEventService(eventRepo domain.EventRepository, userRepo domain.UserRepository, timeout time.Duration) domain.EventService {
	return &eventService{
		eventRepo:      eventRepo,
		userRepo:       userRepo,
		contextTimeout: timeout,
	}
}

// requiredEventFields validates the fields a new event must carry. Whitespace-only
// values count as missing.
func requiredEventFields(e *domain.Event) []string {
	var missing []string
	if strings.TrimSpace(e.Name) == "" {
		missing = append(missing, "name")
	}
	if strings.TrimSpace(e.Description) == "" {
		missing = append(missing, "description")
	}
	if e.Date.IsZero() {
		missing = append(missing, "date")
	}
	if strings.TrimSpace(e.Category) == "" {
		missing = append(missing, "category")
	}
	if strings.TrimSpace(e.Location) == "" {
		missing = append(missing, "location")
	}
	return missing
}

func (s *eventService) CreateEvent(ctx context.Context, event *domain.Event) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if event.OwnerID == "" {
		return fmt.Errorf("%w: event owner is required", domain.ErrInvalidInput)
	}
	if missing := requiredEventFields(event); len(missing) > 0 {
		return fmt.Errorf("%w: missing required fields: %s", domain.ErrInvalidInput, strings.Join(missing, ", "))
	}

	now := time.Now()
	event.CreatedAt = now
	event.UpdatedAt = now
	if event.Attendees == nil {
		event.Attendees = []string{}
	}
	if event.Tags == nil {
		event.Tags = []string{}
	}

	if err := s.eventRepo.Create(ctx, event); err != nil {
		return fmt.Errorf("create event: %w", err)
	}
	return nil
}

func (s *eventService) ListEvents(ctx context.Context, filter domain.EventFilter) ([]*domain.EventSummary, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	events, err := s.eventRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	summaries := make([]*domain.EventSummary, 0, len(events))
	for _, e := range events {
		summaries = append(summaries, e.Summary())
	}
	return summaries, nil
}

func (s *eventService) GetEvent(ctx context.Context, id string) (*domain.EventDetail, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}

	owner, err := s.userRepo.GetByID(ctx, event.OwnerID)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("resolve owner: %w", err)
	}

	attendees := []*domain.User{}
	if len(event.Attendees) > 0 {
		attendees, err = s.userRepo.ListByIDs(ctx, event.Attendees)
		if err != nil {
			return nil, fmt.Errorf("resolve attendees: %w", err)
		}
	}
	return &domain.EventDetail{Event: event, Owner: owner, Attendees: attendees}, nil
}

func (s *eventService) UpdateEvent(ctx context.Context, id, requesterID string, update domain.EventUpdate) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	if event.OwnerID != requesterID {
		return nil, domain.ErrForbidden
	}

	updated, err := s.eventRepo.Update(ctx, id, update)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("update event: %w", err)
	}
	return updated, nil
}

func (s *eventService) DeleteEvent(ctx context.Context, id, requesterID string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("get event: %w", err)
	}
	if event.OwnerID != requesterID {
		return domain.ErrForbidden
	}

	if err := s.eventRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("delete event: %w", err)
	}
	return nil
}

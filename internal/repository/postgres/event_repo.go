package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"github.com/Anantbhardwaj2003/Event-Management/internal/domain"
)

const eventColumns = "id, owner_id, name, description, category, location, date, attendees, image, tags, created_at, updated_at"

type eventRepository struct {
	DB *sql.DB
}

// NewEventRepository returns an EventRepository backed by Postgres. Attendees
// and tags are stored as text[] columns; the attendee mutations are single
// conditional UPDATE statements so the uniqueness invariant holds under
// concurrent joins from either write path.
func NewEventRepository(db *sql.DB) domain.EventRepository {
	return &eventRepository{
		DB: db,
	}
}

func scanEvent(row interface{ Scan(...any) error }) (*domain.Event, error) {
	e := &domain.Event{}
	var imageNull sql.NullString
	err := row.Scan(
		&e.ID, &e.OwnerID, &e.Name, &e.Description, &e.Category, &e.Location,
		&e.Date, pq.Array(&e.Attendees), &imageNull, pq.Array(&e.Tags),
		&e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if imageNull.Valid {
		e.Image = imageNull.String
	}
	if e.Attendees == nil {
		e.Attendees = []string{}
	}
	if e.Tags == nil {
		e.Tags = []string{}
	}
	return e, nil
}

func (r *eventRepository) Create(ctx context.Context, e *domain.Event) error {
	query := `
		INSERT INTO events (owner_id, name, description, category, location, date, attendees, image, tags, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id
	`
	var image any
	if e.Image != "" {
		image = e.Image
	}
	return r.DB.QueryRowContext(ctx, query,
		e.OwnerID, e.Name, e.Description, e.Category, e.Location, e.Date,
		pq.Array(e.Attendees), image, pq.Array(e.Tags), e.CreatedAt, e.UpdatedAt,
	).Scan(&e.ID)
}

func (r *eventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	query := fmt.Sprintf(`SELECT %s FROM events WHERE id = $1`, eventColumns)
	e, err := scanEvent(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return e, nil
}

// escapeLikePattern neutralizes LIKE metacharacters so a search term
// matches as a literal substring.
func escapeLikePattern(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

func (r *eventRepository) List(ctx context.Context, filter domain.EventFilter) ([]*domain.Event, error) {
	var where []string
	var args []interface{}
	n := 1
	if filter.Category != "" {
		where = append(where, fmt.Sprintf("category = $%d", n))
		args = append(args, filter.Category)
		n++
	}
	if filter.Timeframe != "" {
		if filter.Timeframe == domain.TimeframePast {
			where = append(where, "date <= NOW()")
		} else {
			where = append(where, "date > NOW()")
		}
	}
	if filter.Search != "" {
		where = append(where, fmt.Sprintf(`(name ILIKE $%d ESCAPE '\' OR description ILIKE $%d ESCAPE '\' OR location ILIKE $%d ESCAPE '\')`, n, n, n))
		args = append(args, "%"+escapeLikePattern(filter.Search)+"%")
		n++
	}

	query := fmt.Sprintf(`SELECT %s FROM events`, eventColumns)
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY created_at DESC"

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	events := make([]*domain.Event, 0)
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

func (r *eventRepository) Update(ctx context.Context, id string, update domain.EventUpdate) (*domain.Event, error) {
	setClauses := []string{"updated_at = NOW()"}
	args := []interface{}{}
	n := 1
	add := func(column string, value interface{}) {
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", column, n))
		args = append(args, value)
		n++
	}
	if update.Name != nil {
		add("name", *update.Name)
	}
	if update.Description != nil {
		add("description", *update.Description)
	}
	if update.Category != nil {
		add("category", *update.Category)
	}
	if update.Location != nil {
		add("location", *update.Location)
	}
	if update.Date != nil {
		add("date", *update.Date)
	}
	if update.Image != nil {
		add("image", *update.Image)
	}
	if update.Tags != nil {
		add("tags", pq.Array(*update.Tags))
	}
	if n == 1 {
		// No fields to update; just fetch current row
		return r.GetByID(ctx, id)
	}
	args = append(args, id)
	query := fmt.Sprintf(`
		UPDATE events SET %s
		WHERE id = $%d
		RETURNING %s
	`, strings.Join(setClauses, ", "), n, eventColumns)
	e, err := scanEvent(r.DB.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return e, nil
}

func (r *eventRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM events WHERE id = $1`
	result, err := r.DB.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *eventRepository) AddAttendee(ctx context.Context, eventID, userID string) (int, error) {
	query := `
		UPDATE events
		SET attendees = array_append(attendees, $2), updated_at = NOW()
		WHERE id = $1 AND NOT (attendees @> ARRAY[$2]::text[])
		RETURNING cardinality(attendees)
	`
	var count int
	err := r.DB.QueryRowContext(ctx, query, eventID, userID).Scan(&count)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, r.attendeeMiss(ctx, eventID, domain.ErrAlreadyJoined)
		}
		return 0, err
	}
	return count, nil
}

func (r *eventRepository) RemoveAttendee(ctx context.Context, eventID, userID string) (int, error) {
	query := `
		UPDATE events
		SET attendees = array_remove(attendees, $2), updated_at = NOW()
		WHERE id = $1 AND attendees @> ARRAY[$2]::text[]
		RETURNING cardinality(attendees)
	`
	var count int
	err := r.DB.QueryRowContext(ctx, query, eventID, userID).Scan(&count)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, r.attendeeMiss(ctx, eventID, domain.ErrNotJoined)
		}
		return 0, err
	}
	return count, nil
}

// attendeeMiss disambiguates a zero-row conditional attendee update: the event
// is either missing (ErrNotFound) or the membership condition failed
// (memberErr is ErrAlreadyJoined for adds, ErrNotJoined for removes).
func (r *eventRepository) attendeeMiss(ctx context.Context, eventID string, memberErr error) error {
	query := `SELECT 1 FROM events WHERE id = $1`
	var one int
	err := r.DB.QueryRowContext(ctx, query, eventID).Scan(&one)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrNotFound
		}
		return err
	}
	return memberErr
}

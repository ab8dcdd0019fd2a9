package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/require"

	"github.com/Anantbhardwaj2003/Event-Management/internal/domain"
)

var eventRowColumns = []string{
	"id", "owner_id", "name", "description", "category", "location",
	"date", "attendees", "image", "tags", "created_at", "updated_at",
}

func eventRow(id string, attendees string) *sqlmock.Rows {
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	return sqlmock.NewRows(eventRowColumns).
		AddRow(id, "user-1", "Go Meetup", "Monthly meetup", "tech", "Berlin",
			now, attendees, nil, "{go,meetup}", now, now)
}

func TestEventRepository_Create(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		event   *domain.Event
		mock    func(mock sqlmock.Sqlmock)
		wantID  string
		wantErr bool
	}{
		{
			name: "success",
			event: &domain.Event{
				OwnerID:     "user-1",
				Name:        "Go Meetup",
				Description: "Monthly meetup",
				Category:    "tech",
				Location:    "Berlin",
				Date:        now,
				Attendees:   []string{},
				Tags:        []string{"go"},
				CreatedAt:   now,
				UpdatedAt:   now,
			},
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`INSERT INTO events \(owner_id, name, description, category, location, date, attendees, image, tags, created_at, updated_at\)`).
					WithArgs("user-1", "Go Meetup", "Monthly meetup", "tech", "Berlin", now,
						pq.Array([]string{}), nil, pq.Array([]string{"go"}), now, now).
					WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("ev-1"))
			},
			wantID: "ev-1",
		},
		{
			name:  "db error",
			event: &domain.Event{OwnerID: "user-1", Name: "Go Meetup"},
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`INSERT INTO events`).
					WillReturnError(sql.ErrConnDone)
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			tt.mock(mock)
			repo := NewEventRepository(db)
			err = repo.Create(ctx, tt.event)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.wantID, tt.event.ID)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestEventRepository_GetByID(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`SELECT id, owner_id, name, description, category, location, date, attendees, image, tags, created_at, updated_at FROM events WHERE id = \$1`).
			WithArgs("ev-1").
			WillReturnRows(eventRow("ev-1", "{user-2,user-3}"))

		repo := NewEventRepository(db)
		e, err := repo.GetByID(ctx, "ev-1")
		require.NoError(t, err)
		require.Equal(t, "ev-1", e.ID)
		require.Equal(t, []string{"user-2", "user-3"}, e.Attendees)
		require.Equal(t, "", e.Image)
		require.Equal(t, []string{"go", "meetup"}, e.Tags)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`SELECT .* FROM events WHERE id = \$1`).
			WithArgs("missing").
			WillReturnError(sql.ErrNoRows)

		repo := NewEventRepository(db)
		_, err = repo.GetByID(ctx, "missing")
		require.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestEventRepository_List(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name   string
		filter domain.EventFilter
		mock   func(mock sqlmock.Sqlmock)
	}{
		{
			name:   "no filters",
			filter: domain.EventFilter{},
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT .* FROM events ORDER BY created_at DESC`).
					WillReturnRows(eventRow("ev-1", "{}"))
			},
		},
		{
			name:   "category filter",
			filter: domain.EventFilter{Category: "tech"},
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT .* FROM events WHERE category = \$1 ORDER BY created_at DESC`).
					WithArgs("tech").
					WillReturnRows(eventRow("ev-1", "{}"))
			},
		},
		{
			name:   "past timeframe",
			filter: domain.EventFilter{Timeframe: "past"},
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT .* FROM events WHERE date <= NOW\(\) ORDER BY created_at DESC`).
					WillReturnRows(eventRow("ev-1", "{}"))
			},
		},
		{
			name:   "upcoming timeframe",
			filter: domain.EventFilter{Timeframe: "upcoming"},
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT .* FROM events WHERE date > NOW\(\) ORDER BY created_at DESC`).
					WillReturnRows(eventRow("ev-1", "{}"))
			},
		},
		{
			name:   "search over name description location",
			filter: domain.EventFilter{Search: "meetup"},
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT .* FROM events WHERE \(name ILIKE \$1 ESCAPE '\\' OR description ILIKE \$1 ESCAPE '\\' OR location ILIKE \$1 ESCAPE '\\'\) ORDER BY created_at DESC`).
					WithArgs("%meetup%").
					WillReturnRows(eventRow("ev-1", "{}"))
			},
		},
		{
			name:   "search escapes pattern metacharacters",
			filter: domain.EventFilter{Search: `50%_off\`},
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT .* FROM events WHERE \(name ILIKE \$1 ESCAPE '\\' OR description ILIKE \$1 ESCAPE '\\' OR location ILIKE \$1 ESCAPE '\\'\) ORDER BY created_at DESC`).
					WithArgs(`%50\%\_off\\%`).
					WillReturnRows(eventRow("ev-1", "{}"))
			},
		},
		{
			name:   "combined filters",
			filter: domain.EventFilter{Category: "tech", Timeframe: "upcoming", Search: "go"},
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT .* FROM events WHERE category = \$1 AND date > NOW\(\) AND \(name ILIKE \$2 ESCAPE '\\' OR description ILIKE \$2 ESCAPE '\\' OR location ILIKE \$2 ESCAPE '\\'\) ORDER BY created_at DESC`).
					WithArgs("tech", "%go%").
					WillReturnRows(eventRow("ev-1", "{}"))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			tt.mock(mock)
			repo := NewEventRepository(db)
			events, err := repo.List(ctx, tt.filter)
			require.NoError(t, err)
			require.Len(t, events, 1)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestEventRepository_Update(t *testing.T) {
	ctx := context.Background()
	name := "Renamed"
	desc := ""

	t.Run("sets only present fields", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`UPDATE events SET updated_at = NOW\(\), name = \$1, description = \$2\s+WHERE id = \$3\s+RETURNING`).
			WithArgs("Renamed", "", "ev-1").
			WillReturnRows(eventRow("ev-1", "{}"))

		repo := NewEventRepository(db)
		_, err = repo.Update(ctx, "ev-1", domain.EventUpdate{Name: &name, Description: &desc})
		require.NoError(t, err)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("empty update falls back to fetch", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`SELECT .* FROM events WHERE id = \$1`).
			WithArgs("ev-1").
			WillReturnRows(eventRow("ev-1", "{}"))

		repo := NewEventRepository(db)
		e, err := repo.Update(ctx, "ev-1", domain.EventUpdate{})
		require.NoError(t, err)
		require.Equal(t, "ev-1", e.ID)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`UPDATE events SET`).
			WillReturnError(sql.ErrNoRows)

		repo := NewEventRepository(db)
		_, err = repo.Update(ctx, "missing", domain.EventUpdate{Name: &name})
		require.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestEventRepository_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectExec(`DELETE FROM events WHERE id = \$1`).
			WithArgs("ev-1").
			WillReturnResult(sqlmock.NewResult(0, 1))

		repo := NewEventRepository(db)
		require.NoError(t, repo.Delete(ctx, "ev-1"))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectExec(`DELETE FROM events WHERE id = \$1`).
			WithArgs("missing").
			WillReturnResult(sqlmock.NewResult(0, 0))

		repo := NewEventRepository(db)
		require.ErrorIs(t, repo.Delete(ctx, "missing"), domain.ErrNotFound)
	})
}

func TestEventRepository_AddAttendee(t *testing.T) {
	ctx := context.Background()

	t.Run("success returns new count", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`UPDATE events\s+SET attendees = array_append\(attendees, \$2\), updated_at = NOW\(\)\s+WHERE id = \$1 AND NOT \(attendees @> ARRAY\[\$2\]::text\[\]\)`).
			WithArgs("ev-1", "user-2").
			WillReturnRows(sqlmock.NewRows([]string{"cardinality"}).AddRow(3))

		repo := NewEventRepository(db)
		count, err := repo.AddAttendee(ctx, "ev-1", "user-2")
		require.NoError(t, err)
		require.Equal(t, 3, count)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("already joined", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`UPDATE events`).
			WithArgs("ev-1", "user-2").
			WillReturnError(sql.ErrNoRows)
		mock.ExpectQuery(`SELECT 1 FROM events WHERE id = \$1`).
			WithArgs("ev-1").
			WillReturnRows(sqlmock.NewRows([]string{"?column?"}).AddRow(1))

		repo := NewEventRepository(db)
		_, err = repo.AddAttendee(ctx, "ev-1", "user-2")
		require.ErrorIs(t, err, domain.ErrAlreadyJoined)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("event missing", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`UPDATE events`).
			WithArgs("missing", "user-2").
			WillReturnError(sql.ErrNoRows)
		mock.ExpectQuery(`SELECT 1 FROM events WHERE id = \$1`).
			WithArgs("missing").
			WillReturnError(sql.ErrNoRows)

		repo := NewEventRepository(db)
		_, err = repo.AddAttendee(ctx, "missing", "user-2")
		require.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestEventRepository_RemoveAttendee(t *testing.T) {
	ctx := context.Background()

	t.Run("success returns remaining count", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`UPDATE events\s+SET attendees = array_remove\(attendees, \$2\), updated_at = NOW\(\)\s+WHERE id = \$1 AND attendees @> ARRAY\[\$2\]::text\[\]`).
			WithArgs("ev-1", "user-2").
			WillReturnRows(sqlmock.NewRows([]string{"cardinality"}).AddRow(1))

		repo := NewEventRepository(db)
		count, err := repo.RemoveAttendee(ctx, "ev-1", "user-2")
		require.NoError(t, err)
		require.Equal(t, 1, count)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not joined", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`UPDATE events`).
			WithArgs("ev-1", "user-2").
			WillReturnError(sql.ErrNoRows)
		mock.ExpectQuery(`SELECT 1 FROM events WHERE id = \$1`).
			WithArgs("ev-1").
			WillReturnRows(sqlmock.NewRows([]string{"?column?"}).AddRow(1))

		repo := NewEventRepository(db)
		_, err = repo.RemoveAttendee(ctx, "ev-1", "user-2")
		require.ErrorIs(t, err, domain.ErrNotJoined)
	})
}

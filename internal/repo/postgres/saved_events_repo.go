package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/eventally/eventally/internal/domain/event"
	"github.com/eventally/eventally/internal/domain/saved"
	"github.com/eventally/eventally/internal/observability"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type SavedEventsRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewSavedEventsRepo(pool *pgxpool.Pool, prom *observability.Prom) *SavedEventsRepo {
	return &SavedEventsRepo{
		pool: pool,
		prom: prom,
	}
}

func (repo *SavedEventsRepo) observe(op string, fn func() error) error {
	if repo.prom != nil {
		return repo.prom.ObserveDB(op, fn)
	}
	return fn()
}

func (repo *SavedEventsRepo) Save(ctx context.Context, userID, eventID string) (saved.SavedEvent, error) {
	s := saved.SavedEvent{
		UserID:  userID,
		EventID: eventID,
		SavedAt: time.Now().UTC(),
	}

	err := repo.observe("saved_events.save", func() error {
		_, execErr := repo.pool.Exec(ctx,
			`INSERT INTO saved_events (user_id, event_id, saved_at) VALUES ($1,$2,$3)`,
			s.UserID, s.EventID, s.SavedAt)
		return execErr
	})

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return saved.SavedEvent{}, saved.ErrAlreadySaved
		}
		// missing event shows up as a foreign key violation
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return saved.SavedEvent{}, event.ErrNotFound
		}
		return saved.SavedEvent{}, err
	}

	return s, nil
}

func (repo *SavedEventsRepo) Unsave(ctx context.Context, userID, eventID string) error {
	var affected int64

	err := repo.observe("saved_events.unsave", func() error {
		tag, execErr := repo.pool.Exec(ctx,
			`DELETE FROM saved_events WHERE user_id = $1 AND event_id = $2`, userID, eventID)
		affected = tag.RowsAffected()
		return execErr
	})

	if err != nil {
		return err
	}

	if affected == 0 {
		return saved.ErrNotFound
	}

	return nil
}

// ListIDsByUser feeds the recommendation exclude list.
func (repo *SavedEventsRepo) ListIDsByUser(ctx context.Context, userID string) (ids []string, err error) {
	var rows pgx.Rows

	err = repo.observe("saved_events.list_ids_by_user", func() error {
		rows, err = repo.pool.Query(ctx,
			`SELECT event_id FROM saved_events WHERE user_id = $1 ORDER BY saved_at ASC`, userID)
		return err
	})

	if err != nil {
		return
	}

	defer rows.Close()

	ids = make([]string, 0)

	for rows.Next() {
		var id string

		if e := rows.Scan(&id); e != nil {
			err = e
			return
		}

		ids = append(ids, id)
	}

	err = rows.Err()

	return
}

func (repo *SavedEventsRepo) ListByUser(ctx context.Context, userID string) (items []saved.SavedEvent, err error) {
	var rows pgx.Rows

	err = repo.observe("saved_events.list_by_user", func() error {
		rows, err = repo.pool.Query(ctx,
			`SELECT user_id, event_id, saved_at FROM saved_events WHERE user_id = $1 ORDER BY saved_at ASC`, userID)
		return err
	})

	if err != nil {
		return
	}

	defer rows.Close()

	items = make([]saved.SavedEvent, 0)

	for rows.Next() {
		var s saved.SavedEvent

		if e := rows.Scan(&s.UserID, &s.EventID, &s.SavedAt); e != nil {
			err = e
			return
		}

		items = append(items, s)
	}

	err = rows.Err()

	return
}

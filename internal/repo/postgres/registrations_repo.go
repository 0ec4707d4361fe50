package postgres

import (
	"context"
	"errors"

	"github.com/eventally/eventally/internal/domain/event"
	"github.com/eventally/eventally/internal/domain/registration"
	"github.com/eventally/eventally/internal/observability"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type RegistrationsRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewRegistrationsRepo(pool *pgxpool.Pool, prom *observability.Prom) *RegistrationsRepo {
	return &RegistrationsRepo{
		pool: pool,
		prom: prom,
	}
}

func (repo *RegistrationsRepo) observe(op string, fn func() error) error {
	if repo.prom != nil {
		return repo.prom.ObserveDB(op, fn)
	}
	return fn()
}

func (repo *RegistrationsRepo) BeginTx(ctx context.Context) (pgx.Tx, error) {
	return repo.pool.BeginTx(ctx, pgx.TxOptions{})
}

// CreateTx enforces one-registration-per-user and capacity inside the
// caller's transaction, and keeps the event's attendee counter in step with
// the insert.
func (repo *RegistrationsRepo) CreateTx(ctx context.Context, tx pgx.Tx, req registration.CreateRegistrationRequest) (reg registration.Registration, err error) {
	// check duplicate registration for this user and event

	var exists bool

	err = repo.observe("registrations.create_tx.duplicate_check", func() error {
		return tx.QueryRow(ctx, `SELECT EXISTS(
			SELECT 1 FROM registrations
			WHERE event_id = $1 AND user_id = $2
		)`, req.EventID, req.UserID).Scan(&exists)
	})

	if err != nil {
		return
	}

	if exists {
		err = registration.ErrAlreadyRegistered
		return
	}

	// lock event row + check capacity (max_attendees NULL means unlimited)
	var maxAttendees *int
	var current int
	err = repo.observe("registrations.create_tx.capacity_lock", func() error {
		return tx.QueryRow(ctx, `
		SELECT max_attendees, current_attendees
		FROM events
		WHERE id = $1
		FOR UPDATE
	`, req.EventID).Scan(&maxAttendees, &current)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			err = event.ErrNotFound
		}

		return
	}

	if maxAttendees != nil && current >= *maxAttendees {
		err = registration.ErrEventFull
		return
	}

	reg = registration.NewFromCreateRequest(req)

	err = repo.observe("registrations.create_tx.insert", func() error {
		_, e := tx.Exec(ctx, `
		INSERT INTO registrations (id, event_id, user_id, created_at)
		VALUES ($1,$2,$3,$4)
	`, reg.ID, reg.EventID, reg.UserID, reg.CreatedAt)
		return e
	})

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" && pgErr.ConstraintName == "registrations_event_user_uniq" {
			err = registration.ErrAlreadyRegistered
			return
		}
		return
	}

	err = repo.observe("registrations.create_tx.increment_attendees", func() error {
		_, e := tx.Exec(ctx, `
		UPDATE events SET current_attendees = current_attendees + 1, updated_at = NOW()
		WHERE id = $1
	`, req.EventID)
		return e
	})

	return
}

// implementation of the create method using the idiomatic Go "named return and defer" approach
func (repo *RegistrationsRepo) Create(ctx context.Context, req registration.CreateRegistrationRequest) (reg registration.Registration, err error) {
	// Enforce capacity and uniqueness inside a single transaction

	tx, err := repo.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return
	}

	defer func() {
		_ = tx.Rollback(ctx)
	}()

	reg, err = repo.CreateTx(ctx, tx, req)

	if err != nil {
		return
	}

	err = tx.Commit(ctx)

	if err != nil {
		return
	}

	return
}

// ListByUser is the history read the recommendation core depends on.
func (repo *RegistrationsRepo) ListByUser(ctx context.Context, userID string) (regs []registration.Registration, err error) {
	var rows pgx.Rows

	err = repo.observe("registrations.list_by_user", func() error {
		rows, err = repo.pool.Query(ctx,
			`
	SELECT id, event_id, user_id, created_at
	FROM registrations
	WHERE user_id = $1
	ORDER BY created_at ASC, id ASC
	`,
			userID,
		)
		return err
	})

	if err != nil {
		return
	}

	defer rows.Close()

	regs = make([]registration.Registration, 0)

	for rows.Next() {
		var r registration.Registration

		e := rows.Scan(&r.ID, &r.EventID, &r.UserID, &r.CreatedAt)

		if e != nil {
			err = e
			return
		}
		regs = append(regs, r)
	}

	err = rows.Err()

	return
}

func (repo *RegistrationsRepo) ListByEvent(ctx context.Context, eventID string) (regs []registration.Registration, err error) {
	var rows pgx.Rows

	err = repo.observe("registrations.list_by_event", func() error {
		rows, err = repo.pool.Query(ctx,
			`
	SELECT id, event_id, user_id, created_at
	FROM registrations
	WHERE event_id = $1
	ORDER BY created_at ASC, id ASC
	`,
			eventID,
		)
		return err
	})

	if err != nil {
		return
	}

	defer rows.Close()

	regs = make([]registration.Registration, 0)

	for rows.Next() {
		var r registration.Registration

		e := rows.Scan(&r.ID, &r.EventID, &r.UserID, &r.CreatedAt)

		if e != nil {
			err = e
			return
		}
		regs = append(regs, r)
	}

	if e := rows.Err(); e != nil {
		err = e
		return
	}

	// in the event i want a 404 if the event itself does not exist

	if len(regs) == 0 {
		var dummy string

		err = repo.observe("registrations.list_by_event.check_event_exists", func() error {
			return repo.pool.QueryRow(ctx, `SELECT id FROM events WHERE id = $1`, eventID).Scan(&dummy)
		})

		if errors.Is(err, pgx.ErrNoRows) {
			err = event.ErrNotFound

			return
		}

		if err != nil {
			return
		}
	}

	return
}

func (repo *RegistrationsRepo) GetByID(ctx context.Context, eventID, registrationID string) (registration.Registration, error) {
	var r registration.Registration

	err := repo.observe("registrations.get_by_id", func() error {
		return repo.pool.QueryRow(ctx,
			`
		SELECT id, event_id, user_id, created_at
		FROM registrations
		WHERE id = $1 AND event_id = $2
		`,
			registrationID, eventID,
		).Scan(&r.ID, &r.EventID, &r.UserID, &r.CreatedAt)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return registration.Registration{}, registration.ErrNotFound
		}

		return registration.Registration{}, err
	}

	return r, nil
}

// Delete removes a single registration and releases its seat.

func (repo *RegistrationsRepo) Delete(ctx context.Context, eventID, registrationID string) (err error) {
	tx, err := repo.pool.BeginTx(ctx, pgx.TxOptions{})

	if err != nil {
		return
	}

	defer func() {
		_ = tx.Rollback(ctx)
	}()

	var tag pgconn.CommandTag

	err = repo.observe("registrations.delete", func() error {
		var execErr error
		tag, execErr = tx.Exec(ctx, `DELETE FROM registrations WHERE id = $1 AND event_id = $2`, registrationID, eventID)
		return execErr
	})

	if err != nil {
		return
	}

	if tag.RowsAffected() == 0 {
		err = registration.ErrNotFound

		return
	}

	err = repo.observe("registrations.delete.decrement_attendees", func() error {
		_, execErr := tx.Exec(ctx, `
		UPDATE events SET current_attendees = GREATEST(current_attendees - 1, 0), updated_at = NOW()
		WHERE id = $1
	`, eventID)
		return execErr
	})

	if err != nil {
		return
	}

	err = tx.Commit(ctx)

	return
}

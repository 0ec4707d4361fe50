package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/eventally/eventally/internal/domain/event"
	"github.com/eventally/eventally/internal/observability"
	"github.com/eventally/eventally/internal/utils"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const eventColumns = `id, title, description, location, category, date, max_attendees, current_attendees, created_at, updated_at`

type EventsRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

// constructor function

func NewEventsRepo(pool *pgxpool.Pool, prom *observability.Prom) *EventsRepo {
	return &EventsRepo{
		pool: pool,
		prom: prom,
	}
}

func (r *EventsRepo) observe(op string, fn func() error) error {
	if r.prom != nil {
		return r.prom.ObserveDB(op, fn)
	}
	return fn()
}

func scanEvent(row pgx.Row, e *event.Event) error {
	return row.Scan(
		&e.ID,
		&e.Title,
		&e.Description,
		&e.Location,
		&e.Category,
		&e.Date,
		&e.MaxAttendees,
		&e.CurrentAttendees,
		&e.CreatedAt,
		&e.UpdatedAt,
	)
}

func (r *EventsRepo) Create(ctx context.Context, req event.CreateEventRequest) (event.Event, error) {
	e := event.NewFromCreateRequest(req)

	err := r.observe("events.create", func() error {
		_, execErr := r.pool.Exec(ctx,
			`INSERT INTO events(id, title, description, location, category, date, max_attendees, current_attendees, created_at, updated_at)
			 VALUES($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
			e.ID, e.Title, e.Description, e.Location, e.Category, e.Date, e.MaxAttendees, e.CurrentAttendees, e.CreatedAt, e.UpdatedAt)
		return execErr
	})

	if err != nil {
		return event.Event{}, err
	}

	return e, nil
}

func (r *EventsRepo) GetByID(ctx context.Context, id string) (event.Event, error) {
	var e event.Event

	err := r.observe("events.get_by_id", func() error {
		return scanEvent(r.pool.QueryRow(ctx, `SELECT `+eventColumns+` FROM events WHERE id = $1`, id), &e)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return event.Event{}, event.ErrNotFound
		}
		return event.Event{}, err
	}

	return e, nil
}

func (r *EventsRepo) GetByIDs(ctx context.Context, ids []string) ([]event.Event, error) {
	if len(ids) == 0 {
		return []event.Event{}, nil
	}

	var rows pgx.Rows
	var err error

	err = r.observe("events.get_by_ids", func() error {
		rows, err = r.pool.Query(ctx, `SELECT `+eventColumns+` FROM events WHERE id = ANY($1)`, ids)
		return err
	})

	if err != nil {
		return nil, err
	}

	defer rows.Close()

	return collectEvents(rows, len(ids))
}

// Upcoming serves the recommendation core's read shape: date-filtered,
// id-excluded, optionally one category, attendee or date ordered.
func (r *EventsRepo) Upcoming(ctx context.Context, filter event.UpcomingFilter) ([]event.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE date >= $1`
	args := []interface{}{filter.From}
	argsPosition := 2

	if filter.Category != nil {
		query += fmt.Sprintf(" AND category = $%d", argsPosition)
		args = append(args, *filter.Category)
		argsPosition++
	}

	if len(filter.ExcludeIDs) > 0 {
		query += fmt.Sprintf(" AND id <> ALL($%d)", argsPosition)
		args = append(args, filter.ExcludeIDs)
		argsPosition++
	}

	if filter.OrderByAttendees {
		query += " ORDER BY current_attendees DESC, date ASC, id ASC"
	} else {
		// stable ordering so score ties rank by soonest date
		query += " ORDER BY date ASC, id ASC"
	}

	query += fmt.Sprintf(" LIMIT $%d", argsPosition)
	args = append(args, filter.Limit)

	var rows pgx.Rows
	var err error

	err = r.observe("events.upcoming", func() error {
		rows, err = r.pool.Query(ctx, query, args...)
		return err
	})

	if err != nil {
		return nil, err
	}

	defer rows.Close()

	return collectEvents(rows, filter.Limit)
}

func (r *EventsRepo) ListEventsCursor(
	ctx context.Context,
	filter event.ListEventsFilter,
	after utils.EventCursor,
) (items []event.Event, nextCursor *string, hasMore bool, err error) {
	baseQuery := `SELECT ` + eventColumns + ` FROM events`

	var conds []string
	var args []interface{}

	argsPosition := 1

	// filtered conditional checks.
	if filter.Category != nil {
		conds = append(conds, fmt.Sprintf("category = $%d", argsPosition))
		args = append(args, *filter.Category)
		argsPosition++
	}

	if filter.From != nil {
		conds = append(conds, fmt.Sprintf("date >= $%d", argsPosition))
		args = append(args, *filter.From)
		argsPosition++
	}

	if filter.To != nil {
		conds = append(conds, fmt.Sprintf("date <= $%d", argsPosition))
		args = append(args, *filter.To)
		argsPosition++
	}

	conds = append(conds, fmt.Sprintf("(date, id) > ($%d, $%d)", argsPosition, argsPosition+1))
	args = append(args, after.Date, after.ID)
	argsPosition += 2

	query := baseQuery + " WHERE " + strings.Join(conds, " AND ")

	// stable ordering for pagination
	query += fmt.Sprintf(" ORDER BY date ASC, id ASC LIMIT $%d", argsPosition)

	limitPlusOne := filter.Limit + 1
	args = append(args, limitPlusOne)

	var rows pgx.Rows

	err = r.observe("events.list_cursor", func() error {
		var qerr error
		rows, qerr = r.pool.Query(ctx, query, args...)
		return qerr
	})

	if err != nil {
		return nil, nil, false, err
	}

	defer rows.Close()

	out, err := collectEvents(rows, filter.Limit)

	if err != nil {
		return nil, nil, false, err
	}

	if len(out) > filter.Limit {
		hasMore = true
		out = out[:filter.Limit]
		last := out[len(out)-1]
		cur, encErr := utils.EncodeEventCursor(last.Date, last.ID)
		if encErr != nil {
			return nil, nil, false, encErr
		}
		nextCursor = &cur
	}

	return out, nextCursor, hasMore, nil
}

func (r *EventsRepo) Update(ctx context.Context, id string, req event.UpdateEventRequest) (event.Event, error) {
	var e event.Event

	err := r.observe("events.update", func() error {
		return scanEvent(r.pool.QueryRow(
			ctx,
			`UPDATE events
				SET title = $2,
						description = $3,
						location = $4,
						category = $5,
						date = $6,
						max_attendees = $7,
						updated_at = NOW()
			WHERE id = $1
			RETURNING `+eventColumns,
			id,
			req.Title,
			req.Description,
			req.Location,
			req.Category,
			req.Date,
			req.MaxAttendees,
		), &e)
	})

	if err != nil {
		// if there are no rows matching the id
		if errors.Is(err, pgx.ErrNoRows) {
			return event.Event{}, event.ErrNotFound
		}
		// if it is any other type of error
		return event.Event{}, err
	}

	return e, nil
}

func (r *EventsRepo) Delete(ctx context.Context, id string) error {
	var affected int64

	err := r.observe("events.delete", func() error {
		tag, execErr := r.pool.Exec(ctx, `DELETE FROM events WHERE id = $1`, id)
		affected = tag.RowsAffected()
		return execErr
	})

	if err != nil {
		return err
	}

	// if no rows were deleted as a result return a not found error
	if affected == 0 {
		return event.ErrNotFound
	}

	return nil
}

func collectEvents(rows pgx.Rows, capacityHint int) ([]event.Event, error) {
	if capacityHint < 0 {
		capacityHint = 0
	}

	out := make([]event.Event, 0, capacityHint)

	for rows.Next() {
		var e event.Event

		if err := scanEvent(rows, &e); err != nil {
			return nil, err
		}

		out = append(out, e)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return out, nil
}

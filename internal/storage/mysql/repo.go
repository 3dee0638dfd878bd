package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"bakery_locations/internal/domain"
)

func valStr(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// valTime renders a TIME column value; nil stays NULL.
func valTime(t *domain.TimeOfDay) any {
	if t == nil {
		return nil
	}
	h, m, s := t.Clock()
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

func scanTime(ns sql.NullString) (*domain.TimeOfDay, error) {
	if !ns.Valid || ns.String == "" {
		return nil, nil
	}
	t, err := domain.ParseTimeOfDay(ns.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

type Repo struct{ db *sql.DB }

func New(db *sql.DB) *Repo { return &Repo{db: db} }

// UpsertLocation writes the location row and replaces its hours in one transaction.
func (r *Repo) UpsertLocation(ctx context.Context, l domain.Location) (id int64, err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	res, err := tx.ExecContext(ctx, upsertLocationSQL,
		l.Slug,
		l.Title,
		valStr(l.Introduction),
		l.Address,
		l.Coords.Lat,
		l.Coords.Lon,
		l.Live,
	)
	if err != nil {
		return 0, err
	}
	if id, err = res.LastInsertId(); err != nil {
		return 0, err
	}

	if _, err = tx.ExecContext(ctx, deleteHoursSQL, id); err != nil {
		return 0, err
	}
	if len(l.Hours) > 0 {
		values := make([]string, 0, len(l.Hours))
		args := make([]any, 0, len(l.Hours)*6) // 6 params per row
		for _, h := range l.Hours {
			values = append(values, "(?,?,?,?,?,?)")
			args = append(args,
				id,                 // location_id
				h.SortOrder,        // sort_order
				int(h.Day),         // day
				valTime(h.Opening), // opening_time
				valTime(h.Closing), // closing_time
				h.Closed,           // closed
			)
		}
		if _, err = tx.ExecContext(ctx, insertHoursPrefix+strings.Join(values, ","), args...); err != nil {
			return 0, err
		}
	}
	return id, tx.Commit()
}

// DeleteLocation removes the location; hours go with it through the FK cascade.
func (r *Repo) DeleteLocation(ctx context.Context, slug string) error {
	res, err := r.db.ExecContext(ctx, deleteLocationSQL, slug)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *Repo) LogMiss(ctx context.Context, slug string, status int, reason string) error {
	_, err := r.db.ExecContext(ctx, insertMissSQL, slug, status, truncateRunes(reason, maxMissReason))
	return err
}

// reason is VARCHAR(512) utf8mb4: the limit counts characters, and bytes must stay valid UTF-8.
const maxMissReason = 512

func truncateRunes(s string, n int) string {
	s = strings.ToValidUTF8(s, "\uFFFD")
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}

type rowScanner interface{ Scan(dest ...any) error }

func scanLocation(row rowScanner) (domain.Location, error) {
	var l domain.Location
	var intro sql.NullString
	if err := row.Scan(
		&l.ID,
		&l.Slug,
		&l.Title,
		&intro,
		&l.Address,
		&l.Coords.Lat, &l.Coords.Lon,
		&l.Live,
		&l.UpdatedAt,
	); err != nil {
		return domain.Location{}, err
	}
	if intro.Valid {
		l.Introduction = intro.String
	}
	return l, nil
}

func (r *Repo) GetLocation(ctx context.Context, slug string) (domain.Location, error) {
	l, err := scanLocation(r.db.QueryRowContext(ctx, getLocationSQL, slug))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Location{}, domain.ErrNotFound
		}
		return domain.Location{}, err
	}
	hours, err := r.hoursFor(ctx, l.ID)
	if err != nil {
		return domain.Location{}, err
	}
	l.Hours = hours[l.ID]
	return l, nil
}

func (r *Repo) ListLocations(ctx context.Context, q domain.LocationsQuery) (domain.LocationsPage, error) {
	rows, err := r.db.QueryContext(ctx, listLocationsSQL, q.Limit)
	if err != nil {
		return domain.LocationsPage{}, err
	}
	defer rows.Close()

	var out []domain.Location
	var ids []int64
	for rows.Next() {
		l, err := scanLocation(rows)
		if err != nil {
			return domain.LocationsPage{}, err
		}
		out = append(out, l)
		ids = append(ids, l.ID)
	}
	if err := rows.Err(); err != nil {
		return domain.LocationsPage{}, err
	}

	hours, err := r.hoursFor(ctx, ids...)
	if err != nil {
		return domain.LocationsPage{}, err
	}
	for i := range out {
		out[i].Hours = hours[out[i].ID]
	}
	return domain.LocationsPage{Items: out}, nil
}

// hoursFor loads the hours of every id in one query, keyed by location id.
func (r *Repo) hoursFor(ctx context.Context, ids ...int64) (map[int64]domain.Schedule, error) {
	out := make(map[int64]domain.Schedule, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	marks := make([]string, len(ids))
	args := make([]any, len(ids))
	for i, id := range ids {
		marks[i] = "?"
		args[i] = id
	}
	rows, err := r.db.QueryContext(ctx, hoursForLocationsPrefix+strings.Join(marks, ",")+hoursForLocationsSuffix, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			locID            int64
			day              int
			opening, closing sql.NullString
			h                domain.OperatingHours
		)
		if err := rows.Scan(&locID, &day, &opening, &closing, &h.Closed, &h.SortOrder); err != nil {
			return nil, err
		}
		h.Day = domain.Weekday(day)
		if h.Opening, err = scanTime(opening); err != nil {
			return nil, err
		}
		if h.Closing, err = scanTime(closing); err != nil {
			return nil, err
		}
		out[locID] = append(out[locID], h)
	}
	return out, rows.Err()
}

package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/hrygo/agenda/store"
)

func (d *DB) CreateBooking(ctx context.Context, create *store.Booking) (*store.Booking, error) {
	fields := []string{"uid", "session_id", "name", "start_ts"}
	args := []any{create.UID, create.SessionID, create.Name, create.StartTs}

	if create.CreatedTs != 0 {
		fields = append(fields, "created_ts")
		args = append(args, create.CreatedTs)
	}

	stmt := `INSERT INTO booking (` + strings.Join(fields, ", ") + `)
		VALUES (` + placeholders(len(args)) + `)
		RETURNING id, created_ts, row_status`
	if err := d.db.QueryRowContext(ctx, stmt, args...).Scan(
		&create.ID,
		&create.CreatedTs,
		&create.RowStatus,
	); err != nil {
		return nil, fmt.Errorf("failed to create booking: %w", err)
	}

	return create, nil
}

func (d *DB) ListBookings(ctx context.Context, find *store.FindBooking) ([]*store.Booking, error) {
	where, args := []string{"1 = 1"}, []any{}

	if v := find.ID; v != nil {
		where, args = append(where, "id = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := find.UID; v != nil {
		where, args = append(where, "uid = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := find.SessionID; v != nil {
		where, args = append(where, "session_id = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := find.RowStatus; v != nil {
		where, args = append(where, "row_status = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := find.StartTsFrom; v != nil {
		where, args = append(where, "start_ts >= "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := find.StartTsTo; v != nil {
		where, args = append(where, "start_ts < "+placeholder(len(args)+1)), append(args, *v)
	}

	query := `
		SELECT id, uid, session_id, name, start_ts, created_ts, row_status
		FROM booking
		WHERE ` + strings.Join(where, " AND ") + `
		ORDER BY start_ts ASC, id ASC`
	if find.Limit != nil {
		query = fmt.Sprintf("%s LIMIT %d", query, *find.Limit)
	}

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query bookings: %w", err)
	}
	defer rows.Close()

	list := make([]*store.Booking, 0)
	for rows.Next() {
		var booking store.Booking
		if err := rows.Scan(
			&booking.ID,
			&booking.UID,
			&booking.SessionID,
			&booking.Name,
			&booking.StartTs,
			&booking.CreatedTs,
			&booking.RowStatus,
		); err != nil {
			return nil, fmt.Errorf("failed to scan booking: %w", err)
		}
		list = append(list, &booking)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate bookings: %w", err)
	}

	return list, nil
}

func (d *DB) UpdateBooking(ctx context.Context, update *store.UpdateBooking) error {
	set, args := []string{}, []any{}
	if v := update.RowStatus; v != nil {
		set, args = append(set, "row_status = "+placeholder(len(args)+1)), append(args, *v)
	}
	if len(set) == 0 {
		return nil
	}
	args = append(args, update.ID)

	stmt := `UPDATE booking SET ` + strings.Join(set, ", ") + ` WHERE id = ` + placeholder(len(args))
	if _, err := d.db.ExecContext(ctx, stmt, args...); err != nil {
		return fmt.Errorf("failed to update booking: %w", err)
	}
	return nil
}

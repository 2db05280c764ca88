package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"petcare-plus/internal/domain/reminders"
)

type RemindersRepo struct {
	db *sql.DB
}

func NewRemindersRepo(db *sql.DB) *RemindersRepo {
	return &RemindersRepo{db: db}
}

var _ reminders.Repository = (*RemindersRepo)(nil)

func (r *RemindersRepo) Create(ctx context.Context, rem reminders.Reminder) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO reminders (
			id, pet_id, kind, title, description, date, status, created_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
	`,
		rem.ID,
		rem.PetID,
		rem.Kind,
		rem.Title,
		rem.Description,
		rem.Date,
		rem.Status,
		rem.CreatedAt,
	)
	return err
}

func (r *RemindersRepo) GetByID(ctx context.Context, id string) (reminders.Reminder, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return reminders.Reminder{}, reminders.ErrNotFound
	}

	row := r.db.QueryRowContext(ctx, `
		SELECT id, pet_id, kind, title, description, date, status, created_at
		FROM reminders
		WHERE id = $1
	`, id)

	rem, err := scanReminder(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return reminders.Reminder{}, reminders.ErrNotFound
		}
		return reminders.Reminder{}, err
	}
	return rem, nil
}

func (r *RemindersRepo) ListByPets(ctx context.Context, petIDs []string) ([]reminders.Reminder, error) {
	if len(petIDs) == 0 {
		return []reminders.Reminder{}, nil
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, pet_id, kind, title, description, date, status, created_at
		FROM reminders
		WHERE pet_id = ANY($1)
		ORDER BY created_at ASC, id ASC
	`, petIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]reminders.Reminder, 0)
	for rows.Next() {
		rem, err := scanReminder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rem)
	}
	return out, rows.Err()
}

func (r *RemindersRepo) UpdateStatus(ctx context.Context, id string, status reminders.Status) error {
	res, err := r.db.ExecContext(ctx, `UPDATE reminders SET status = $2 WHERE id = $1`, id, status)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return reminders.ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanReminder(row rowScanner) (reminders.Reminder, error) {
	var (
		rem  reminders.Reminder
		kind string
	)
	if err := row.Scan(
		&rem.ID,
		&rem.PetID,
		&kind,
		&rem.Title,
		&rem.Description,
		&rem.Date,
		&rem.Status,
		&rem.CreatedAt,
	); err != nil {
		return reminders.Reminder{}, err
	}
	rem.Kind = reminders.ParseKind(kind)
	rem.Source = reminders.SourceLocal
	return rem, nil
}

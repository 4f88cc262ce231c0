package db

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"tutorhive/schedule/internal/schedule"
)

// OverrideStore persists completion overrides in Postgres. It is the system
// of record for workflow state; the spreadsheet only mirrors it.
type OverrideStore struct {
	pool *pgxpool.Pool
}

var _ schedule.OverrideStore = (*OverrideStore)(nil)

func NewOverrideStore(pool *pgxpool.Pool) *OverrideStore {
	return &OverrideStore{pool: pool}
}

func (s *OverrideStore) ListByTeacher(ctx context.Context, teacherUID string) ([]schedule.Override, error) {
	const query = `
SELECT id, teacher_uid, teacher_name, class_date, start_time, end_time, time_range,
       batch, subject, status, completed_by, completed_at, created_at
FROM completion_overrides
WHERE teacher_uid = $1 OR $1 = 'ALL'
ORDER BY created_at ASC
`
	rows, err := s.pool.Query(ctx, query, teacherUID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var overrides []schedule.Override
	for rows.Next() {
		var (
			override    schedule.Override
			completedBy *string
			completedAt *time.Time
		)
		if err := rows.Scan(
			&override.ID,
			&override.TeacherUID,
			&override.TeacherName,
			&override.Date,
			&override.StartTime,
			&override.EndTime,
			&override.TimeRange,
			&override.Batch,
			&override.Subject,
			&override.Status,
			&completedBy,
			&completedAt,
			&override.CreatedAt,
		); err != nil {
			return nil, err
		}
		override.CompletedBy = completedBy
		override.CompletedAt = completedAt
		overrides = append(overrides, override)
	}
	return overrides, rows.Err()
}

func (s *OverrideStore) Create(ctx context.Context, override schedule.Override) error {
	const query = `
INSERT INTO completion_overrides (
	id, teacher_uid, teacher_name, class_date, start_time, end_time, time_range,
	batch, subject, status, created_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
`
	id := override.ID
	if id == "" {
		id = uuid.NewString()
	}
	createdAt := override.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	_, err := s.pool.Exec(ctx, query,
		id,
		override.TeacherUID,
		override.TeacherName,
		override.Date,
		override.StartTime,
		override.EndTime,
		override.TimeRange,
		override.Batch,
		override.Subject,
		override.Status,
		createdAt,
	)
	return err
}

func (s *OverrideStore) UpdateStatus(ctx context.Context, id string, status schedule.OverrideStatus, actorUID string, at time.Time) error {
	const query = `
UPDATE completion_overrides
SET status = $2, completed_by = $3, completed_at = $4
WHERE id = $1
`
	tag, err := s.pool.Exec(ctx, query, id, status, actorUID, at)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return schedule.ErrRowNotFound
	}
	return nil
}

func (s *OverrideStore) FindByTeacherDateTime(ctx context.Context, teacherUID, date, timeRange string) (*schedule.Override, error) {
	const query = `
SELECT id, teacher_uid, teacher_name, class_date, start_time, end_time, time_range,
       batch, subject, status, completed_by, completed_at, created_at
FROM completion_overrides
WHERE teacher_uid = $1 AND class_date = $2
  AND replace(replace(time_range, ' ', ''), '–', '-') = replace(replace($3, ' ', ''), '–', '-')
ORDER BY created_at DESC
LIMIT 1
`
	var (
		override    schedule.Override
		completedBy *string
		completedAt *time.Time
	)
	err := s.pool.QueryRow(ctx, query, teacherUID, date, timeRange).Scan(
		&override.ID,
		&override.TeacherUID,
		&override.TeacherName,
		&override.Date,
		&override.StartTime,
		&override.EndTime,
		&override.TimeRange,
		&override.Batch,
		&override.Subject,
		&override.Status,
		&completedBy,
		&completedAt,
		&override.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	override.CompletedBy = completedBy
	override.CompletedAt = completedAt
	return &override, nil
}

package migrations

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

var statements = []string{
	`CREATE TABLE IF NOT EXISTS completion_overrides (
		id uuid PRIMARY KEY,
		teacher_uid text NOT NULL,
		teacher_name text NOT NULL DEFAULT '',
		class_date text NOT NULL,
		start_time text NOT NULL DEFAULT '',
		end_time text NOT NULL DEFAULT '',
		time_range text NOT NULL DEFAULT '',
		batch text NOT NULL,
		subject text NOT NULL,
		status text NOT NULL,
		completed_by text,
		completed_at timestamptz,
		created_at timestamptz NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS completion_overrides_teacher_idx
		ON completion_overrides (teacher_uid, class_date)`,
}

// Up applies the schema. Statements are idempotent so startup can run this
// unconditionally.
func Up(ctx context.Context, pool *pgxpool.Pool) error {
	for _, statement := range statements {
		if _, err := pool.Exec(ctx, statement); err != nil {
			return err
		}
	}
	return nil
}

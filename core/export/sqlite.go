package export

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/adalundhe/courseaxis/core/axis"
)

const schema = `
CREATE TABLE IF NOT EXISTS axis_runs (
	id          TEXT PRIMARY KEY,
	course_id   TEXT NOT NULL,
	exported_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS course_axis (
	run_id      TEXT NOT NULL REFERENCES axis_runs(id),
	course_id   TEXT NOT NULL,
	idx         INTEGER NOT NULL,
	url_name    TEXT,
	category    TEXT,
	gformat     TEXT,
	start       TEXT,
	due         TEXT,
	name        TEXT,
	path        TEXT,
	module_id   TEXT,
	data        TEXT,
	chapter_mid TEXT
);

CREATE INDEX IF NOT EXISTS idx_course_axis_course ON course_axis(course_id, idx);
`

// SQLiteExporter persists course axes to a SQLite database, one run row per
// export so successive runs of the same course stay distinguishable.
type SQLiteExporter struct {
	db     *sql.DB
	logger *slog.Logger
}

// OpenSQLite opens (creating if needed) the database at path and ensures the
// schema exists.
func OpenSQLite(path string, logger *slog.Logger) (*SQLiteExporter, error) {
	if logger == nil {
		logger = slog.Default()
	}
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(30000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite %s: %w", path, err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate sqlite schema: %w", err)
	}
	return &SQLiteExporter{db: db, logger: logger}, nil
}

// Close closes the underlying database.
func (e *SQLiteExporter) Close() error {
	return e.db.Close()
}

// Export writes one course axis inside a single transaction and returns the
// run identifier.
func (e *SQLiteExporter) Export(ctx context.Context, ca *axis.CourseAxis) (string, error) {
	runID := uuid.NewString()

	tx, err := e.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("begin export transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO axis_runs (id, course_id, exported_at) VALUES (?, ?, ?)`,
		runID, ca.CourseID, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return "", fmt.Errorf("insert run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO course_axis
		(run_id, course_id, idx, url_name, category, gformat, start, due, name, path, module_id, data, chapter_mid)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return "", fmt.Errorf("prepare axis insert: %w", err)
	}
	defer stmt.Close()

	for i := range ca.Elements {
		row := Row(&ca.Elements[i])
		args := make([]any, 0, len(row)+2)
		args = append(args, runID, ca.CourseID, ca.Elements[i].Index)
		args = append(args, toAnySlice(row[1:])...)
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return "", fmt.Errorf("insert axis row %d: %w", ca.Elements[i].Index, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit export: %w", err)
	}
	e.logger.Info("exported course axis to sqlite",
		"course_id", ca.CourseID, "run_id", runID, "rows", len(ca.Elements))
	return runID, nil
}

func toAnySlice(row []string) []any {
	out := make([]any, len(row))
	for i, v := range row {
		out[i] = v
	}
	return out
}

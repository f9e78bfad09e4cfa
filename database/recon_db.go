package database

import (
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Question)

// CounterDrift describes one film whose stored frame_count disagrees with
// the number of live frame rows referencing it.
type CounterDrift struct {
	FilmID      string
	StoredCount int
	LiveCount   int
}

// FindCounterDrift returns every film whose denormalized frame_count does not
// match the live count of its frames. Soft-deleted films are skipped.
func FindCounterDrift(db *sql.DB) ([]CounterDrift, error) {
	queryBuilder := psql.Select(
		"f.id",
		"f.frame_count",
		"COUNT(fr.id) AS live_count").
		From("films f").
		LeftJoin("frames fr ON fr.film_id = f.id").
		Where(sq.Eq{"f.deleted_at": nil}).
		GroupBy("f.id", "f.frame_count").
		Having("f.frame_count != COUNT(fr.id)")

	sqlStr, args, err := queryBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build SQL for FindCounterDrift: %w", err)
	}

	rows, err := db.Query(sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to execute FindCounterDrift query: %w", err)
	}
	defer rows.Close()

	drifts := []CounterDrift{}
	for rows.Next() {
		var d CounterDrift
		if err := rows.Scan(&d.FilmID, &d.StoredCount, &d.LiveCount); err != nil {
			return drifts, fmt.Errorf("failed to scan counter drift row: %w", err)
		}
		drifts = append(drifts, d)
	}

	if err = rows.Err(); err != nil {
		return drifts, fmt.Errorf("error iterating counter drift rows: %w", err)
	}
	return drifts, nil
}

// FixFrameCount writes the live frame count onto a film, repairing drift
// found by FindCounterDrift.
func FixFrameCount(db *sql.DB, filmID string, liveCount int) error {
	queryBuilder := psql.Update("films").
		Set("frame_count", liveCount).
		Where(sq.Eq{"id": filmID})

	sqlStr, args, err := queryBuilder.ToSql()
	if err != nil {
		return fmt.Errorf("failed to build SQL for FixFrameCount: %w", err)
	}

	_, err = db.Exec(sqlStr, args...)
	if err != nil {
		return fmt.Errorf("failed to fix frame count for film %s: %w", filmID, err)
	}
	return nil
}

package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mchmarny/sprio/pkg/score"
)

const (
	QueryLimitDefault = 500

	insertRunSQL = `INSERT INTO run (id, source, created_at, species) VALUES (?, ?, ?, ?)`

	insertScoredSQL = `INSERT INTO scored_species (
			run_id, row_num, species_name, iucn_status, endemism, threat_level,
			altitudinal_range, exploitation, habitat_specificity, use_value,
			iucn_score, endemism_score, threat_score, altitude_score,
			exploitation_score, habitat_score, use_score, total_score, priority
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	selectScoredSQL = `SELECT
			run_id, row_num, species_name, iucn_status, endemism, threat_level,
			altitudinal_range, exploitation, habitat_specificity, use_value,
			iucn_score, endemism_score, threat_score, altitude_score,
			exploitation_score, habitat_score, use_score, total_score, priority
		FROM scored_species`

	selectRunsSQL = `SELECT id, source, created_at, species FROM run ORDER BY created_at DESC, id`
)

// Run describes one export.
type Run struct {
	ID        string `json:"id" yaml:"id"`
	Source    string `json:"source" yaml:"source"`
	CreatedAt string `json:"created_at" yaml:"createdAt"`
	Species   int    `json:"species" yaml:"species"`
}

// StoredSpecies is a scored species as persisted by an export run.
type StoredSpecies struct {
	score.Scored `yaml:",inline"`
	RunID        string `json:"run_id" yaml:"runId"`
	Row          int    `json:"row" yaml:"row"`
}

// Query filters ListScored. Zero values match everything.
type Query struct {
	RunID    string         `json:"run_id,omitempty"`
	Priority score.Priority `json:"priority,omitempty"`
	Name     string         `json:"name,omitempty"`
	Limit    int            `json:"limit,omitempty"`
}

// SaveScored writes rows as a new run in a single transaction and returns the
// run id. Nothing is written if any row fails.
func (s *Store) SaveScored(ctx context.Context, source string, rows []*score.Scored) (string, error) {
	if s == nil || s.db == nil {
		return "", ErrDBNotInitialized
	}

	id := uuid.NewString()
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("beginning transaction: %w", err)
	}

	if err := s.saveRun(ctx, tx, id, source, rows); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return "", errors.Join(err, fmt.Errorf("rolling back transaction: %w", rbErr))
		}
		return "", err
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("committing transaction: %w", err)
	}

	slog.Debug("saved run", "id", id, "species", len(rows), "driver", s.driver)
	return id, nil
}

func (s *Store) saveRun(ctx context.Context, tx *sql.Tx, id, source string, rows []*score.Scored) error {
	count := 0
	for _, r := range rows {
		if r != nil {
			count++
		}
	}

	created := time.Now().UTC().Format(time.RFC3339Nano)
	if _, err := tx.ExecContext(ctx, s.rebind(insertRunSQL), id, source, created, count); err != nil {
		return fmt.Errorf("inserting run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, s.rebind(insertScoredSQL))
	if err != nil {
		return fmt.Errorf("preparing species insert: %w", err)
	}
	defer stmt.Close()

	for i, r := range rows {
		if r == nil {
			continue
		}
		_, err := stmt.ExecContext(ctx,
			id, i+1, r.SpeciesName, r.IUCNStatus, r.Endemism, r.ThreatLevel,
			r.AltitudinalRange, r.Exploitation, r.HabitatSpecificity, r.UseValue,
			r.IUCNScore, r.EndemismScore, r.ThreatScore, r.AltitudeScore,
			r.ExploitationScore, r.HabitatScore, r.UseScore, r.TotalScore, r.Priority.String(),
		)
		if err != nil {
			return fmt.Errorf("inserting species %q (row %d): %w", r.SpeciesName, i+1, err)
		}
	}
	return nil
}

// ListScored returns persisted species matching q, highest total first.
func (s *Store) ListScored(ctx context.Context, q Query) ([]*StoredSpecies, error) {
	if s == nil || s.db == nil {
		return nil, ErrDBNotInitialized
	}

	var (
		where []string
		args  []any
	)
	if q.RunID != "" {
		where = append(where, "run_id = ?")
		args = append(args, q.RunID)
	}
	if q.Priority != "" {
		if !q.Priority.Valid() {
			return nil, fmt.Errorf("invalid priority: %q", q.Priority)
		}
		where = append(where, "priority = ?")
		args = append(args, q.Priority.String())
	}
	if q.Name != "" {
		where = append(where, "LOWER(species_name) LIKE ?")
		args = append(args, "%"+strings.ToLower(q.Name)+"%")
	}

	limit := q.Limit
	if limit <= 0 {
		limit = QueryLimitDefault
	}

	stmt := selectScoredSQL
	if len(where) > 0 {
		stmt += " WHERE " + strings.Join(where, " AND ")
	}
	stmt += " ORDER BY total_score DESC, run_id, row_num LIMIT ?"
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, s.rebind(stmt), args...)
	if err != nil {
		return nil, fmt.Errorf("querying scored species: %w", err)
	}
	defer rows.Close()

	list := make([]*StoredSpecies, 0)
	for rows.Next() {
		var (
			item     StoredSpecies
			priority string
		)
		err := rows.Scan(
			&item.RunID, &item.Row, &item.SpeciesName, &item.IUCNStatus, &item.Endemism, &item.ThreatLevel,
			&item.AltitudinalRange, &item.Exploitation, &item.HabitatSpecificity, &item.UseValue,
			&item.IUCNScore, &item.EndemismScore, &item.ThreatScore, &item.AltitudeScore,
			&item.ExploitationScore, &item.HabitatScore, &item.UseScore, &item.TotalScore, &priority,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning scored species: %w", err)
		}
		item.Priority = score.Priority(priority)
		list = append(list, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating scored species: %w", err)
	}

	return list, nil
}

// ListRuns returns all export runs, newest first.
func (s *Store) ListRuns(ctx context.Context) ([]*Run, error) {
	if s == nil || s.db == nil {
		return nil, ErrDBNotInitialized
	}

	rows, err := s.db.QueryContext(ctx, selectRunsSQL)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	list := make([]*Run, 0)
	for rows.Next() {
		r := &Run{}
		if err := rows.Scan(&r.ID, &r.Source, &r.CreatedAt, &r.Species); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		list = append(list, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating runs: %w", err)
	}
	return list, nil
}

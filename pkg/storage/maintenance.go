package storage

import (
	"context"
	"fmt"
	"time"
)

// Stats summarises the stored collection.
type Stats struct {
	Total        int            `json:"total"`
	ByVisibility map[string]int `json:"by_visibility"`
	ByType       map[string]int `json:"by_type"`
	Oldest       *time.Time     `json:"oldest,omitempty"`
	Newest       *time.Time     `json:"newest,omitempty"`
	LastImport   *time.Time     `json:"last_import,omitempty"`
}

func (s *Store) Stats(ctx context.Context) (*Stats, error) {
	stats := &Stats{
		ByVisibility: make(map[string]int),
		ByType:       make(map[string]int),
	}

	if err := s.countBy(ctx, "visibility", stats.ByVisibility); err != nil {
		return nil, err
	}
	if err := s.countBy(ctx, "type", stats.ByType); err != nil {
		return nil, err
	}
	for _, n := range stats.ByType {
		stats.Total += n
	}

	docs, err := s.Documents(ctx)
	if err != nil {
		return nil, err
	}
	for _, d := range docs {
		if d.PublishedAt == nil {
			continue
		}
		t := *d.PublishedAt
		if stats.Oldest == nil || t.Before(*stats.Oldest) {
			stats.Oldest = &t
		}
		if stats.Newest == nil || t.After(*stats.Newest) {
			stats.Newest = &t
		}
	}

	last, err := s.LastImport(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading last import: %w", err)
	}
	if !last.IsZero() {
		stats.LastImport = &last
	}

	return stats, nil
}

func (s *Store) countBy(ctx context.Context, column string, into map[string]int) error {
	rows, err := s.db.QueryContext(ctx, `SELECT `+column+`, COUNT(*) FROM documents GROUP BY `+column)
	if err != nil {
		return fmt.Errorf("counting by %s: %w", column, err)
	}
	defer rows.Close()

	for rows.Next() {
		var key string
		var n int
		if err := rows.Scan(&key, &n); err != nil {
			return fmt.Errorf("scanning %s count: %w", column, err)
		}
		into[key] = n
	}
	return rows.Err()
}

func (s *Store) Optimize() error {
	_, err := s.db.Exec("PRAGMA optimize")
	return err
}

func (s *Store) Analyze() error {
	_, err := s.db.Exec("ANALYZE")
	return err
}

func (s *Store) Vacuum() error {
	_, err := s.db.Exec("VACUUM")
	return err
}

func (s *Store) WALCheckpoint() error {
	_, err := s.db.Exec("PRAGMA wal_checkpoint(TRUNCATE)")
	return err
}

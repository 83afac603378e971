package database

import (
	"context"
	"fmt"
)

// Stats summarizes the stored data.
type Stats struct {
	// Records is the number of stored pages.
	Records int `json:"total_records"`

	// URLs is the number of URLs with a recorded status.
	URLs int `json:"total_urls"`

	// Scraped, Errors and Pending break URLs down by status.
	Scraped int `json:"scraped"`
	Errors  int `json:"errors"`
	Pending int `json:"pending"`
}

// Stats returns record and URL counts.
func (cdb *CrawlDB) Stats(ctx context.Context) (*Stats, error) {
	var s Stats
	if err := cdb.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM pages`).Scan(&s.Records); err != nil {
		return nil, fmt.Errorf("failed to count pages: %w", err)
	}

	rows, err := cdb.db.QueryContext(ctx, `SELECT status, COUNT(*) FROM urls GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("failed to count urls: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("failed to scan url count: %w", err)
		}
		s.URLs += n
		switch status {
		case "scraped":
			s.Scraped = n
		case "error":
			s.Errors = n
		case "pending":
			s.Pending = n
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &s, nil
}

// Clear deletes every page and URL status.
func (cdb *CrawlDB) Clear(ctx context.Context) error {
	tx, err := cdb.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, stmt := range []string{`DELETE FROM pages`, `DELETE FROM urls`} {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to clear database: %w", err)
		}
	}
	return tx.Commit()
}

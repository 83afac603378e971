package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/nao1215/dataminer/internal/model"
)

// PutURLStatus records status for url. A URL that already holds a terminal
// status (scraped or error) keeps it; only pending rows are updated.
func (cdb *CrawlDB) PutURLStatus(ctx context.Context, url string, status model.URLStatus) error {
	if !status.IsValid() {
		return fmt.Errorf("invalid url status %q", status)
	}

	query := `
	INSERT INTO urls (url, status)
	VALUES (?, ?)
	ON CONFLICT(url) DO UPDATE SET
		status = excluded.status,
		updated_at = CURRENT_TIMESTAMP
	WHERE urls.status = 'pending'
	`

	if _, err := cdb.db.ExecContext(ctx, query, url, status.String()); err != nil {
		return fmt.Errorf("failed to update url status: %w", err)
	}
	return nil
}

// URLStatus returns the stored status of url. The boolean is false when the
// URL has never been recorded.
func (cdb *CrawlDB) URLStatus(ctx context.Context, url string) (model.URLStatus, bool, error) {
	var status string
	err := cdb.db.QueryRowContext(ctx, `SELECT status FROM urls WHERE url = ?`, url).Scan(&status)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to get url status: %w", err)
	}
	return model.ParseURLStatus(status), true, nil
}

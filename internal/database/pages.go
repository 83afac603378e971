package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/nao1215/dataminer/internal/model"
)

// DefaultSearchLimit is used by Search when limit is not positive.
const DefaultSearchLimit = 100

// PutPageRecord inserts record. When a page with the same fingerprint
// already exists nothing is written and an error wrapping
// ErrDuplicateContent is returned. On success record.ID is set.
func (cdb *CrawlDB) PutPageRecord(ctx context.Context, record *model.PageRecord) error {
	if record.Fingerprint == "" {
		return errors.New("page record has no fingerprint")
	}

	metadataJSON, err := json.Marshal(record.Metadata)
	if err != nil {
		return fmt.Errorf("failed to serialize metadata: %w", err)
	}
	analysisJSON, err := json.Marshal(record.Analysis)
	if err != nil {
		return fmt.Errorf("failed to serialize analysis: %w", err)
	}

	query := `
	INSERT INTO pages (url, title, content, metadata, analysis, fetched_at, fingerprint)
	VALUES (?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(fingerprint) DO NOTHING
	`

	result, err := cdb.db.ExecContext(ctx, query,
		record.URL,
		record.Title,
		record.Content,
		string(metadataJSON),
		string(analysisJSON),
		formatTimestamp(record.FetchedAt),
		record.Fingerprint,
	)
	if err != nil {
		return fmt.Errorf("failed to insert page record: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to insert page record: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("page %s: %w", record.URL, ErrDuplicateContent)
	}

	if id, err := result.LastInsertId(); err == nil {
		record.ID = id
	}
	return nil
}

// ExistsFingerprint reports whether a page with fingerprint is stored.
func (cdb *CrawlDB) ExistsFingerprint(ctx context.Context, fingerprint string) (bool, error) {
	var count int
	err := cdb.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM pages WHERE fingerprint = ?`, fingerprint).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check fingerprint: %w", err)
	}
	return count > 0, nil
}

// GetPage returns the page stored under fingerprint, or nil if none.
func (cdb *CrawlDB) GetPage(ctx context.Context, fingerprint string) (*model.PageRecord, error) {
	rows, err := cdb.db.QueryContext(ctx, selectPages+` WHERE fingerprint = ?`, fingerprint)
	if err != nil {
		return nil, fmt.Errorf("failed to get page: %w", err)
	}
	pages, err := scanPages(rows)
	if err != nil {
		return nil, err
	}
	if len(pages) == 0 {
		return nil, nil
	}
	return pages[0], nil
}

// ListPages returns stored pages, newest first. A limit of zero or less
// returns every page.
func (cdb *CrawlDB) ListPages(ctx context.Context, limit int) ([]*model.PageRecord, error) {
	query := selectPages + ` ORDER BY fetched_at DESC, id DESC`
	args := make([]interface{}, 0, 1)
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := cdb.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list pages: %w", err)
	}
	return scanPages(rows)
}

// Search returns pages whose title or content contains query, newest first.
// The match is a case-insensitive substring match for ASCII letters.
func (cdb *CrawlDB) Search(ctx context.Context, query string, limit int) ([]*model.PageRecord, error) {
	if limit <= 0 {
		limit = DefaultSearchLimit
	}
	pattern := "%" + escapeLike(query) + "%"

	rows, err := cdb.db.QueryContext(ctx, selectPages+`
	WHERE title LIKE ? ESCAPE '\' OR content LIKE ? ESCAPE '\'
	ORDER BY fetched_at DESC, id DESC
	LIMIT ?`, pattern, pattern, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to search pages: %w", err)
	}
	return scanPages(rows)
}

const selectPages = `
	SELECT id, url, title, content, metadata, analysis, fetched_at, fingerprint
	FROM pages`

// scanPages reads page rows and closes rows.
func scanPages(rows *sql.Rows) ([]*model.PageRecord, error) {
	defer rows.Close()

	var pages []*model.PageRecord
	for rows.Next() {
		var (
			rec          model.PageRecord
			title        sql.NullString
			content      sql.NullString
			metadataJSON sql.NullString
			analysisJSON sql.NullString
			fetchedAt    string
		)
		if err := rows.Scan(
			&rec.ID,
			&rec.URL,
			&title,
			&content,
			&metadataJSON,
			&analysisJSON,
			&fetchedAt,
			&rec.Fingerprint,
		); err != nil {
			return nil, fmt.Errorf("failed to scan page: %w", err)
		}

		rec.Title = title.String
		rec.Content = content.String
		rec.FetchedAt = parseTimestamp(fetchedAt)

		if metadataJSON.String != "" {
			if err := json.Unmarshal([]byte(metadataJSON.String), &rec.Metadata); err != nil {
				return nil, fmt.Errorf("failed to parse metadata: %w", err)
			}
		}
		if analysisJSON.String != "" {
			if err := json.Unmarshal([]byte(analysisJSON.String), &rec.Analysis); err != nil {
				return nil, fmt.Errorf("failed to parse analysis: %w", err)
			}
		}

		pages = append(pages, &rec)
	}

	return pages, rows.Err()
}

// escapeLike escapes LIKE wildcards so query is matched literally.
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

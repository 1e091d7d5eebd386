package anime

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"tenseii/pkg/models"
)

type Repo struct {
	DB *sql.DB
}

func NewRepo(db *sql.DB) *Repo {
	return &Repo{DB: db}
}

// GetByCanonicalTitle looks up a catalog entry by exact, case-sensitive title.
// Returns (nil, nil) when no entry exists.
func (r *Repo) GetByCanonicalTitle(ctx context.Context, canonicalTitle string) (*models.AnimeLinks, error) {
	title := strings.TrimSpace(canonicalTitle)
	if title == "" {
		return nil, nil
	}

	row := r.DB.QueryRowContext(ctx, `
		SELECT canonical_title, official_url, platform_url
		FROM anime
		WHERE canonical_title = ?
		LIMIT 1
	`, title)

	var (
		links       models.AnimeLinks
		officialURL sql.NullString
		platformURL sql.NullString
	)
	if err := row.Scan(&links.CanonicalTitle, &officialURL, &platformURL); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("scan getByCanonicalTitle: %w", err)
	}

	links.OfficialURL = officialURL.String
	links.PlatformURL = platformURL.String
	return &links, nil
}

// ListCanonicalTitles returns all titles sorted ascending. Used at startup to
// build the vision sidecar's index, never on the request path.
func (r *Repo) ListCanonicalTitles(ctx context.Context) ([]string, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT canonical_title
		FROM anime
		ORDER BY canonical_title ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list titles query: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var title string
		if err := rows.Scan(&title); err != nil {
			return nil, fmt.Errorf("list titles scan: %w", err)
		}
		title = strings.TrimSpace(title)
		if title != "" {
			out = append(out, title)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list titles rows: %w", err)
	}
	return out, nil
}

// Upsert inserts or updates a catalog entry keyed by canonical title. Used by
// the seed tool; the request path is read-only.
func (r *Repo) Upsert(ctx context.Context, id string, links models.AnimeLinks) error {
	official := sql.NullString{String: links.OfficialURL, Valid: links.OfficialURL != ""}
	platform := sql.NullString{String: links.PlatformURL, Valid: links.PlatformURL != ""}

	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO anime (id, canonical_title, official_url, platform_url)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(canonical_title) DO UPDATE SET
		  official_url = excluded.official_url,
		  platform_url = excluded.platform_url,
		  updated_at = CURRENT_TIMESTAMP
	`, id, links.CanonicalTitle, official, platform)
	if err != nil {
		return fmt.Errorf("upsert anime: %w", err)
	}
	return nil
}

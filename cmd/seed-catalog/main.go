// seed-catalog upserts anime catalog entries from a CSV file with the header
// canonical_title,official_url,platform_url. Rows without any URL are skipped
// because the catalog requires at least one public link per entry.
package main

import (
	"context"
	"encoding/csv"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"tenseii/internal/anime"
	"tenseii/pkg/database"
	"tenseii/pkg/models"
	"tenseii/pkg/utils"
)

func main() {
	var in = flag.String("anime", "data/anime.csv", "input CSV path for anime catalog")
	flag.Parse()

	_ = godotenv.Load()
	cfg := utils.Load()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db := database.MustOpen(database.DefaultConfig(cfg.DBPath))
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatalf("db migrate failed: %v", err)
	}

	count, skipped, err := importCatalog(ctx, anime.NewRepo(db), *in)
	if err != nil {
		log.Fatalf("import catalog failed: %v", err)
	}

	log.Printf("imported %d anime from %s (%d rows skipped)", count, *in, skipped)
}

func importCatalog(ctx context.Context, repo *anime.Repo, path string) (int, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		return 0, 0, fmt.Errorf("read header: %w", err)
	}
	col := map[string]int{}
	for i, name := range header {
		col[strings.TrimSpace(strings.ToLower(name))] = i
	}
	for _, required := range []string{"canonical_title", "official_url", "platform_url"} {
		if _, ok := col[required]; !ok {
			return 0, 0, fmt.Errorf("missing column %q", required)
		}
	}

	count := 0
	skipped := 0
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return count, skipped, fmt.Errorf("read row: %w", err)
		}

		links := models.AnimeLinks{
			CanonicalTitle: field(row, col["canonical_title"]),
			OfficialURL:    field(row, col["official_url"]),
			PlatformURL:    field(row, col["platform_url"]),
		}
		if links.CanonicalTitle == "" {
			skipped++
			continue
		}
		if links.OfficialURL == "" && links.PlatformURL == "" {
			skipped++
			continue
		}

		if err := repo.Upsert(ctx, uuid.NewString(), links); err != nil {
			return count, skipped, err
		}
		count++
	}

	return count, skipped, nil
}

func field(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

package anime

import (
	"context"
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"

	"tenseii/pkg/database"
	"tenseii/pkg/models"
)

func newTestRepo(t *testing.T) *Repo {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return NewRepo(db)
}

func TestGetByCanonicalTitle(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	err := repo.Upsert(ctx, "id-1", models.AnimeLinks{
		CanonicalTitle: "Naruto",
		OfficialURL:    "https://x.example/naruto",
	})
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}

	got, err := repo.GetByCanonicalTitle(ctx, "Naruto")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got == nil {
		t.Fatal("expected entry, got nil")
	}
	if got.OfficialURL != "https://x.example/naruto" || got.PlatformURL != "" {
		t.Fatalf("unexpected links: %+v", got)
	}
}

func TestGetByCanonicalTitleExactMatch(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	if err := repo.Upsert(ctx, "id-1", models.AnimeLinks{CanonicalTitle: "Naruto", OfficialURL: "https://x.example/naruto"}); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	for _, title := range []string{"naruto", "NARUTO", "Naruto Shippuden", ""} {
		got, err := repo.GetByCanonicalTitle(ctx, title)
		if err != nil {
			t.Fatalf("get %q: %v", title, err)
		}
		if got != nil {
			t.Fatalf("lookup must be exact and case-sensitive, %q matched %+v", title, got)
		}
	}
}

func TestUpsertReplacesLinks(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	if err := repo.Upsert(ctx, "id-1", models.AnimeLinks{CanonicalTitle: "Bleach", OfficialURL: "https://old.example"}); err != nil {
		t.Fatalf("first upsert: %v", err)
	}
	if err := repo.Upsert(ctx, "id-2", models.AnimeLinks{CanonicalTitle: "Bleach", PlatformURL: "https://watch.example/bleach"}); err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	got, err := repo.GetByCanonicalTitle(ctx, "Bleach")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.OfficialURL != "" || got.PlatformURL != "https://watch.example/bleach" {
		t.Fatalf("upsert did not replace links: %+v", got)
	}
}

func TestUpsertRequiresSomeURL(t *testing.T) {
	repo := newTestRepo(t)

	err := repo.Upsert(context.Background(), "id-1", models.AnimeLinks{CanonicalTitle: "No Links"})
	if err == nil {
		t.Fatal("entry without any url must be rejected by the schema")
	}
}

func TestListCanonicalTitles(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	for i, title := range []string{"One Piece", "Bleach", "Naruto"} {
		if err := repo.Upsert(ctx, string(rune('a'+i)), models.AnimeLinks{CanonicalTitle: title, OfficialURL: "https://x.example/" + title}); err != nil {
			t.Fatalf("upsert %s: %v", title, err)
		}
	}

	titles, err := repo.ListCanonicalTitles(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	want := []string{"Bleach", "Naruto", "One Piece"}
	if len(titles) != len(want) {
		t.Fatalf("expected %d titles, got %v", len(want), titles)
	}
	for i := range want {
		if titles[i] != want[i] {
			t.Fatalf("titles not sorted: %v", titles)
		}
	}
}

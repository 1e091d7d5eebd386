package identify

import (
	"encoding/json"
	"strings"
	"testing"

	"tenseii/pkg/models"
)

func TestSanitizeCandidates(t *testing.T) {
	in := []models.AnimeCandidate{
		{Title: "  Bleach  ", Confidence: 0.4},
		{Title: "", Confidence: 0.99},
		{Title: "Naruto", Confidence: 1.5},
		{Title: "   ", Confidence: 0.7},
		{Title: "One Piece", Confidence: -0.3},
	}

	out := sanitizeCandidates(in)

	if len(out) != 3 {
		t.Fatalf("expected 3 candidates, got %d: %+v", len(out), out)
	}
	if out[0].Title != "Naruto" || out[0].Confidence != 1.0 {
		t.Fatalf("expected clamped Naruto first, got %+v", out[0])
	}
	if out[1].Title != "Bleach" {
		t.Fatalf("expected trimmed Bleach second, got %+v", out[1])
	}
	if out[2].Title != "One Piece" || out[2].Confidence != 0.0 {
		t.Fatalf("expected clamped One Piece last, got %+v", out[2])
	}
}

func TestSanitizeCandidatesStableTies(t *testing.T) {
	in := []models.AnimeCandidate{
		{Title: "First", Confidence: 0.5},
		{Title: "Second", Confidence: 0.5},
		{Title: "Third", Confidence: 0.5},
	}

	out := sanitizeCandidates(in)

	for i, want := range []string{"First", "Second", "Third"} {
		if out[i].Title != want {
			t.Fatalf("tie order not preserved at %d: got %s, want %s", i, out[i].Title, want)
		}
	}
}

func TestParseCachedCandidatesSkipsBadEntries(t *testing.T) {
	raw := []json.RawMessage{
		json.RawMessage(`42`),
		json.RawMessage(`{"title":"Naruto","confidence":0.9}`),
		json.RawMessage(`"nope"`),
		json.RawMessage(`{"title":"  ","confidence":0.8}`),
		json.RawMessage(`{"title":"Bleach","confidence":0.4}`),
	}

	out := parseCachedCandidates(raw)

	if len(out) != 2 {
		t.Fatalf("expected 2 candidates, got %d: %+v", len(out), out)
	}
	if out[0].Title != "Naruto" || out[1].Title != "Bleach" {
		t.Fatalf("unexpected order: %+v", out)
	}
}

func TestNormalizePublicURL(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"https kept", "https://example.com/anime", "https://example.com/anime"},
		{"http kept", "http://example.com", "http://example.com"},
		{"trimmed", "  https://example.com  ", "https://example.com"},
		{"empty", "", ""},
		{"ftp rejected", "ftp://example.com/file", ""},
		{"javascript rejected", "javascript:alert(1)", ""},
		{"no host", "https://", ""},
		{"relative", "/watch/naruto", ""},
		{"newline", "https://example.com/a\nb", ""},
		{"tab", "https://example.com/a\tb", ""},
		{"too long", "https://example.com/" + strings.Repeat("a", 2048), ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := normalizePublicURL(tc.in); got != tc.want {
				t.Fatalf("normalizePublicURL(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestNormalizeCachedLinks(t *testing.T) {
	if _, ok := normalizeCachedLinks(models.AnimeLinks{CanonicalTitle: "  "}); ok {
		t.Fatal("blank title must be treated as a cache miss")
	}

	links, ok := normalizeCachedLinks(models.AnimeLinks{
		CanonicalTitle: " Naruto ",
		OfficialURL:    "ftp://bad.example",
		PlatformURL:    "https://watch.example/naruto",
	})
	if !ok {
		t.Fatal("expected usable links")
	}
	if links.CanonicalTitle != "Naruto" {
		t.Fatalf("title not trimmed: %q", links.CanonicalTitle)
	}
	if links.OfficialURL != "" {
		t.Fatalf("invalid official url must be dropped: %q", links.OfficialURL)
	}
	if links.PlatformURL != "https://watch.example/naruto" {
		t.Fatalf("valid platform url must survive: %q", links.PlatformURL)
	}
}

func TestTitleMarkdownStripsBrackets(t *testing.T) {
	got := titleMarkdown("[Naruto] (TV)", "https://x.example/naruto")
	want := "[Naruto (TV)](https://x.example/naruto)"
	if got != want {
		t.Fatalf("titleMarkdown = %q, want %q", got, want)
	}
}

func TestNormalizeMessage(t *testing.T) {
	got := normalizeMessage("  Привет,\n\nСенпай!\t Это \r\n твоё  аниме.  ")
	want := "Привет, Сенпай! Это твоё аниме."
	if got != want {
		t.Fatalf("normalizeMessage = %q, want %q", got, want)
	}
}

func TestValidLLMOutput(t *testing.T) {
	link := "[Naruto](https://x.example/naruto)"

	cases := []struct {
		name string
		text string
		want bool
	}{
		{"valid", "Отаку, это же " + link + "! Понравится.", true},
		{"empty", "", false},
		{"too short", "Привет!", false},
		{"missing link", "Отаку, нашла твоё аниме, честно-честно!", false},
		{"mutated link", "Отаку, вот [Naruto](https://x.example/NARUTO), держи!", false},
		{"forbidden lowercase", "Отаку, ollama подсказала: " + link + "!", false},
		{"forbidden uppercase", "Отаку, REDIS помог найти " + link + "!", false},
		{"forbidden not whole word", "Отаку, сохрани в clipboard: " + link + "!", true},
		{"code fence", "Отаку, вот оно: ```" + link + "```", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := validLLMOutput(tc.text, link); got != tc.want {
				t.Fatalf("validLLMOutput(%q) = %v, want %v", tc.text, got, tc.want)
			}
		})
	}
}

package identify

import (
	"encoding/json"
	"net/url"
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"tenseii/pkg/models"
)

// forbiddenTerms is internal vocabulary that must never leak into a
// user-facing message. Whole-word, case-insensitive.
var forbiddenTerms = regexp.MustCompile(`(?i)\b(clip|ollama|threshold|sqlite|postgres|redis)\b`)

// sanitizeCandidates drops empty titles, clamps confidence into [0,1] and
// sorts descending by confidence. The sort is stable so ties keep input order.
func sanitizeCandidates(candidates []models.AnimeCandidate) []models.AnimeCandidate {
	out := make([]models.AnimeCandidate, 0, len(candidates))
	for _, c := range candidates {
		title := strings.TrimSpace(c.Title)
		if title == "" {
			continue
		}
		out = append(out, models.AnimeCandidate{Title: title, Confidence: clamp01(c.Confidence)})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Confidence > out[j].Confidence })
	return out
}

// parseCachedCandidates decodes a cached candidate list entry by entry so one
// malformed element does not discard the rest.
func parseCachedCandidates(raw []json.RawMessage) []models.AnimeCandidate {
	out := make([]models.AnimeCandidate, 0, len(raw))
	for _, item := range raw {
		var c models.AnimeCandidate
		if err := json.Unmarshal(item, &c); err != nil {
			continue
		}
		title := strings.TrimSpace(c.Title)
		if title == "" {
			continue
		}
		out = append(out, models.AnimeCandidate{Title: title, Confidence: clamp01(c.Confidence)})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Confidence > out[j].Confidence })
	return out
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// normalizePublicURL returns the URL unchanged when it is safe to show to a
// user and to embed in a markdown link, and "" otherwise: http(s) scheme,
// non-empty host, at most 2048 chars, no CR/LF/TAB.
func normalizePublicURL(raw string) string {
	value := strings.TrimSpace(raw)
	if value == "" || len(value) > 2048 {
		return ""
	}
	if strings.ContainsAny(value, "\r\n\t") {
		return ""
	}

	parsed, err := url.Parse(value)
	if err != nil {
		return ""
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return ""
	}
	if parsed.Host == "" {
		return ""
	}
	return value
}

// normalizeCachedLinks validates a links value read back from the cache.
// An empty title means the cached entry is unusable and counts as a miss.
func normalizeCachedLinks(cached models.AnimeLinks) (*models.AnimeLinks, bool) {
	title := strings.TrimSpace(cached.CanonicalTitle)
	if title == "" {
		return nil, false
	}
	return &models.AnimeLinks{
		CanonicalTitle: title,
		OfficialURL:    normalizePublicURL(cached.OfficialURL),
		PlatformURL:    normalizePublicURL(cached.PlatformURL),
	}, true
}

// titleMarkdown builds the `[title](url)` caption. Brackets are stripped from
// the title so its content cannot break the link.
func titleMarkdown(title, primaryURL string) string {
	safe := strings.NewReplacer("[", "", "]", "").Replace(title)
	return "[" + strings.TrimSpace(safe) + "](" + primaryURL + ")"
}

// normalizeMessage collapses all whitespace runs to single spaces.
func normalizeMessage(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

// validLLMOutput applies the four acceptance checks to generator output:
// minimum length, required link substring verbatim, no internal vocabulary,
// no code blocks.
func validLLMOutput(text, requiredSubstring string) bool {
	if text == "" || utf8.RuneCountInString(text) < 10 {
		return false
	}
	if !strings.Contains(text, requiredSubstring) {
		return false
	}
	if forbiddenTerms.MatchString(text) {
		return false
	}
	if strings.Contains(text, "```") {
		return false
	}
	return true
}

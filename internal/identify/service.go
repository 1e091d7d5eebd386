// Package identify holds the identification pipeline: it turns a validated
// image into a confident result or a short list of uncertain candidates by
// coordinating the vision classifier, the catalog and the text generator,
// each behind a cache.
package identify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"tenseii/internal/apperr"
	"tenseii/internal/cache"
	"tenseii/internal/persona"
	"tenseii/pkg/models"
)

type Config struct {
	ConfidenceThreshold float64
	VisionTopK          int
	CandidateCacheTTL   time.Duration
	LinksCacheTTL       time.Duration
	MessageCacheTTL     time.Duration
	VisionTimeout       time.Duration
}

func (c Config) Validate() error {
	if c.ConfidenceThreshold <= 0 || c.ConfidenceThreshold > 1 {
		return fmt.Errorf("confidence threshold must be within (0, 1]")
	}
	if c.VisionTopK <= 0 {
		return fmt.Errorf("vision top-k must be positive")
	}
	if c.CandidateCacheTTL <= 0 || c.LinksCacheTTL <= 0 || c.MessageCacheTTL <= 0 {
		return fmt.Errorf("cache TTLs must be positive")
	}
	if c.VisionTimeout <= 0 {
		return fmt.Errorf("vision timeout must be positive")
	}
	return nil
}

// Repository resolves a canonical title to its public links. Exact match,
// case-sensitive; (nil, nil) means no entry.
type Repository interface {
	GetByCanonicalTitle(ctx context.Context, canonicalTitle string) (*models.AnimeLinks, error)
}

// Vision returns ranked candidates for image bytes. The returned order is not
// trusted.
type Vision interface {
	Recognize(ctx context.Context, imageBytes []byte, topK int) ([]models.AnimeCandidate, error)
}

// LLM is a stateless single-turn chat call.
type LLM interface {
	Chat(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// PersonaRenderer supplies the few-shot style block for a locale and premium
// tier; an empty string is valid.
type PersonaRenderer func(locale string, premium bool) string

type Service struct {
	cfg     Config
	cache   cache.Cache
	repo    Repository
	vision  Vision
	llm     LLM
	persona PersonaRenderer
}

func NewService(cfg Config, c cache.Cache, repo Repository, vision Vision, llm LLM, renderer PersonaRenderer) *Service {
	if renderer == nil {
		renderer = func(locale string, premium bool) string {
			return persona.Render(locale, premium, persona.DefaultFewShotConfig())
		}
	}
	return &Service{cfg: cfg, cache: c, repo: repo, vision: vision, llm: llm, persona: renderer}
}

// Identify runs the pipeline: candidates, confidence gate, links, caption
// markdown, generated message. Stages run strictly in order; the first
// unrecoverable failure maps to one error kind from the apperr taxonomy.
func (s *Service) Identify(ctx context.Context, image models.ValidatedImage, locale string, premium bool) (models.IdentificationResult, error) {
	candidates, err := s.resolveCandidates(ctx, image)
	if err != nil {
		return nil, err
	}

	top := candidates[0]
	if top.Confidence < s.cfg.ConfidenceThreshold {
		if len(candidates) > 3 {
			candidates = candidates[:3]
		}
		return models.IdentificationUncertain{Candidates: candidates}, nil
	}

	links, err := s.resolveLinks(ctx, top.Title)
	if err != nil {
		return nil, err
	}

	primaryURL := links.OfficialURL
	if primaryURL == "" {
		primaryURL = links.PlatformURL
	}
	if primaryURL == "" {
		return nil, apperr.LinksNotFound("no public url after normalization")
	}

	markdown := titleMarkdown(links.CanonicalTitle, primaryURL)

	message, err := s.resolveMessage(ctx, locale, premium, markdown, *links)
	if err != nil {
		return nil, err
	}

	return models.IdentificationSuccess{
		CanonicalTitle: links.CanonicalTitle,
		PrimaryURL:     primaryURL,
		OfficialURL:    links.OfficialURL,
		PlatformURL:    links.PlatformURL,
		TitleMarkdown:  markdown,
		Message:        message,
	}, nil
}

// resolveCandidates is cache-aside keyed by image content hash, so identical
// bytes from any caller reuse one classifier run.
func (s *Service) resolveCandidates(ctx context.Context, image models.ValidatedImage) ([]models.AnimeCandidate, error) {
	key := "img:clip:" + image.SHA256

	if raw, ok := cacheGet[[]json.RawMessage](ctx, s.cache, key); ok {
		if parsed := parseCachedCandidates(raw); len(parsed) > 0 {
			return parsed, nil
		}
	}

	visionCtx, cancel := context.WithTimeout(ctx, s.cfg.VisionTimeout)
	defer cancel()

	raw, err := s.vision.Recognize(visionCtx, image.Content, s.cfg.VisionTopK)
	if err != nil {
		detail := "vision failure"
		if errors.Is(err, context.DeadlineExceeded) {
			detail = "vision timeout"
		}
		return nil, apperr.RecognitionUnavailable(detail).WithCause(err)
	}

	candidates := sanitizeCandidates(raw)
	if len(candidates) == 0 {
		return nil, apperr.RecognitionUnavailable("no usable candidates")
	}

	cacheSet(ctx, s.cache, key, candidates, s.cfg.CandidateCacheTTL)
	return candidates, nil
}

// resolveLinks is cache-aside keyed by canonical title. URLs are normalized
// both on cache hits and on fresh lookups so malformed persisted data never
// reaches a response.
func (s *Service) resolveLinks(ctx context.Context, canonicalTitle string) (*models.AnimeLinks, error) {
	key := "anime:links:" + canonicalTitle

	if cached, ok := cacheGet[models.AnimeLinks](ctx, s.cache, key); ok {
		if links, usable := normalizeCachedLinks(cached); usable {
			return links, nil
		}
	}

	found, err := s.repo.GetByCanonicalTitle(ctx, canonicalTitle)
	if err != nil {
		return nil, apperr.ServiceUnavailable("catalog lookup failed").WithCause(err)
	}
	if found == nil {
		return nil, apperr.AnimeNotFound("no catalog entry for candidate")
	}

	links := &models.AnimeLinks{
		CanonicalTitle: found.CanonicalTitle,
		OfficialURL:    normalizePublicURL(found.OfficialURL),
		PlatformURL:    normalizePublicURL(found.PlatformURL),
	}

	cacheSet(ctx, s.cache, key, links, s.cfg.LinksCacheTTL)
	return links, nil
}

// resolveMessage is cache-aside keyed by locale, premium tier and title. On a
// miss it runs the generator with at most one corrective retry.
func (s *Service) resolveMessage(ctx context.Context, locale string, premium bool, markdown string, links models.AnimeLinks) (string, error) {
	premiumInt := 0
	if premium {
		premiumInt = 1
	}
	key := fmt.Sprintf("anime:llm:%s:%d:%s", locale, premiumInt, links.CanonicalTitle)

	if cached, ok := cacheGet[string](ctx, s.cache, key); ok && strings.TrimSpace(cached) != "" {
		return cached, nil
	}

	fewshot := s.persona(locale, premium)
	systemPrompt, userPrompt := buildPrompts(locale, premium, markdown, links, fewshot)

	message, err := s.chatStrict(ctx, systemPrompt, userPrompt, markdown, locale)
	if err != nil {
		return "", err
	}
	message = normalizeMessage(message)

	cacheSet(ctx, s.cache, key, message, s.cfg.MessageCacheTTL)
	return message, nil
}

// chatStrict is the two-attempt loop: generate, validate, and on invalid
// output retry once with the corrective prompt. There is no third attempt.
func (s *Service) chatStrict(ctx context.Context, systemPrompt, userPrompt, requiredSubstring, locale string) (string, error) {
	out, err := s.llm.Chat(ctx, systemPrompt, userPrompt)
	if err != nil {
		return "", apperr.LLMUnavailable("generation failed").WithCause(err)
	}
	out = strings.TrimSpace(out)
	if validLLMOutput(out, requiredSubstring) {
		return out, nil
	}

	retryPrompt := retryUserPrompt(userPrompt, locale, requiredSubstring)
	out, err = s.llm.Chat(ctx, systemPrompt, retryPrompt)
	if err != nil {
		return "", apperr.LLMUnavailable("retry generation failed").WithCause(err)
	}
	out = strings.TrimSpace(out)
	if validLLMOutput(out, requiredSubstring) {
		return out, nil
	}

	return "", apperr.LLMUnavailable("output failed validation twice")
}

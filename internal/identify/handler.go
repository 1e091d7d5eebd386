package identify

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"tenseii/internal/apperr"
	"tenseii/internal/auth"
	"tenseii/internal/i18n"
	"tenseii/internal/imagecheck"
	"tenseii/internal/middleware"
	"tenseii/pkg/models"
)

var identifyResultsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "tenseii_identify_results_total",
	Help: "Identification outcomes by status.",
}, []string{"outcome"})

// UploadLimits bounds what the identify endpoint accepts before the pipeline
// ever sees the image.
type UploadLimits struct {
	MaxUploadBytes        int
	UploadReadChunkSize   int
	AllowedImageMimeTypes []string
	MaxImagePixels        int
	MaxImageWidth         int
	MaxImageHeight        int
}

type Handler struct {
	Service *Service
	Limits  UploadLimits
}

func NewHandler(service *Service, limits UploadLimits) *Handler {
	return &Handler{Service: service, Limits: limits}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/anime/identify", h.identify)
}

type candidateOut struct {
	Title      string  `json:"title"`
	Confidence float64 `json:"confidence"`
}

type animeOut struct {
	CanonicalTitle string `json:"canonical_title"`
	PrimaryURL     string `json:"primary_url"`
	OfficialURL    string `json:"official_url,omitempty"`
	PlatformURL    string `json:"platform_url,omitempty"`
	TitleMarkdown  string `json:"title_markdown"`
}

func (h *Handler) identify(c *gin.Context) {
	locale := middleware.GetLocale(c)
	rid := middleware.GetRequestID(c)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		identifyResultsTotal.WithLabelValues("error").Inc()
		apperr.Respond(c, locale, rid, apperr.RequestInvalid("missing file field").WithCause(err))
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		identifyResultsTotal.WithLabelValues("error").Inc()
		apperr.Respond(c, locale, rid, apperr.InvalidImage("open upload").WithCause(err))
		return
	}
	defer file.Close()

	data, sha256Hex, err := imagecheck.ReadLimited(file, h.Limits.MaxUploadBytes, h.Limits.UploadReadChunkSize)
	if err != nil {
		identifyResultsTotal.WithLabelValues("error").Inc()
		apperr.Respond(c, locale, rid, err)
		return
	}

	image, err := imagecheck.Validate(data, sha256Hex,
		h.Limits.AllowedImageMimeTypes, h.Limits.MaxImagePixels, h.Limits.MaxImageWidth, h.Limits.MaxImageHeight)
	if err != nil {
		identifyResultsTotal.WithLabelValues("error").Inc()
		apperr.Respond(c, locale, rid, err)
		return
	}

	result, err := h.Service.Identify(c.Request.Context(), image, locale, auth.IsPremium(c))
	if err != nil {
		identifyResultsTotal.WithLabelValues("error").Inc()
		apperr.Respond(c, locale, rid, err)
		return
	}

	switch r := result.(type) {
	case models.IdentificationUncertain:
		identifyResultsTotal.WithLabelValues("uncertain").Inc()
		candidates := make([]candidateOut, 0, len(r.Candidates))
		for _, cand := range r.Candidates {
			candidates = append(candidates, candidateOut{Title: cand.Title, Confidence: cand.Confidence})
		}
		c.JSON(http.StatusOK, gin.H{
			"status":     "uncertain",
			"request_id": rid,
			"message":    i18n.T(locale, "uncertain"),
			"candidates": candidates,
		})

	case models.IdentificationSuccess:
		identifyResultsTotal.WithLabelValues("ok").Inc()
		c.JSON(http.StatusOK, gin.H{
			"status":     "ok",
			"request_id": rid,
			"message":    r.Message,
			"anime": animeOut{
				CanonicalTitle: r.CanonicalTitle,
				PrimaryURL:     r.PrimaryURL,
				OfficialURL:    r.OfficialURL,
				PlatformURL:    r.PlatformURL,
				TitleMarkdown:  r.TitleMarkdown,
			},
		})

	default:
		identifyResultsTotal.WithLabelValues("error").Inc()
		apperr.Respond(c, locale, rid, apperr.Internal("unexpected result type"))
	}
}

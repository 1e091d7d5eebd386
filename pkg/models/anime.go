package models

// ValidatedImage is an upload that already passed size, format and dimension
// checks. SHA256 is the hex digest of Content and doubles as the dedupe key.
type ValidatedImage struct {
	Content  []byte
	MimeType string
	SHA256   string
	Width    int
	Height   int
}

// AnimeCandidate is one ranked guess from the vision classifier.
type AnimeCandidate struct {
	Title      string  `json:"title"`
	Confidence float64 `json:"confidence"`
}

// AnimeLinks holds the public links for a catalog entry. An empty string means
// the link is absent. The JSON tags are the cache wire format.
type AnimeLinks struct {
	CanonicalTitle string `json:"canonical_title"`
	OfficialURL    string `json:"official_url,omitempty"`
	PlatformURL    string `json:"platform_url,omitempty"`
}

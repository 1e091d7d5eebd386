package models

// IdentificationResult is either a confident IdentificationSuccess or an
// IdentificationUncertain with the best candidates.
type IdentificationResult interface {
	isIdentificationResult()
}

type IdentificationSuccess struct {
	CanonicalTitle string
	PrimaryURL     string
	OfficialURL    string
	PlatformURL    string
	TitleMarkdown  string
	Message        string
}

type IdentificationUncertain struct {
	Candidates []AnimeCandidate
}

func (IdentificationSuccess) isIdentificationResult()   {}
func (IdentificationUncertain) isIdentificationResult() {}

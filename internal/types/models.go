package types

// Resource is one support option from the resource catalog.
// At least one of Contact or Website is set.
type Resource struct {
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description" yaml:"description"`
	Contact     string `json:"contact,omitempty" yaml:"contact,omitempty"`
	Website     string `json:"website,omitempty" yaml:"website,omitempty"`
}

// Reach returns the way to get in touch, preferring the contact over the website.
func (r Resource) Reach() string {
	if r.Contact != "" {
		return r.Contact
	}
	return r.Website
}

// Sentiment is the document-level valence (-1..1) and its magnitude (>= 0).
type Sentiment struct {
	Score     float64 `json:"score"`
	Magnitude float64 `json:"magnitude"`
}

// AnalysisResult is returned by /analyze and /mood
type AnalysisResult struct {
	Transcript         string  `json:"transcript"`
	SentimentScore     float64 `json:"sentiment_score"`
	SentimentMagnitude float64 `json:"sentiment_magnitude"`
	DistressLevel      string  `json:"distress_level,omitempty"`
	Reply              string  `json:"gemini_response"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

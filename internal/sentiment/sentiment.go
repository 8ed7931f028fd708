// Package sentiment scores the valence and magnitude of a piece of text.
package sentiment

import (
	"context"
	"fmt"
	"strconv"

	language "cloud.google.com/go/language/apiv1"
	"cloud.google.com/go/language/apiv1/languagepb"
	"google.golang.org/api/option"

	"mindscape-go/internal/types"
)

type Analyzer interface {
	Analyze(ctx context.Context, text string) (types.Sentiment, error)
}

// Google scores documents with the Cloud Natural Language API.
type Google struct {
	client *language.Client
}

// NewGoogle dials the Natural Language API. Options override the endpoint
// and credentials; none are needed with application default credentials.
func NewGoogle(ctx context.Context, opts ...option.ClientOption) (*Google, error) {
	client, err := language.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("language client: %w", err)
	}
	return &Google{client: client}, nil
}

func (g *Google) Close() error {
	return g.client.Close()
}

func (g *Google) Analyze(ctx context.Context, text string) (types.Sentiment, error) {
	resp, err := g.client.AnalyzeSentiment(ctx, &languagepb.AnalyzeSentimentRequest{
		Document: &languagepb.Document{
			Source: &languagepb.Document_Content{Content: text},
			Type:   languagepb.Document_PLAIN_TEXT,
		},
		EncodingType: languagepb.EncodingType_UTF8,
	})
	if err != nil {
		return types.Sentiment{}, fmt.Errorf("analyze sentiment: %w", err)
	}
	ds := resp.GetDocumentSentiment()
	if ds == nil {
		return types.Sentiment{}, fmt.Errorf("analyze sentiment: no document sentiment")
	}
	return types.Sentiment{
		Score:     widen(ds.GetScore()),
		Magnitude: widen(ds.GetMagnitude()),
	}, nil
}

// widen converts an API float32 to the float64 with the same shortest
// decimal form, so a reported -0.6 stays -0.6 and not -0.6000000238418579.
func widen(f float32) float64 {
	v, err := strconv.ParseFloat(strconv.FormatFloat(float64(f), 'g', -1, 32), 64)
	if err != nil {
		return float64(f)
	}
	return v
}

// Mock returns a fixed score. Enabled with USE_MOCK_SENTIMENT=true.
type Mock struct {
	Score     float64
	Magnitude float64
}

func (m Mock) Analyze(_ context.Context, _ string) (types.Sentiment, error) {
	return types.Sentiment{Score: m.Score, Magnitude: m.Magnitude}, nil
}

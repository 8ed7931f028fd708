package distress

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"mindscape-go/internal/types"
)

// Input is what a classifier may look at. Sentiment is nil when scoring
// was skipped or failed.
type Input struct {
	Text      string
	Sentiment *types.Sentiment
}

// Classifier never fails: anything it cannot decide becomes Fallback.
type Classifier interface {
	Classify(ctx context.Context, in Input) Level
}

// Generator is the generative-text collaborator used by PromptClassifier.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

const (
	StrategyThreshold = "threshold"
	StrategyModel     = "model"
)

// New returns the classifier for strategy. gen is only needed for StrategyModel.
func New(strategy string, gen Generator, log *logrus.Entry) (Classifier, error) {
	switch strings.ToLower(strings.TrimSpace(strategy)) {
	case "", StrategyThreshold:
		return ThresholdClassifier{log: log}, nil
	case StrategyModel:
		if gen == nil {
			return nil, fmt.Errorf("classifier strategy %q needs a text generator", StrategyModel)
		}
		return &PromptClassifier{gen: gen, log: log}, nil
	default:
		return nil, fmt.Errorf("unknown classifier strategy %q", strategy)
	}
}

// ThresholdClassifier buckets the sentiment valence with FromScore.
type ThresholdClassifier struct {
	log *logrus.Entry
}

func NewThresholdClassifier(log *logrus.Entry) ThresholdClassifier {
	return ThresholdClassifier{log: log}
}

func (c ThresholdClassifier) Classify(_ context.Context, in Input) Level {
	if in.Sentiment == nil {
		if c.log != nil {
			c.log.Warn("no sentiment available, using fallback distress level")
		}
		return Fallback
	}
	return FromScore(in.Sentiment.Score)
}

// PromptClassifier asks the model to name the level directly.
type PromptClassifier struct {
	gen Generator
	log *logrus.Entry
}

func NewPromptClassifier(gen Generator, log *logrus.Entry) *PromptClassifier {
	return &PromptClassifier{gen: gen, log: log}
}

func (c *PromptClassifier) Classify(ctx context.Context, in Input) Level {
	out, err := c.gen.Generate(ctx, BuildClassificationPrompt(in.Text))
	if err != nil {
		c.warn(logrus.Fields{"error": err.Error()}, "distress classification failed, using fallback")
		return Fallback
	}
	level, ok := ParseLevel(out)
	if !ok {
		c.warn(logrus.Fields{"model_output": out}, "unrecognised distress label, using fallback")
		return Fallback
	}
	return level
}

func (c *PromptClassifier) warn(fields logrus.Fields, msg string) {
	if c.log != nil {
		c.log.WithFields(fields).Warn(msg)
	}
}

// BuildClassificationPrompt asks for exactly one level name.
func BuildClassificationPrompt(text string) string {
	return fmt.Sprintf(`You are assessing how distressed the author of a short journal entry is.

Choose exactly one label:
- crisis: talk of self-harm, suicide, hopelessness or being unable to go on
- moderate: persistent sadness, anxiety or stress that is hard to manage
- mild: everyday worries, low mood or frustration
- none: neutral or positive

Reply with the single label only, in lower case, without punctuation or explanation.

Journal entry:
"""%s"""
`, text)
}

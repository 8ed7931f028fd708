// Package processor runs one analysis: audio -> transcript -> sentiment ->
// distress level -> resources -> reply. Steps run strictly in order and none
// is retried.
package processor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"mindscape-go/internal/composer"
	"mindscape-go/internal/distress"
	"mindscape-go/internal/logger"
	"mindscape-go/internal/selector"
	"mindscape-go/internal/sentiment"
	"mindscape-go/internal/transcription"
	"mindscape-go/internal/types"
)

var errEmptyUpload = errors.New("empty upload")

// Deps are the collaborators of a Processor. Sentiment may be nil.
type Deps struct {
	Transcriber transcription.Transcriber
	Sentiment   sentiment.Analyzer
	Classifier  distress.Classifier
	Selector    *selector.Selector
	Composer    *composer.Composer
	// TempDir holds uploads while they are transcribed; "" is os.TempDir().
	TempDir string
	// Timeout bounds a whole analysis; 0 means no limit.
	Timeout time.Duration
	Log     *logrus.Entry
}

type Processor struct {
	Deps
}

func New(d Deps) *Processor {
	return &Processor{Deps: d}
}

// AnalyzeAudio runs the full pipeline on an uploaded recording. The upload is
// spooled to a temp file that is removed before returning, whatever happens.
// A request entry stored with logger.NewContext is used for logging.
func (p *Processor) AnalyzeAudio(ctx context.Context, filename string, audio io.Reader) (types.AnalysisResult, error) {
	start := time.Now()
	log := logger.FromContext(ctx, p.Log).WithField("filename", filename)
	ctx, cancel := p.withTimeout(ctx)
	defer cancel()

	if audio == nil {
		return types.AnalysisResult{}, &Error{Kind: KindClientInput, Message: MsgNoAudio}
	}

	path, err := p.spool(filename, audio)
	if err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.Is(err, errEmptyUpload):
			return types.AnalysisResult{}, &Error{Kind: KindClientInput, Message: MsgNoAudio, Err: err}
		case errors.As(err, &tooLarge):
			return types.AnalysisResult{}, &Error{Kind: KindClientInput, Message: fmt.Sprintf("Audio file larger than %d bytes", tooLarge.Limit), Err: err}
		default:
			return types.AnalysisResult{}, &Error{Kind: KindTranscription, Message: MsgTranscribeFailed, Err: err}
		}
	}
	defer func() {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			log.WithField("error", err.Error()).Warn("failed to remove temp audio file")
		}
	}()

	data, err := os.ReadFile(path)
	if err != nil {
		return types.AnalysisResult{}, &Error{Kind: KindTranscription, Message: MsgTranscribeFailed, Err: err}
	}

	codec := transcription.CodecFromFilename(filename)
	text, err := p.Transcriber.Transcribe(ctx, data, codec)
	if err == nil && strings.TrimSpace(text) == "" {
		err = transcription.ErrEmptyTranscript
	}
	if err != nil {
		log.WithField("error", err.Error()).WithField("codec", codec.String()).Warn("transcription failed")
		return types.AnalysisResult{}, &Error{Kind: KindTranscription, Message: MsgTranscribeFailed, Err: err}
	}

	res, err := p.analyze(ctx, strings.TrimSpace(text), log)
	log.WithField("duration_ms", time.Since(start).Milliseconds()).Info("audio analysis finished")
	return res, err
}

// AnalyzeText runs the pipeline from sentiment scoring onwards on typed text.
func (p *Processor) AnalyzeText(ctx context.Context, text string) (types.AnalysisResult, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return types.AnalysisResult{}, &Error{Kind: KindClientInput, Message: MsgEmptyText}
	}
	ctx, cancel := p.withTimeout(ctx)
	defer cancel()
	return p.analyze(ctx, text, logger.FromContext(ctx, p.Log))
}

func (p *Processor) analyze(ctx context.Context, text string, log *logrus.Entry) (types.AnalysisResult, error) {
	res := types.AnalysisResult{Transcript: text}
	in := distress.Input{Text: text}

	if p.Sentiment != nil {
		s, err := p.Sentiment.Analyze(ctx, text)
		if err != nil {
			log.WithField("error", err.Error()).Warn("sentiment analysis failed, continuing without score")
		} else {
			res.SentimentScore = s.Score
			res.SentimentMagnitude = s.Magnitude
			in.Sentiment = &s
		}
	}

	level := p.Classifier.Classify(ctx, in)
	res.DistressLevel = level.String()

	resources := p.Selector.Select(level)
	log.WithFields(logrus.Fields{
		"sentiment_score": res.SentimentScore,
		"distress_level":  res.DistressLevel,
		"resources":       len(resources),
	}).Info("distress classified")

	reply, err := p.Composer.Compose(ctx, text, resources)
	if err != nil {
		log.WithField("error", err.Error()).Error("reply generation failed")
		return types.AnalysisResult{}, &Error{Kind: KindGeneration, Message: MsgGenerateFailed, Err: err}
	}
	res.Reply = reply
	return res, nil
}

// spool copies the upload into a fresh temp file and returns its path. The
// suffix comes from the detected codec, never from the client's filename. On
// error nothing is left behind.
func (p *Processor) spool(filename string, audio io.Reader) (string, error) {
	ext := transcription.CodecFromFilename(filename).Ext()
	f, err := os.CreateTemp(p.TempDir, "mindscape-audio-*"+ext)
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	n, copyErr := io.Copy(f, audio)
	closeErr := f.Close()
	switch {
	case copyErr != nil:
		err = fmt.Errorf("write temp file: %w", copyErr)
	case closeErr != nil:
		err = fmt.Errorf("close temp file: %w", closeErr)
	case n == 0:
		err = errEmptyUpload
	}
	if err != nil {
		os.Remove(f.Name())
		return "", err
	}
	return f.Name(), nil
}

func (p *Processor) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if p.Timeout > 0 {
		return context.WithTimeout(ctx, p.Timeout)
	}
	return context.WithCancel(ctx)
}

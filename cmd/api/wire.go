package main

import (
	"context"
	"math"

	"mindscape-go/internal/catalog"
	"mindscape-go/internal/composer"
	"mindscape-go/internal/config"
	"mindscape-go/internal/distress"
	"mindscape-go/internal/llm"
	"mindscape-go/internal/logger"
	"mindscape-go/internal/processor"
	"mindscape-go/internal/selector"
	"mindscape-go/internal/sentiment"
	"mindscape-go/internal/transcription"
)

type textGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// app holds the wired collaborators for one process.
type app struct {
	catalog   *catalog.Catalog
	processor *processor.Processor
	closers   []func() error
}

func (a *app) Close() {
	for _, c := range a.closers {
		_ = c()
	}
}

func buildApp(ctx context.Context, cfg config.Config, log *logger.Logger) (*app, error) {
	a := &app{}

	a.catalog = catalog.Load(cfg.Catalog.Path, log.Component("catalog"))

	var gen textGenerator
	if cfg.Mock.Generation {
		log.Info("mock LLM mode ON")
		gen = llm.Mock{}
	} else {
		g, err := llm.NewGemini(ctx, cfg.Gemini.APIKey, cfg.Gemini.Model)
		if err != nil {
			return nil, err
		}
		gen = g
	}

	var tr transcription.Transcriber
	if cfg.Mock.Transcription {
		log.Info("mock transcription mode ON")
		tr = transcription.Mock{Text: cfg.Mock.Transcript}
	} else {
		g, err := transcription.NewGoogle(ctx, transcription.Options{
			LanguageCode:      cfg.Speech.LanguageCode,
			SampleRateHertz:   cfg.Speech.SampleRateHertz,
			AudioChannelCount: cfg.Speech.AudioChannelCount,
		}, log.Component("transcription"))
		if err != nil {
			a.Close()
			return nil, err
		}
		a.closers = append(a.closers, g.Close)
		tr = g
	}

	var sa sentiment.Analyzer
	if cfg.Mock.Sentiment {
		log.Info("mock sentiment mode ON")
		sa = sentiment.Mock{Score: cfg.Mock.SentimentScore, Magnitude: math.Abs(cfg.Mock.SentimentScore)}
	} else {
		g, err := sentiment.NewGoogle(ctx)
		if err != nil {
			a.Close()
			return nil, err
		}
		a.closers = append(a.closers, g.Close)
		sa = g
	}

	cls, err := distress.New(cfg.Classifier.Strategy, gen, log.Component("classifier"))
	if err != nil {
		a.Close()
		return nil, err
	}

	a.processor = processor.New(processor.Deps{
		Transcriber: tr,
		Sentiment:   sa,
		Classifier:  cls,
		Selector:    selector.New(a.catalog),
		Composer:    composer.New(gen),
		TempDir:     cfg.Upload.TempDir,
		Timeout:     cfg.Analysis.Timeout,
		Log:         log.Component("processor"),
	})
	return a, nil
}

package transcription

import (
	"context"
	"errors"
	"fmt"
	"strings"

	speech "cloud.google.com/go/speech/apiv1"
	"cloud.google.com/go/speech/apiv1/speechpb"
	"github.com/sirupsen/logrus"
	"google.golang.org/api/option"
)

// ErrEmptyTranscript is returned when the service recognised nothing.
var ErrEmptyTranscript = errors.New("empty transcript")

// Transcriber turns raw audio into text.
type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte, codec Codec) (string, error)
}

// Options are the recognition settings sent with every request.
type Options struct {
	LanguageCode      string
	SampleRateHertz   int32 // 0 lets the service read it from the file header
	AudioChannelCount int32
}

// opusSampleRate is used for WebM/Opus when no rate is configured.
const opusSampleRate = 48000

// Google transcribes through Cloud Speech-to-Text (synchronous recognize).
type Google struct {
	client *speech.Client
	opts   Options
	log    *logrus.Entry
}

// NewGoogle dials Speech-to-Text, by default with application default
// credentials.
func NewGoogle(ctx context.Context, opts Options, log *logrus.Entry, clientOpts ...option.ClientOption) (*Google, error) {
	client, err := speech.NewClient(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("speech client: %w", err)
	}
	return &Google{client: client, opts: opts, log: log}, nil
}

func (g *Google) Close() error {
	return g.client.Close()
}

// Transcribe sends the audio in a single recognize call and joins the top
// alternative of every result, in order.
func (g *Google) Transcribe(ctx context.Context, audio []byte, codec Codec) (string, error) {
	req := &speechpb.RecognizeRequest{
		Config: recognitionConfig(g.opts, codec),
		Audio: &speechpb.RecognitionAudio{
			AudioSource: &speechpb.RecognitionAudio_Content{Content: audio},
		},
	}
	g.log.WithFields(logrus.Fields{
		"codec": codec.String(),
		"bytes": len(audio),
	}).Info("starting transcription")

	resp, err := g.client.Recognize(ctx, req)
	if err != nil {
		return "", fmt.Errorf("recognize: %w", err)
	}
	text := joinResults(resp.GetResults())
	if text == "" {
		return "", ErrEmptyTranscript
	}
	g.log.WithField("chars", len(text)).Info("transcription complete")
	return text, nil
}

func recognitionConfig(opts Options, codec Codec) *speechpb.RecognitionConfig {
	cfg := &speechpb.RecognitionConfig{
		Encoding:          encoding(codec),
		SampleRateHertz:   opts.SampleRateHertz,
		AudioChannelCount: opts.AudioChannelCount,
		LanguageCode:      opts.LanguageCode,
	}
	if codec == CodecOpusWebM && cfg.SampleRateHertz == 0 {
		cfg.SampleRateHertz = opusSampleRate
	}
	return cfg
}

func encoding(c Codec) speechpb.RecognitionConfig_AudioEncoding {
	switch c {
	case CodecPCM16:
		return speechpb.RecognitionConfig_LINEAR16
	case CodecMP3:
		return speechpb.RecognitionConfig_MP3
	case CodecOpusWebM:
		return speechpb.RecognitionConfig_WEBM_OPUS
	default:
		return speechpb.RecognitionConfig_ENCODING_UNSPECIFIED
	}
}

// joinResults concatenates the first alternative of each result.
func joinResults(results []*speechpb.SpeechRecognitionResult) string {
	parts := make([]string, 0, len(results))
	for _, r := range results {
		alts := r.GetAlternatives()
		if len(alts) == 0 {
			continue
		}
		if t := strings.TrimSpace(alts[0].GetTranscript()); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, " ")
}

// Mock returns a fixed transcript. Enabled with USE_MOCK_TRANSCRIBE=true.
type Mock struct {
	Text string
}

func (m Mock) Transcribe(_ context.Context, audio []byte, _ Codec) (string, error) {
	if len(audio) == 0 {
		return "", ErrEmptyTranscript
	}
	if strings.TrimSpace(m.Text) == "" {
		return "", ErrEmptyTranscript
	}
	return m.Text, nil
}

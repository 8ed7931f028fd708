package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"mindscape-go/internal/catalog"
	"mindscape-go/internal/composer"
	"mindscape-go/internal/distress"
	"mindscape-go/internal/logger"
	"mindscape-go/internal/processor"
	"mindscape-go/internal/selector"
	"mindscape-go/internal/transcription"
	"mindscape-go/internal/types"
)

type stubTranscriber struct{ text string }

func (s stubTranscriber) Transcribe(context.Context, []byte, transcription.Codec) (string, error) {
	return s.text, nil
}

type stubSentiment struct{ score float64 }

func (s stubSentiment) Analyze(context.Context, string) (types.Sentiment, error) {
	return types.Sentiment{Score: s.score, Magnitude: 1.2}, nil
}

// replyGenerator answers with the resource lines of the prompt, like a model
// weaving them into its reply.
type replyGenerator struct{}

func (replyGenerator) Generate(_ context.Context, prompt string) (string, error) {
	var lines []string
	for _, l := range strings.Split(prompt, "\n") {
		if strings.HasPrefix(l, "- ") && strings.Contains(l, "(") {
			lines = append(lines, strings.TrimPrefix(l, "- "))
		}
	}
	return "You matter. You could reach out to " + strings.Join(lines, "; "), nil
}

func newTestServer(t *testing.T, transcript string, score float64) (*httptest.Server, string) {
	t.Helper()
	dir := t.TempDir()
	cat := catalog.New(map[catalog.Category][]types.Resource{
		catalog.CrisisHotlines: {{Name: "Tele MANAS", Description: "24x7 helpline", Contact: "14416"}},
	}, logger.Discard().Entry)
	proc := processor.New(processor.Deps{
		Transcriber: stubTranscriber{text: transcript},
		Sentiment:   stubSentiment{score: score},
		Classifier:  distress.NewThresholdClassifier(nil),
		Selector:    selector.New(cat),
		Composer:    composer.New(replyGenerator{}),
		TempDir:     dir,
		Log:         logger.Discard().Entry,
	})
	ts := httptest.NewServer(New(proc, logger.Discard(), 1<<20).Handler())
	t.Cleanup(ts.Close)
	return ts, dir
}

func multipartBody(t *testing.T, field, filename string, data []byte) (io.Reader, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if field != "" {
		fw, err := w.CreateFormFile(field, filename)
		if err != nil {
			t.Fatal(err)
		}
		fw.Write(data)
	} else {
		w.WriteField("note", "no audio here")
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	return &buf, w.FormDataContentType()
}

func postAudio(t *testing.T, url, field, filename string, data []byte) *http.Response {
	t.Helper()
	body, ct := multipartBody(t, field, filename, data)
	resp, err := http.Post(url+"/analyze", ct, body)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, r io.Reader) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(r).Decode(&v); err != nil {
		t.Fatal(err)
	}
	return v
}

func TestAnalyzeCrisisEndToEnd(t *testing.T) {
	ts, dir := newTestServer(t, "I feel so alone and hopeless lately.", -0.82)

	resp := postAudio(t, ts.URL, AudioField, "sad.wav", []byte("RIFF....WAVEfmt "))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if resp.Header.Get(logger.RequestIDHeader) == "" {
		t.Error("missing request id header")
	}
	raw := decode[map[string]any](t, resp.Body)
	if raw["distress_level"] != "crisis" {
		t.Errorf("distress_level = %v", raw["distress_level"])
	}
	if raw["transcript"] != "I feel so alone and hopeless lately." {
		t.Errorf("transcript = %v", raw["transcript"])
	}
	if raw["sentiment_score"] != -0.82 || raw["sentiment_magnitude"] != 1.2 {
		t.Errorf("sentiment = %v/%v", raw["sentiment_score"], raw["sentiment_magnitude"])
	}
	reply, _ := raw["gemini_response"].(string)
	if !strings.Contains(reply, "Tele MANAS") {
		t.Errorf("reply should mention a hotline: %q", reply)
	}
	if entries, _ := os.ReadDir(dir); len(entries) != 0 {
		t.Errorf("temp files left behind: %v", entries)
	}
}

func TestAnalyzeEmptyTranscript(t *testing.T) {
	ts, dir := newTestServer(t, "", -0.5)

	resp := postAudio(t, ts.URL, AudioField, "silence.webm", []byte("webm"))
	if resp.StatusCode != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", resp.StatusCode)
	}
	if got := decode[types.ErrorResponse](t, resp.Body); got.Error != processor.MsgTranscribeFailed {
		t.Errorf("error = %q", got.Error)
	}
	if entries, _ := os.ReadDir(dir); len(entries) != 0 {
		t.Errorf("temp files left behind: %v", entries)
	}
}

func TestAnalyzeMissingAudio(t *testing.T) {
	ts, _ := newTestServer(t, "hi", 0)

	tests := []struct {
		name string
		resp func() *http.Response
	}{
		{"no audio field", func() *http.Response { return postAudio(t, ts.URL, "", "", nil) }},
		{"empty file", func() *http.Response { return postAudio(t, ts.URL, AudioField, "a.wav", nil) }},
		{"not multipart", func() *http.Response {
			resp, err := http.Post(ts.URL+"/analyze", "text/plain", strings.NewReader("hello"))
			if err != nil {
				t.Fatal(err)
			}
			t.Cleanup(func() { resp.Body.Close() })
			return resp
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := tt.resp()
			if resp.StatusCode != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", resp.StatusCode)
			}
			if got := decode[types.ErrorResponse](t, resp.Body); got.Error != processor.MsgNoAudio {
				t.Errorf("error = %q", got.Error)
			}
		})
	}
}

func TestAnalyzeTooLarge(t *testing.T) {
	proc := &fakeAnalyzer{}
	ts := httptest.NewServer(New(proc, logger.Discard(), 512).Handler())
	defer ts.Close()

	resp := postAudio(t, ts.URL, AudioField, "long.wav", bytes.Repeat([]byte("x"), 4096))
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
	if proc.calls != 0 {
		t.Error("analyzer should not run for oversized uploads")
	}
}

type fakeAnalyzer struct {
	res   types.AnalysisResult
	err   error
	calls int
	text  string
	reqID any
}

func (f *fakeAnalyzer) AnalyzeAudio(ctx context.Context, _ string, _ io.Reader) (types.AnalysisResult, error) {
	f.calls++
	f.reqID = requestIDFrom(ctx)
	return f.res, f.err
}

func (f *fakeAnalyzer) AnalyzeText(ctx context.Context, text string) (types.AnalysisResult, error) {
	f.calls++
	f.text = text
	f.reqID = requestIDFrom(ctx)
	return f.res, f.err
}

func requestIDFrom(ctx context.Context) any {
	if e := logger.FromContext(ctx, nil); e != nil {
		return e.Data["req_id"]
	}
	return nil
}

func TestRequestLoggerPassedToAnalyzer(t *testing.T) {
	fa := &fakeAnalyzer{}
	ts := httptest.NewServer(New(fa, logger.Discard(), 0).Handler())
	defer ts.Close()

	req, err := http.NewRequest(http.MethodPost, ts.URL+"/mood", strings.NewReader(`{"text":"x"}`))
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set(logger.RequestIDHeader, "req-7")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if fa.reqID != "req-7" {
		t.Errorf("analyzer context req_id = %v, want req-7", fa.reqID)
	}

	resp = postAudio(t, ts.URL, AudioField, "sad.wav", []byte("RIFF"))
	if want := resp.Header.Get(logger.RequestIDHeader); want == "" || fa.reqID != want {
		t.Errorf("analyzer context req_id = %v, response header %q", fa.reqID, want)
	}
}

func TestErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		msg    string
	}{
		{"generation", &processor.Error{Kind: processor.KindGeneration, Message: processor.MsgGenerateFailed, Err: errors.New("quota")}, 500, processor.MsgGenerateFailed},
		{"client input", &processor.Error{Kind: processor.KindClientInput, Message: processor.MsgEmptyText}, 400, processor.MsgEmptyText},
		{"untyped", errors.New("boom"), 500, "Internal server error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := httptest.NewServer(New(&fakeAnalyzer{err: tt.err}, logger.Discard(), 0).Handler())
			defer ts.Close()
			resp, err := http.Post(ts.URL+"/mood", "application/json", strings.NewReader(`{"text":"x"}`))
			if err != nil {
				t.Fatal(err)
			}
			defer resp.Body.Close()
			if resp.StatusCode != tt.status {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.status)
			}
			if got := decode[types.ErrorResponse](t, resp.Body); got.Error != tt.msg {
				t.Errorf("error = %q, want %q", got.Error, tt.msg)
			}
		})
	}
}

func TestMood(t *testing.T) {
	ts, _ := newTestServer(t, "", 0.4)

	resp, err := http.Post(ts.URL+"/mood", "application/json", strings.NewReader(`{"text":"Had a lovely walk today."}`))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	got := decode[types.AnalysisResult](t, resp.Body)
	if got.DistressLevel != "none" || got.Transcript != "Had a lovely walk today." || got.Reply == "" {
		t.Errorf("result = %+v", got)
	}

	for _, body := range []string{`{"text":"   "}`, `not json`} {
		resp, err := http.Post(ts.URL+"/mood", "application/json", strings.NewReader(body))
		if err != nil {
			t.Fatal(err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("body %q: status = %d, want 400", body, resp.StatusCode)
		}
	}
}

func TestHomeAndHealth(t *testing.T) {
	ts := httptest.NewServer(New(&fakeAnalyzer{}, logger.Discard(), 0).Handler())
	defer ts.Close()

	for path, want := range map[string]string{"/": Banner, "/healthz": "ok"} {
		resp, err := http.Get(ts.URL + path)
		if err != nil {
			t.Fatal(err)
		}
		b, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK || string(b) != want {
			t.Errorf("GET %s = %d %q", path, resp.StatusCode, b)
		}
	}

	resp, err := http.Get(ts.URL + "/analyze")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Errorf("GET /analyze = %d, want 405", resp.StatusCode)
	}
}

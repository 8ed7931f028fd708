package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func run(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetArgs(args)
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("%v: %v", args, err)
	}
	return out.String()
}

func TestClassifyCommand(t *testing.T) {
	tests := map[string]string{
		"-0.82": "crisis",
		"-0.6":  "moderate",
		"-0.25": "mild",
		"0":     "none",
	}
	for score, want := range tests {
		if got := strings.TrimSpace(run(t, "classify", "--score="+score)); got != want {
			t.Errorf("classify --score=%s = %q, want %q", score, got, want)
		}
	}
}

func TestCatalogCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "resources.json")
	body := `{"crisis_hotlines":[{"name":"Tele MANAS","description":"helpline","contact":"14416"}]}`
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("MINDSCAPE_CATALOG_PATH", path)
	t.Setenv("LOG_LEVEL", "error")

	var got map[string][]map[string]string
	if err := json.Unmarshal([]byte(run(t, "catalog")), &got); err != nil {
		t.Fatal(err)
	}
	if len(got["crisis_hotlines"]) != 1 || got["crisis_hotlines"][0]["name"] != "Tele MANAS" {
		t.Errorf("catalog output = %v", got)
	}
	if len(got["online_counseling"]) != 0 {
		t.Errorf("online_counseling = %v", got["online_counseling"])
	}
}

func TestAnalyzeCommandWithMocks(t *testing.T) {
	dir := t.TempDir()
	audio := filepath.Join(dir, "sad.wav")
	if err := os.WriteFile(audio, []byte("RIFF....WAVE"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("MINDSCAPE_CATALOG_PATH", filepath.Join(dir, "missing.json"))
	t.Setenv("USE_MOCK_TRANSCRIBE", "true")
	t.Setenv("USE_MOCK_SENTIMENT", "true")
	t.Setenv("USE_MOCK_LLM", "true")
	t.Setenv("MINDSCAPE_MOCK_SENTIMENT_SCORE", "-0.82")
	t.Setenv("MINDSCAPE_UPLOAD_TEMP_DIR", dir)

	var got map[string]any
	if err := json.Unmarshal([]byte(run(t, "analyze", audio)), &got); err != nil {
		t.Fatal(err)
	}
	if got["distress_level"] != "crisis" || got["sentiment_score"] != -0.82 {
		t.Errorf("result = %v", got)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Errorf("temp dir should only hold the source recording, got %d entries", len(entries))
	}
}

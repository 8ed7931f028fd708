// Package config resolves settings from defaults, an optional yaml file and
// the environment.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix namespaces environment variables: server.port -> MINDSCAPE_SERVER_PORT.
const EnvPrefix = "MINDSCAPE"

type Config struct {
	Server     ServerConfig
	Upload     UploadConfig
	Catalog    CatalogConfig
	Classifier ClassifierConfig
	Gemini     GeminiConfig
	Speech     SpeechConfig
	Analysis   AnalysisConfig
	Mock       MockConfig
	Log        LogConfig
}

type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
}

// Addr is the listen address for Port.
func (s ServerConfig) Addr() string {
	return ":" + s.Port
}

type UploadConfig struct {
	MaxBytes int64  `mapstructure:"max_bytes"`
	TempDir  string `mapstructure:"temp_dir"`
}

type CatalogConfig struct {
	Path string `mapstructure:"path"`
}

type ClassifierConfig struct {
	Strategy string `mapstructure:"strategy"`
}

type GeminiConfig struct {
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model"`
}

type SpeechConfig struct {
	LanguageCode      string `mapstructure:"language_code"`
	SampleRateHertz   int32  `mapstructure:"sample_rate_hertz"`
	AudioChannelCount int32  `mapstructure:"audio_channel_count"`
}

type AnalysisConfig struct {
	// Timeout bounds one analysis; 0 disables it.
	Timeout time.Duration `mapstructure:"timeout"`
}

// MockConfig swaps the cloud collaborators for offline stand-ins.
type MockConfig struct {
	Transcription  bool    `mapstructure:"transcription"`
	Sentiment      bool    `mapstructure:"sentiment"`
	Generation     bool    `mapstructure:"generation"`
	Transcript     string  `mapstructure:"transcript"`
	SentimentScore float64 `mapstructure:"sentiment_score"`
}

type LogConfig struct {
	Level       string `mapstructure:"level"`
	Environment string `mapstructure:"environment"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 120*time.Second)
	v.SetDefault("server.idle_timeout", 120*time.Second)
	v.SetDefault("upload.max_bytes", int64(25<<20))
	v.SetDefault("upload.temp_dir", "")
	v.SetDefault("catalog.path", "resources.json")
	v.SetDefault("classifier.strategy", "threshold")
	v.SetDefault("gemini.api_key", "")
	v.SetDefault("gemini.model", "gemini-2.0-flash")
	v.SetDefault("speech.language_code", "en-US")
	v.SetDefault("speech.sample_rate_hertz", 0)
	v.SetDefault("speech.audio_channel_count", 1)
	v.SetDefault("analysis.timeout", time.Duration(0))
	v.SetDefault("mock.transcription", false)
	v.SetDefault("mock.sentiment", false)
	v.SetDefault("mock.generation", false)
	v.SetDefault("mock.transcript", "MOCK TRANSCRIPT: I feel so alone and hopeless lately.")
	v.SetDefault("mock.sentiment_score", -0.3)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.environment", "local")
}

// legacyEnv are the bare variable names the service has always honoured.
var legacyEnv = map[string][]string{
	"server.port":        {"PORT"},
	"log.level":          {"LOG_LEVEL"},
	"log.environment":    {"ENVIRONMENT"},
	"catalog.path":       {"RESOURCES_PATH"},
	"gemini.api_key":     {"GEMINI_API_KEY", "GOOGLE_API_KEY"},
	"gemini.model":       {"GEMINI_MODEL"},
	"mock.transcription": {"USE_MOCK_TRANSCRIBE"},
	"mock.sentiment":     {"USE_MOCK_SENTIMENT"},
	"mock.generation":    {"USE_MOCK_LLM"},
}

// Load reads file (when non-empty) and the environment on top of the defaults.
func Load(file string) (Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, names := range legacyEnv {
		// prefixed name first so it wins over the bare one
		args := append([]string{key, EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))}, names...)
		if err := v.BindEnv(args...); err != nil {
			return Config{}, fmt.Errorf("bind env %s: %w", key, err)
		}
	}

	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", file, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects settings the service cannot start with.
func (c Config) Validate() error {
	var errs []error
	if c.Server.Port == "" {
		errs = append(errs, errors.New("server.port is empty"))
	}
	if c.Upload.MaxBytes < 0 {
		errs = append(errs, errors.New("upload.max_bytes must not be negative"))
	}
	switch strings.ToLower(c.Classifier.Strategy) {
	case "threshold", "model":
	default:
		errs = append(errs, fmt.Errorf("classifier.strategy %q must be threshold or model", c.Classifier.Strategy))
	}
	if c.Speech.SampleRateHertz < 0 || c.Speech.AudioChannelCount < 0 {
		errs = append(errs, errors.New("speech settings must not be negative"))
	}
	if c.Analysis.Timeout < 0 {
		errs = append(errs, errors.New("analysis.timeout must not be negative"))
	}
	return errors.Join(errs...)
}

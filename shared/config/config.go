package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	DefaultModel             = "gemini-2.5-flash"
	DefaultMaxTokens         = 1000
	DefaultTemperature       = 0.7
	PlaceholderLLMKey        = "YOUR_PLACEHOLDER_LLM_API_KEY"
	PlaceholderYouTubeKey    = "YOUR_PLACEHOLDER_YOUTUBE_API_KEY"
	defaultSchedule          = "0 0 9 * * *" // Daily at 9 AM
	defaultHealthPort        = 8080
	defaultTokenFile         = "youtube_token.json"
	defaultLLMTimeout        = 60
	defaultTranscriptTimeout = 30
)

// DefaultLanguages is the transcript language preference used when none is configured.
var DefaultLanguages = []string{"en", "en-US", "en-GB"}

// localModelPrefixes mark models served by local inference, which need no key.
var localModelPrefixes = []string{"ollama/", "lmstudio/"}

type Config struct {
	LLM        LLMConfig        `yaml:"llm"`
	YouTube    YouTubeConfig    `yaml:"youtube"`
	Transcript TranscriptConfig `yaml:"transcript"`
	Logging    LoggingConfig    `yaml:"logging"`
	Email      EmailConfig      `yaml:"email"`
	Monitoring MonitoringConfig `yaml:"monitoring"`
	Schedule   string           `yaml:"schedule"`
}

// LLMConfig is the completion configuration. It is read-only after Load.
type LLMConfig struct {
	Model          string     `yaml:"model"`
	APIKey         Credential `yaml:"api_key"`
	BaseURL        string     `yaml:"base_url"`
	MaxTokens      int        `yaml:"max_tokens"`
	Temperature    *float64   `yaml:"temperature"`
	TimeoutSeconds int        `yaml:"timeout_seconds"`
}

type YouTubeConfig struct {
	APIKey            Credential `yaml:"api_key"`
	ChannelID         string     `yaml:"channel_id"`
	ClientID          string     `yaml:"client_id"`
	ClientSecret      string     `yaml:"client_secret"`
	TokenFile         string     `yaml:"token_file"`
	LookbackHours     int        `yaml:"lookback_hours"`
	MaxChannels       int        `yaml:"max_channels"`
	RequestsPerSecond float64    `yaml:"requests_per_second"`
}

type TranscriptConfig struct {
	Languages      []string `yaml:"languages"`
	TimeoutSeconds int      `yaml:"timeout_seconds"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	File   string `yaml:"file"`
}

type EmailConfig struct {
	SMTPServer string `yaml:"smtp_server"`
	SMTPPort   int    `yaml:"smtp_port"`
	Username   string `yaml:"username"`
	Password   string `yaml:"password"`
	FromEmail  string `yaml:"from_email"`
	ToEmail    string `yaml:"to_email"`
}

type MonitoringConfig struct {
	// HealthPort below zero disables the health server.
	HealthPort int `yaml:"health_port"`
}

// IsLocalModel reports whether the model is served by a local inference alias.
func IsLocalModel(model string) bool {
	m := strings.ToLower(strings.TrimSpace(model))
	for _, p := range localModelPrefixes {
		if strings.HasPrefix(m, p) {
			return true
		}
	}
	return false
}

// IsConfigured is true when the model needs no key or a real key is present.
func (c LLMConfig) IsConfigured() bool {
	return IsLocalModel(c.Model) || c.APIKey.IsReal()
}

// TemperatureValue returns the sampling temperature, falling back to the default.
func (c LLMConfig) TemperatureValue() float64 {
	if c.Temperature == nil {
		return DefaultTemperature
	}
	return *c.Temperature
}

func (c LLMConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// OAuthEnabled reports whether the feed should authenticate as the user.
func (c YouTubeConfig) OAuthEnabled() bool {
	return c.ClientID != "" && c.ClientSecret != ""
}

func (c TranscriptConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// Enabled reports whether report delivery by email is configured.
func (c EmailConfig) Enabled() bool {
	return c.SMTPServer != "" && c.ToEmail != ""
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	configFile := os.Getenv("CONFIG_FILE")
	explicit := configFile != ""
	if configFile == "" {
		configFile = "config.yaml"
	}

	var cfg Config
	data, err := os.ReadFile(configFile)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", configFile, err)
		}
	case errors.Is(err, os.ErrNotExist) && !explicit:
		// Environment-only configuration.
	default:
		return nil, fmt.Errorf("failed to read config file %s: %w", configFile, err)
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

func (c *Config) applyEnv() error {
	if c.LLM.Model == "" {
		c.LLM.Model = os.Getenv("LLM_MODEL")
	}
	if c.LLM.APIKey.Kind() == CredentialUnset {
		c.LLM.APIKey = ParseCredential(os.Getenv("LLM_API_KEY"))
	}
	if c.LLM.BaseURL == "" {
		c.LLM.BaseURL = os.Getenv("LLM_BASE_URL")
	}
	if v := os.Getenv("LLM_MAX_TOKENS"); v != "" && c.LLM.MaxTokens == 0 {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid LLM_MAX_TOKENS %q: %w", v, err)
		}
		c.LLM.MaxTokens = n
	}
	if v := os.Getenv("LLM_TEMPERATURE"); v != "" && c.LLM.Temperature == nil {
		t, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("invalid LLM_TEMPERATURE %q: %w", v, err)
		}
		c.LLM.Temperature = &t
	}
	if v := os.Getenv("LLM_TIMEOUT_SECONDS"); v != "" && c.LLM.TimeoutSeconds == 0 {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid LLM_TIMEOUT_SECONDS %q: %w", v, err)
		}
		c.LLM.TimeoutSeconds = n
	}

	if c.YouTube.APIKey.Kind() == CredentialUnset {
		c.YouTube.APIKey = ParseCredential(os.Getenv("YOUTUBE_API_KEY"))
	}
	if c.YouTube.ChannelID == "" {
		c.YouTube.ChannelID = os.Getenv("YOUTUBE_CHANNEL_ID")
	}
	if c.YouTube.ClientID == "" {
		c.YouTube.ClientID = os.Getenv("GOOGLE_CLIENT_ID")
	}
	if c.YouTube.ClientSecret == "" {
		c.YouTube.ClientSecret = os.Getenv("GOOGLE_CLIENT_SECRET")
	}

	if len(c.Transcript.Languages) == 0 {
		c.Transcript.Languages = splitList(os.Getenv("TRANSCRIPT_LANGUAGES"))
	}

	if c.Logging.Level == "" {
		c.Logging.Level = os.Getenv("LOG_LEVEL")
	}
	if c.Logging.Format == "" {
		c.Logging.Format = os.Getenv("LOG_FORMAT")
	}
	if c.Logging.File == "" {
		c.Logging.File = os.Getenv("LOG_FILE")
	}

	if c.Email.Username == "" {
		c.Email.Username = os.Getenv("EMAIL_USERNAME")
	}
	if c.Email.Password == "" {
		c.Email.Password = os.Getenv("EMAIL_PASSWORD")
	}

	if c.Schedule == "" {
		c.Schedule = os.Getenv("SCHEDULE")
	}
	if v := os.Getenv("HEALTH_PORT"); v != "" && c.Monitoring.HealthPort == 0 {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid HEALTH_PORT %q: %w", v, err)
		}
		c.Monitoring.HealthPort = n
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.LLM.Model == "" {
		c.LLM.Model = DefaultModel
	}
	// Unset keys fall back to an obvious placeholder so the degraded mode is visible.
	if c.LLM.APIKey.Kind() == CredentialUnset {
		c.LLM.APIKey = ParseCredential(PlaceholderLLMKey)
	}
	if c.LLM.MaxTokens == 0 {
		c.LLM.MaxTokens = DefaultMaxTokens
	}
	if c.LLM.Temperature == nil {
		t := DefaultTemperature
		c.LLM.Temperature = &t
	}
	if c.LLM.TimeoutSeconds == 0 {
		c.LLM.TimeoutSeconds = defaultLLMTimeout
	}

	if c.YouTube.APIKey.Kind() == CredentialUnset {
		c.YouTube.APIKey = ParseCredential(PlaceholderYouTubeKey)
	}
	if c.YouTube.TokenFile == "" {
		c.YouTube.TokenFile = defaultTokenFile
	}
	if c.YouTube.LookbackHours == 0 {
		c.YouTube.LookbackHours = 24
	}
	if c.YouTube.MaxChannels == 0 {
		c.YouTube.MaxChannels = 25
	}
	if c.YouTube.RequestsPerSecond == 0 {
		c.YouTube.RequestsPerSecond = 5
	}

	if len(c.Transcript.Languages) == 0 {
		c.Transcript.Languages = append([]string(nil), DefaultLanguages...)
	}
	if c.Transcript.TimeoutSeconds == 0 {
		c.Transcript.TimeoutSeconds = defaultTranscriptTimeout
	}

	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "text"
	}

	if c.Email.SMTPPort == 0 {
		c.Email.SMTPPort = 587
	}
	if c.Schedule == "" {
		c.Schedule = defaultSchedule
	}
	if c.Monitoring.HealthPort == 0 {
		c.Monitoring.HealthPort = defaultHealthPort
	}
}

func (c *Config) validate() error {
	if c.LLM.MaxTokens <= 0 {
		return fmt.Errorf("llm max tokens must be positive, got %d (set LLM_MAX_TOKENS or llm.max_tokens)", c.LLM.MaxTokens)
	}
	if t := c.LLM.TemperatureValue(); t < 0 || t > 2 {
		return fmt.Errorf("llm temperature must be within [0, 2], got %g (set LLM_TEMPERATURE or llm.temperature)", t)
	}
	if c.LLM.TimeoutSeconds < 0 || c.Transcript.TimeoutSeconds < 0 {
		return fmt.Errorf("timeouts cannot be negative")
	}
	if c.YouTube.MaxChannels < 0 || c.YouTube.LookbackHours < 0 || c.YouTube.RequestsPerSecond < 0 {
		return fmt.Errorf("youtube limits cannot be negative")
	}
	if c.Monitoring.HealthPort > 65535 {
		return fmt.Errorf("health port %d out of range", c.Monitoring.HealthPort)
	}
	if c.Email.Enabled() && c.Email.FromEmail == "" {
		return fmt.Errorf("email from address is required when email delivery is enabled (email.from_email)")
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

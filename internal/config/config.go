package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// DefaultExtensions is the source file allow-list used when
// SUPPORTED_EXTENSIONS is not set.
var DefaultExtensions = []string{
	".js", ".jsx", ".ts", ".tsx", ".py", ".java", ".go", ".rb", ".php",
	".c", ".cc", ".cpp", ".h", ".hpp", ".cs", ".rs", ".swift", ".kt",
	".scala", ".vue", ".sql", ".sh", ".yml", ".yaml", ".json",
}

type Config struct {
	Port          string
	Environment   string
	LogLevel      string
	AllowedOrigin string
	// GitHub
	GitHubToken           string
	WebhookSecret         string
	GitHubAPIURL          string
	GitHubTimeout         time.Duration
	AllowInsecureWebhooks bool
	// AI
	AIProvider      string
	OpenAIAPIKey    string
	Model           string
	OpenAIBaseURL   string
	OllamaURL       string
	OllamaModel     string
	AITimeout       time.Duration
	PromptFile      string
	MaxContentChars int
	// Review limits
	MaxFileSize         int
	MaxFilesPerPR       int
	SupportedExtensions []string
	ReviewActions       []string
	ReviewConcurrency   int
	ReviewTimeout       time.Duration
	ManualReviewLabel   string
	ReviewedLabel       string
	RedactSecrets       bool
	// Background processing
	WorkerCount int
	QueueSize   int
}

// Load reads configuration from the environment, an optional .env file and
// any flags bound on fs. fs may be nil.
func Load(fs *pflag.FlagSet) (Config, error) {
	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)
	if fs != nil {
		var bindErr error
		fs.VisitAll(func(f *pflag.Flag) {
			// flags are kebab-case, keys are snake_case
			key := strings.ReplaceAll(f.Name, "-", "_")
			if err := v.BindPFlag(key, f); err != nil && bindErr == nil {
				bindErr = err
			}
		})
		if bindErr != nil {
			return Config{}, fmt.Errorf("bind flags: %w", bindErr)
		}
	}
	// .env never overrides variables already present in the environment
	_ = godotenv.Load(v.GetString(KeyEnvFile))

	cfg := Config{
		Port:                  v.GetString(KeyPort),
		Environment:           strings.ToLower(v.GetString(KeyEnvironment)),
		LogLevel:              v.GetString(KeyLogLevel),
		AllowedOrigin:         v.GetString(KeyAllowedOrigin),
		GitHubToken:           strings.TrimSpace(v.GetString(KeyGitHubToken)),
		WebhookSecret:         v.GetString(KeyWebhookSecret),
		GitHubAPIURL:          strings.TrimSpace(v.GetString(KeyGitHubAPIURL)),
		AllowInsecureWebhooks: v.GetBool(KeyAllowInsecureWebhooks),
		AIProvider:            strings.ToLower(strings.TrimSpace(v.GetString(KeyAIProvider))),
		OpenAIAPIKey:          strings.TrimSpace(v.GetString(KeyOpenAIAPIKey)),
		Model:                 v.GetString(KeyOpenAIModel),
		OpenAIBaseURL:         strings.TrimSpace(v.GetString(KeyOpenAIBaseURL)),
		OllamaURL:             v.GetString(KeyOllamaURL),
		OllamaModel:           v.GetString(KeyOllamaModel),
		PromptFile:            v.GetString(KeyAIPromptFile),
		MaxContentChars:       v.GetInt(KeyMaxContentChars),
		MaxFileSize:           v.GetInt(KeyMaxFileSize),
		MaxFilesPerPR:         v.GetInt(KeyMaxFilesPerPR),
		SupportedExtensions:   normalizeExtensions(getListDefault(v, KeySupportedExtensions, DefaultExtensions)),
		ReviewActions:         getListDefault(v, KeyReviewActions, []string{"opened"}),
		ReviewConcurrency:     v.GetInt(KeyReviewConcurrency),
		ManualReviewLabel:     v.GetString(KeyManualReviewLabel),
		ReviewedLabel:         v.GetString(KeyReviewedLabel),
		RedactSecrets:         v.GetBool(KeyRedactSecrets),
		WorkerCount:           v.GetInt(KeyWorkerCount),
		QueueSize:             v.GetInt(KeyQueueSize),
	}

	var err error
	if cfg.GitHubTimeout, err = parseDuration(v.GetString(KeyGitHubTimeout), 10*time.Second); err != nil {
		return Config{}, fmt.Errorf("invalid %s: %w", KeyGitHubTimeout, err)
	}
	if cfg.AITimeout, err = parseDuration(v.GetString(KeyAITimeout), 60*time.Second); err != nil {
		return Config{}, fmt.Errorf("invalid %s: %w", KeyAITimeout, err)
	}
	if cfg.ReviewTimeout, err = parseDuration(v.GetString(KeyReviewTimeout), 5*time.Minute); err != nil {
		return Config{}, fmt.Errorf("invalid %s: %w", KeyReviewTimeout, err)
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(KeyPort, "3000")
	v.SetDefault(KeyEnvironment, "development")
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyAllowedOrigin, "*")
	v.SetDefault(KeyGitHubTimeout, "10s")
	v.SetDefault(KeyAllowInsecureWebhooks, false)
	v.SetDefault(KeyAIProvider, "openai")
	v.SetDefault(KeyOpenAIModel, "gpt-4o-mini")
	v.SetDefault(KeyOllamaURL, "http://localhost:11434")
	v.SetDefault(KeyOllamaModel, "llama3")
	v.SetDefault(KeyAITimeout, "60s")
	v.SetDefault(KeyMaxContentChars, 8000)
	v.SetDefault(KeyMaxFileSize, 500)
	v.SetDefault(KeyMaxFilesPerPR, 50)
	v.SetDefault(KeyReviewConcurrency, 1)
	v.SetDefault(KeyReviewTimeout, "5m")
	v.SetDefault(KeyManualReviewLabel, "needs-manual-review")
	v.SetDefault(KeyRedactSecrets, true)
	v.SetDefault(KeyWorkerCount, 4)
	v.SetDefault(KeyQueueSize, 100)
	v.SetDefault(KeyEnvFile, ".env")
}

// Validate reports missing required settings. A missing AI key is not an
// error: the reviewer runs in placeholder mode instead.
func (c Config) Validate() error {
	var errs []error
	if c.GitHubToken == "" {
		errs = append(errs, errors.New("GITHUB_TOKEN is required"))
	}
	if c.WebhookSecret == "" && !c.AllowInsecureWebhooks {
		errs = append(errs, errors.New("GITHUB_WEBHOOK_SECRET is required (set ALLOW_INSECURE_WEBHOOKS=true for local development)"))
	}
	switch c.AIProvider {
	case "openai", "ollama":
	default:
		errs = append(errs, fmt.Errorf("unknown AI_PROVIDER %q", c.AIProvider))
	}
	if c.MaxFilesPerPR <= 0 {
		errs = append(errs, errors.New("MAX_FILES_PER_PR must be positive"))
	}
	if c.MaxFileSize <= 0 {
		errs = append(errs, errors.New("MAX_FILE_SIZE must be positive"))
	}
	if c.WorkerCount <= 0 || c.QueueSize <= 0 {
		errs = append(errs, errors.New("WORKER_COUNT and QUEUE_SIZE must be positive"))
	}
	return errors.Join(errs...)
}

// IsProduction reports whether the service runs in production mode.
func (c Config) IsProduction() bool {
	return c.Environment == "production"
}

func getListDefault(v *viper.Viper, key string, def []string) []string {
	if raw := v.GetString(key); raw != "" {
		parts := strings.Split(raw, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			s := strings.TrimSpace(p)
			if s != "" {
				out = append(out, s)
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return append([]string(nil), def...)
}

func normalizeExtensions(exts []string) []string {
	out := make([]string, 0, len(exts))
	for _, e := range exts {
		e = strings.ToLower(strings.TrimSpace(e))
		if e == "" {
			continue
		}
		if !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		out = append(out, e)
	}
	return out
}

func parseDuration(value string, fallback time.Duration) (time.Duration, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(trimmed)
	if err != nil {
		return 0, err
	}
	return d, nil
}

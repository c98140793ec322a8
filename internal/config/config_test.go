package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv blanks every key so host variables do not leak into the test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"PORT", "ENVIRONMENT", "GITHUB_TOKEN", "GITHUB_WEBHOOK_SECRET", "OPENAI_API_KEY",
		"AI_PROVIDER", "MAX_FILES_PER_PR", "MAX_FILE_SIZE", "SUPPORTED_EXTENSIONS",
		"REVIEW_ACTIONS", "GITHUB_TIMEOUT", "AI_TIMEOUT", "REVIEW_TIMEOUT",
		"ALLOW_INSECURE_WEBHOOKS", "WORKER_COUNT", "QUEUE_SIZE",
	} {
		t.Setenv(k, "")
	}
	t.Setenv("ENV_FILE", filepath.Join(t.TempDir(), "missing.env"))
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(nil)
	require.NoError(t, err)

	assert.Equal(t, "3000", cfg.Port)
	assert.Equal(t, "openai", cfg.AIProvider)
	assert.Equal(t, "gpt-4o-mini", cfg.Model)
	assert.Equal(t, 500, cfg.MaxFileSize)
	assert.Equal(t, 50, cfg.MaxFilesPerPR)
	assert.Equal(t, 8000, cfg.MaxContentChars)
	assert.Equal(t, 10*time.Second, cfg.GitHubTimeout)
	assert.Equal(t, []string{"opened"}, cfg.ReviewActions)
	assert.Len(t, cfg.SupportedExtensions, 25)
	assert.True(t, cfg.RedactSecrets)
	assert.Equal(t, "needs-manual-review", cfg.ManualReviewLabel)
	assert.False(t, cfg.IsProduction())
}

func TestLoadFromEnvironment(t *testing.T) {
	clearEnv(t)
	t.Setenv("GITHUB_TOKEN", "ghp_test")
	t.Setenv("GITHUB_WEBHOOK_SECRET", "s3cret")
	t.Setenv("MAX_FILES_PER_PR", "5")
	t.Setenv("SUPPORTED_EXTENSIONS", "go, PY ,.rs")
	t.Setenv("REVIEW_ACTIONS", "opened,synchronize")
	t.Setenv("GITHUB_TIMEOUT", "3s")
	t.Setenv("ENVIRONMENT", "Production")

	cfg, err := Load(nil)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "ghp_test", cfg.GitHubToken)
	assert.Equal(t, 5, cfg.MaxFilesPerPR)
	assert.Equal(t, []string{".go", ".py", ".rs"}, cfg.SupportedExtensions)
	assert.Equal(t, []string{"opened", "synchronize"}, cfg.ReviewActions)
	assert.Equal(t, 3*time.Second, cfg.GitHubTimeout)
	assert.True(t, cfg.IsProduction())
}

func TestLoadDotEnvFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("GITHUB_TOKEN=from-file\nOPENAI_MODEL=gpt-4o\n"), 0o600))
	t.Setenv("ENV_FILE", path)
	t.Setenv("OPENAI_MODEL", "")
	// godotenv never overrides a variable that exists, even when empty
	require.NoError(t, os.Unsetenv("GITHUB_TOKEN"))
	require.NoError(t, os.Unsetenv("OPENAI_MODEL"))

	cfg, err := Load(nil)
	require.NoError(t, err)
	assert.Equal(t, "from-file", cfg.GitHubToken)
	assert.Equal(t, "gpt-4o", cfg.Model)
}

func TestLoadFlagsOverride(t *testing.T) {
	clearEnv(t)
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.String("port", "3000", "")
	fs.Int("max-files-per-pr", 50, "")
	require.NoError(t, fs.Parse([]string{"--port=9090", "--max-files-per-pr=7"}))

	cfg, err := Load(fs)
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, 7, cfg.MaxFilesPerPR)
}

func TestLoadInvalidDuration(t *testing.T) {
	clearEnv(t)
	t.Setenv("AI_TIMEOUT", "soon")

	_, err := Load(nil)
	assert.ErrorContains(t, err, "ai_timeout")
}

func TestValidate(t *testing.T) {
	base := Config{
		GitHubToken:   "t",
		WebhookSecret: "s",
		AIProvider:    "openai",
		MaxFilesPerPR: 50,
		MaxFileSize:   500,
		WorkerCount:   1,
		QueueSize:     1,
	}
	require.NoError(t, base.Validate())

	noToken := base
	noToken.GitHubToken = ""
	assert.ErrorContains(t, noToken.Validate(), "GITHUB_TOKEN")

	noSecret := base
	noSecret.WebhookSecret = ""
	assert.ErrorContains(t, noSecret.Validate(), "GITHUB_WEBHOOK_SECRET")

	noSecret.AllowInsecureWebhooks = true
	assert.NoError(t, noSecret.Validate())

	noAIKey := base
	noAIKey.OpenAIAPIKey = ""
	assert.NoError(t, noAIKey.Validate())

	badProvider := base
	badProvider.AIProvider = "bard"
	assert.ErrorContains(t, badProvider.Validate(), "AI_PROVIDER")
}

package config

const (
	KeyPort                  = "port"
	KeyEnvironment           = "environment"
	KeyLogLevel              = "log_level"
	KeyAllowedOrigin         = "allowed_origin"
	KeyGitHubToken           = "github_token"
	KeyWebhookSecret         = "github_webhook_secret"
	KeyGitHubAPIURL          = "github_api_url"
	KeyGitHubTimeout         = "github_timeout"
	KeyAllowInsecureWebhooks = "allow_insecure_webhooks"
	KeyAIProvider            = "ai_provider"
	KeyOpenAIAPIKey          = "openai_api_key"
	KeyOpenAIModel           = "openai_model"
	KeyOpenAIBaseURL         = "openai_base_url"
	KeyOllamaURL             = "ollama_url"
	KeyOllamaModel           = "ollama_model"
	KeyAITimeout             = "ai_timeout"
	KeyAIPromptFile          = "ai_prompt_file"
	KeyMaxFileSize           = "max_file_size"
	KeyMaxFilesPerPR         = "max_files_per_pr"
	KeyMaxContentChars       = "max_content_chars"
	KeySupportedExtensions   = "supported_extensions"
	KeyReviewActions         = "review_actions"
	KeyReviewConcurrency     = "review_concurrency"
	KeyReviewTimeout         = "review_timeout"
	KeyWorkerCount           = "worker_count"
	KeyQueueSize             = "queue_size"
	KeyManualReviewLabel     = "manual_review_label"
	KeyReviewedLabel         = "reviewed_label"
	KeyRedactSecrets         = "redact_secrets"
	KeyEnvFile               = "env_file"
)

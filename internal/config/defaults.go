package config

const (
	defaultStagingDir                = "~/.local/share/canvass/staging"
	defaultReportDir                 = "~/canvass/reports"
	defaultLogDir                    = "~/.local/share/canvass/logs"
	defaultReviewDir                 = "~/canvass/review"
	defaultLogRetentionDays          = 60
	defaultLogFormat                 = "console"
	defaultLogLevel                  = "info"
	defaultAPIBind                   = "127.0.0.1:7810"
	defaultOllamaBaseURL             = "http://localhost:11434"
	defaultOllamaModel               = "gemma2"
	defaultOllamaTimeoutSeconds      = 120
	defaultFetchUserAgent            = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"
	defaultFetchTimeoutSeconds       = 30
	defaultFetchMaxPageBytes         = 2 << 20
	defaultFetchMaxRedirects         = 5
	defaultExtractionMaxPages        = 5
	defaultExtractionMaxContentChars = 12000
	defaultExtractionMaxLinks        = 40
	defaultCurationMinCompleteness   = 60
	defaultCurationNameSimilarity    = 0.6
	defaultNotifyRequestTimeout      = 10
	defaultNotifyQueueMinItems       = 1
	defaultProvisionPullTimeout      = 1800
	defaultWorkflowPollInterval      = 5
	defaultWorkflowErrorRetry        = 10
	defaultWorkflowHeartbeatInterval = 15
	defaultWorkflowHeartbeatTimeout  = 120
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			StagingDir: defaultStagingDir,
			ReportDir:  defaultReportDir,
			LogDir:     defaultLogDir,
			ReviewDir:  defaultReviewDir,
			APIBind:    defaultAPIBind,
		},
		Ollama: Ollama{
			BaseURL:        defaultOllamaBaseURL,
			Model:          defaultOllamaModel,
			TimeoutSeconds: defaultOllamaTimeoutSeconds,
		},
		Fetch: Fetch{
			UserAgent:      defaultFetchUserAgent,
			TimeoutSeconds: defaultFetchTimeoutSeconds,
			MaxPageBytes:   defaultFetchMaxPageBytes,
			MaxRedirects:   defaultFetchMaxRedirects,
		},
		Extraction: Extraction{
			MaxPages:        defaultExtractionMaxPages,
			MaxContentChars: defaultExtractionMaxContentChars,
			MaxLinks:        defaultExtractionMaxLinks,
		},
		Curation: Curation{
			MinCompleteness:         defaultCurationMinCompleteness,
			NameSimilarityThreshold: defaultCurationNameSimilarity,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNotifyRequestTimeout,
			Scout:          true,
			Extraction:     true,
			Curation:       true,
			Report:         true,
			Queue:          true,
			Review:         true,
			Errors:         true,
			QueueMinItems:  defaultNotifyQueueMinItems,
		},
		Provision: Provision{
			PullTimeoutSeconds: defaultProvisionPullTimeout,
		},
		Workflow: Workflow{
			QueuePollInterval:  defaultWorkflowPollInterval,
			ErrorRetryInterval: defaultWorkflowErrorRetry,
			HeartbeatInterval:  defaultWorkflowHeartbeatInterval,
			HeartbeatTimeout:   defaultWorkflowHeartbeatTimeout,
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			RetentionDays: defaultLogRetentionDays,
		},
	}
}

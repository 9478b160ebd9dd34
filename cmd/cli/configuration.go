package cli

import "time"

// ApplicationConfiguration describes the persisted configuration for the CLI entrypoint.
type ApplicationConfiguration struct {
	Common         CommonConfiguration         `mapstructure:"common"`
	Scan           ScanConfiguration           `mapstructure:"scan"`
	Classification ClassificationConfiguration `mapstructure:"classification"`
	Completion     CompletionConfiguration     `mapstructure:"completion"`
	Hosting        HostingConfiguration        `mapstructure:"hosting"`
	Publish        PublishConfiguration        `mapstructure:"publish"`
}

// CommonConfiguration stores settings shared across commands.
type CommonConfiguration struct {
	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`
	EnvFile   string `mapstructure:"env_file"`
}

// ScanConfiguration controls project discovery and the publication ledger.
type ScanConfiguration struct {
	BaseDirectory    string   `mapstructure:"base_directory"`
	LedgerFile       string   `mapstructure:"ledger_file"`
	ExcludedMarkers  []string `mapstructure:"excluded_markers"`
	SourceExtensions []string `mapstructure:"source_extensions"`
}

// ClassificationConfiguration lists the extensions for each file kind.
type ClassificationConfiguration struct {
	SketchExtensions        []string `mapstructure:"sketch_extensions"`
	GeneralExtensions       []string `mapstructure:"general_extensions"`
	DocumentationExtensions []string `mapstructure:"documentation_extensions"`
}

// CompletionConfiguration describes the README completion endpoint and its retry policy.
type CompletionConfiguration struct {
	BaseURL           string        `mapstructure:"base_url"`
	Model             string        `mapstructure:"model"`
	RequestsPerMinute int           `mapstructure:"requests_per_minute"`
	RequestTimeout    time.Duration `mapstructure:"request_timeout"`
	MaxAttempts       int           `mapstructure:"max_attempts"`
	InitialBackoff    time.Duration `mapstructure:"initial_backoff"`
	MaxBackoff        time.Duration `mapstructure:"max_backoff"`
	RefusalPrefixes   []string      `mapstructure:"refusal_prefixes"`
}

// HostingConfiguration describes the repository hosting account.
type HostingConfiguration struct {
	APIBaseURL      string        `mapstructure:"api_base_url"`
	WebBaseURL      string        `mapstructure:"web_base_url"`
	Owner           string        `mapstructure:"owner"`
	RemoteProtocol  string        `mapstructure:"remote_protocol"`
	Private         bool          `mapstructure:"private"`
	RequestTimeout  time.Duration `mapstructure:"request_timeout"`
	MaxNameAttempts int           `mapstructure:"max_name_attempts"`
	CollisionSuffix string        `mapstructure:"collision_suffix"`
}

// PublishConfiguration controls the local git sequence and push retries.
type PublishConfiguration struct {
	CommitMessage   string        `mapstructure:"commit_message"`
	Branch          string        `mapstructure:"branch"`
	RemoteName      string        `mapstructure:"remote_name"`
	MaxPushAttempts int           `mapstructure:"max_push_attempts"`
	PushBackoff     time.Duration `mapstructure:"push_backoff"`
}

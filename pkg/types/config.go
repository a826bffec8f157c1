package types

import "time"

// GatewayConfig holds settings for the model gateway and its two backends.
type GatewayConfig struct {
	// MultiAgentEndpoint is the URL of the agent-orchestration service.
	MultiAgentEndpoint string `json:"backend_endpoint_multi_agent" yaml:"backend_endpoint_multi_agent"`

	// DirectEndpoint is the URL of the plain completion endpoint.
	DirectEndpoint string `json:"backend_endpoint_direct" yaml:"backend_endpoint_direct"`

	// APIKey authenticates calls to both endpoints.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// PerCallTimeout bounds each backend call (default 60s).
	PerCallTimeout time.Duration `json:"per_call_timeout" yaml:"per_call_timeout"`

	// RetryCount is the number of retry attempts after a failed call,
	// applied within the current backend mode only (default 3).
	RetryCount int `json:"retry_count" yaml:"retry_count"`

	// MaxTokens is the generation cap sent with each call (default 2048).
	MaxTokens int `json:"max_tokens" yaml:"max_tokens"`

	// Temperature is the sampling temperature sent with each call
	// (default 0.5).
	Temperature float64 `json:"temperature" yaml:"temperature"`
}

// AssemblyConfig holds settings for content assembly.
type AssemblyConfig struct {
	// WordCountTolerance is the accepted deviation from the target word
	// count, as a fraction (default 0.10 for ±10%).
	WordCountTolerance float64 `json:"word_count_tolerance" yaml:"word_count_tolerance"`
}

// StorageConfig holds settings for the storage writer.
type StorageConfig struct {
	// Target is the object-store destination (a directory for the
	// filesystem store).
	Target string `json:"storage_target" yaml:"storage_target"`

	// KeyPrefix is prepended to every storage key (default "articles").
	KeyPrefix string `json:"key_prefix" yaml:"key_prefix"`
}

// HistoryConfig holds settings for the delivery ledger.
type HistoryConfig struct {
	// Path is the SQLite database file. Empty disables the ledger.
	Path string `json:"path,omitempty" yaml:"path,omitempty"`
}

// PipelineConfig aggregates the per-stage configuration. It is constructed
// once at startup and treated as immutable for the process lifetime.
type PipelineConfig struct {
	Gateway  GatewayConfig  `json:"gateway" yaml:"gateway"`
	Assembly AssemblyConfig `json:"assembly" yaml:"assembly"`
	Storage  StorageConfig  `json:"storage" yaml:"storage"`
	History  HistoryConfig  `json:"history" yaml:"history"`
}

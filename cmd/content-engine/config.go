// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"time"

	"github.com/spf13/viper"

	"github.com/pdiddy/content-engine/pkg/types"
)

func init() {
	viper.SetDefault("per_call_timeout", 60*time.Second)
	viper.SetDefault("retry_count", 3)
	viper.SetDefault("word_count_tolerance", 0.10)
	viper.SetDefault("storage_target", "output")
	viper.SetDefault("key_prefix", "articles")
	viper.SetDefault("history_path", "output/index/content-engine.db")
	viper.SetDefault("max_tokens", 2048)
	viper.SetDefault("temperature", 0.5)
}

// resolveConfig builds the immutable pipeline configuration from the
// config file, environment, and loaded secrets. It is called once per
// invocation; the resulting value is never mutated afterwards.
func resolveConfig() types.PipelineConfig {
	return types.PipelineConfig{
		Gateway: types.GatewayConfig{
			MultiAgentEndpoint: viper.GetString("backend_endpoint_multi_agent"),
			DirectEndpoint:     viper.GetString("backend_endpoint_direct"),
			APIKey:             secretDefault("backend-api-key", viper.GetString("api_key")),
			PerCallTimeout:     viper.GetDuration("per_call_timeout"),
			RetryCount:         viper.GetInt("retry_count"),
			MaxTokens:          viper.GetInt("max_tokens"),
			Temperature:        viper.GetFloat64("temperature"),
		},
		Assembly: types.AssemblyConfig{
			WordCountTolerance: viper.GetFloat64("word_count_tolerance"),
		},
		Storage: types.StorageConfig{
			Target:    viper.GetString("storage_target"),
			KeyPrefix: viper.GetString("key_prefix"),
		},
		History: types.HistoryConfig{
			Path: viper.GetString("history_path"),
		},
	}
}

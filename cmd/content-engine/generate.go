// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/content-engine/internal/gateway"
	"github.com/pdiddy/content-engine/internal/history"
	"github.com/pdiddy/content-engine/internal/pipeline"
	"github.com/pdiddy/content-engine/internal/storage"
	"github.com/pdiddy/content-engine/pkg/types"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a marketing article from a content request",
	Long: `Generate runs the full pipeline for one content request: validation,
the four-role agent sequence, assembly (keyword coverage and length
enforcement), and persistence to the configured storage target.

The request is given either through flags or as a YAML payload file via
--request. The outcome (status, storage key, content excerpt) is printed
to stdout as YAML.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, err := loadRawRequest(cmd)
		if err != nil {
			return err
		}

		cfg := resolveConfig()
		if cfg.Gateway.MultiAgentEndpoint == "" || cfg.Gateway.DirectEndpoint == "" {
			return fmt.Errorf("both backend_endpoint_multi_agent and backend_endpoint_direct must be configured")
		}

		gw := gateway.New(cfg.Gateway)
		writer := storage.NewWriter(&storage.FileStore{Root: cfg.Storage.Target}, cfg.Storage.KeyPrefix)

		var ledger *history.Store
		if cfg.History.Path != "" {
			ledger, err = history.Open(cfg.History.Path)
			if err != nil {
				fmt.Fprintf(os.Stderr, "warning: history ledger disabled: %v\n", err)
			} else {
				defer ledger.Close()
			}
		}

		ctrl := &pipeline.Controller{
			Gateway:     gw,
			Storage:     writer,
			Ledger:      ledger,
			Tolerance:   cfg.Assembly.WordCountTolerance,
			StageBudget: gw.PerCallTimeout(),
			Progress:    os.Stderr,
		}

		ctx := cmd.Context()
		if deadline, _ := cmd.Flags().GetDuration("deadline"); deadline > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, deadline)
			defer cancel()
		}

		outcome := ctrl.GenerateContent(ctx, raw)
		out, err := yaml.Marshal(outcome)
		if err != nil {
			return fmt.Errorf("marshaling outcome: %w", err)
		}
		fmt.Fprint(cmd.OutOrStdout(), string(out))

		if outcome.Status != "completed" {
			return fmt.Errorf("%s: %s", outcome.ErrorKind, outcome.Message)
		}
		return nil
	},
}

// loadRawRequest builds the raw request from the --request payload file
// when given, with individual flags overriding payload fields.
func loadRawRequest(cmd *cobra.Command) (types.RawRequest, error) {
	var raw types.RawRequest

	if path, _ := cmd.Flags().GetString("request"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return raw, fmt.Errorf("reading request payload: %w", err)
		}
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return raw, fmt.Errorf("parsing request payload: %w", err)
		}
	}

	if v, _ := cmd.Flags().GetString("topic"); v != "" {
		raw.Topic = v
	}
	if v, _ := cmd.Flags().GetString("brand"); v != "" {
		raw.Brand = v
	}
	if v, _ := cmd.Flags().GetString("audience"); v != "" {
		raw.Audience = v
	}
	if v, _ := cmd.Flags().GetString("tone"); v != "" {
		raw.Tone = v
	}
	if v, _ := cmd.Flags().GetStringSlice("keywords"); len(v) > 0 {
		raw.SEOKeywords = v
	}
	if v, _ := cmd.Flags().GetInt("words"); v > 0 {
		raw.TargetWordCount = v
	}

	return raw, nil
}

func init() {
	generateCmd.Flags().String("request", "", "path to a YAML request payload file")
	generateCmd.Flags().String("topic", "", "article topic")
	generateCmd.Flags().String("brand", "", "publishing brand name")
	generateCmd.Flags().String("audience", "", "target readership")
	generateCmd.Flags().String("tone", "", "writing tone (professional, conversational, authoritative, friendly, technical, playful)")
	generateCmd.Flags().StringSlice("keywords", nil, "SEO keywords the article must contain")
	generateCmd.Flags().Int("words", 0, "target word count (default 700)")
	generateCmd.Flags().Duration("deadline", 15*time.Minute, "overall deadline for the request")

	rootCmd.AddCommand(generateCmd)
}

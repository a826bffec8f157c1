// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/pdiddy/content-engine/pkg/types"
)

// Backend performs a single completion call against one inference endpoint.
// Implementations must honor ctx cancellation and deadlines.
type Backend interface {
	Complete(ctx context.Context, role types.Role, prompt string) (string, error)
}

// completionRequest is the wire request shared by both backend modes.
type completionRequest struct {
	Role       string           `json:"role"`
	Prompt     string           `json:"prompt"`
	Parameters completionParams `json:"parameters"`
}

// completionParams carries the generation parameters sent with each call.
type completionParams struct {
	MaxTokens   int     `json:"max_tokens"`
	Temperature float64 `json:"temperature"`
}

// completionResponse is the wire response. Exactly one of Text or Error is
// populated.
type completionResponse struct {
	Text  string           `json:"text"`
	Error *completionError `json:"error,omitempty"`
}

// completionError is the backend's structured error signal.
type completionError struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// HTTPBackend calls an inference endpoint over HTTP. The same client shape
// serves both modes; they differ only in endpoint URL.
type HTTPBackend struct {
	Endpoint    string
	APIKey      string
	MaxTokens   int
	Temperature float64
	Client      *http.Client
}

// Complete posts one completion request and maps transport and contract
// failures to classified CallErrors.
func (b *HTTPBackend) Complete(ctx context.Context, role types.Role, prompt string) (string, error) {
	reqBody := completionRequest{
		Role:   string(role),
		Prompt: prompt,
		Parameters: completionParams{
			MaxTokens:   b.MaxTokens,
			Temperature: b.Temperature,
		},
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.Endpoint, bytes.NewReader(bodyBytes))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if b.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+b.APIKey)
	}

	client := b.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return "", &CallError{Kind: KindTimeout, Message: "call deadline exceeded", Err: err}
		}
		return "", &CallError{Kind: KindUnavailable, Message: "connection failed", Err: err}
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusServiceUnavailable:
		drained, _ := io.ReadAll(resp.Body)
		return "", &CallError{Kind: KindUnavailable, Message: string(bytes.TrimSpace(drained))}
	case http.StatusRequestTimeout, http.StatusGatewayTimeout:
		return "", &CallError{Kind: KindTimeout, Message: resp.Status}
	case http.StatusBadRequest:
		drained, _ := io.ReadAll(resp.Body)
		return "", &CallError{Kind: KindInvalidRequest, Message: string(bytes.TrimSpace(drained))}
	default:
		drained, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("backend returned %d: %s", resp.StatusCode, string(drained))
	}

	var cResp completionResponse
	if err := json.NewDecoder(resp.Body).Decode(&cResp); err != nil {
		return "", fmt.Errorf("decoding response: %w", err)
	}

	if cResp.Error != nil {
		return "", &CallError{Kind: ErrorKind(cResp.Error.Kind), Message: cResp.Error.Message}
	}
	if cResp.Text == "" {
		return "", fmt.Errorf("backend returned empty text")
	}
	return cResp.Text, nil
}

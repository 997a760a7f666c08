package ollama

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// ModelInfo describes one locally installed model.
type ModelInfo struct {
	Name       string `json:"name"`
	SizeBytes  int64  `json:"size"`
	Digest     string `json:"digest"`
	ModifiedAt string `json:"modified_at"`
}

type tagsResponse struct {
	Models []ModelInfo `json:"models"`
}

// Tags lists the models installed in the local runtime.
func (c *Client) Tags(ctx context.Context) ([]ModelInfo, error) {
	body, err := c.doJSON(ctx, http.MethodGet, "/api/tags", nil)
	if err != nil {
		return nil, err
	}
	var parsed tagsResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("ollama tags: decode response: %w", err)
	}
	return parsed.Models, nil
}

// HasModel reports whether a model is installed. Bare names match their
// :latest tag, so "gemma2" finds "gemma2:latest".
func (c *Client) HasModel(ctx context.Context, name string) (bool, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return false, errors.New("ollama has model: name required")
	}
	models, err := c.Tags(ctx)
	if err != nil {
		return false, err
	}
	for _, model := range models {
		if ModelNamesMatch(model.Name, name) {
			return true, nil
		}
	}
	return false, nil
}

// ModelNamesMatch reports whether two model names refer to the same model,
// treating a bare name and its :latest tag as equal.
func ModelNamesMatch(installed, requested string) bool {
	installed = strings.TrimSpace(installed)
	requested = strings.TrimSpace(requested)
	if installed == requested {
		return true
	}
	return strings.TrimSuffix(installed, ":latest") == strings.TrimSuffix(requested, ":latest")
}

// PullProgress reports one status line from a streaming model pull.
type PullProgress struct {
	Status    string `json:"status"`
	Digest    string `json:"digest"`
	Total     int64  `json:"total"`
	Completed int64  `json:"completed"`
}

// Percent returns download progress for layer lines, or -1 when the line
// carries no byte counts.
func (p PullProgress) Percent() float64 {
	if p.Total <= 0 {
		return -1
	}
	return float64(p.Completed) / float64(p.Total) * 100
}

type pullLine struct {
	PullProgress
	Error string `json:"error"`
}

// Pull downloads a model, invoking progress for each status line the runtime
// streams. The caller's context bounds the download; there is no retry, a
// failed pull restarts from the layers already on disk.
func (c *Client) Pull(ctx context.Context, name string, progress func(PullProgress)) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return errors.New("ollama pull: model name required")
	}
	encoded, err := json.Marshal(map[string]any{"model": name, "stream": true})
	if err != nil {
		return fmt.Errorf("ollama pull: encode body: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/pull", bytes.NewReader(encoded))
	if err != nil {
		return fmt.Errorf("ollama pull: new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.streamClient.Do(req)
	if err != nil {
		return fmt.Errorf("ollama pull %s: %w", name, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= http.StatusMultipleChoices {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &httpStatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		var parsed pullLine
		if err := json.Unmarshal(line, &parsed); err != nil {
			return fmt.Errorf("ollama pull %s: decode stream line: %w", name, err)
		}
		if parsed.Error != "" {
			return fmt.Errorf("ollama pull %s: %s", name, parsed.Error)
		}
		if progress != nil {
			progress(parsed.PullProgress)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("ollama pull %s: read stream: %w", name, err)
	}
	return nil
}

// Delete removes an installed model.
func (c *Client) Delete(ctx context.Context, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return errors.New("ollama delete: model name required")
	}
	_, err := c.doJSON(ctx, http.MethodDelete, "/api/delete", map[string]any{"model": name})
	return err
}

type versionResponse struct {
	Version string `json:"version"`
}

// Version returns the runtime's reported version string.
func (c *Client) Version(ctx context.Context) (string, error) {
	body, err := c.doJSON(ctx, http.MethodGet, "/api/version", nil)
	if err != nil {
		return "", err
	}
	var parsed versionResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("ollama version: decode response: %w", err)
	}
	return strings.TrimSpace(parsed.Version), nil
}

// HealthCheck verifies the runtime is reachable and the configured model is
// installed.
func (c *Client) HealthCheck(ctx context.Context) error {
	if c.model == "" {
		return errors.New("ollama health: model required")
	}
	ok, err := c.HasModel(ctx, c.model)
	if err != nil {
		return fmt.Errorf("ollama health: %w", err)
	}
	if !ok {
		return fmt.Errorf("ollama health: model %q not installed", c.model)
	}
	return nil
}

// doJSON issues a single non-streaming request and returns the response body
// on success.
func (c *Client) doJSON(ctx context.Context, method, path string, payload any) ([]byte, error) {
	var reqBody io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("ollama request: encode body: %w", err)
		}
		reqBody = bytes.NewReader(encoded)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("ollama request: new request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ollama request %s: %w", path, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("ollama request %s: read body: %w", path, err)
	}
	if resp.StatusCode >= http.StatusMultipleChoices {
		return nil, &httpStatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}
	return body, nil
}

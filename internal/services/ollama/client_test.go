package ollama

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"canvass/internal/config"
)

func testConfig(baseURL string) config.Ollama {
	return config.Ollama{BaseURL: baseURL, Model: "demo-model"}
}

func TestGenerateJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/generate" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		var req map[string]any
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req["model"] != "demo-model" || req["format"] != "json" {
			t.Fatalf("unexpected request payload: %v", req)
		}
		if req["stream"] != false {
			t.Fatalf("expected stream=false, got %v", req["stream"])
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"response": `{"ok":true}`,
			"done":     true,
		})
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL))
	content, err := client.GenerateJSON(context.Background(), "system", "user prompt")
	if err != nil {
		t.Fatalf("GenerateJSON returned error: %v", err)
	}
	if content != `{"ok":true}` {
		t.Fatalf("unexpected content %q", content)
	}
}

func TestGenerateJSONRequiresPrompt(t *testing.T) {
	client := NewClient(testConfig("http://127.0.0.1:1"))
	if _, err := client.GenerateJSON(context.Background(), "system", "   "); err == nil {
		t.Fatal("expected error for empty prompt")
	}
}

func TestGenerateJSONRetriesOnHTTP429(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.Header().Set("Retry-After", "1")
			w.WriteHeader(http.StatusTooManyRequests)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "busy"})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"response": `{"ok":true}`, "done": true})
	}))
	defer server.Close()

	var slept []time.Duration
	client := NewClient(
		testConfig(server.URL),
		WithSleeper(func(d time.Duration) { slept = append(slept, d) }),
		WithRetryBackoff(0, 10*time.Second),
		WithRetryMaxAttempts(5),
	)
	content, err := client.GenerateJSON(context.Background(), "", "prompt")
	if err != nil {
		t.Fatalf("GenerateJSON returned error: %v", err)
	}
	if content == "" || calls != 2 {
		t.Fatalf("expected success on second call, calls=%d content=%q", calls, content)
	}
	if len(slept) != 1 || slept[0] != time.Second {
		t.Fatalf("expected single sleep of 1s from Retry-After, got %v", slept)
	}
}

func TestGenerateJSONRetriesOnEmptyResponse(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		response := ""
		if calls >= 3 {
			response = `{"ok":true}`
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"response":    response,
			"done":        true,
			"done_reason": "stop",
		})
	}))
	defer server.Close()

	client := NewClient(
		testConfig(server.URL),
		WithRetryBackoff(0, 0),
		WithSleeper(func(time.Duration) {}),
		WithRetryMaxAttempts(5),
	)
	if _, err := client.GenerateJSON(context.Background(), "", "prompt"); err != nil {
		t.Fatalf("GenerateJSON returned error: %v", err)
	}
	if calls != 3 {
		t.Fatalf("expected 3 calls, got %d", calls)
	}
}

func TestGenerateJSONEmptyResponseErrorHasSnippet(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"response":    "",
			"done":        true,
			"done_reason": "load",
		})
	}))
	defer server.Close()

	client := NewClient(
		testConfig(server.URL),
		WithRetryBackoff(0, 0),
		WithSleeper(func(time.Duration) {}),
		WithRetryMaxAttempts(2),
	)
	_, err := client.GenerateJSON(context.Background(), "", "prompt")
	if err == nil {
		t.Fatal("expected generate to fail")
	}
	if !strings.Contains(err.Error(), "empty response") || !strings.Contains(err.Error(), "done_reason=\"load\"") {
		t.Fatalf("expected empty-response detail, got %v", err)
	}
}

func TestGenerateJSONSurfacesAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"error": "model not loaded"})
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL), WithRetryMaxAttempts(1))
	_, err := client.GenerateJSON(context.Background(), "", "prompt")
	if err == nil || !strings.Contains(err.Error(), "model not loaded") {
		t.Fatalf("expected api error, got %v", err)
	}
}

func TestTagsAndHasModel(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/tags" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"models": []map[string]any{
				{"name": "demo-model:latest", "size": 1000},
				{"name": "other:7b", "size": 2000},
			},
		})
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL))
	models, err := client.Tags(context.Background())
	if err != nil {
		t.Fatalf("Tags returned error: %v", err)
	}
	if len(models) != 2 || models[0].Name != "demo-model:latest" {
		t.Fatalf("unexpected models: %+v", models)
	}
	ok, err := client.HasModel(context.Background(), "demo-model")
	if err != nil || !ok {
		t.Fatalf("bare name should match :latest tag, ok=%v err=%v", ok, err)
	}
	ok, err = client.HasModel(context.Background(), "absent")
	if err != nil || ok {
		t.Fatalf("absent model should not match, ok=%v err=%v", ok, err)
	}
}

func TestHealthCheck(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"models": []map[string]any{{"name": "demo-model:latest"}},
		})
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL))
	if err := client.HealthCheck(context.Background()); err != nil {
		t.Fatalf("HealthCheck returned error: %v", err)
	}

	missing := NewClient(config.Ollama{BaseURL: server.URL, Model: "absent"})
	if err := missing.HealthCheck(context.Background()); err == nil {
		t.Fatal("expected health check to fail for missing model")
	}
}

func TestPullStreamsProgress(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/pull" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		var req map[string]any
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req["model"] != "demo-model" {
			t.Fatalf("unexpected pull payload: %v", req)
		}
		fmt.Fprintln(w, `{"status":"pulling manifest"}`)
		fmt.Fprintln(w, `{"status":"pulling abc123","digest":"abc123","total":100,"completed":50}`)
		fmt.Fprintln(w, `{"status":"success"}`)
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL))
	var lines []PullProgress
	err := client.Pull(context.Background(), "demo-model", func(p PullProgress) {
		lines = append(lines, p)
	})
	if err != nil {
		t.Fatalf("Pull returned error: %v", err)
	}
	if len(lines) != 3 {
		t.Fatalf("expected 3 progress lines, got %d", len(lines))
	}
	if lines[1].Percent() != 50 {
		t.Fatalf("expected 50%% on layer line, got %v", lines[1].Percent())
	}
	if lines[0].Percent() != -1 {
		t.Fatalf("manifest line should report no percent, got %v", lines[0].Percent())
	}
}

func TestPullSurfacesStreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintln(w, `{"status":"pulling manifest"}`)
		fmt.Fprintln(w, `{"error":"pull model manifest: file does not exist"}`)
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL))
	err := client.Pull(context.Background(), "bogus", nil)
	if err == nil || !strings.Contains(err.Error(), "file does not exist") {
		t.Fatalf("expected stream error, got %v", err)
	}
}

func TestVersion(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{"version": "0.5.4"})
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL))
	version, err := client.Version(context.Background())
	if err != nil || version != "0.5.4" {
		t.Fatalf("unexpected version %q err=%v", version, err)
	}
}

func TestDecodeModelJSONHandlesCodeFence(t *testing.T) {
	var target struct {
		OK bool `json:"ok"`
	}
	if err := DecodeModelJSON("```json\n{\"ok\":true}\n```", &target); err != nil {
		t.Fatalf("DecodeModelJSON returned error: %v", err)
	}
	if !target.OK {
		t.Fatal("expected decoded value")
	}
}

func TestDecodeModelJSONExtractsEmbeddedObject(t *testing.T) {
	var target struct {
		OK bool `json:"ok"`
	}
	payload := `Here is the requested JSON: {"ok":true} as promised.`
	if err := DecodeModelJSON(payload, &target); err != nil {
		t.Fatalf("DecodeModelJSON returned error: %v", err)
	}
	if !target.OK {
		t.Fatal("expected decoded value")
	}
}

func TestDecodeModelJSONRejectsGarbage(t *testing.T) {
	var target map[string]any
	if err := DecodeModelJSON("nothing to see here", &target); err == nil {
		t.Fatal("expected decode error")
	}
}

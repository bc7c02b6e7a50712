package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeChatServer serves /chat/completions with the given handler.
func fakeChatServer(t *testing.T, handler func(w http.ResponseWriter, body map[string]any)) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/chat/completions", r.URL.Path)
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		handler(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func writeCompletion(w http.ResponseWriter, content string) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"id":      "chatcmpl-test",
		"object":  "chat.completion",
		"created": 1700000000,
		"model":   "test-model",
		"choices": []map[string]any{{
			"index":         0,
			"message":       map[string]any{"role": "assistant", "content": content},
			"finish_reason": "stop",
		}},
	})
}

func writeError(w http.ResponseWriter, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]any{"message": http.StatusText(status), "type": "test_error"},
	})
}

func newTestLLM(t *testing.T, url string) *llmService {
	t.Helper()
	svc, err := NewLLMService(&LLMConfig{Model: "test-model", APIKey: "sk-test", BaseURL: url, MaxTokens: 64})
	require.NoError(t, err)
	llm := svc.(*llmService)
	llm.retryBase = time.Millisecond
	return llm
}

func TestNewLLMServiceValidation(t *testing.T) {
	_, err := NewLLMService(nil)
	assert.Error(t, err)

	_, err = NewLLMService(&LLMConfig{})
	assert.Error(t, err)

	svc, err := NewLLMService(&LLMConfig{Model: "m"})
	require.NoError(t, err)
	assert.Equal(t, 3, svc.(*llmService).maxRetries)
}

func TestLLMChat(t *testing.T) {
	srv := fakeChatServer(t, func(w http.ResponseWriter, body map[string]any) {
		assert.Equal(t, "test-model", body["model"])
		assert.Equal(t, map[string]any{"type": "json_object"}, body["response_format"])

		messages := body["messages"].([]any)
		require.Len(t, messages, 2)
		assert.Equal(t, "system", messages[0].(map[string]any)["role"])
		assert.Equal(t, "user", messages[1].(map[string]any)["role"])
		writeCompletion(w, `{"date": "2024/03/12 10:00:00"}`)
	})

	got, err := newTestLLM(t, srv.URL).Chat(context.Background(),
		[]Message{SystemPrompt("sys"), UserMessage("hola")}, WithJSONResponse())
	require.NoError(t, err)
	assert.Equal(t, `{"date": "2024/03/12 10:00:00"}`, got)
}

func TestLLMChatRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := fakeChatServer(t, func(w http.ResponseWriter, _ map[string]any) {
		if calls.Add(1) < 3 {
			writeError(w, http.StatusServiceUnavailable)
			return
		}
		writeCompletion(w, "ok")
	})

	got, err := newTestLLM(t, srv.URL).Chat(context.Background(), []Message{UserMessage("hola")})
	require.NoError(t, err)
	assert.Equal(t, "ok", got)
	assert.Equal(t, int32(3), calls.Load())
}

func TestLLMChatDoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	srv := fakeChatServer(t, func(w http.ResponseWriter, _ map[string]any) {
		calls.Add(1)
		writeError(w, http.StatusUnauthorized)
	})

	_, err := newTestLLM(t, srv.URL).Chat(context.Background(), []Message{UserMessage("hola")})
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
}

func TestLLMChatGivesUpAfterMaxRetries(t *testing.T) {
	var calls atomic.Int32
	srv := fakeChatServer(t, func(w http.ResponseWriter, _ map[string]any) {
		calls.Add(1)
		writeError(w, http.StatusTooManyRequests)
	})

	_, err := newTestLLM(t, srv.URL).Chat(context.Background(), []Message{UserMessage("hola")})
	require.Error(t, err)
	assert.Equal(t, int32(3), calls.Load())
}

func TestLLMChatEmptyChoices(t *testing.T) {
	srv := fakeChatServer(t, func(w http.ResponseWriter, _ map[string]any) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"x","object":"chat.completion","choices":[]}`))
	})

	_, err := newTestLLM(t, srv.URL).Chat(context.Background(), []Message{UserMessage("hola")})
	assert.ErrorContains(t, err, "empty chat response")
}

package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Roma7-7-7/love-dialect/internal/analysis"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := NewClient(Config{APIKey: "test-key", BaseURL: srv.URL, MaxRetries: 2}, slog.New(slog.DiscardHandler))
	require.NoError(t, err)
	c.retryWait = time.Millisecond
	return c
}

func textResponse(text string) string {
	b, _ := json.Marshal(map[string]any{
		"candidates": []any{
			map[string]any{"content": map[string]any{"parts": []any{map[string]any{"text": text}}}},
		},
	})
	return string(b)
}

func TestNewClient_MissingKey(t *testing.T) {
	_, err := NewClient(Config{APIKey: "  "}, slog.New(slog.DiscardHandler))
	require.ErrorIs(t, err, ErrConfigurationMissing)
}

func TestClient_GenerateCreativeEntry(t *testing.T) {
	var gotKey, gotPath string
	var gotReq generateRequest
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotKey, gotPath = r.Header.Get(apiKeyHeader), r.URL.Path
		_ = json.NewDecoder(r.Body).Decode(&gotReq)
		_, _ = io.WriteString(w, textResponse(`{"word":"뽀송구름","meaning":"포근한 기분"}`))
	})

	entry, err := c.GenerateCreativeEntry(context.Background())
	require.NoError(t, err)

	assert.Equal(t, Entry{Word: "뽀송구름", Meaning: "포근한 기분"}, entry)
	assert.Equal(t, "test-key", gotKey)
	assert.Equal(t, "/models/"+DefaultModel+":generateContent", gotPath)
	assert.Equal(t, "application/json", gotReq.GenerationConfig.ResponseMimeType)
	require.NotNil(t, gotReq.GenerationConfig.ResponseSchema)
	assert.Equal(t, []string{"word", "meaning"}, gotReq.GenerationConfig.ResponseSchema.Required)
}

func TestClient_GenerateCreativeEntry_Retries(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = io.WriteString(w, textResponse("```json\n{\"word\":\"말랑콩떡\",\"meaning\":\"말랑한 사람\"}\n```"))
	})

	entry, err := c.GenerateCreativeEntry(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "말랑콩떡", entry.Word)
	assert.Equal(t, int32(2), calls.Load())
}

func TestClient_GenerateCreativeEntry_Failures(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		body      string
		wantCalls int32
	}{
		{name: "empty response", status: http.StatusOK, body: textResponse(""), wantCalls: 3},
		{name: "missing meaning", status: http.StatusOK, body: textResponse(`{"word":"x"}`), wantCalls: 3},
		{name: "not json", status: http.StatusOK, body: textResponse("hello"), wantCalls: 3},
		{name: "bad request is not retried", status: http.StatusBadRequest, body: `{"error":{}}`, wantCalls: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls atomic.Int32
			c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
				calls.Add(1)
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			})

			_, err := c.GenerateCreativeEntry(context.Background())
			require.ErrorIs(t, err, ErrGenerationFailed)
			assert.Equal(t, tt.wantCalls, calls.Load())
		})
	}
}

func TestClient_StreamAnalysis(t *testing.T) {
	chunks := []string{`[{"word":"꿀떡이",`, `"meaning":"귀여운 애칭"},`, `{"word":"냠냠타임","meaning":"같이 먹는 시간"}]`}

	var gotQuery string
	var gotReq generateRequest
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("alt")
		_ = json.NewDecoder(r.Body).Decode(&gotReq)
		w.Header().Set("Content-Type", "text/event-stream")
		for _, chunk := range chunks {
			_, _ = fmt.Fprintf(w, "data: %s\r\n\r\n", textResponse(chunk))
		}
	})

	stream, err := c.StreamAnalysis(context.Background(), "대화 내용", []string{"자기야", "여보"})
	require.NoError(t, err)
	defer stream.Close()

	var got []string
	for {
		chunk, nErr := stream.Next()
		if errors.Is(nErr, io.EOF) {
			break
		}
		require.NoError(t, nErr)
		got = append(got, chunk)
	}

	assert.Equal(t, chunks, got)
	assert.Equal(t, "sse", gotQuery)
	prompt := gotReq.Contents[0].Parts[0].Text
	assert.Contains(t, prompt, "자기야, 여보")
	assert.Contains(t, prompt, "대화 내용")
	assert.Equal(t, "ARRAY", gotReq.GenerationConfig.ResponseSchema.Type)
}

func TestClient_StreamAnalysis_Status(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = io.WriteString(w, "denied")
	})

	_, err := c.StreamAnalysis(context.Background(), "chat", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")
}

func TestClient_StreamAnalysis_WithConsumer(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = fmt.Fprintf(w, "data: %s\n\n", textResponse(`[{"word":"햇살버튼",`))
		_, _ = fmt.Fprintf(w, "data: %s\n\n", textResponse(`"meaning":"웃게 만드는 사람"}]`))
	})

	consumer := analysis.NewConsumer(c, 0, slog.New(slog.DiscardHandler))
	words, err := consumer.Run(context.Background(), "chat", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, []analysis.Candidate{{Word: "햇살버튼", Meaning: "웃게 만드는 사람"}}, words)
}

func TestAnalysisPrompt(t *testing.T) {
	assert.Contains(t, analysisPrompt("chat", nil), noExistingWords)
	assert.Contains(t, analysisPrompt("chat", []string{" ", "뽀짝이"}), "\n뽀짝이\n")
	assert.True(t, strings.HasSuffix(analysisPrompt("끝", nil), "끝\n---"))
}

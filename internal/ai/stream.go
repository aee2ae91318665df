package ai

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/Roma7-7-7/love-dialect/internal/analysis"
)

const maxEventSize = 1 << 20

var dataPrefix = []byte("data:")

type sseStream struct {
	body    io.ReadCloser
	scanner *bufio.Scanner
	started time.Time
	failed  bool
}

// StreamAnalysis opens a server-sent events response and yields the text of every chunk.
func (c *Client) StreamAnalysis(ctx context.Context, chatText string, exclude []string) (analysis.Stream, error) {
	start := time.Now()
	req := generateRequest{
		Contents: []content{userContent(analysisPrompt(chatText, exclude))},
		GenerationConfig: generationConfig{
			ResponseMimeType: "application/json",
			ResponseSchema:   entryListSchema(),
		},
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(&req).
		SetQueryParam("alt", "sse").
		SetDoNotParseResponse(true).
		Post(c.endpoint("streamGenerateContent"))
	if err != nil {
		observe(opAnalyze, start, err)
		return nil, fmt.Errorf("gemini stream request: %w", err)
	}

	body := resp.RawBody()
	if resp.StatusCode() != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(body, 4096))
		_ = body.Close()
		sErr := &statusError{code: resp.StatusCode(), body: string(msg)}
		observe(opAnalyze, start, sErr)
		return nil, sErr
	}

	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 0, 64*1024), maxEventSize)
	return &sseStream{body: body, scanner: scanner, started: start}, nil
}

func (s *sseStream) Next() (string, error) {
	for s.scanner.Scan() {
		line := bytes.TrimSpace(s.scanner.Bytes())
		if !bytes.HasPrefix(line, dataPrefix) {
			continue
		}
		payload := bytes.TrimSpace(line[len(dataPrefix):])
		if len(payload) == 0 {
			continue
		}

		var gr generateResponse
		if err := json.Unmarshal(payload, &gr); err != nil {
			s.failed = true
			return "", fmt.Errorf("decode stream chunk: %w", err)
		}
		if text := gr.text(); text != "" {
			return text, nil
		}
	}
	if err := s.scanner.Err(); err != nil {
		s.failed = true
		return "", fmt.Errorf("read stream: %w", err)
	}
	return "", io.EOF
}

func (s *sseStream) Close() error {
	var err error
	if s.failed {
		err = errStreamFailed
	}
	observe(opAnalyze, s.started, err)
	return s.body.Close()
}

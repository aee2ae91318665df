// Package analysis consumes a streamed chat analysis from the generative text service and turns it
// into coarse progress notifications followed by one result set of word candidates.
package analysis

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync/atomic"
)

const (
	StateIdle State = iota
	StateRequesting
	StateStreaming
	StateCompleted
	StateFailed

	DefaultMaxChatLength = 30000
)

var (
	ErrAnalysisFailed     = errors.New("analysis failed")
	ErrAnalysisInProgress = errors.New("analysis already in progress")
)

type (
	State int32

	Candidate struct {
		Word    string `json:"word"`
		Meaning string `json:"meaning"`
	}

	// Update is one notification. Done is set only on the last one, which carries the result set.
	Update struct {
		Progress int         `json:"progress"`
		Words    []Candidate `json:"words,omitempty"`
		Done     bool        `json:"done"`
	}

	Event struct {
		Update
		Err error
	}

	// Stream yields raw text fragments and io.EOF once the response is complete.
	Stream interface {
		Next() (string, error)
		Close() error
	}

	Source interface {
		StreamAnalysis(ctx context.Context, chatText string, exclude []string) (Stream, error)
	}

	Consumer struct {
		source        Source
		maxChatLength int
		state         atomic.Int32

		log *slog.Logger
	}
)

func NewConsumer(source Source, maxChatLength int, log *slog.Logger) *Consumer {
	if maxChatLength <= 0 {
		maxChatLength = DefaultMaxChatLength
	}
	return &Consumer{
		source:        source,
		maxChatLength: maxChatLength,
		log:           log,
	}
}

func (c *Consumer) State() State {
	return State(c.state.Load())
}

// Run performs one analysis, calling notify for every progress change and once more with the
// result. On failure no result is reported and the returned error wraps ErrAnalysisFailed.
func (c *Consumer) Run(ctx context.Context, chatText string, exclude []string, notify func(Update)) ([]Candidate, error) {
	if !c.begin() {
		return nil, ErrAnalysisInProgress
	}

	progress := newTracker(notify)
	progress.start()

	stream, err := c.source.StreamAnalysis(ctx, Truncate(chatText, c.maxChatLength), exclude)
	if err != nil {
		return nil, c.fail(ctx, fmt.Errorf("open stream: %w", err))
	}
	defer func() {
		if cErr := stream.Close(); cErr != nil {
			c.log.DebugContext(ctx, "failed to close analysis stream", "error", cErr)
		}
	}()

	c.state.Store(int32(StateStreaming))
	progress.opened()

	var buf strings.Builder
	for {
		chunk, nErr := stream.Next()
		if errors.Is(nErr, io.EOF) {
			break
		}
		if nErr != nil {
			return nil, c.fail(ctx, fmt.Errorf("read stream: %w", nErr))
		}
		buf.WriteString(chunk)
		progress.chunk()
	}

	if strings.TrimSpace(buf.String()) == "" {
		return nil, c.fail(ctx, errors.New("empty response"))
	}

	words, err := Parse(buf.String(), exclude)
	if err != nil {
		return nil, c.fail(ctx, err)
	}

	c.state.Store(int32(StateCompleted))
	progress.done(words)
	c.log.DebugContext(ctx, "analysis completed", "candidates", len(words), "size", buf.Len())
	return words, nil
}

// Start runs the analysis on its own goroutine. The channel is closed after the final event;
// the caller must drain it or cancel ctx.
func (c *Consumer) Start(ctx context.Context, chatText string, exclude []string) <-chan Event {
	events := make(chan Event, 1)

	send := func(e Event) {
		select {
		case events <- e:
		case <-ctx.Done():
		}
	}

	go func() {
		defer close(events)
		_, err := c.Run(ctx, chatText, exclude, func(u Update) { send(Event{Update: u}) })
		if err != nil {
			send(Event{Err: err})
		}
	}()

	return events
}

func (c *Consumer) begin() bool {
	for {
		current := c.state.Load()
		if State(current) == StateRequesting || State(current) == StateStreaming {
			return false
		}
		if c.state.CompareAndSwap(current, int32(StateRequesting)) {
			return true
		}
	}
}

func (c *Consumer) fail(ctx context.Context, err error) error {
	c.state.Store(int32(StateFailed))
	c.log.WarnContext(ctx, "analysis failed", "error", err)
	return fmt.Errorf("%w: %w", ErrAnalysisFailed, err)
}

// Truncate cuts text to at most limit runes.
func Truncate(text string, limit int) string {
	if limit <= 0 || len(text) <= limit {
		return text
	}
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit])
}

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRequesting:
		return "requesting"
	case StateStreaming:
		return "streaming"
	case StateCompleted:
		return "completed"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

package api

import (
	stdctx "context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/labstack/echo/v4"

	"github.com/Roma7-7-7/love-dialect/internal/ai"
	"github.com/Roma7-7-7/love-dialect/internal/analysis"
	"github.com/Roma7-7-7/love-dialect/internal/context"
	"github.com/Roma7-7-7/love-dialect/internal/dal"
)

const (
	eventProgress = "progress"
	eventResult   = "result"
	eventError    = "error"
)

type (
	CreativeGenerator interface {
		GenerateCreativeEntry(ctx stdctx.Context) (ai.Entry, error)
	}

	AIDependencies struct {
		Repo          dal.DictionariesRepository
		Generator     CreativeGenerator
		Source        analysis.Source
		MaxChatLength int
		Logger        *slog.Logger
	}

	// AIHandler answers 503 on every route when the generative service is not configured.
	AIHandler struct {
		repo          dal.DictionariesRepository
		generator     CreativeGenerator
		source        analysis.Source
		maxChatLength int
		consumers     sync.Map // user id -> *analysis.Consumer

		log *slog.Logger
	}

	analysisRequest struct {
		Chat string `json:"chat" validate:"required"`
	}
)

func NewAIHandler(deps AIDependencies) *AIHandler {
	return &AIHandler{
		repo:          deps.Repo,
		generator:     deps.Generator,
		source:        deps.Source,
		maxChatLength: deps.MaxChatLength,

		log: deps.Logger,
	}
}

func (h *AIHandler) GenerateWord(c echo.Context) error {
	if h.generator == nil {
		return ai.ErrConfigurationMissing
	}

	entry, err := h.generator.GenerateCreativeEntry(c.Request().Context())
	if err != nil {
		return fmt.Errorf("generate creative entry: %w", err)
	}

	return c.JSON(http.StatusOK, entry)
}

// Analyze streams the analysis of an uploaded chat as server-sent events.
func (h *AIHandler) Analyze(c echo.Context) error {
	if h.source == nil {
		return ai.ErrConfigurationMissing
	}

	ctx := c.Request().Context()
	user := context.MustUserFromContext(ctx)

	var req analysisRequest
	if err := bindAndValidate(c, &req, h.log); err != nil {
		return err
	}

	exclude, err := h.existingWords(c)
	if err != nil {
		return err
	}

	consumer := h.consumer(user.ID)
	if consumer.State() == analysis.StateRequesting || consumer.State() == analysis.StateStreaming {
		return analysis.ErrAnalysisInProgress
	}

	resp := c.Response()
	resp.Header().Set(echo.HeaderContentType, "text/event-stream")
	resp.Header().Set(echo.HeaderCacheControl, "no-cache")
	resp.Header().Set(echo.HeaderConnection, "keep-alive")
	resp.WriteHeader(http.StatusOK)

	for event := range consumer.Start(ctx, req.Chat, exclude) {
		var wErr error
		switch {
		case event.Err != nil:
			h.log.WarnContext(ctx, "chat analysis failed", "error", event.Err)
			wErr = writeEvent(resp, eventError, ErrorResponse{Message: toMessage(event.Err)})
		case event.Done:
			wErr = writeEvent(resp, eventResult, echo.Map{"progress": event.Progress, "items": event.Words})
		default:
			wErr = writeEvent(resp, eventProgress, echo.Map{"progress": event.Progress})
		}
		if wErr != nil {
			// the client went away; the consumer stops once ctx is cancelled
			h.log.DebugContext(ctx, "failed to write analysis event", "error", wErr)
		}
	}

	return nil
}

func (h *AIHandler) consumer(userID string) *analysis.Consumer {
	if c, ok := h.consumers.Load(userID); ok {
		return c.(*analysis.Consumer) //nolint:forcetypeassert // only consumers are stored
	}
	c, _ := h.consumers.LoadOrStore(userID, analysis.NewConsumer(h.source, h.maxChatLength, h.log))
	return c.(*analysis.Consumer) //nolint:forcetypeassert // only consumers are stored
}

func (h *AIHandler) existingWords(c echo.Context) ([]string, error) {
	code, err := dictionaryCode(c)
	if err != nil {
		return nil, err
	}

	dict, err := h.repo.FindDictionary(c.Request().Context(), code)
	if err != nil {
		return nil, fmt.Errorf("find dictionary: %w", err)
	}

	words := make([]string, len(dict.Words))
	for i, w := range dict.Words {
		words[i] = w.Word
	}
	return words, nil
}

func writeEvent(resp *echo.Response, name string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	if _, err = fmt.Fprintf(resp, "event: %s\ndata: %s\n\n", name, data); err != nil {
		return fmt.Errorf("write event: %w", err)
	}
	resp.Flush()
	return nil
}

func toMessage(err error) string {
	var httpErr *echo.HTTPError
	if errors.As(toHTTPError(err), &httpErr) {
		if msg, ok := httpErr.Message.(string); ok {
			return msg
		}
	}
	return InternalServerError.Message
}

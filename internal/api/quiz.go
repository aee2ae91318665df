package api

import (
	"fmt"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"sync"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Roma7-7-7/love-dialect/internal/context"
	"github.com/Roma7-7-7/love-dialect/internal/dal"
	"github.com/Roma7-7-7/love-dialect/internal/quiz"
	"github.com/Roma7-7-7/love-dialect/pkg/cache"
)

const quizTTL = 30 * time.Minute

type (
	QuizHandler struct {
		repo    dal.DictionariesRepository
		quizzes *cache.InMemory[*quiz.Quiz]
		mx      sync.Mutex

		log *slog.Logger
	}

	questionResponse struct {
		Meaning string   `json:"meaning"`
		Options []string `json:"options"`
	}

	quizResponse struct {
		Questions []questionResponse `json:"questions"`
	}

	answerRequest struct {
		Question *int   `json:"question" validate:"required,min=0"`
		Option   string `json:"option" validate:"required"`
	}

	answerResponse struct {
		Correct  bool   `json:"correct"`
		Answer   string `json:"answer"`
		Score    int    `json:"score"`
		Finished bool   `json:"finished"`
	}
)

func NewQuizHandler(repo dal.DictionariesRepository, log *slog.Logger) *QuizHandler {
	return &QuizHandler{
		repo:    repo,
		quizzes: cache.NewInMemory[*quiz.Quiz](),
		log:     log,
	}
}

// Start builds a new quiz for the session, replacing any unfinished one.
func (h *QuizHandler) Start(c echo.Context) error {
	code, err := dictionaryCode(c)
	if err != nil {
		return err
	}

	dict, err := h.repo.FindDictionary(c.Request().Context(), code)
	if err != nil {
		return fmt.Errorf("find dictionary: %w", err)
	}

	q, err := quiz.New(dict.Words, rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))) //nolint:gosec // quiz order is not security sensitive
	if err != nil {
		return err
	}
	h.quizzes.Set(context.MustSessionIDFromContext(c.Request().Context()), q, quizTTL)

	res := quizResponse{Questions: make([]questionResponse, len(q.Questions))}
	for i, question := range q.Questions {
		res.Questions[i] = questionResponse{Meaning: question.Meaning, Options: question.Options}
	}
	return c.JSON(http.StatusOK, res)
}

func (h *QuizHandler) Answer(c echo.Context) error {
	var req answerRequest
	if err := bindAndValidate(c, &req, h.log); err != nil {
		return err
	}

	sessionID := context.MustSessionIDFromContext(c.Request().Context())
	q, ok := h.quizzes.Get(sessionID)
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "no active quiz")
	}

	h.mx.Lock()
	defer h.mx.Unlock()

	correct, err := q.Check(*req.Question, req.Option)
	if err != nil {
		return err
	}

	question := q.Questions[*req.Question]
	res := answerResponse{
		Correct:  correct,
		Answer:   question.Options[question.Answer],
		Score:    q.Score,
		Finished: q.Finished(),
	}
	if res.Finished {
		h.quizzes.Delete(sessionID)
	}
	return c.JSON(http.StatusOK, res)
}

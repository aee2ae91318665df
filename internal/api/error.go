package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Roma7-7-7/love-dialect/internal/ai"
	"github.com/Roma7-7-7/love-dialect/internal/analysis"
	"github.com/Roma7-7-7/love-dialect/internal/dal"
	"github.com/Roma7-7-7/love-dialect/internal/quiz"
	"github.com/Roma7-7-7/love-dialect/internal/social"
)

type ErrorResponse struct {
	Message string `json:"error"`
}

var (
	InternalServerError = ErrorResponse{"Internal server error"} //nolint:gochecknoglobals // this is a constant response for internal server error
	BadRequestError     = ErrorResponse{"Bad request"}           //nolint:gochecknoglobals // this is a constant response for bad request
)

// errorStatuses maps domain errors to response codes. Order matters for wrapped chains.
var errorStatuses = []struct { //nolint:gochecknoglobals // fixed mapping table
	err  error
	code int
}{
	{dal.ErrDuplicateUsername, http.StatusConflict},
	{dal.ErrCodeAlreadyExists, http.StatusConflict},
	{analysis.ErrAnalysisInProgress, http.StatusConflict},
	{dal.ErrInvalidCredentials, http.StatusUnauthorized},
	{dal.ErrSessionNotFound, http.StatusUnauthorized},
	{dal.ErrUserNotFound, http.StatusNotFound},
	{dal.ErrDictionaryNotFound, http.StatusNotFound},
	{dal.ErrWordNotFound, http.StatusNotFound},
	{dal.ErrNoDictionaryJoined, http.StatusNotFound},
	{quiz.ErrUnknownQuestion, http.StatusNotFound},
	{dal.ErrInvalidInput, http.StatusBadRequest},
	{social.ErrUnknownProvider, http.StatusBadRequest},
	{quiz.ErrAlreadyAnswered, http.StatusConflict},
	{quiz.ErrNotEnoughWords, http.StatusUnprocessableEntity},
	{ai.ErrGenerationFailed, http.StatusBadGateway},
	{analysis.ErrAnalysisFailed, http.StatusBadGateway},
	{ai.ErrConfigurationMissing, http.StatusServiceUnavailable},
}

// toHTTPError converts a domain error into an echo error. Unknown errors are returned as is.
func toHTTPError(err error) error {
	for _, s := range errorStatuses {
		if errors.Is(err, s.err) {
			return echo.NewHTTPError(s.code, s.err.Error()).SetInternal(err)
		}
	}
	return err
}

func HTTPErrorHandler(log *slog.Logger) func(err error, c echo.Context) {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			log.DebugContext(c.Request().Context(), "error after response was written", "error", err)
			return
		}

		var echoError *echo.HTTPError
		if !errors.As(toHTTPError(err), &echoError) {
			log.ErrorContext(c.Request().Context(), "failed to process request", "error", err)
			if err := c.JSON(http.StatusInternalServerError, InternalServerError); err != nil { //nolint:govet // ignore shadow declaration
				log.ErrorContext(c.Request().Context(), "failed to write error response", "error", err)
			}
			return
		}

		if echoError.Code >= http.StatusInternalServerError {
			log.ErrorContext(c.Request().Context(), "failed to process request", "error", err)
		} else {
			log.DebugContext(c.Request().Context(), "request rejected", "status", echoError.Code, "error", err)
		}

		if message, ok := echoError.Message.(string); ok {
			if message == "" || echoError.Code == http.StatusInternalServerError {
				message = InternalServerError.Message
			}
			if err := c.JSON(echoError.Code, ErrorResponse{Message: message}); err != nil { //nolint:govet // ignore shadow declaration
				log.ErrorContext(c.Request().Context(), "failed to write error response", "error", err)
			}
			return
		}

		if bytes, err := json.Marshal(echoError.Message); err != nil { //nolint:govet // ignore shadow declaration
			log.ErrorContext(c.Request().Context(), "failed to marshal error message", "error", err)
			if err := c.JSON(echoError.Code, InternalServerError); err != nil { //nolint:govet // ignore shadow declaration
				log.ErrorContext(c.Request().Context(), "failed to write error response", "error", err)
			}
		} else {
			c.Response().Header().Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
			if err := c.String(echoError.Code, string(bytes)); err != nil { //nolint:govet // ignore shadow declaration
				log.ErrorContext(c.Request().Context(), "failed to write error response", "error", err)
			}
		}
	}
}

package api

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Roma7-7-7/love-dialect/internal/context"
	"github.com/Roma7-7-7/love-dialect/internal/dal"
	"github.com/Roma7-7-7/love-dialect/internal/stats"
)

type (
	DictionaryRepository interface {
		dal.AccountsRepository
		dal.DictionariesRepository
		dal.MembershipRepository
	}

	DictionaryHandler struct {
		repo DictionaryRepository
		log  *slog.Logger
	}

	dictionaryNameRequest struct {
		Name string `json:"name" validate:"required,max=12"`
	}

	joinDictionaryRequest struct {
		Code string `json:"code" validate:"required"`
	}

	dictionaryResponse struct {
		Code      string         `json:"code"`
		Name      string         `json:"name"`
		Words     []wordResponse `json:"words"`
		CreatedAt time.Time      `json:"created_at"`
	}

	membershipResponse struct {
		User       userResponse       `json:"user"`
		Dictionary dictionaryResponse `json:"dictionary"`
	}
)

func NewDictionaryHandler(repo DictionaryRepository, log *slog.Logger) *DictionaryHandler {
	return &DictionaryHandler{
		repo: repo,
		log:  log,
	}
}

func (h *DictionaryHandler) Create(c echo.Context) error {
	user := context.MustUserFromContext(c.Request().Context())

	var req dictionaryNameRequest
	if err := bindAndValidate(c, &req, h.log); err != nil {
		return err
	}

	updated, dict, err := h.repo.CreateDictionaryForUser(c.Request().Context(), user.ID, req.Name)
	if err != nil {
		return fmt.Errorf("create dictionary: %w", err)
	}

	return c.JSON(http.StatusCreated, membershipResponse{
		User:       toUserResponse(updated),
		Dictionary: toDictionaryResponse(dict),
	})
}

func (h *DictionaryHandler) Join(c echo.Context) error {
	user := context.MustUserFromContext(c.Request().Context())

	var req joinDictionaryRequest
	if err := bindAndValidate(c, &req, h.log); err != nil {
		return err
	}

	updated, dict, err := h.repo.JoinDictionary(c.Request().Context(), user.ID, req.Code)
	if err != nil {
		return fmt.Errorf("join dictionary: %w", err)
	}

	return c.JSON(http.StatusOK, membershipResponse{
		User:       toUserResponse(updated),
		Dictionary: toDictionaryResponse(dict),
	})
}

func (h *DictionaryHandler) Get(c echo.Context) error {
	dict, err := h.dictionary(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toDictionaryResponse(dict))
}

func (h *DictionaryHandler) Rename(c echo.Context) error {
	code, err := dictionaryCode(c)
	if err != nil {
		return err
	}

	var req dictionaryNameRequest
	if err = bindAndValidate(c, &req, h.log); err != nil {
		return err
	}

	if err = h.repo.RenameDictionary(c.Request().Context(), code, req.Name); err != nil {
		return fmt.Errorf("rename dictionary: %w", err)
	}

	return h.Get(c)
}

func (h *DictionaryHandler) Delete(c echo.Context) error {
	code, err := dictionaryCode(c)
	if err != nil {
		return err
	}

	if err = h.repo.DeleteDictionaryAndDetach(c.Request().Context(), code); err != nil {
		if dal.IsDetachError(err) {
			// the dictionary is gone; stale codes are cleared lazily on the next read
			h.log.WarnContext(c.Request().Context(), "dictionary deleted but members were not detached", "error", err)
			return c.NoContent(http.StatusNoContent)
		}
		return fmt.Errorf("delete dictionary: %w", err)
	}

	return c.NoContent(http.StatusNoContent)
}

func (h *DictionaryHandler) Stats(c echo.Context) error {
	dict, err := h.dictionary(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"items": stats.Compute(dict.Words)})
}

// dictionary loads the current user's dictionary. A code pointing at a deleted dictionary is cleared.
func (h *DictionaryHandler) dictionary(c echo.Context) (*dal.Dictionary, error) {
	code, err := dictionaryCode(c)
	if err != nil {
		return nil, err
	}

	ctx := c.Request().Context()
	dict, err := h.repo.FindDictionary(ctx, code)
	if errors.Is(err, dal.ErrDictionaryNotFound) {
		if cErr := h.repo.ClearDictionaryCode(ctx, code); cErr != nil {
			h.log.ErrorContext(ctx, "failed to clear stale dictionary code", "error", cErr)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("find dictionary: %w", err)
	}
	return dict, nil
}

func dictionaryCode(c echo.Context) (string, error) {
	user := context.MustUserFromContext(c.Request().Context())
	if !user.HasDictionary() {
		return "", dal.ErrNoDictionaryJoined
	}
	return user.DictionaryCode, nil
}

func toDictionaryResponse(d *dal.Dictionary) dictionaryResponse {
	words := make([]wordResponse, len(d.Words))
	for i, w := range d.Words {
		words[i] = toWordResponse(w)
	}
	return dictionaryResponse{
		Code:      d.Code,
		Name:      d.Name,
		Words:     words,
		CreatedAt: d.CreatedAt,
	}
}

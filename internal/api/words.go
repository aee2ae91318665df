package api

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Roma7-7-7/love-dialect/internal/dal"
)

type (
	wordRequest struct {
		Word    string `json:"word" validate:"required,max=50"`
		Meaning string `json:"meaning" validate:"required,max=500"`
	}

	importWordsRequest struct {
		Words []wordRequest `json:"words" validate:"required,min=1,max=100,dive"`
	}

	wordResponse struct {
		ID      string `json:"id"`
		Word    string `json:"word"`
		Meaning string `json:"meaning"`
	}
)

func (h *DictionaryHandler) AddWord(c echo.Context) error {
	code, err := dictionaryCode(c)
	if err != nil {
		return err
	}

	var req wordRequest
	if err = bindAndValidate(c, &req, h.log); err != nil {
		return err
	}

	word, err := h.repo.AddWord(c.Request().Context(), code, req.Word, req.Meaning)
	if err != nil {
		return fmt.Errorf("add word: %w", err)
	}

	return c.JSON(http.StatusCreated, toWordResponse(*word))
}

func (h *DictionaryHandler) UpdateWord(c echo.Context) error {
	code, err := dictionaryCode(c)
	if err != nil {
		return err
	}

	var req wordRequest
	if err = bindAndValidate(c, &req, h.log); err != nil {
		return err
	}

	word, err := h.repo.UpdateWord(c.Request().Context(), code, c.Param("id"), req.Word, req.Meaning)
	if err != nil {
		return fmt.Errorf("update word: %w", err)
	}

	return c.JSON(http.StatusOK, toWordResponse(*word))
}

func (h *DictionaryHandler) DeleteWord(c echo.Context) error {
	code, err := dictionaryCode(c)
	if err != nil {
		return err
	}

	if err = h.repo.DeleteWord(c.Request().Context(), code, c.Param("id")); err != nil {
		return fmt.Errorf("delete word: %w", err)
	}

	return c.NoContent(http.StatusNoContent)
}

// ImportWords adds the candidates picked from a chat analysis.
func (h *DictionaryHandler) ImportWords(c echo.Context) error {
	code, err := dictionaryCode(c)
	if err != nil {
		return err
	}

	var req importWordsRequest
	if err = bindAndValidate(c, &req, h.log); err != nil {
		return err
	}

	added := make([]wordResponse, 0, len(req.Words))
	for _, w := range req.Words {
		word, aErr := h.repo.AddWord(c.Request().Context(), code, w.Word, w.Meaning)
		if aErr != nil {
			return fmt.Errorf("add word %q: %w", w.Word, aErr)
		}
		added = append(added, toWordResponse(*word))
	}

	h.log.DebugContext(c.Request().Context(), "words imported", "count", len(added))
	return c.JSON(http.StatusCreated, echo.Map{"items": added})
}

func toWordResponse(w dal.WordEntry) wordResponse {
	return wordResponse{
		ID:      w.ID,
		Word:    w.Word,
		Meaning: w.Meaning,
	}
}

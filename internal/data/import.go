// Package data reads word lists in the "word:meaning[:note]" line format and imports them into a dictionary.
package data

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/Roma7-7-7/love-dialect/internal/dal"
)

type (
	Line struct {
		Word    string
		Meaning string
		Note    string
	}

	ParsingError struct {
		InvalidLines []int
	}

	WordAdder interface {
		AddWord(ctx context.Context, code, word, meaning string) (*dal.WordEntry, error)
	}

	Importer struct {
		repo WordAdder
		log  *slog.Logger
	}
)

func (e *ParsingError) Error() string {
	return fmt.Sprintf("parsing error: invalidLines=%v", e.InvalidLines)
}

// FullMeaning appends the optional note to the meaning.
func (l Line) FullMeaning() string {
	if l.Note == "" {
		return l.Meaning
	}
	return fmt.Sprintf("%s (%s)", l.Meaning, l.Note)
}

// Parse streams valid lines into out and closes it when done. Invalid lines are skipped and reported in a *ParsingError.
func Parse(ctx context.Context, in io.ReadCloser, out chan<- Line) error {
	defer close(out)
	defer in.Close()

	scanner := bufio.NewScanner(in)
	invalidLines := make([]int, 0, 10) //nolint:mnd // 10 is the expected capacity
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}

		parts := strings.Split(line, ":")
		if len(parts) < 2 || len(parts) > 3 {
			invalidLines = append(invalidLines, lineNum)
			continue
		}

		parsed := Line{
			Word:    strings.TrimSpace(parts[0]),
			Meaning: strings.TrimSpace(parts[1]),
		}
		if len(parts) == 3 { //nolint:mnd // 3 is the expected length
			parsed.Note = strings.TrimSpace(parts[2])
		}
		if parsed.Word == "" || parsed.Meaning == "" {
			invalidLines = append(invalidLines, lineNum)
			continue
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case out <- parsed:
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("scan file: %w", err)
	}
	if len(invalidLines) > 0 {
		return &ParsingError{InvalidLines: invalidLines}
	}

	return nil
}

func NewImporter(repo WordAdder, log *slog.Logger) *Importer {
	return &Importer{repo: repo, log: log}
}

// Import adds every parsed line to the dictionary and returns the number of added words.
func (i *Importer) Import(ctx context.Context, code string, in io.ReadCloser) (int, error) {
	lines := make(chan Line)
	parseErr := make(chan error, 1)
	go func() {
		parseErr <- Parse(ctx, in, lines)
	}()

	added := 0
	var addErr error
	for line := range lines {
		if addErr != nil {
			continue
		}
		if _, err := i.repo.AddWord(ctx, code, line.Word, line.FullMeaning()); err != nil {
			addErr = fmt.Errorf("add word %q: %w", line.Word, err)
			continue
		}
		added++
	}

	if err := <-parseErr; err != nil && addErr == nil {
		return added, err
	}
	if addErr != nil {
		return added, addErr
	}

	i.log.DebugContext(ctx, "words imported", "code", code, "count", added)
	return added, nil
}

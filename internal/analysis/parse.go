package analysis

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Parse decodes the accumulated response as a JSON list of candidates. Blank entries, duplicates
// and words already in exclude (case-insensitive) are dropped.
func Parse(raw string, exclude []string) ([]Candidate, error) {
	var parsed []Candidate
	if err := json.Unmarshal([]byte(CleanJSON(raw)), &parsed); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}
	if parsed == nil {
		return nil, errors.New("parse response: expected a JSON list")
	}

	seen := make(map[string]bool, len(exclude)+len(parsed))
	for _, w := range exclude {
		seen[normalize(w)] = true
	}

	res := make([]Candidate, 0, len(parsed))
	for _, c := range parsed {
		c.Word, c.Meaning = strings.TrimSpace(c.Word), strings.TrimSpace(c.Meaning)
		if c.Word == "" || c.Meaning == "" || seen[normalize(c.Word)] {
			continue
		}
		seen[normalize(c.Word)] = true
		res = append(res, c)
	}
	return res, nil
}

// CleanJSON strips a markdown code fence the model sometimes wraps JSON output in.
func CleanJSON(content string) string {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	return strings.TrimSpace(content)
}

func normalize(word string) string {
	return strings.ToLower(strings.TrimSpace(word))
}

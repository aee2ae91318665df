// Package quiz builds multiple-choice quizzes where a meaning is shown and its word has to be picked.
package quiz

import (
	"errors"
	"fmt"
	"math/rand/v2"

	"github.com/Roma7-7-7/love-dialect/internal/dal"
)

const (
	Length   = 5
	Options  = 4
	MinWords = Options
)

var (
	ErrNotEnoughWords  = fmt.Errorf("at least %d words are required", MinWords)
	ErrUnknownQuestion = errors.New("unknown question")
	ErrAlreadyAnswered = errors.New("question already answered")
)

type (
	Question struct {
		WordID  string   `json:"word_id"`
		Meaning string   `json:"meaning"`
		Options []string `json:"options"`
		Answer  int      `json:"answer"`
	}

	Quiz struct {
		Questions []Question `json:"questions"`
		Score     int        `json:"score"`

		answered map[int]bool
	}
)

func New(words []dal.WordEntry, rnd *rand.Rand) (*Quiz, error) {
	if len(words) < MinWords {
		return nil, ErrNotEnoughWords
	}

	shuffled := make([]dal.WordEntry, len(words))
	copy(shuffled, words)
	rnd.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })

	questions := make([]Question, 0, min(Length, len(shuffled)))
	for _, w := range shuffled[:min(Length, len(shuffled))] {
		questions = append(questions, newQuestion(w, words, rnd))
	}

	return &Quiz{Questions: questions, answered: make(map[int]bool, len(questions))}, nil
}

// Check scores an answer. Each question counts once.
func (q *Quiz) Check(question int, option string) (bool, error) {
	if question < 0 || question >= len(q.Questions) {
		return false, ErrUnknownQuestion
	}
	if q.answered[question] {
		return false, ErrAlreadyAnswered
	}
	q.answered[question] = true

	qs := q.Questions[question]
	correct := qs.Options[qs.Answer] == option
	if correct {
		q.Score++
	}
	return correct, nil
}

func (q *Quiz) Finished() bool {
	return len(q.answered) == len(q.Questions)
}

func newQuestion(target dal.WordEntry, words []dal.WordEntry, rnd *rand.Rand) Question {
	options := []string{target.Word}
	seen := map[string]bool{target.Word: true}
	for _, i := range rnd.Perm(len(words)) {
		if len(options) == Options {
			break
		}
		w := words[i]
		if w.ID == target.ID || seen[w.Word] {
			continue
		}
		seen[w.Word] = true
		options = append(options, w.Word)
	}

	rnd.Shuffle(len(options), func(i, j int) { options[i], options[j] = options[j], options[i] })
	answer := 0
	for i, o := range options {
		if o == target.Word {
			answer = i
			break
		}
	}

	return Question{
		WordID:  target.ID,
		Meaning: target.Meaning,
		Options: options,
		Answer:  answer,
	}
}

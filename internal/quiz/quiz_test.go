package quiz_test

import (
	"fmt"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Roma7-7-7/love-dialect/internal/dal"
	"github.com/Roma7-7-7/love-dialect/internal/quiz"
)

func entries(n int) []dal.WordEntry {
	res := make([]dal.WordEntry, n)
	for i := range res {
		res[i] = dal.WordEntry{
			ID:      fmt.Sprintf("id-%d", i),
			Word:    fmt.Sprintf("word-%d", i),
			Meaning: fmt.Sprintf("meaning-%d", i),
		}
	}
	return res
}

func TestNew_NotEnoughWords(t *testing.T) {
	_, err := quiz.New(entries(3), rand.New(rand.NewPCG(1, 2)))
	require.ErrorIs(t, err, quiz.ErrNotEnoughWords)
}

func TestNew(t *testing.T) {
	words := entries(10)
	byID := make(map[string]dal.WordEntry, len(words))
	for _, w := range words {
		byID[w.ID] = w
	}

	q, err := quiz.New(words, rand.New(rand.NewPCG(1, 2)))
	require.NoError(t, err)
	require.Len(t, q.Questions, quiz.Length)

	seen := make(map[string]bool)
	for _, question := range q.Questions {
		assert.False(t, seen[question.WordID], "questions are distinct")
		seen[question.WordID] = true

		w := byID[question.WordID]
		assert.Equal(t, w.Meaning, question.Meaning)
		require.Len(t, question.Options, quiz.Options)
		assert.Equal(t, w.Word, question.Options[question.Answer])

		unique := make(map[string]bool)
		for _, o := range question.Options {
			unique[o] = true
		}
		assert.Len(t, unique, quiz.Options)
	}
}

func TestNew_FewerWordsThanLength(t *testing.T) {
	q, err := quiz.New(entries(4), rand.New(rand.NewPCG(3, 4)))
	require.NoError(t, err)
	assert.Len(t, q.Questions, 4)
}

func TestQuiz_Check(t *testing.T) {
	q, err := quiz.New(entries(6), rand.New(rand.NewPCG(5, 6)))
	require.NoError(t, err)

	first := q.Questions[0]
	ok, err := q.Check(0, first.Options[first.Answer])
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = q.Check(0, first.Options[first.Answer])
	require.ErrorIs(t, err, quiz.ErrAlreadyAnswered)

	second := q.Questions[1]
	wrong := second.Options[(second.Answer+1)%len(second.Options)]
	ok, err = q.Check(1, wrong)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = q.Check(99, "x")
	require.ErrorIs(t, err, quiz.ErrUnknownQuestion)

	assert.Equal(t, 1, q.Score)
	assert.False(t, q.Finished())
}

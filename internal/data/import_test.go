package data

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Roma7-7-7/love-dialect/internal/dal"
	"github.com/Roma7-7-7/love-dialect/pkg/kv"
)

const sample = `자기야:애칭
찹쌀떡:간식:말랑한 볼

broken line
:빈 단어
뽀뽀 : 행동 `

func TestParse(t *testing.T) {
	out := make(chan Line, 10)
	err := Parse(context.Background(), io.NopCloser(strings.NewReader(sample)), out)

	var lines []Line
	for l := range out {
		lines = append(lines, l)
	}

	var pErr *ParsingError
	require.ErrorAs(t, err, &pErr)
	assert.Equal(t, []int{4, 5}, pErr.InvalidLines)
	assert.Equal(t, []Line{
		{Word: "자기야", Meaning: "애칭"},
		{Word: "찹쌀떡", Meaning: "간식", Note: "말랑한 볼"},
		{Word: "뽀뽀", Meaning: "행동"},
	}, lines)
	assert.Equal(t, "간식 (말랑한 볼)", lines[1].FullMeaning())
}

func TestImporter_Import(t *testing.T) {
	ctx := context.Background()
	log := slog.New(slog.DiscardHandler)
	store := dal.NewStore(kv.NewInMemory(), log)
	_, err := store.CreateDictionary(ctx, "code_1", "우리")
	require.NoError(t, err)

	added, err := NewImporter(store, log).Import(ctx, "code_1", io.NopCloser(strings.NewReader("자기야:애칭\n찹쌀떡:간식:말랑")))
	require.NoError(t, err)
	assert.Equal(t, 2, added)

	dict, err := store.FindDictionary(ctx, "code_1")
	require.NoError(t, err)
	require.Len(t, dict.Words, 2)
	assert.Equal(t, "간식 (말랑)", dict.Words[1].Meaning)
}

func TestImporter_UnknownDictionary(t *testing.T) {
	log := slog.New(slog.DiscardHandler)
	store := dal.NewStore(kv.NewInMemory(), log)

	added, err := NewImporter(store, log).Import(context.Background(), "missing", io.NopCloser(strings.NewReader("a:b\nc:d")))
	require.True(t, errors.Is(err, dal.ErrDictionaryNotFound))
	assert.Zero(t, added)
}

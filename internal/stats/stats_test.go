package stats_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Roma7-7-7/love-dialect/internal/dal"
	"github.com/Roma7-7-7/love-dialect/internal/stats"
)

type fakeRepo struct {
	dictionaries []dal.Dictionary
	err          error
}

func (r fakeRepo) AllDictionaries(context.Context) ([]dal.Dictionary, error) {
	return r.dictionaries, r.err
}

func words(pairs ...string) []dal.WordEntry {
	res := make([]dal.WordEntry, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		res = append(res, dal.WordEntry{Word: pairs[i], Meaning: pairs[i+1]})
	}
	return res
}

func TestCompute(t *testing.T) {
	tests := []struct {
		name  string
		words []dal.WordEntry
		want  []stats.Category
		freq  []int
	}{
		{
			name:  "empty",
			words: nil,
			want:  []stats.Category{},
			freq:  []int{},
		},
		{
			name:  "ties keep priority order",
			words: words("자기야", "애칭", "찹쌀떡", "간식", "xyz", "xyz"),
			want:  []stats.Category{stats.CategoryNickname, stats.CategoryFood, stats.CategoryOther},
			freq:  []int{1, 1, 1},
		},
		{
			name:  "sorted by frequency",
			words: words("a", "b", "c", "d", "공원 산책", "x", "뽀뽀", "y", "우리집", "z"),
			want:  []stats.Category{stats.CategoryPlace, stats.CategoryOther, stats.CategoryAction},
			freq:  []int{2, 2, 1},
		},
		{
			name:  "first matching category wins",
			words: words("딸기 공주", "둘 다 해당"),
			want:  []stats.Category{stats.CategoryNickname},
			freq:  []int{1},
		},
		{
			name:  "meaning is matched too",
			words: words("몽글이", "카페에서 만든 말"),
			want:  []stats.Category{stats.CategoryPlace},
			freq:  []int{1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := stats.Compute(tt.words)
			gotCategories := make([]stats.Category, 0, len(got))
			gotFreq := make([]int, 0, len(got))
			for _, b := range got {
				gotCategories = append(gotCategories, b.Category)
				gotFreq = append(gotFreq, b.Frequency)
				assert.NotEmpty(t, b.Name)
			}
			assert.Equal(t, tt.want, gotCategories)
			assert.Equal(t, tt.freq, gotFreq)
		})
	}
}

func TestClassify_CaseInsensitive(t *testing.T) {
	assert.Equal(t, stats.CategoryOther, stats.Classify(dal.WordEntry{Word: "HONEY", Meaning: "x"}))
	assert.Equal(t, stats.CategoryNickname, stats.Classify(dal.WordEntry{Word: "허니", Meaning: "X"}))
}

func TestAggregator_Compute(t *testing.T) {
	agg := stats.NewAggregator(fakeRepo{dictionaries: []dal.Dictionary{
		{Code: "a", Words: words("자기야", "애칭")},
		{Code: "b", Words: words("여보", "애칭", "만두", "간식")},
	}})

	got, err := agg.Compute(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, stats.Bucket{Category: stats.CategoryNickname, Name: "애칭 (Nicknames)", Frequency: 2}, got[0])
	assert.Equal(t, stats.CategoryFood, got[1].Category)

	_, err = stats.NewAggregator(fakeRepo{err: errors.New("boom")}).Compute(context.Background())
	require.Error(t, err)
}

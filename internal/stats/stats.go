// Package stats buckets dictionary words into fixed categories by keyword match.
package stats

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/Roma7-7-7/love-dialect/internal/dal"
)

const (
	CategoryNickname Category = "nickname"
	CategoryFood     Category = "food"
	CategoryAction   Category = "action"
	CategoryPlace    Category = "place"
	CategoryOther    Category = "other"
)

type (
	Category string

	Bucket struct {
		Category  Category `json:"category"`
		Name      string   `json:"name"`
		Frequency int      `json:"frequency"`
	}

	rule struct {
		category Category
		name     string
		keywords []string
	}

	DictionariesRepository interface {
		AllDictionaries(ctx context.Context) ([]dal.Dictionary, error)
	}

	Aggregator struct {
		repo DictionariesRepository
	}
)

// policy is ordered by priority; the first matching rule wins and "other" catches the rest.
var policy = []rule{ //nolint:gochecknoglobals // fixed classification table
	{CategoryNickname, "애칭 (Nicknames)", []string{"자기", "여보", "공주", "왕자", "이쁜이", "귀요미", "사랑", "허니", "달링"}},
	{CategoryFood, "음식 관련 (Food-related)", []string{"만두", "찹쌀", "모찌", "떡", "빵", "쿠키", "디저트", "딸기"}},
	{CategoryAction, "귀여운 행동 (Cute Actions)", []string{"뽀뽀", "포옹", "쓰담", "안아주기", "둥가", "궁디팡팡"}},
	{CategoryPlace, "우리만의 장소 (Our Places)", []string{"아지트", "공원", "카페", "맛집", "우리집", "너네집"}},
	{CategoryOther, "기타 (Others)", nil},
}

func NewAggregator(repo DictionariesRepository) *Aggregator {
	return &Aggregator{repo: repo}
}

// Compute recomputes the buckets over every stored dictionary.
func (a *Aggregator) Compute(ctx context.Context) ([]Bucket, error) {
	dictionaries, err := a.repo.AllDictionaries(ctx)
	if err != nil {
		return nil, fmt.Errorf("get dictionaries: %w", err)
	}

	words := make([]dal.WordEntry, 0, len(dictionaries))
	for _, d := range dictionaries {
		words = append(words, d.Words...)
	}
	return Compute(words), nil
}

// Compute returns the non-empty buckets sorted by descending frequency.
// Equal frequencies keep the policy order.
func Compute(words []dal.WordEntry) []Bucket {
	counts := make([]int, len(policy))
	for _, w := range words {
		counts[classify(w)]++
	}

	res := make([]Bucket, 0, len(policy))
	for i, r := range policy {
		if counts[i] == 0 {
			continue
		}
		res = append(res, Bucket{Category: r.category, Name: r.name, Frequency: counts[i]})
	}

	slices.SortStableFunc(res, func(a, b Bucket) int {
		return b.Frequency - a.Frequency
	})
	return res
}

func Classify(w dal.WordEntry) Category {
	return policy[classify(w)].category
}

func classify(w dal.WordEntry) int {
	text := strings.ToLower(w.Word) + " " + strings.ToLower(w.Meaning)
	for i, r := range policy {
		if len(r.keywords) == 0 {
			return i
		}
		for _, kw := range r.keywords {
			if strings.Contains(text, kw) {
				return i
			}
		}
	}
	return len(policy) - 1
}

package dal

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"unicode/utf8"
)

func (s *Store) CreateDictionary(ctx context.Context, code, name string) (*Dictionary, error) {
	if strings.TrimSpace(code) == "" {
		return nil, fmt.Errorf("code is required: %w", ErrInvalidInput)
	}
	name, err := validateName(name)
	if err != nil {
		return nil, err
	}

	s.dictionariesMx.Lock()
	defer s.dictionariesMx.Unlock()

	dictionaries, err := s.dictionaries.load(ctx)
	if err != nil {
		return nil, err
	}
	if _, ok := dictionaries[code]; ok {
		return nil, ErrCodeAlreadyExists
	}

	dict := Dictionary{
		Code:      code,
		Name:      name,
		Words:     []WordEntry{},
		CreatedAt: s.now(),
	}
	dictionaries[code] = dict
	if err = s.dictionaries.save(ctx, dictionaries); err != nil {
		return nil, err
	}
	return &dict, nil
}

func (s *Store) FindDictionary(ctx context.Context, code string) (*Dictionary, error) {
	s.dictionariesMx.Lock()
	defer s.dictionariesMx.Unlock()

	dictionaries, err := s.dictionaries.load(ctx)
	if err != nil {
		return nil, err
	}

	dict, ok := dictionaries[code]
	if !ok {
		return nil, ErrDictionaryNotFound
	}
	dict.Code = code
	return &dict, nil
}

// AllDictionaries returns every stored dictionary ordered by creation time.
func (s *Store) AllDictionaries(ctx context.Context) ([]Dictionary, error) {
	s.dictionariesMx.Lock()
	defer s.dictionariesMx.Unlock()

	dictionaries, err := s.dictionaries.load(ctx)
	if err != nil {
		return nil, err
	}

	res := make([]Dictionary, 0, len(dictionaries))
	for code, dict := range dictionaries {
		dict.Code = code
		res = append(res, dict)
	}
	slices.SortFunc(res, func(a, b Dictionary) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.Code, b.Code)
	})
	return res, nil
}

func (s *Store) AddWord(ctx context.Context, code, word, meaning string) (*WordEntry, error) {
	word, meaning, err := validateWord(word, meaning)
	if err != nil {
		return nil, err
	}

	s.dictionariesMx.Lock()
	defer s.dictionariesMx.Unlock()

	dictionaries, err := s.dictionaries.load(ctx)
	if err != nil {
		return nil, err
	}
	dict, ok := dictionaries[code]
	if !ok {
		return nil, ErrDictionaryNotFound
	}

	entry := WordEntry{
		ID:      s.newID(),
		Word:    word,
		Meaning: meaning,
	}
	dict.Words = append(dict.Words, entry)
	dictionaries[code] = dict

	if err = s.dictionaries.save(ctx, dictionaries); err != nil {
		return nil, err
	}
	return &entry, nil
}

// UpdateWord replaces word and meaning in place, keeping the entry's id and position.
func (s *Store) UpdateWord(ctx context.Context, code, id, word, meaning string) (*WordEntry, error) {
	word, meaning, err := validateWord(word, meaning)
	if err != nil {
		return nil, err
	}

	s.dictionariesMx.Lock()
	defer s.dictionariesMx.Unlock()

	dictionaries, err := s.dictionaries.load(ctx)
	if err != nil {
		return nil, err
	}
	dict, ok := dictionaries[code]
	if !ok {
		return nil, ErrDictionaryNotFound
	}

	idx := slices.IndexFunc(dict.Words, func(w WordEntry) bool { return w.ID == id })
	if idx == -1 {
		return nil, ErrWordNotFound
	}
	dict.Words[idx].Word = word
	dict.Words[idx].Meaning = meaning
	dictionaries[code] = dict

	if err = s.dictionaries.save(ctx, dictionaries); err != nil {
		return nil, err
	}
	updated := dict.Words[idx]
	return &updated, nil
}

// DeleteWord is a no-op when either the dictionary or the word does not exist.
func (s *Store) DeleteWord(ctx context.Context, code, id string) error {
	s.dictionariesMx.Lock()
	defer s.dictionariesMx.Unlock()

	dictionaries, err := s.dictionaries.load(ctx)
	if err != nil {
		return err
	}
	dict, ok := dictionaries[code]
	if !ok {
		return nil
	}

	words := slices.DeleteFunc(dict.Words, func(w WordEntry) bool { return w.ID == id })
	if len(words) == len(dict.Words) {
		return nil
	}
	dict.Words = words
	dictionaries[code] = dict

	return s.dictionaries.save(ctx, dictionaries)
}

func (s *Store) RenameDictionary(ctx context.Context, code, name string) error {
	name, err := validateName(name)
	if err != nil {
		return err
	}

	s.dictionariesMx.Lock()
	defer s.dictionariesMx.Unlock()

	dictionaries, err := s.dictionaries.load(ctx)
	if err != nil {
		return err
	}
	dict, ok := dictionaries[code]
	if !ok {
		return ErrDictionaryNotFound
	}
	dict.Name = name
	dictionaries[code] = dict

	return s.dictionaries.save(ctx, dictionaries)
}

// DeleteDictionary removes the dictionary only. Users still pointing at the code have to be
// detached with ClearDictionaryCode afterwards, see DeleteDictionaryAndDetach.
func (s *Store) DeleteDictionary(ctx context.Context, code string) error {
	s.dictionariesMx.Lock()
	defer s.dictionariesMx.Unlock()

	dictionaries, err := s.dictionaries.load(ctx)
	if err != nil {
		return err
	}
	if _, ok := dictionaries[code]; !ok {
		return nil
	}

	delete(dictionaries, code)
	return s.dictionaries.save(ctx, dictionaries)
}

func validateName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("dictionary name is required: %w", ErrInvalidInput)
	}
	if utf8.RuneCountInString(name) > MaxDictionaryNameLength {
		return "", fmt.Errorf("dictionary name is longer than %d characters: %w", MaxDictionaryNameLength, ErrInvalidInput)
	}
	return name, nil
}

func validateWord(word, meaning string) (string, string, error) {
	word, meaning = strings.TrimSpace(word), strings.TrimSpace(meaning)
	if word == "" || meaning == "" {
		return "", "", fmt.Errorf("word and meaning are required: %w", ErrInvalidInput)
	}
	return word, meaning, nil
}

package dal

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
)

const (
	detachRetries      = 3
	detachInitialDelay = 50 * time.Millisecond
)

// DetachError means the dictionary is gone but some users may still reference its code.
// Running ClearDictionaryCode(Code) again completes the cleanup.
type DetachError struct {
	Code string
	Err  error
}

func (e *DetachError) Error() string {
	return fmt.Sprintf("detach users from dictionary %s: %v", e.Code, e.Err)
}

func (e *DetachError) Unwrap() error {
	return e.Err
}

func (s *Store) CreateDictionaryForUser(ctx context.Context, userID, name string) (*User, *Dictionary, error) {
	if _, err := s.FindUser(ctx, userID); err != nil {
		return nil, nil, err
	}

	dict, err := s.CreateDictionary(ctx, NewSecretCode(), name)
	if err != nil {
		return nil, nil, fmt.Errorf("create dictionary: %w", err)
	}

	user, err := s.SetDictionaryCode(ctx, userID, dict.Code)
	if err != nil {
		if dErr := s.DeleteDictionary(ctx, dict.Code); dErr != nil {
			s.log.ErrorContext(ctx, "failed to remove orphaned dictionary", "code", dict.Code, "error", dErr)
		}
		return nil, nil, fmt.Errorf("set dictionary code: %w", err)
	}

	return user, dict, nil
}

func (s *Store) JoinDictionary(ctx context.Context, userID, code string) (*User, *Dictionary, error) {
	dict, err := s.FindDictionary(ctx, code)
	if err != nil {
		return nil, nil, err
	}

	user, err := s.SetDictionaryCode(ctx, userID, code)
	if err != nil {
		return nil, nil, err
	}
	return user, dict, nil
}

// DeleteDictionaryAndDetach runs the two phases of dictionary removal: the dictionary record first,
// then the sweep over users. The sweep is retried; a *DetachError reports a sweep that never finished.
func (s *Store) DeleteDictionaryAndDetach(ctx context.Context, code string) error {
	if err := s.DeleteDictionary(ctx, code); err != nil {
		return fmt.Errorf("delete dictionary: %w", err)
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = detachInitialDelay
	policy := backoff.WithContext(backoff.WithMaxRetries(b, detachRetries), ctx)

	err := backoff.RetryNotify(func() error {
		return s.ClearDictionaryCode(ctx, code)
	}, policy, func(err error, next time.Duration) {
		s.log.WarnContext(ctx, "retrying dictionary code sweep", "code", code, "next", next, "error", err)
	})
	if err != nil {
		return &DetachError{Code: code, Err: err}
	}
	return nil
}

// IsDetachError reports whether err left users referencing a deleted dictionary.
func IsDetachError(err error) bool {
	var de *DetachError
	return errors.As(err, &de)
}

// SweepDanglingCodes clears every user's dictionary code that points at a dictionary which no longer
// exists. It completes detach phases that failed or raced with a concurrent join.
func (s *Store) SweepDanglingCodes(ctx context.Context) (int, error) {
	s.dictionariesMx.Lock()
	defer s.dictionariesMx.Unlock()

	dictionaries, err := s.dictionaries.load(ctx)
	if err != nil {
		return 0, err
	}

	s.usersMx.Lock()
	defer s.usersMx.Unlock()

	users, err := s.users.load(ctx)
	if err != nil {
		return 0, err
	}

	cleared := 0
	for id, user := range users {
		if !user.HasDictionary() {
			continue
		}
		if _, ok := dictionaries[user.DictionaryCode]; ok {
			continue
		}
		user.DictionaryCode = ""
		users[id] = user
		cleared++
	}
	if cleared == 0 {
		return 0, nil
	}

	if err = s.users.save(ctx, users); err != nil {
		return 0, err
	}
	return cleared, nil
}

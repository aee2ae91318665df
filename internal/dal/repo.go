package dal

import (
	"context"
	"errors"
)

const (
	UsersKey        = "love_dialect_users"
	DictionariesKey = "love_dialect_dictionaries"
	SessionsKey     = "love_dialect_sessions"

	MaxDictionaryNameLength = 12
)

var (
	ErrDuplicateUsername  = errors.New("username is already taken")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUserNotFound       = errors.New("user not found")
	ErrSessionNotFound    = errors.New("session not found")
	ErrCodeAlreadyExists  = errors.New("dictionary code already exists")
	ErrDictionaryNotFound = errors.New("dictionary not found")
	ErrWordNotFound       = errors.New("word not found")
	ErrInvalidInput       = errors.New("invalid input")
	ErrNoDictionaryJoined = errors.New("user has no dictionary")
)

type (
	AccountsRepository interface {
		SignUp(ctx context.Context, username, password string) (*User, *Session, error)
		Login(ctx context.Context, username, password string) (*User, *Session, error)
		LoginWithExternalIdentity(ctx context.Context, identity ExternalIdentity) (*User, *Session, error)
		FindUser(ctx context.Context, id string) (*User, error)
		SetDictionaryCode(ctx context.Context, userID, code string) (*User, error)
		ClearDictionaryCode(ctx context.Context, code string) error
	}

	SessionsRepository interface {
		Logout(ctx context.Context, sessionID string) error
		FindSession(ctx context.Context, sessionID string) (*Session, error)
		CurrentUser(ctx context.Context, sessionID string) (*User, error)
	}

	DictionariesRepository interface {
		CreateDictionary(ctx context.Context, code, name string) (*Dictionary, error)
		FindDictionary(ctx context.Context, code string) (*Dictionary, error)
		AllDictionaries(ctx context.Context) ([]Dictionary, error)
		AddWord(ctx context.Context, code, word, meaning string) (*WordEntry, error)
		UpdateWord(ctx context.Context, code, id, word, meaning string) (*WordEntry, error)
		DeleteWord(ctx context.Context, code, id string) error
		RenameDictionary(ctx context.Context, code, name string) error
		DeleteDictionary(ctx context.Context, code string) error
	}

	// MembershipRepository spans both collections. None of its operations are atomic.
	// Nested locks are taken in the order dictionaries, users, sessions.
	MembershipRepository interface {
		CreateDictionaryForUser(ctx context.Context, userID, name string) (*User, *Dictionary, error)
		JoinDictionary(ctx context.Context, userID, code string) (*User, *Dictionary, error)
		DeleteDictionaryAndDetach(ctx context.Context, code string) error
		SweepDanglingCodes(ctx context.Context) (int, error)
	}

	Repository interface {
		AccountsRepository
		SessionsRepository
		DictionariesRepository
		MembershipRepository
	}
)

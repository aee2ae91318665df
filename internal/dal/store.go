package dal

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/Roma7-7-7/love-dialect/pkg/kv"
)

type (
	// Store implements Repository on top of a kv.Store. Every collection has its own mutex
	// so that concurrent requests never interleave a read-modify-write cycle.
	Store struct {
		users        collection[User]
		dictionaries collection[Dictionary]
		sessions     collection[Session]

		usersMx        sync.Mutex
		dictionariesMx sync.Mutex
		sessionsMx     sync.Mutex

		hashCost int
		now      func() time.Time
		newID    func() string

		log *slog.Logger
	}

	Option func(*Store)
)

func WithHashCost(cost int) Option {
	return func(s *Store) {
		s.hashCost = cost
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

func NewStore(store kv.Store, log *slog.Logger, opts ...Option) *Store {
	res := &Store{
		users:        collection[User]{store: store, key: UsersKey},
		dictionaries: collection[Dictionary]{store: store, key: DictionariesKey},
		sessions:     collection[Session]{store: store, key: SessionsKey},

		hashCost: bcrypt.DefaultCost,
		now:      time.Now,
		newID:    uuid.NewString,

		log: log,
	}
	for _, opt := range opts {
		opt(res)
	}
	return res
}

// NewSecretCode generates the shared code a dictionary is stored and joined by.
func NewSecretCode() string {
	return "code_" + uuid.NewString()
}

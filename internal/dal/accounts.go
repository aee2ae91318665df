package dal

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

const externalSuffixLength = 4

func (s *Store) SignUp(ctx context.Context, username, password string) (*User, *Session, error) {
	username = strings.TrimSpace(username)
	if username == "" || strings.TrimSpace(password) == "" {
		return nil, nil, fmt.Errorf("username and password are required: %w", ErrInvalidInput)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.hashCost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return nil, nil, fmt.Errorf("password is too long: %w", ErrInvalidInput)
		}
		return nil, nil, fmt.Errorf("hash password: %w", err)
	}

	s.usersMx.Lock()
	defer s.usersMx.Unlock()

	users, err := s.users.load(ctx)
	if err != nil {
		return nil, nil, err
	}
	if findByUsername(users, username) != nil {
		return nil, nil, ErrDuplicateUsername
	}

	user := User{
		ID:           "user_" + s.newID(),
		Username:     username,
		PasswordHash: string(hash),
	}
	users[user.ID] = user
	if err = s.users.save(ctx, users); err != nil {
		return nil, nil, err
	}

	session, err := s.openSession(ctx, user.ID)
	if err != nil {
		s.discardUser(ctx, users, user.ID)
		return nil, nil, err
	}

	s.log.DebugContext(ctx, "user signed up", "user_id", user.ID)
	return &user, session, nil
}

func (s *Store) Login(ctx context.Context, username, password string) (*User, *Session, error) {
	s.usersMx.Lock()
	defer s.usersMx.Unlock()

	users, err := s.users.load(ctx)
	if err != nil {
		return nil, nil, err
	}

	user := findByUsername(users, strings.TrimSpace(username))
	if user == nil || user.ExternalID != "" {
		return nil, nil, ErrInvalidCredentials
	}
	if err = bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, nil, ErrInvalidCredentials
	}

	session, err := s.openSession(ctx, user.ID)
	if err != nil {
		return nil, nil, err
	}
	return user, session, nil
}

// LoginWithExternalIdentity never fails on a missing account: the first login creates it.
func (s *Store) LoginWithExternalIdentity(ctx context.Context, identity ExternalIdentity) (*User, *Session, error) {
	if identity.ID == "" {
		return nil, nil, fmt.Errorf("external id is required: %w", ErrInvalidInput)
	}

	s.usersMx.Lock()
	defer s.usersMx.Unlock()

	users, err := s.users.load(ctx)
	if err != nil {
		return nil, nil, err
	}

	var (
		user    *User
		created bool
	)
	for _, u := range users {
		if u.ExternalID == identity.ID && u.Provider == identity.Provider {
			user = &u
			break
		}
	}

	if user == nil {
		id := s.newID()
		username := identity.Username
		if strings.TrimSpace(username) == "" || findByUsername(users, username) != nil {
			username = fmt.Sprintf("%s#%s", identity.Username, strings.ReplaceAll(id, "-", "")[:externalSuffixLength])
		}
		user = &User{
			ID:       "user_" + id,
			Username: username,
			// never compared: Login skips accounts with an external id
			PasswordHash: fmt.Sprintf("external:%s:%s", identity.Provider, s.newID()),
			ExternalID:   identity.ID,
			Provider:     identity.Provider,
		}
		created = true
		users[user.ID] = *user
		if err = s.users.save(ctx, users); err != nil {
			return nil, nil, err
		}
		s.log.DebugContext(ctx, "external user created", "user_id", user.ID, "provider", identity.Provider)
	}

	session, err := s.openSession(ctx, user.ID)
	if err != nil {
		if created {
			s.discardUser(ctx, users, user.ID)
		}
		return nil, nil, err
	}
	return user, session, nil
}

func (s *Store) FindUser(ctx context.Context, id string) (*User, error) {
	s.usersMx.Lock()
	defer s.usersMx.Unlock()

	return s.findUser(ctx, id)
}

func (s *Store) SetDictionaryCode(ctx context.Context, userID, code string) (*User, error) {
	s.usersMx.Lock()
	defer s.usersMx.Unlock()

	users, err := s.users.load(ctx)
	if err != nil {
		return nil, err
	}

	user, ok := users[userID]
	if !ok {
		return nil, ErrUserNotFound
	}
	user.DictionaryCode = code
	users[userID] = user

	if err = s.users.save(ctx, users); err != nil {
		return nil, err
	}
	return &user, nil
}

// ClearDictionaryCode detaches every user pointing at code. It writes only when something changed.
func (s *Store) ClearDictionaryCode(ctx context.Context, code string) error {
	s.usersMx.Lock()
	defer s.usersMx.Unlock()

	users, err := s.users.load(ctx)
	if err != nil {
		return err
	}

	updated := 0
	for id, user := range users {
		if user.DictionaryCode == code {
			user.DictionaryCode = ""
			users[id] = user
			updated++
		}
	}
	if updated == 0 {
		return nil
	}

	if err = s.users.save(ctx, users); err != nil {
		return err
	}
	s.log.DebugContext(ctx, "dictionary code cleared", "code", code, "users", updated)
	return nil
}

func (s *Store) findUser(ctx context.Context, id string) (*User, error) {
	users, err := s.users.load(ctx)
	if err != nil {
		return nil, err
	}

	user, ok := users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	return &user, nil
}

func findByUsername(users map[string]User, username string) *User {
	for _, u := range users {
		if strings.EqualFold(u.Username, username) {
			return &u
		}
	}
	return nil
}

// discardUser removes an account whose session could not be opened. Callers hold usersMx.
func (s *Store) discardUser(ctx context.Context, users map[string]User, id string) {
	delete(users, id)
	if err := s.users.save(ctx, users); err != nil {
		s.log.ErrorContext(ctx, "failed to remove user without session", "user_id", id, "error", err)
	}
}

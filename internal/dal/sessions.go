package dal

import (
	"context"
	"errors"
)

func (s *Store) Logout(ctx context.Context, sessionID string) error {
	s.sessionsMx.Lock()
	defer s.sessionsMx.Unlock()

	sessions, err := s.sessions.load(ctx)
	if err != nil {
		return err
	}
	if _, ok := sessions[sessionID]; !ok {
		return nil
	}

	delete(sessions, sessionID)
	return s.sessions.save(ctx, sessions)
}

func (s *Store) FindSession(ctx context.Context, sessionID string) (*Session, error) {
	s.sessionsMx.Lock()
	defer s.sessionsMx.Unlock()

	sessions, err := s.sessions.load(ctx)
	if err != nil {
		return nil, err
	}

	session, ok := sessions[sessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return &session, nil
}

// CurrentUser resolves a session to its user. A session whose user no longer exists
// is reported the same way as a missing session.
func (s *Store) CurrentUser(ctx context.Context, sessionID string) (*User, error) {
	session, err := s.FindSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	user, err := s.FindUser(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	return user, nil
}

func (s *Store) openSession(ctx context.Context, userID string) (*Session, error) {
	s.sessionsMx.Lock()
	defer s.sessionsMx.Unlock()

	sessions, err := s.sessions.load(ctx)
	if err != nil {
		return nil, err
	}

	session := Session{
		ID:        s.newID(),
		UserID:    userID,
		CreatedAt: s.now(),
	}
	sessions[session.ID] = session
	if err = s.sessions.save(ctx, sessions); err != nil {
		return nil, err
	}
	return &session, nil
}

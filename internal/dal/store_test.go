package dal_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/Roma7-7-7/love-dialect/internal/dal"
	"github.com/Roma7-7-7/love-dialect/pkg/kv"
)

var errWriteFailed = errors.New("write failed")

// failingStore fails Set for one key while failures > 0.
type failingStore struct {
	kv.Store
	key      string
	failures atomic.Int32
}

func (s *failingStore) Set(ctx context.Context, key, value string) error {
	if key == s.key && s.failures.Add(-1) >= 0 {
		return errWriteFailed
	}
	return s.Store.Set(ctx, key, value)
}

func newStore(t *testing.T, store kv.Store) *dal.Store {
	t.Helper()
	if store == nil {
		store = kv.NewInMemory()
	}
	return dal.NewStore(store, slog.New(slog.NewTextHandler(io.Discard, nil)), dal.WithHashCost(bcrypt.MinCost))
}

func TestStore_SignUp(t *testing.T) {
	ctx := context.Background()
	s := newStore(t, nil)

	user, session, err := s.SignUp(ctx, "Alice", "secret")
	require.NoError(t, err)
	assert.NotEmpty(t, user.ID)
	assert.Equal(t, "Alice", user.Username)
	assert.NotEqual(t, "secret", user.PasswordHash)
	assert.Equal(t, user.ID, session.UserID)

	current, err := s.CurrentUser(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, user.ID, current.ID)

	_, _, err = s.SignUp(ctx, "aLiCe", "other")
	require.ErrorIs(t, err, dal.ErrDuplicateUsername)

	_, _, err = s.SignUp(ctx, "  ", "secret")
	require.ErrorIs(t, err, dal.ErrInvalidInput)
}

func TestStore_Login(t *testing.T) {
	ctx := context.Background()
	s := newStore(t, nil)

	user, _, err := s.SignUp(ctx, "bob", "pa55")
	require.NoError(t, err)

	logged, session, err := s.Login(ctx, "BOB", "pa55")
	require.NoError(t, err)
	assert.Equal(t, user.ID, logged.ID)

	current, err := s.CurrentUser(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, user.ID, current.ID)

	_, _, err = s.Login(ctx, "bob", "PA55")
	require.ErrorIs(t, err, dal.ErrInvalidCredentials)
	_, _, err = s.Login(ctx, "nobody", "pa55")
	require.ErrorIs(t, err, dal.ErrInvalidCredentials)
}

func TestStore_Logout(t *testing.T) {
	ctx := context.Background()
	s := newStore(t, nil)

	_, session, err := s.SignUp(ctx, "carol", "pw")
	require.NoError(t, err)

	require.NoError(t, s.Logout(ctx, session.ID))
	_, err = s.CurrentUser(ctx, session.ID)
	require.ErrorIs(t, err, dal.ErrSessionNotFound)

	_, _, err = s.Login(ctx, "carol", "pw")
	require.NoError(t, err, "logout keeps the account")

	require.NoError(t, s.Logout(ctx, "unknown"))
}

func TestStore_LoginWithExternalIdentity(t *testing.T) {
	ctx := context.Background()
	s := newStore(t, nil)

	identity := dal.ExternalIdentity{Provider: "kakao", ID: "kakao_1", Username: "lover"}

	first, _, err := s.LoginWithExternalIdentity(ctx, identity)
	require.NoError(t, err)
	assert.Equal(t, "kakao_1", first.ExternalID)
	assert.Equal(t, "lover", first.Username)

	second, session, err := s.LoginWithExternalIdentity(ctx, identity)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	current, err := s.CurrentUser(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, current.ID)

	_, _, err = s.Login(ctx, "lover", first.PasswordHash)
	require.ErrorIs(t, err, dal.ErrInvalidCredentials, "external accounts cannot log in with a password")
}

func TestStore_LoginWithExternalIdentity_UsernameTaken(t *testing.T) {
	ctx := context.Background()
	s := newStore(t, nil)

	_, _, err := s.SignUp(ctx, "LOVER", "pw")
	require.NoError(t, err)

	user, _, err := s.LoginWithExternalIdentity(ctx, dal.ExternalIdentity{Provider: "kakao", ID: "kakao_1", Username: "lover"})
	require.NoError(t, err)
	assert.NotEqual(t, "lover", user.Username)
	assert.Contains(t, user.Username, "lover#")

	_, _, err = s.SignUp(ctx, user.Username, "pw")
	require.ErrorIs(t, err, dal.ErrDuplicateUsername)
}

func TestStore_LoginWithExternalIdentity_ProviderScoped(t *testing.T) {
	ctx := context.Background()
	s := newStore(t, nil)

	kakao, _, err := s.LoginWithExternalIdentity(ctx, dal.ExternalIdentity{Provider: "kakao", ID: "42", Username: "lover"})
	require.NoError(t, err)
	other, _, err := s.LoginWithExternalIdentity(ctx, dal.ExternalIdentity{Provider: "naver", ID: "42", Username: "lover"})
	require.NoError(t, err)

	assert.NotEqual(t, kakao.ID, other.ID)
	assert.Equal(t, "kakao", kakao.Provider)
	assert.Equal(t, "naver", other.Provider)
}

func TestStore_SignUp_SessionWriteFails(t *testing.T) {
	ctx := context.Background()
	backing := &failingStore{Store: kv.NewInMemory(), key: dal.SessionsKey}
	backing.failures.Store(1)
	s := newStore(t, backing)

	_, _, err := s.SignUp(ctx, "dave", "pw")
	require.ErrorIs(t, err, errWriteFailed)

	user, session, err := s.SignUp(ctx, "dave", "pw")
	require.NoError(t, err)
	assert.Equal(t, "dave", user.Username)
	assert.Equal(t, user.ID, session.UserID)
}

func TestStore_LoginWithExternalIdentity_SessionWriteFails(t *testing.T) {
	ctx := context.Background()
	backing := &failingStore{Store: kv.NewInMemory(), key: dal.SessionsKey}
	backing.failures.Store(1)
	s := newStore(t, backing)

	identity := dal.ExternalIdentity{Provider: "kakao", ID: "kakao_1", Username: "lover"}
	_, _, err := s.LoginWithExternalIdentity(ctx, identity)
	require.ErrorIs(t, err, errWriteFailed)

	user, _, err := s.LoginWithExternalIdentity(ctx, identity)
	require.NoError(t, err)
	assert.Equal(t, "lover", user.Username, "the failed attempt left no account behind")
}

func TestStore_SetDictionaryCode(t *testing.T) {
	ctx := context.Background()
	s := newStore(t, nil)

	_, err := s.SetDictionaryCode(ctx, "missing", "code")
	require.ErrorIs(t, err, dal.ErrUserNotFound)

	user, _, err := s.SignUp(ctx, "dave", "pw")
	require.NoError(t, err)

	updated, err := s.SetDictionaryCode(ctx, user.ID, "code_1")
	require.NoError(t, err)
	assert.Equal(t, "code_1", updated.DictionaryCode)

	found, err := s.FindUser(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, found.HasDictionary())
}

func TestStore_CreateDictionary(t *testing.T) {
	ctx := context.Background()
	s := newStore(t, nil)

	dict, err := s.CreateDictionary(ctx, "code_1", "우리 사전")
	require.NoError(t, err)
	assert.Empty(t, dict.Words)
	assert.False(t, dict.CreatedAt.IsZero())

	_, err = s.CreateDictionary(ctx, "code_1", "other")
	require.ErrorIs(t, err, dal.ErrCodeAlreadyExists)

	found, err := s.FindDictionary(ctx, "code_1")
	require.NoError(t, err)
	assert.Equal(t, "우리 사전", found.Name)
	assert.Equal(t, "code_1", found.Code)

	_, err = s.CreateDictionary(ctx, "code_2", "이름이열두글자를넘어가요요")
	require.ErrorIs(t, err, dal.ErrInvalidInput)

	_, err = s.FindDictionary(ctx, "code_2")
	require.ErrorIs(t, err, dal.ErrDictionaryNotFound)
}

func TestStore_Words(t *testing.T) {
	ctx := context.Background()
	s := newStore(t, nil)

	_, err := s.CreateDictionary(ctx, "code", "dict")
	require.NoError(t, err)

	_, err = s.AddWord(ctx, "missing", "w", "m")
	require.ErrorIs(t, err, dal.ErrDictionaryNotFound)
	_, err = s.AddWord(ctx, "code", "w", " ")
	require.ErrorIs(t, err, dal.ErrInvalidInput)

	entry, err := s.AddWord(ctx, "code", "사랑둥이", "애칭")
	require.NoError(t, err)

	dict, err := s.FindDictionary(ctx, "code")
	require.NoError(t, err)
	require.Len(t, dict.Words, 1)
	assert.Equal(t, *entry, dict.Words[0])

	require.NoError(t, s.DeleteWord(ctx, "code", entry.ID))
	dict, err = s.FindDictionary(ctx, "code")
	require.NoError(t, err)
	assert.Empty(t, dict.Words)

	require.NoError(t, s.DeleteWord(ctx, "code", entry.ID), "absent word")
	require.NoError(t, s.DeleteWord(ctx, "missing", entry.ID), "absent dictionary")
}

func TestStore_UpdateWord(t *testing.T) {
	ctx := context.Background()
	s := newStore(t, nil)

	_, err := s.CreateDictionary(ctx, "code", "dict")
	require.NoError(t, err)

	first, err := s.AddWord(ctx, "code", "a", "1")
	require.NoError(t, err)
	second, err := s.AddWord(ctx, "code", "b", "2")
	require.NoError(t, err)
	third, err := s.AddWord(ctx, "code", "c", "3")
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)

	updated, err := s.UpdateWord(ctx, "code", second.ID, "뽀짝이", "귀여운 사람")
	require.NoError(t, err)
	assert.Equal(t, second.ID, updated.ID)

	dict, err := s.FindDictionary(ctx, "code")
	require.NoError(t, err)
	require.Len(t, dict.Words, 3)
	assert.Equal(t, []string{first.ID, second.ID, third.ID}, []string{dict.Words[0].ID, dict.Words[1].ID, dict.Words[2].ID})
	assert.Equal(t, "뽀짝이", dict.Words[1].Word)
	assert.Equal(t, "귀여운 사람", dict.Words[1].Meaning)

	_, err = s.UpdateWord(ctx, "code", "missing", "x", "y")
	require.ErrorIs(t, err, dal.ErrWordNotFound)
	_, err = s.UpdateWord(ctx, "missing", second.ID, "x", "y")
	require.ErrorIs(t, err, dal.ErrDictionaryNotFound)
}

func TestStore_RenameDictionary(t *testing.T) {
	ctx := context.Background()
	s := newStore(t, nil)

	require.ErrorIs(t, s.RenameDictionary(ctx, "missing", "name"), dal.ErrDictionaryNotFound)

	_, err := s.CreateDictionary(ctx, "code", "old")
	require.NoError(t, err)
	require.NoError(t, s.RenameDictionary(ctx, "code", "new"))

	dict, err := s.FindDictionary(ctx, "code")
	require.NoError(t, err)
	assert.Equal(t, "new", dict.Name)
}

func TestStore_FailedWriteKeepsState(t *testing.T) {
	ctx := context.Background()
	backing := &failingStore{Store: kv.NewInMemory(), key: dal.DictionariesKey}
	s := newStore(t, backing)

	_, err := s.CreateDictionary(ctx, "code", "dict")
	require.NoError(t, err)
	entry, err := s.AddWord(ctx, "code", "a", "1")
	require.NoError(t, err)

	backing.failures.Store(1)
	_, err = s.UpdateWord(ctx, "code", entry.ID, "b", "2")
	require.ErrorIs(t, err, errWriteFailed)

	dict, err := s.FindDictionary(ctx, "code")
	require.NoError(t, err)
	assert.Equal(t, "a", dict.Words[0].Word)
}

func TestStore_AllDictionaries(t *testing.T) {
	ctx := context.Background()
	s := newStore(t, nil)

	all, err := s.AllDictionaries(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)

	_, err = s.CreateDictionary(ctx, "a", "first")
	require.NoError(t, err)
	_, err = s.CreateDictionary(ctx, "b", "second")
	require.NoError(t, err)

	all, err = s.AllDictionaries(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.ElementsMatch(t, []string{"a", "b"}, []string{all[0].Code, all[1].Code})
}

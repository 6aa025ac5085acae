package session

import (
	"context"

	"oxytoxin-be/internal/logger"
	"oxytoxin-be/internal/storage"

	"go.uber.org/zap"
)

// Storage keys for the session tuple. Presence of the token record is the
// authentication predicate used everywhere.
const (
	KeyAuthToken = "authToken"
	KeyUserEmail = "userEmail"
	KeyUserName  = "userName"
)

type Session struct {
	AuthToken string
	UserEmail string
	UserName  string
}

// Store persists the session tri-tuple behind the KV boundary.
type Store struct {
	st storage.Store
}

func NewStore(st storage.Store) *Store {
	return &Store{st: st}
}

func (s *Store) Save(ctx context.Context, sess Session) error {
	if err := s.st.Set(ctx, KeyAuthToken, []byte(sess.AuthToken)); err != nil {
		return err
	}
	if err := s.st.Set(ctx, KeyUserEmail, []byte(sess.UserEmail)); err != nil {
		return err
	}
	return s.st.Set(ctx, KeyUserName, []byte(sess.UserName))
}

// Current returns the stored session. The boolean is false when no auth
// token is present, regardless of the other records.
func (s *Store) Current(ctx context.Context) (Session, bool) {
	token, err := s.st.Get(ctx, KeyAuthToken)
	if err != nil || len(token) == 0 {
		return Session{}, false
	}

	sess := Session{AuthToken: string(token)}
	if email, err := s.st.Get(ctx, KeyUserEmail); err == nil {
		sess.UserEmail = string(email)
	}
	if name, err := s.st.Get(ctx, KeyUserName); err == nil {
		sess.UserName = string(name)
	}
	return sess, true
}

// Token returns the stored auth token, or "" when signed out. Shaped as
// a backend token source.
func (s *Store) Token(ctx context.Context) string {
	token, err := s.st.Get(ctx, KeyAuthToken)
	if err != nil {
		return ""
	}
	return string(token)
}

// Purge removes all three session records. Explicit logout and the
// inactivity guard both converge here.
func (s *Store) Purge(ctx context.Context) {
	for _, key := range []string{KeyAuthToken, KeyUserEmail, KeyUserName} {
		if err := s.st.Remove(ctx, key); err != nil {
			logger.FromCtx(ctx).Warn("failed to remove session record",
				zap.String("key", key), zap.Error(err))
		}
	}
}

package session

import (
	"errors"
	"sync/atomic"
)

var ErrNoSession = errors.New("no session")

// Session is the credential of the manager user. It is created by Manager.Login (or restored from
// the stored state) and invalidated by Manager.Logout, after which every request using it fails
// with ErrNoSession.
type Session struct {
	userId      string
	accessToken string

	invalid atomic.Bool
}

func New(userId, accessToken string) *Session {
	return &Session{userId: userId, accessToken: accessToken}
}

func (s *Session) UserId() string {
	if s == nil {
		return ""
	}

	return s.userId
}

// AccessToken implements apiclient.TokenSource.
func (s *Session) AccessToken() (string, error) {
	if !s.Valid() {
		return "", ErrNoSession
	}

	return s.accessToken, nil
}

func (s *Session) Valid() bool {
	return s != nil && !s.invalid.Load() && len(s.accessToken) > 0
}

func (s *Session) invalidate() {
	s.invalid.Store(true)
}

package session

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	bridgemanager "github.com/devgianlu/go-bridgemanager"
	"github.com/devgianlu/go-bridgemanager/apiclient"
)

const managerService = "Bridge manager"

type loginRequest struct {
	UserId   string `json:"user_id"`
	Password string `json:"password"`
}

type loginResponse struct {
	UserId      string `json:"user_id"`
	AccessToken string `json:"access_token"`
}

// Manager creates and destroys manager sessions. It is the only writer of the stored credentials.
type Manager struct {
	log   bridgemanager.Logger
	api   *apiclient.Client
	state *bridgemanager.AppState
}

// NewManager creates a session manager talking to the manager API root (e.g. https://host/api).
func NewManager(log bridgemanager.Logger, api *apiclient.Client, state *bridgemanager.AppState) *Manager {
	return &Manager{log: log, api: api, state: state}
}

// Restore returns the session stored by a previous run, nil if there is none.
func (m *Manager) Restore() *Session {
	if !m.state.HasCredentials() {
		return nil
	}

	userId, accessToken := m.state.GetCredentials()
	m.log.Debugf("restored session for %s", bridgemanager.ObfuscateUsername(userId))
	return New(userId, accessToken)
}

// Login authenticates against the manager and persists the new session.
func (m *Manager) Login(ctx context.Context, userId, password string) (*Session, error) {
	userId = strings.TrimSpace(userId)
	if len(userId) == 0 || len(password) == 0 {
		return nil, fmt.Errorf("missing user ID or password")
	}

	var resp loginResponse
	if err := m.api.Request(ctx, nil, "/login", apiclient.Options{
		Method: http.MethodPost,
		Body:   loginRequest{UserId: userId, Password: password},
	}, apiclient.RequestContext{Service: managerService, RequestType: "login"}, &resp); err != nil {
		return nil, err
	}

	if len(resp.AccessToken) == 0 {
		return nil, fmt.Errorf("manager login response did not contain an access token")
	} else if len(resp.UserId) == 0 {
		resp.UserId = userId
	}

	sess := New(resp.UserId, resp.AccessToken)
	if err := m.state.SetCredentials(sess.userId, sess.accessToken); err != nil {
		return nil, fmt.Errorf("failed storing session: %w", err)
	}

	m.log.Infof("logged into manager as %s", bridgemanager.ObfuscateUsername(sess.userId))
	return sess, nil
}

// Logout invalidates the session on the server and locally. The local session is cleared even if
// the server call fails, the returned error reports both failures.
func (m *Manager) Logout(ctx context.Context, sess *Session) error {
	var logoutErr error
	if sess.Valid() {
		logoutErr = m.api.Request(ctx, sess, "/logout", apiclient.Options{Method: http.MethodPost},
			apiclient.RequestContext{Service: managerService, RequestType: "logout"}, nil)
		if logoutErr != nil {
			m.log.WithError(logoutErr).Warnf("failed logging out of manager")
		}
	}

	if sess != nil {
		sess.invalidate()
	}

	var clearErr error
	if err := m.state.ClearCredentials(); err != nil {
		clearErr = fmt.Errorf("failed clearing stored session: %w", err)
	}

	return errors.Join(logoutErr, clearErr)
}

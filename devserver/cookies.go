package devserver

import (
	"net/http"

	bridgemanager "github.com/devgianlu/go-bridgemanager"
)

type twitterUser struct {
	UserId     string `json:"user_id"`
	ScreenName string `json:"screen_name"`
	Name       string `json:"name"`
}

type facebookUser struct {
	Id       string `json:"id"`
	Name     string `json:"name"`
	Username string `json:"username,omitempty"`
}

var errMissingCookies = newReplyError(http.StatusBadRequest, "missing_cookies", "Missing cookies")

func (s *Server) registerTwitter(m *http.ServeMux) {
	id := bridgemanager.BridgeTwitter

	m.HandleFunc(route(id, http.MethodGet, "/whoami"), s.withAccount(func(_ *http.Request, userId string, acc *account) (any, error) {
		return map[string]any{"mxid": userId, "twitter": acc.twitter}, nil
	}))
	m.HandleFunc(route(id, http.MethodPost, "/logout"), s.withAccount(func(_ *http.Request, _ string, acc *account) (any, error) {
		if acc.twitter == nil {
			return nil, errNotLoggedIn
		}

		acc.twitter = nil
		return nil, nil
	}))
	m.HandleFunc(route(id, http.MethodPost, "/login"), s.withAccount(func(r *http.Request, _ string, acc *account) (any, error) {
		var req struct {
			AuthToken string `json:"auth_token"`
			CsrfToken string `json:"csrf_token"`
		}
		if err := decodeBody(r, &req); err != nil {
			return nil, err
		} else if len(req.AuthToken) == 0 || len(req.CsrfToken) == 0 {
			return nil, errMissingCookies
		}

		acc.twitter = &twitterUser{UserId: "1234567890", ScreenName: "devuser", Name: "Dev User"}
		return map[string]bool{"success": true}, nil
	}))
}

func (s *Server) registerFacebook(m *http.ServeMux) {
	id := bridgemanager.BridgeFacebook

	m.HandleFunc(route(id, http.MethodGet, "/whoami"), s.withAccount(func(_ *http.Request, userId string, acc *account) (any, error) {
		return map[string]any{"mxid": userId, "facebook": acc.facebook}, nil
	}))
	m.HandleFunc(route(id, http.MethodPost, "/logout"), s.withAccount(func(_ *http.Request, _ string, acc *account) (any, error) {
		if acc.facebook == nil {
			return nil, errNotLoggedIn
		}

		acc.facebook = nil
		return nil, nil
	}))
	m.HandleFunc(route(id, http.MethodPost, "/login"), s.withAccount(func(r *http.Request, _ string, acc *account) (any, error) {
		var req struct {
			CUser string `json:"c_user"`
			Xs    string `json:"xs"`
		}
		if err := decodeBody(r, &req); err != nil {
			return nil, err
		} else if len(req.CUser) == 0 || len(req.Xs) == 0 {
			return nil, errMissingCookies
		}

		acc.facebook = &facebookUser{Id: req.CUser, Name: "Dev User"}
		return map[string]bool{"success": true}, nil
	}))
}

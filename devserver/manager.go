package devserver

import (
	"net/http"
	"strings"

	bridgemanager "github.com/devgianlu/go-bridgemanager"
	"github.com/google/uuid"
)

type managerLoginRequest struct {
	UserId   string `json:"user_id"`
	Password string `json:"password"`
}

type managerLoginResponse struct {
	UserId      string `json:"user_id"`
	AccessToken string `json:"access_token"`
}

type configResponse struct {
	Bridges            map[bridgemanager.BridgeId]bool `json:"bridges,omitempty"`
	InternalBridgeInfo bool                            `json:"internal_bridge_info"`
}

func (s *Server) registerManager(m *http.ServeMux) {
	m.HandleFunc("POST /api/login", func(w http.ResponseWriter, r *http.Request) {
		var req managerLoginRequest
		if err := decodeBody(r, &req); err != nil {
			s.reply(w, r, nil, err)
			return
		}

		password, ok := s.opts.Users[req.UserId]
		if !ok || len(req.Password) == 0 || password != req.Password {
			s.reply(w, r, nil, newReplyError(http.StatusUnauthorized, "M_FORBIDDEN", "Invalid username or password"))
			return
		}

		s.log.Infof("manager login for %s", bridgemanager.ObfuscateUsername(req.UserId))
		s.reply(w, r, managerLoginResponse{UserId: req.UserId, AccessToken: s.Login(req.UserId)}, nil)
	})
	m.HandleFunc("POST /api/logout", func(w http.ResponseWriter, r *http.Request) {
		token, _ := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if _, err := uuid.Parse(token); err != nil {
			s.reply(w, r, nil, errUnauthorized)
			return
		}

		s.mu.Lock()
		_, ok := s.tokens[token]
		delete(s.tokens, token)
		s.mu.Unlock()

		if !ok {
			s.reply(w, r, nil, errUnauthorized)
			return
		}

		s.reply(w, r, nil, nil)
	})
	m.HandleFunc("GET /api/config", func(w http.ResponseWriter, r *http.Request) {
		if _, ok := s.authenticate(r); !ok {
			s.reply(w, r, nil, errUnauthorized)
			return
		}

		s.reply(w, r, configResponse{Bridges: s.opts.Bridges, InternalBridgeInfo: s.opts.InternalBridgeInfo}, nil)
	})
}

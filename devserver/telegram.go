package devserver

import (
	"net/http"
	"strings"

	bridgemanager "github.com/devgianlu/go-bridgemanager"
)

type telegramUser struct {
	Id        int64  `json:"id"`
	Username  string `json:"username,omitempty"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	Phone     string `json:"phone,omitempty"`
	IsBot     bool   `json:"is_bot"`
}

type telegramPending struct {
	phone        string
	codeAccepted bool
}

type telegramLoginRequest struct {
	Phone    string `json:"phone"`
	Code     string `json:"code"`
	Password string `json:"password"`
	Token    string `json:"token"`
}

type telegramState struct {
	State string `json:"state"`
}

func (s *Server) registerTelegram(m *http.ServeMux) {
	id := bridgemanager.BridgeTelegram

	m.HandleFunc(route(id, http.MethodGet, ""), s.withAccount(func(*http.Request, string, *account) (any, error) {
		return map[string]bool{"allow_bot_login": s.opts.AllowBotLogin}, nil
	}))
	m.HandleFunc(route(id, http.MethodGet, "/user/me"), s.withAccount(func(_ *http.Request, userId string, acc *account) (any, error) {
		return map[string]any{"mxid": userId, "telegram": acc.telegram}, nil
	}))
	m.HandleFunc(route(id, http.MethodPost, "/user/me/logout"), s.withAccount(func(_ *http.Request, _ string, acc *account) (any, error) {
		if acc.telegram == nil {
			return nil, errNotLoggedIn
		}

		acc.telegram = nil
		acc.telegramPending = nil
		return nil, nil
	}))
	m.HandleFunc(route(id, http.MethodPost, "/user/me/login/{step}"), s.withAccount(func(r *http.Request, _ string, acc *account) (any, error) {
		var req telegramLoginRequest
		if err := decodeBody(r, &req); err != nil {
			return nil, err
		}

		if acc.telegram != nil {
			return telegramState{State: "already-logged-in"}, nil
		}

		state, err := s.telegramLogin(acc, r.PathValue("step"), req)
		if err != nil {
			return nil, err
		}

		return telegramState{State: state}, nil
	}))
}

func (s *Server) telegramLogin(acc *account, step string, req telegramLoginRequest) (string, error) {
	switch step {
	case "request_code":
		phone := strings.ReplaceAll(req.Phone, " ", "")
		if !strings.HasPrefix(phone, "+") || len(phone) < 8 {
			return "", newReplyError(http.StatusBadRequest, "phone_number_invalid", "Invalid phone number")
		}

		acc.telegramPending = &telegramPending{phone: phone}
		return "code", nil
	case "send_code":
		if acc.telegramPending == nil {
			return "", newReplyError(http.StatusBadRequest, "phone_number_missing", "Request a code first")
		} else if req.Code != s.opts.TelegramCode {
			return "", newReplyError(http.StatusUnauthorized, "phone_code_invalid", "Invalid phone code")
		}

		if _, ok := s.opts.TelegramPasswords[acc.telegramPending.phone]; ok {
			acc.telegramPending.codeAccepted = true
			return "password", nil
		}

		s.completeTelegram(acc)
		return "logged-in", nil
	case "send_password":
		if acc.telegramPending == nil || !acc.telegramPending.codeAccepted {
			return "", newReplyError(http.StatusBadRequest, "password_not_requested", "Password was not requested")
		} else if s.opts.TelegramPasswords[acc.telegramPending.phone] != req.Password {
			return "", newReplyError(http.StatusUnauthorized, "password_invalid", "Incorrect password")
		}

		s.completeTelegram(acc)
		return "logged-in", nil
	case "bot_token":
		if !s.opts.AllowBotLogin {
			return "", newReplyError(http.StatusForbidden, "bot_login_disabled", "Bot login is not allowed")
		}

		botId, _, ok := strings.Cut(req.Token, ":")
		if !ok || len(botId) == 0 {
			return "", newReplyError(http.StatusUnauthorized, "bot_token_invalid", "Invalid bot token")
		}

		acc.telegram = &telegramUser{Id: 1000, Username: "devserver_bot", FirstName: "Dev Bot", IsBot: true}
		acc.telegramPending = nil
		return "logged-in", nil
	default:
		return "", newReplyError(http.StatusNotFound, "M_NOT_FOUND", "Unknown login step")
	}
}

func (s *Server) completeTelegram(acc *account) {
	acc.telegram = &telegramUser{
		Id:        4242,
		Username:  "devuser",
		FirstName: "Dev",
		LastName:  "User",
		Phone:     strings.TrimPrefix(acc.telegramPending.phone, "+"),
	}
	acc.telegramPending = nil
}

package devserver

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	bridgemanager "github.com/devgianlu/go-bridgemanager"
	"github.com/google/uuid"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"
)

const (
	whatsappLoginProtocol = "net.maunium.whatsapp.login"
	whatsappAuthPrefix    = "net.maunium.whatsapp.auth-"
)

type whatsappUser struct {
	Jid      string `json:"jid"`
	PushName string `json:"push_name"`
}

func (s *Server) registerWhatsApp(m *http.ServeMux) {
	id := bridgemanager.BridgeWhatsApp

	m.HandleFunc(route(id, http.MethodGet, "/v1/ping"), s.withAccount(func(_ *http.Request, userId string, acc *account) (any, error) {
		state := map[string]any{"has_session": acc.whatsapp != nil}
		if acc.whatsapp != nil {
			state["jid"] = acc.whatsapp.Jid
			state["push_name"] = acc.whatsapp.PushName
			state["conn"] = map[string]bool{"is_connected": true, "is_logged_in": true}
		}

		return map[string]any{"mxid": userId, "whatsapp": state}, nil
	}))
	m.HandleFunc(route(id, http.MethodPost, "/v1/logout"), s.withAccount(func(_ *http.Request, _ string, acc *account) (any, error) {
		if acc.whatsapp == nil {
			return nil, errNotLoggedIn
		}

		acc.whatsapp = nil
		return nil, nil
	}))
	m.HandleFunc(route(id, http.MethodGet, "/v1/login"), s.handleWhatsAppLogin)
}

func (s *Server) handleWhatsAppLogin(w http.ResponseWriter, r *http.Request) {
	var userId string
	var authenticated bool
	for _, header := range r.Header.Values("Sec-WebSocket-Protocol") {
		for _, proto := range strings.Split(header, ",") {
			if token, ok := strings.CutPrefix(strings.TrimSpace(proto), whatsappAuthPrefix); ok {
				userId, authenticated = s.userForToken(token)
			}
		}
	}

	if !authenticated {
		s.reply(w, r, nil, errUnauthorized)
		return
	}

	c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		Subprotocols:       []string{whatsappLoginProtocol},
		InsecureSkipVerify: len(s.opts.AllowOrigin) == 0,
		OriginPatterns:     originPatterns(s.opts.AllowOrigin),
	})
	if err != nil {
		s.log.WithError(err).Error("failed accepting websocket connection")
		return
	}

	defer func() { _ = c.Close(websocket.StatusNormalClosure, "") }()

	ctx := c.CloseRead(r.Context())
	if err := s.runWhatsAppLogin(ctx, c, userId); err != nil {
		s.log.WithError(err).Warnf("whatsapp login socket failed")
	}
}

func (s *Server) runWhatsAppLogin(ctx context.Context, c *websocket.Conn, userId string) error {
	for i := 0; i < s.opts.QRCodes; i++ {
		code := fmt.Sprintf("2@%s,devserver,%d", uuid.NewString(), i)
		if err := wsjson.Write(ctx, c, map[string]string{"code": code}); err != nil {
			return fmt.Errorf("failed sending qr code: %w", err)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(s.opts.QRInterval):
		}
	}

	if s.opts.QRTimeout {
		return wsjson.Write(ctx, c, map[string]string{"error": "QR code scan timed out. Please try again.", "errcode": "login timed out"})
	}

	jid := "15551234567@s.whatsapp.net"

	s.mu.Lock()
	s.accountLocked(userId).whatsapp = &whatsappUser{Jid: jid, PushName: "Dev User"}
	s.mu.Unlock()

	return wsjson.Write(ctx, c, map[string]any{"success": true, "jid": jid})
}

func originPatterns(allowOrigin string) []string {
	if len(allowOrigin) == 0 {
		return nil
	}

	allow := allowOrigin
	allow = strings.TrimPrefix(allow, "http://")
	allow = strings.TrimPrefix(allow, "https://")
	allow = strings.TrimSuffix(allow, "/")
	return []string{allow}
}

package devserver

import (
	"fmt"
	"net/http"
	"strconv"

	bridgemanager "github.com/devgianlu/go-bridgemanager"
	"golang.org/x/exp/slices"
)

type puppet struct {
	PuppetId    int    `json:"puppetId"`
	Description string `json:"description"`
}

func (s *Server) registerPuppet(m *http.ServeMux, id bridgemanager.BridgeId) {
	m.HandleFunc(route(id, http.MethodGet, "/status"), s.withAccount(func(_ *http.Request, _ string, acc *account) (any, error) {
		puppets := acc.puppets[id]
		if puppets == nil {
			puppets = []puppet{}
		}

		return map[string]any{"puppets": puppets}, nil
	}))
	m.HandleFunc(route(id, http.MethodPost, "/link"), s.withAccount(func(r *http.Request, _ string, acc *account) (any, error) {
		var req struct {
			Data map[string]string `json:"data"`
		}
		if err := decodeBody(r, &req); err != nil {
			return nil, err
		}

		description, err := puppetDescription(id, req.Data)
		if err != nil {
			return nil, err
		}

		acc.nextPuppetId++
		acc.puppets[id] = append(acc.puppets[id], puppet{PuppetId: acc.nextPuppetId, Description: description})
		return map[string]int{"puppet_id": acc.nextPuppetId}, nil
	}))
	m.HandleFunc(route(id, http.MethodPost, "/{puppetId}/unlink"), s.withAccount(func(r *http.Request, _ string, acc *account) (any, error) {
		puppetId, err := strconv.Atoi(r.PathValue("puppetId"))
		if err != nil {
			return nil, newReplyError(http.StatusBadRequest, "M_INVALID_PARAM", "Invalid puppet id")
		}

		idx := slices.IndexFunc(acc.puppets[id], func(p puppet) bool { return p.PuppetId == puppetId })
		if idx < 0 {
			return nil, newReplyError(http.StatusNotFound, "M_NOT_FOUND", "Puppet not found")
		}

		acc.puppets[id] = slices.Delete(acc.puppets[id], idx, idx+1)
		return nil, nil
	}))

	if id == bridgemanager.BridgeSlack {
		m.HandleFunc(route(id, http.MethodGet, "/oauth"), s.withAccount(func(*http.Request, string, *account) (any, error) {
			return map[string]any{
				"client_id":     "devserver.slack",
				"authorize_url": "https://slack.com/oauth/v2/authorize",
				"scopes":        []string{"chat:write", "users:read"},
			}, nil
		}))
	}
}

func puppetDescription(id bridgemanager.BridgeId, data map[string]string) (string, error) {
	switch id {
	case bridgemanager.BridgeSlack:
		if len(data["code"]) == 0 || len(data["redirect_uri"]) == 0 {
			return "", newReplyError(http.StatusBadRequest, "M_BAD_JSON", "Missing authorization code")
		}

		return "Slack team `Dev Workspace`", nil
	case bridgemanager.BridgePuppetInstagram:
		if len(data["username"]) == 0 || len(data["password"]) == 0 {
			return "", newReplyError(http.StatusBadRequest, "M_BAD_JSON", "Missing username or password")
		} else if data["password"] == "wrong" {
			return "", newReplyError(http.StatusUnauthorized, "M_FORBIDDEN", "Invalid credentials")
		}

		return fmt.Sprintf("Instagram account `%s`", data["username"]), nil
	default:
		return "", fmt.Errorf("unsupported puppet bridge %s", id)
	}
}

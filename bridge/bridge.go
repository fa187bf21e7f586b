package bridge

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	bridgemanager "github.com/devgianlu/go-bridgemanager"
	"github.com/devgianlu/go-bridgemanager/login"
	"github.com/devgianlu/go-bridgemanager/session"
)

// Bridge is the API client of a single bridge service. Every call takes the manager session
// explicitly and fails with session.ErrNoSession if it has been invalidated.
type Bridge interface {
	Id() bridgemanager.BridgeId

	// GetCurrentIdentity returns the linked account state as reported by the bridge.
	GetCurrentIdentity(ctx context.Context, sess *session.Session) (*Identity, error)
	// Logout unlinks the account from the bridge.
	Logout(ctx context.Context, sess *session.Session) error
	// Login submits a login step and returns the resulting status token.
	Login(ctx context.Context, sess *session.Session, step login.Step, payload login.Payload) (login.Status, error)
	// LoginFlow returns the login flow definition of the bridge. It may query the bridge
	// for its capabilities.
	LoginFlow(ctx context.Context, sess *session.Session) (*login.Definition, error)
}

// Prompter is implemented by bridges whose login steps produce prompts while the submit is
// in flight, like QR codes to scan or authorization links to open. An empty prompt clears
// the previous one.
type Prompter interface {
	SetPromptHandler(handler func(prompt string))
}

// Identity is the linked account state of a bridge. It is always replaced as a whole.
type Identity struct {
	SignedIn bool

	Id          string
	DisplayName string
	Handle      string

	// Raw is the unmodified response of the bridge.
	Raw json.RawMessage
}

// Summary returns a one line description of the linked account.
func (i *Identity) Summary() string {
	if !i.SignedIn {
		return "Not signed in"
	}

	var sb strings.Builder
	sb.WriteString("Signed in as ")

	switch {
	case len(i.DisplayName) > 0:
		sb.WriteString(i.DisplayName)
	case len(i.Handle) > 0:
		sb.WriteString("@" + i.Handle)
	case len(i.Id) > 0:
		sb.WriteString(i.Id)
	default:
		sb.WriteString("unknown user")
	}

	if len(i.DisplayName) > 0 && len(i.Handle) > 0 {
		sb.WriteString(fmt.Sprintf(" (@%s)", i.Handle))
	}

	return sb.String()
}

// IndentedRaw returns the raw bridge state formatted for display.
func (i *Identity) IndentedRaw() string {
	if len(i.Raw) == 0 {
		return "{}"
	}

	var buf bytes.Buffer
	if err := json.Indent(&buf, i.Raw, "", "  "); err != nil {
		return string(i.Raw)
	}

	return buf.String()
}

// JoinName joins first and last name skipping empty parts.
func JoinName(parts ...string) string {
	var nonEmpty []string
	for _, p := range parts {
		if p = strings.TrimSpace(p); len(p) > 0 {
			nonEmpty = append(nonEmpty, p)
		}
	}

	return strings.Join(nonEmpty, " ")
}

package whatsapp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"

	bridgemanager "github.com/devgianlu/go-bridgemanager"
	"github.com/devgianlu/go-bridgemanager/apiclient"
	"github.com/devgianlu/go-bridgemanager/bridge"
	"github.com/devgianlu/go-bridgemanager/login"
	"github.com/devgianlu/go-bridgemanager/session"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"
)

const service = "WhatsApp bridge"

const (
	LoginProtocol      = "net.maunium.whatsapp.login"
	AuthProtocolPrefix = "net.maunium.whatsapp.auth-"
)

const StepScanQR login.Step = "scan_qr"

// StatusTimeout is returned when the QR code was not scanned in time.
const StatusTimeout login.Status = "timeout"

const errCodeLoginTimedOut = "login timed out"

var ErrUnknownStep = errors.New("unknown whatsapp login step")

type Conn struct {
	Connected bool `json:"is_connected"`
	LoggedIn  bool `json:"is_logged_in"`
}

type User struct {
	Jid            string `json:"jid"`
	PushName       string `json:"push_name"`
	HasSession     bool   `json:"has_session"`
	ManagementRoom string `json:"management_room"`
	Conn           *Conn  `json:"conn"`
}

type pingResponse struct {
	Mxid     string `json:"mxid"`
	WhatsApp *User  `json:"whatsapp"`
}

// loginFrame is any message received over the login socket.
type loginFrame struct {
	Code    string `json:"code"`
	Success bool   `json:"success"`
	Jid     string `json:"jid"`
	Error   string `json:"error"`
	ErrCode string `json:"errcode"`
}

type Client struct {
	log bridgemanager.Logger
	api *apiclient.Client

	promptHandler     func(prompt string)
	promptHandlerLock sync.RWMutex
}

func NewClient(log bridgemanager.Logger, api *apiclient.Client) *Client {
	return &Client{
		log: log.WithBridge(bridgemanager.BridgeWhatsApp),
		api: api.WithPrefix(bridgemanager.BridgeWhatsApp.Prefix()),
	}
}

func (c *Client) Id() bridgemanager.BridgeId {
	return bridgemanager.BridgeWhatsApp
}

// SetPromptHandler registers the function receiving QR codes during login. A new code replaces
// the previous one, an empty code means no code is currently valid.
func (c *Client) SetPromptHandler(handler func(prompt string)) {
	c.promptHandlerLock.Lock()
	c.promptHandler = handler
	c.promptHandlerLock.Unlock()
}

func (c *Client) emitQR(code string) {
	c.promptHandlerLock.RLock()
	handler := c.promptHandler
	c.promptHandlerLock.RUnlock()

	if handler != nil {
		handler(code)
	}
}

func (c *Client) GetCurrentIdentity(ctx context.Context, sess *session.Session) (*bridge.Identity, error) {
	var raw json.RawMessage
	if err := c.api.Request(ctx, sess, "/v1/ping", apiclient.Options{},
		apiclient.RequestContext{Service: service, RequestType: "user info"}, &raw); err != nil {
		return nil, err
	}

	var resp pingResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("failed unmarshalling %s user info: %w", service, err)
	}

	ident := &bridge.Identity{Raw: raw}
	if resp.WhatsApp != nil && len(resp.WhatsApp.Jid) > 0 {
		ident.SignedIn = true
		ident.Id = resp.WhatsApp.Jid
		ident.DisplayName = resp.WhatsApp.PushName
		if phone, _, ok := strings.Cut(resp.WhatsApp.Jid, "@"); ok {
			ident.Handle = "+" + phone
		}
	}

	return ident, nil
}

func (c *Client) Logout(ctx context.Context, sess *session.Session) error {
	return c.api.Request(ctx, sess, "/v1/logout", apiclient.Options{Method: http.MethodPost},
		apiclient.RequestContext{Service: service, RequestType: "logout"}, nil)
}

// Login opens the login socket and waits until the bridge reports the outcome. QR codes
// received meanwhile are passed to the handler set with SetPromptHandler.
func (c *Client) Login(ctx context.Context, sess *session.Session, step login.Step, _ login.Payload) (login.Status, error) {
	if step != StepScanQR {
		return "", fmt.Errorf("%w: %s", ErrUnknownStep, step)
	}

	rctx := apiclient.RequestContext{Service: service, RequestType: "login"}

	token, err := sess.AccessToken()
	if err != nil {
		return "", fmt.Errorf("failed obtaining access token for %s login: %w", service, err)
	}

	conn, resp, err := websocket.Dial(ctx, c.api.Url("/v1/login").String(), &websocket.DialOptions{
		HTTPClient:   c.api.HttpClient(),
		HTTPHeader:   http.Header{"User-Agent": []string{bridgemanager.UserAgent()}},
		Subprotocols: []string{LoginProtocol, AuthProtocolPrefix + token},
	})
	if err != nil {
		if resp != nil && resp.StatusCode != http.StatusSwitchingProtocols {
			return "", &apiclient.ApiError{RequestContext: rctx, StatusCode: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		}

		return "", &apiclient.NetworkError{RequestContext: rctx, Err: err}
	}

	defer func() { _ = conn.Close(websocket.StatusNormalClosure, "") }()
	defer c.emitQR("")

	for {
		var frame loginFrame
		if err := wsjson.Read(ctx, conn, &frame); err != nil {
			return "", &apiclient.NetworkError{RequestContext: rctx, Err: fmt.Errorf("failed reading login socket: %w", err)}
		}

		switch {
		case len(frame.Code) > 0:
			c.log.Debugf("received new login QR code")
			c.emitQR(frame.Code)
		case frame.Success:
			c.log.Infof("logged in as %s", bridgemanager.ObfuscateUsername(frame.Jid))
			return login.StatusLoggedIn, nil
		case frame.ErrCode == errCodeLoginTimedOut:
			return StatusTimeout, nil
		case len(frame.Error) > 0 || len(frame.ErrCode) > 0:
			return "", &apiclient.ApiError{RequestContext: rctx, ErrCode: frame.ErrCode, Message: frame.Error}
		default:
			c.log.Warnf("ignoring unexpected login socket message")
		}
	}
}

func (c *Client) LoginFlow(context.Context, *session.Session) (*login.Definition, error) {
	return Flow(), nil
}

func resolve(status login.Status) (login.Transition, error) {
	switch status {
	case login.StatusLoggedIn, login.StatusAlreadyLoggedIn:
		return login.SignedIn(), nil
	case StatusTimeout:
		return login.GoTo(StepScanQR), nil
	default:
		return login.Transition{}, login.UnknownStatus(service, status)
	}
}

func Flow() *login.Definition {
	return &login.Definition{
		Service: service,
		Title:   "Sign into WhatsApp",
		Intro:   "To start using the Matrix-WhatsApp bridge, link it as a WhatsApp Web client.",
		Initial: StepScanQR,
		Steps: []login.StepSpec{{
			Step: StepScanQR,
			Prompt: []string{
				"Open WhatsApp on your phone, go to Settings > Linked devices and scan the QR code " +
					"that appears below once you start.",
				"If the code expires before it is scanned, start again.",
			},
			SubmitLabel: "Show QR code",
			QR:          true,
		}},
		Resolve: resolve,
	}
}

package facebook

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	bridgemanager "github.com/devgianlu/go-bridgemanager"
	"github.com/devgianlu/go-bridgemanager/apiclient"
	"github.com/devgianlu/go-bridgemanager/bridge"
	"github.com/devgianlu/go-bridgemanager/login"
	"github.com/devgianlu/go-bridgemanager/session"
)

const service = "Facebook bridge"

const StepCookies login.Step = "cookies"

var ErrUnknownStep = errors.New("unknown facebook login step")

type User struct {
	Id       string `json:"id"`
	Name     string `json:"name"`
	Username string `json:"username"`
}

type whoamiResponse struct {
	Mxid     string `json:"mxid"`
	Facebook *User  `json:"facebook"`
}

type Client struct {
	log bridgemanager.Logger
	api *apiclient.Client
}

func NewClient(log bridgemanager.Logger, api *apiclient.Client) *Client {
	return &Client{
		log: log.WithBridge(bridgemanager.BridgeFacebook),
		api: api.WithPrefix(bridgemanager.BridgeFacebook.Prefix()),
	}
}

func (c *Client) Id() bridgemanager.BridgeId {
	return bridgemanager.BridgeFacebook
}

func (c *Client) GetCurrentIdentity(ctx context.Context, sess *session.Session) (*bridge.Identity, error) {
	var raw json.RawMessage
	if err := c.api.Request(ctx, sess, "/whoami", apiclient.Options{},
		apiclient.RequestContext{Service: service, RequestType: "user info"}, &raw); err != nil {
		return nil, err
	}

	var resp whoamiResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("failed unmarshalling %s user info: %w", service, err)
	}

	ident := &bridge.Identity{Raw: raw}
	if resp.Facebook != nil {
		ident.SignedIn = true
		ident.Id = resp.Facebook.Id
		ident.DisplayName = resp.Facebook.Name
		ident.Handle = resp.Facebook.Username
	}

	return ident, nil
}

func (c *Client) Logout(ctx context.Context, sess *session.Session) error {
	return c.api.Request(ctx, sess, "/logout", apiclient.Options{Method: http.MethodPost},
		apiclient.RequestContext{Service: service, RequestType: "logout"}, nil)
}

// Login links the account using the c_user and xs cookies of a logged in browser.
func (c *Client) Login(ctx context.Context, sess *session.Session, step login.Step, payload login.Payload) (login.Status, error) {
	if step != StepCookies {
		return "", fmt.Errorf("%w: %s", ErrUnknownStep, step)
	}

	if err := c.api.Request(ctx, sess, "/login", apiclient.Options{
		Method: http.MethodPost,
		Body:   payload,
	}, apiclient.RequestContext{Service: service, RequestType: "login"}, nil); err != nil {
		return "", err
	}

	return login.StatusLoggedIn, nil
}

func (c *Client) LoginFlow(context.Context, *session.Session) (*login.Definition, error) {
	return Flow(), nil
}

func resolve(status login.Status) (login.Transition, error) {
	switch status {
	case login.StatusLoggedIn, login.StatusAlreadyLoggedIn:
		return login.SignedIn(), nil
	default:
		return login.Transition{}, login.UnknownStatus(service, status)
	}
}

func Flow() *login.Definition {
	return &login.Definition{
		Service: service,
		Title:   "Sign into Facebook",
		Intro:   "To start using the Matrix-Facebook Messenger bridge, sign in with your Facebook account below.",
		Initial: StepCookies,
		Steps: []login.StepSpec{{
			Step: StepCookies,
			Prompt: []string{
				"Sign into messenger.com in a browser, then copy the values of the c_user and xs cookies here.",
			},
			Fields: []login.Field{
				{Name: "c_user", Label: "c_user cookie", Kind: login.FieldText},
				{Name: "xs", Label: "xs cookie", Kind: login.FieldPassword},
			},
			SubmitLabel: "Sign in",
		}},
		Resolve: resolve,
	}
}

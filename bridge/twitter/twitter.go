package twitter

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

const service = "Twitter bridge"

const StepCookies login.Step = "cookies"

var ErrUnknownStep = errors.New("unknown twitter login step")

type User struct {
	UserId     string `json:"user_id"`
	ScreenName string `json:"screen_name"`
	Name       string `json:"name"`
}

type whoamiResponse struct {
	Mxid    string `json:"mxid"`
	Twitter *User  `json:"twitter"`
}

type Client struct {
	log bridgemanager.Logger
	api *apiclient.Client
}

func NewClient(log bridgemanager.Logger, api *apiclient.Client) *Client {
	return &Client{
		log: log.WithBridge(bridgemanager.BridgeTwitter),
		api: api.WithPrefix(bridgemanager.BridgeTwitter.Prefix()),
	}
}

func (c *Client) Id() bridgemanager.BridgeId {
	return bridgemanager.BridgeTwitter
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
	if resp.Twitter != nil {
		ident.SignedIn = true
		ident.Id = resp.Twitter.UserId
		ident.DisplayName = resp.Twitter.Name
		ident.Handle = resp.Twitter.ScreenName
	}

	return ident, nil
}

func (c *Client) Logout(ctx context.Context, sess *session.Session) error {
	return c.api.Request(ctx, sess, "/logout", apiclient.Options{Method: http.MethodPost},
		apiclient.RequestContext{Service: service, RequestType: "logout"}, nil)
}

// Login links the account using the auth_token and ct0 cookies of a logged in browser.
// The bridge has a single login step, a successful request means the account is linked.
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
		Title:   "Sign into Twitter",
		Intro:   "To start using the Matrix-Twitter bridge, sign in with your Twitter account below.",
		Initial: StepCookies,
		Steps: []login.StepSpec{{
			Step: StepCookies,
			Prompt: []string{
				"Sign into Twitter in a browser, then copy the values of the auth_token " +
					"and ct0 cookies of twitter.com here.",
			},
			Fields: []login.Field{
				{Name: "auth_token", Label: "auth_token cookie", Kind: login.FieldPassword},
				{Name: "csrf_token", Label: "ct0 cookie", Kind: login.FieldPassword},
			},
			SubmitLabel: "Sign in",
		}},
		Resolve: resolve,
	}
}

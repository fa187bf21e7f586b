package telegram

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"sync"

	bridgemanager "github.com/devgianlu/go-bridgemanager"
	"github.com/devgianlu/go-bridgemanager/apiclient"
	"github.com/devgianlu/go-bridgemanager/bridge"
	"github.com/devgianlu/go-bridgemanager/login"
	"github.com/devgianlu/go-bridgemanager/session"
	"golang.org/x/exp/slices"
)

const service = "Telegram bridge"

var ErrUnknownStep = errors.New("unknown telegram login step")

type User struct {
	Id        int64  `json:"id"`
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone"`
	IsBot     bool   `json:"is_bot"`
}

type meResponse struct {
	Mxid     string `json:"mxid"`
	Telegram *User  `json:"telegram"`
}

type clientInfo struct {
	AllowBotLogin bool `json:"allow_bot_login"`
}

type loginResponse struct {
	State login.Status `json:"state"`
}

type Client struct {
	log bridgemanager.Logger
	api *apiclient.Client

	info     *clientInfo
	infoLock sync.Mutex
}

func NewClient(log bridgemanager.Logger, api *apiclient.Client) *Client {
	return &Client{
		log: log.WithBridge(bridgemanager.BridgeTelegram),
		api: api.WithPrefix(bridgemanager.BridgeTelegram.Prefix()),
	}
}

func (c *Client) Id() bridgemanager.BridgeId {
	return bridgemanager.BridgeTelegram
}

// InitClientInfo fetches the bridge capabilities once, failed attempts are not remembered.
func (c *Client) InitClientInfo(ctx context.Context, sess *session.Session) error {
	c.infoLock.Lock()
	defer c.infoLock.Unlock()

	if c.info != nil {
		return nil
	}

	var info clientInfo
	if err := c.api.Request(ctx, sess, "/", apiclient.Options{},
		apiclient.RequestContext{Service: service, RequestType: "bridge status"}, &info); err != nil {
		return err
	}

	c.log.Debugf("bridge allows bot login: %t", info.AllowBotLogin)
	c.info = &info
	return nil
}

// AllowBotLogin reports whether bot tokens are accepted, false until InitClientInfo succeeds.
func (c *Client) AllowBotLogin() bool {
	c.infoLock.Lock()
	defer c.infoLock.Unlock()
	return c.info != nil && c.info.AllowBotLogin
}

func (c *Client) GetCurrentIdentity(ctx context.Context, sess *session.Session) (*bridge.Identity, error) {
	var raw json.RawMessage
	if err := c.api.Request(ctx, sess, "/user/me", apiclient.Options{},
		apiclient.RequestContext{Service: service, RequestType: "user info"}, &raw); err != nil {
		return nil, err
	}

	var me meResponse
	if err := json.Unmarshal(raw, &me); err != nil {
		return nil, fmt.Errorf("failed unmarshalling %s user info: %w", service, err)
	}

	ident := &bridge.Identity{Raw: raw}
	if me.Telegram != nil {
		ident.SignedIn = true
		ident.Id = strconv.FormatInt(me.Telegram.Id, 10)
		ident.DisplayName = bridge.JoinName(me.Telegram.FirstName, me.Telegram.LastName)
		ident.Handle = me.Telegram.Username
	}

	return ident, nil
}

func (c *Client) Logout(ctx context.Context, sess *session.Session) error {
	return c.api.Request(ctx, sess, "/user/me/logout", apiclient.Options{Method: http.MethodPost},
		apiclient.RequestContext{Service: service, RequestType: "logout"}, nil)
}

func (c *Client) Login(ctx context.Context, sess *session.Session, step login.Step, payload login.Payload) (login.Status, error) {
	if !slices.Contains(steps, step) {
		return "", fmt.Errorf("%w: %s", ErrUnknownStep, step)
	}

	var resp loginResponse
	if err := c.api.Request(ctx, sess, "/user/me/login/"+string(step), apiclient.Options{
		Method: http.MethodPost,
		Body:   payload,
	}, apiclient.RequestContext{Service: service, RequestType: "login"}, &resp); err != nil {
		return "", err
	}

	c.log.Debugf("login step %s returned state %s", step, resp.State)
	return resp.State, nil
}

func (c *Client) LoginFlow(ctx context.Context, sess *session.Session) (*login.Definition, error) {
	if err := c.InitClientInfo(ctx, sess); err != nil {
		return nil, err
	}

	return Flow(c.AllowBotLogin()), nil
}

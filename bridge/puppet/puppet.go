package puppet

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
)

var ErrUnknownStep = errors.New("unknown puppet login step")

type Puppet struct {
	PuppetId    int    `json:"puppetId"`
	Description string `json:"description"`
}

type statusResponse struct {
	Puppets []Puppet `json:"puppets"`
}

type linkRequest struct {
	Data login.Payload `json:"data"`
}

type linkResponse struct {
	PuppetId int `json:"puppet_id"`
}

// Client talks to the provisioning API shared by the mx-puppet bridges. A bridge counts as
// signed in as long as at least one puppet is linked.
type Client struct {
	log     bridgemanager.Logger
	api     *apiclient.Client
	id      bridgemanager.BridgeId
	service string

	flow      func() *login.Definition
	authorize func(ctx context.Context, sess *session.Session) (login.Status, error)

	callbackPort int

	promptHandler     func(prompt string)
	promptHandlerLock sync.RWMutex
}

func newClient(log bridgemanager.Logger, api *apiclient.Client, id bridgemanager.BridgeId) *Client {
	return &Client{
		log:     log.WithBridge(id),
		api:     api.WithPrefix(id.Prefix()),
		id:      id,
		service: id.ServiceName(),
	}
}

// NewInstagramClient returns the client of mx-puppet-instagram, which links with username and password.
func NewInstagramClient(log bridgemanager.Logger, api *apiclient.Client) *Client {
	c := newClient(log, api, bridgemanager.BridgePuppetInstagram)
	c.flow = func() *login.Definition { return InstagramFlow(c.service) }
	return c
}

// NewSlackClient returns the client of mx-puppet-slack, which links through an OAuth2 authorization.
// The redirect is received on callbackPort, zero picks a free port.
func NewSlackClient(log bridgemanager.Logger, api *apiclient.Client, callbackPort int) *Client {
	c := newClient(log, api, bridgemanager.BridgeSlack)
	c.callbackPort = callbackPort
	c.flow = func() *login.Definition { return SlackFlow(c.service) }
	c.authorize = c.authorizeOAuth2
	return c
}

func (c *Client) Id() bridgemanager.BridgeId {
	return c.id
}

// SetPromptHandler registers the function receiving the authorization link during login.
func (c *Client) SetPromptHandler(handler func(prompt string)) {
	c.promptHandlerLock.Lock()
	c.promptHandler = handler
	c.promptHandlerLock.Unlock()
}

func (c *Client) emitPrompt(prompt string) {
	c.promptHandlerLock.RLock()
	handler := c.promptHandler
	c.promptHandlerLock.RUnlock()

	if handler != nil {
		handler(prompt)
	}
}

func (c *Client) Puppets(ctx context.Context, sess *session.Session) ([]Puppet, json.RawMessage, error) {
	var raw json.RawMessage
	if err := c.api.Request(ctx, sess, "/status", apiclient.Options{},
		apiclient.RequestContext{Service: c.service, RequestType: "status"}, &raw); err != nil {
		return nil, nil, err
	}

	var resp statusResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, nil, fmt.Errorf("failed unmarshalling %s status: %w", c.service, err)
	}

	return resp.Puppets, raw, nil
}

func (c *Client) GetCurrentIdentity(ctx context.Context, sess *session.Session) (*bridge.Identity, error) {
	puppets, raw, err := c.Puppets(ctx, sess)
	if err != nil {
		return nil, err
	}

	ident := &bridge.Identity{Raw: raw}
	if len(puppets) > 0 {
		ident.SignedIn = true
		ident.Id = strconv.Itoa(puppets[0].PuppetId)
		ident.DisplayName = puppets[0].Description
	}

	return ident, nil
}

func (c *Client) Unlink(ctx context.Context, sess *session.Session, puppetId int) error {
	return c.api.Request(ctx, sess, fmt.Sprintf("/%d/unlink", puppetId), apiclient.Options{Method: http.MethodPost},
		apiclient.RequestContext{Service: c.service, RequestType: "unlink"}, nil)
}

// Logout unlinks every puppet. All puppets are attempted even if some fail.
func (c *Client) Logout(ctx context.Context, sess *session.Session) error {
	puppets, _, err := c.Puppets(ctx, sess)
	if err != nil {
		return err
	}

	var errs []error
	for _, p := range puppets {
		if err := c.Unlink(ctx, sess, p.PuppetId); err != nil {
			c.log.WithError(err).Warnf("failed unlinking puppet %d", p.PuppetId)
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

func (c *Client) link(ctx context.Context, sess *session.Session, data login.Payload) (login.Status, error) {
	var resp linkResponse
	if err := c.api.Request(ctx, sess, "/link", apiclient.Options{
		Method: http.MethodPost,
		Body:   linkRequest{Data: data},
	}, apiclient.RequestContext{Service: c.service, RequestType: "login"}, &resp); err != nil {
		return "", err
	}

	c.log.Infof("linked puppet %d", resp.PuppetId)
	return login.StatusLoggedIn, nil
}

func (c *Client) Login(ctx context.Context, sess *session.Session, step login.Step, payload login.Payload) (login.Status, error) {
	switch {
	case step == StepLink && c.authorize == nil:
		return c.link(ctx, sess, payload)
	case step == StepAuthorize && c.authorize != nil:
		return c.authorize(ctx, sess)
	default:
		return "", fmt.Errorf("%w: %s", ErrUnknownStep, step)
	}
}

func (c *Client) LoginFlow(context.Context, *session.Session) (*login.Definition, error) {
	return c.flow(), nil
}

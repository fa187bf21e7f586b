package puppet

import (
	"context"
	"fmt"

	"github.com/devgianlu/go-bridgemanager/apiclient"
	"github.com/devgianlu/go-bridgemanager/login"
	"github.com/devgianlu/go-bridgemanager/session"
	"github.com/google/uuid"
	"golang.org/x/oauth2"
)

var defaultSlackScopes = []string{
	"channels:history",
	"channels:read",
	"chat:write",
	"groups:history",
	"groups:read",
	"im:history",
	"im:read",
	"mpim:history",
	"mpim:read",
	"users:read",
}

type oauthInfo struct {
	ClientId     string   `json:"client_id"`
	AuthorizeUrl string   `json:"authorize_url"`
	Scopes       []string `json:"scopes"`
}

func (c *Client) oauthInfo(ctx context.Context, sess *session.Session) (*oauthInfo, error) {
	var info oauthInfo
	if err := c.api.Request(ctx, sess, "/oauth", apiclient.Options{},
		apiclient.RequestContext{Service: c.service, RequestType: "oauth info"}, &info); err != nil {
		return nil, err
	}

	if len(info.ClientId) == 0 || len(info.AuthorizeUrl) == 0 {
		return nil, fmt.Errorf("%s does not support oauth2 authorization", c.service)
	} else if len(info.Scopes) == 0 {
		info.Scopes = defaultSlackScopes
	}

	return &info, nil
}

// authorizeOAuth2 sends the user through the authorization page of the service and links the
// puppet with the returned code. The code is exchanged by the bridge, which owns the client secret.
func (c *Client) authorizeOAuth2(ctx context.Context, sess *session.Session) (login.Status, error) {
	info, err := c.oauthInfo(ctx, sess)
	if err != nil {
		return "", err
	}

	serverCtx, serverCancel := context.WithCancel(ctx)
	defer serverCancel()

	state := uuid.NewString()
	callbackPort, resCh, err := newCallbackServer(serverCtx, c.log, c.callbackPort, state)
	if err != nil {
		return "", fmt.Errorf("failed initializing oauth2 server: %w", err)
	}

	oauthConf := &oauth2.Config{
		ClientID:    info.ClientId,
		RedirectURL: fmt.Sprintf("http://127.0.0.1:%d/login", callbackPort),
		Scopes:      info.Scopes,
		Endpoint:    oauth2.Endpoint{AuthURL: info.AuthorizeUrl},
	}

	verifier := oauth2.GenerateVerifier()
	url := oauthConf.AuthCodeURL(state, oauth2.S256ChallengeOption(verifier))
	c.log.Infof("to complete authorization visit the following link: %s", url)

	c.emitPrompt(url)
	defer c.emitPrompt("")

	var res callbackResult
	select {
	case res = <-resCh:
	case <-ctx.Done():
		return "", fmt.Errorf("failed waiting for %s authorization: %w", c.service, ctx.Err())
	}

	serverCancel()

	if res.err != nil {
		return "", fmt.Errorf("failed %s authorization: %w", c.service, res.err)
	}

	return c.link(ctx, sess, login.Payload{
		"code":          res.code,
		"redirect_uri":  oauthConf.RedirectURL,
		"code_verifier": verifier,
	})
}

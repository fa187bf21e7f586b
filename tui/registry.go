package tui

import (
	bridgemanager "github.com/devgianlu/go-bridgemanager"
	"github.com/devgianlu/go-bridgemanager/apiclient"
	"github.com/devgianlu/go-bridgemanager/bridge"
	"github.com/devgianlu/go-bridgemanager/bridge/facebook"
	"github.com/devgianlu/go-bridgemanager/bridge/puppet"
	"github.com/devgianlu/go-bridgemanager/bridge/telegram"
	"github.com/devgianlu/go-bridgemanager/bridge/twitter"
	"github.com/devgianlu/go-bridgemanager/bridge/whatsapp"
)

// Factory creates the API client of a bridge.
type Factory func(log bridgemanager.Logger, api *apiclient.Client) bridge.Bridge

// Registry maps bridges to their client factory. Bridges without an entry are shown as
// unsupported.
type Registry map[bridgemanager.BridgeId]Factory

// DefaultRegistry knows every bridge with a provisioning API client. OAuth2 callbacks are
// received on oauthCallbackPort, zero picks a free port.
func DefaultRegistry(oauthCallbackPort int) Registry {
	return Registry{
		bridgemanager.BridgeTelegram: func(log bridgemanager.Logger, api *apiclient.Client) bridge.Bridge {
			return telegram.NewClient(log, api)
		},
		bridgemanager.BridgeFacebook: func(log bridgemanager.Logger, api *apiclient.Client) bridge.Bridge {
			return facebook.NewClient(log, api)
		},
		bridgemanager.BridgeWhatsApp: func(log bridgemanager.Logger, api *apiclient.Client) bridge.Bridge {
			return whatsapp.NewClient(log, api)
		},
		bridgemanager.BridgeTwitter: func(log bridgemanager.Logger, api *apiclient.Client) bridge.Bridge {
			return twitter.NewClient(log, api)
		},
		bridgemanager.BridgeSlack: func(log bridgemanager.Logger, api *apiclient.Client) bridge.Bridge {
			return puppet.NewSlackClient(log, api, oauthCallbackPort)
		},
		bridgemanager.BridgePuppetInstagram: func(log bridgemanager.Logger, api *apiclient.Client) bridge.Bridge {
			return puppet.NewInstagramClient(log, api)
		},
	}
}

func (r Registry) Supported(id bridgemanager.BridgeId) bool {
	_, ok := r[id]
	return ok
}

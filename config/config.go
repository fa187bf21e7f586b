package config

import (
	"context"

	bridgemanager "github.com/devgianlu/go-bridgemanager"
	"github.com/devgianlu/go-bridgemanager/apiclient"
	"golang.org/x/exp/slices"
)

type configResponse struct {
	Bridges            map[string]bool `json:"bridges"`
	InternalBridgeInfo bool            `json:"internal_bridge_info"`
}

// Config is the process-wide configuration published by the manager. It is fetched once at
// startup and never changes afterward, pass it by value to whatever needs it.
type Config struct {
	bridges            map[bridgemanager.BridgeId]bool
	internalBridgeInfo bool
}

// New creates a configuration. A nil bridges map enables every bridge.
func New(bridges map[bridgemanager.BridgeId]bool, internalBridgeInfo bool) Config {
	cfg := Config{internalBridgeInfo: internalBridgeInfo}
	if bridges != nil {
		cfg.bridges = make(map[bridgemanager.BridgeId]bool, len(bridges))
		for id, enabled := range bridges {
			cfg.bridges[id] = enabled
		}
	}

	return cfg
}

// Fetch retrieves the configuration from the manager API root.
func Fetch(ctx context.Context, log bridgemanager.Logger, api *apiclient.Client, tokens apiclient.TokenSource) (Config, error) {
	var resp configResponse
	if err := api.Request(ctx, tokens, "/config", apiclient.Options{}, apiclient.RequestContext{
		Service:     "Bridge manager",
		RequestType: "config",
	}, &resp); err != nil {
		return Config{}, err
	}

	var bridges map[bridgemanager.BridgeId]bool
	if resp.Bridges != nil {
		bridges = make(map[bridgemanager.BridgeId]bool, len(resp.Bridges))
		for id, enabled := range resp.Bridges {
			bridges[bridgemanager.BridgeId(id)] = enabled
		}
	}

	cfg := New(bridges, resp.InternalBridgeInfo)
	log.Debugf("fetched manager config, enabled bridges: %v", cfg.EnabledBridges())
	return cfg, nil
}

// Enabled reports whether the bridge should be shown.
func (c Config) Enabled(id bridgemanager.BridgeId) bool {
	if c.bridges == nil {
		return true
	}

	return c.bridges[id]
}

// EnabledBridges lists the enabled bridges, known ones in navigation order followed by the
// ones this client does not know about sorted by ID.
func (c Config) EnabledBridges() []bridgemanager.BridgeId {
	var out []bridgemanager.BridgeId
	for _, id := range bridgemanager.AllBridges {
		if c.Enabled(id) {
			out = append(out, id)
		}
	}

	var extra []bridgemanager.BridgeId
	for id, enabled := range c.bridges {
		if enabled && !slices.Contains(bridgemanager.AllBridges, id) {
			extra = append(extra, id)
		}
	}

	slices.Sort(extra)
	return append(out, extra...)
}

// InternalBridgeInfo reports whether the raw bridge state should be shown.
func (c Config) InternalBridgeInfo() bool {
	return c.internalBridgeInfo
}

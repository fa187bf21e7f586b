package config_test

import (
	"context"
	"net/http/httptest"
	"testing"

	bridgemanager "github.com/devgianlu/go-bridgemanager"
	"github.com/devgianlu/go-bridgemanager/apiclient"
	"github.com/devgianlu/go-bridgemanager/config"
	"github.com/devgianlu/go-bridgemanager/devserver"
	"github.com/devgianlu/go-bridgemanager/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnabledDefaultsToAll(t *testing.T) {
	cfg := config.New(nil, false)

	for _, id := range bridgemanager.AllBridges {
		assert.True(t, cfg.Enabled(id), id)
	}

	assert.Equal(t, bridgemanager.AllBridges, cfg.EnabledBridges())
	assert.False(t, cfg.InternalBridgeInfo())
}

func TestEnabledBridgesOrder(t *testing.T) {
	bridges := map[bridgemanager.BridgeId]bool{
		bridgemanager.BridgeTwitter:  true,
		"mautrix-signal":             true,
		bridgemanager.BridgeTelegram: true,
		bridgemanager.BridgeHangouts: false,
		"mautrix-discord":            true,
	}
	cfg := config.New(bridges, true)

	// changes to the source map must not leak into the config
	bridges[bridgemanager.BridgeHangouts] = true

	assert.False(t, cfg.Enabled(bridgemanager.BridgeHangouts))
	assert.False(t, cfg.Enabled(bridgemanager.BridgeFacebook))
	assert.Equal(t, []bridgemanager.BridgeId{
		bridgemanager.BridgeTelegram,
		bridgemanager.BridgeTwitter,
		"mautrix-discord",
		"mautrix-signal",
	}, cfg.EnabledBridges())
	assert.True(t, cfg.InternalBridgeInfo())
}

func TestFetch(t *testing.T) {
	opts := devserver.DefaultOptions()
	opts.Bridges = map[bridgemanager.BridgeId]bool{bridgemanager.BridgeTelegram: true, bridgemanager.BridgeWhatsApp: false}
	opts.InternalBridgeInfo = true

	dev := devserver.New(&bridgemanager.NullLogger{}, opts)
	server := httptest.NewServer(dev.Handler())
	defer server.Close()

	api, err := apiclient.NewClient(&bridgemanager.NullLogger{}, server.Client(), server.URL+"/api")
	require.NoError(t, err)

	sess := session.New("@admin:example.com", dev.Login("@admin:example.com"))
	cfg, err := config.Fetch(context.Background(), &bridgemanager.NullLogger{}, api, sess)
	require.NoError(t, err)

	assert.Equal(t, []bridgemanager.BridgeId{bridgemanager.BridgeTelegram}, cfg.EnabledBridges())
	assert.True(t, cfg.InternalBridgeInfo())

	_, err = config.Fetch(context.Background(), &bridgemanager.NullLogger{}, api, session.New("@admin:example.com", "bogus"))
	var apiErr *apiclient.ApiError
	require.ErrorAs(t, err, &apiErr)
	assert.True(t, apiErr.Unauthorized())
}

package go_bridgemanager

type BridgeId string

const (
	BridgeTelegram        BridgeId = "mautrix-telegram"
	BridgeFacebook        BridgeId = "mautrix-facebook"
	BridgeHangouts        BridgeId = "mautrix-hangouts"
	BridgeWhatsApp        BridgeId = "mautrix-whatsapp"
	BridgeTwitter         BridgeId = "mautrix-twitter"
	BridgeSlack           BridgeId = "mx-puppet-slack"
	BridgePuppetTwitter   BridgeId = "mx-puppet-twitter"
	BridgePuppetInstagram BridgeId = "mx-puppet-instagram"
)

// AllBridges lists every bridge known to the manager, in navigation order.
var AllBridges = []BridgeId{
	BridgeTelegram,
	BridgeFacebook,
	BridgeHangouts,
	BridgeWhatsApp,
	BridgeTwitter,
	BridgeSlack,
	BridgePuppetTwitter,
	BridgePuppetInstagram,
}

func (id BridgeId) Name() string {
	switch id {
	case BridgeTelegram:
		return "Telegram"
	case BridgeFacebook:
		return "Facebook"
	case BridgeHangouts:
		return "Hangouts"
	case BridgeWhatsApp:
		return "WhatsApp"
	case BridgeTwitter, BridgePuppetTwitter:
		return "Twitter"
	case BridgeSlack:
		return "Slack"
	case BridgePuppetInstagram:
		return "Instagram"
	default:
		return string(id)
	}
}

// ServiceName is the name used in user facing error messages, e.g. "Telegram bridge".
func (id BridgeId) ServiceName() string {
	return id.Name() + " bridge"
}

// Prefix returns the path of the bridge API relative to the manager API root.
func (id BridgeId) Prefix() string {
	return "/" + string(id)
}

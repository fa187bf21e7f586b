package go_bridgemanager

import "strings"

// ObfuscateUsername hides the middle of a username, phone number or Matrix ID so it can be logged.
// The server part of a Matrix ID is kept as is.
func ObfuscateUsername(username string) string {
	if strings.HasPrefix(username, "@") && strings.Contains(username, ":") {
		parts := strings.SplitN(username[1:], ":", 2)
		return "@" + ObfuscateUsername(parts[0]) + ":" + parts[1]
	}

	if strings.Contains(username, "@") {
		parts := strings.SplitN(username, "@", 2)
		if len(parts) == 2 {
			return ObfuscateUsername(parts[0]) + "@" + parts[1]
		}
	}

	if len(username) < 5 {
		return username
	}

	return username[:2] + strings.Repeat("*", len(username)-4) + username[len(username)-2:]
}

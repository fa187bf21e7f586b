package main

import (
	"errors"
	"os"
	"runtime"
)

// UserStateDir returns the default root directory for user-specific state data, the state
// counterpart of os.UserConfigDir.
//
// On Unix systems, it returns $XDG_STATE_HOME if non-empty, else $HOME/.local/state.
// On other systems it returns os.UserConfigDir.
func UserStateDir() (string, error) {
	switch runtime.GOOS {
	case "windows", "darwin", "ios", "plan9":
		return os.UserConfigDir()
	}

	if dir := os.Getenv("XDG_STATE_HOME"); dir != "" {
		return dir, nil
	}

	home := os.Getenv("HOME")
	if home == "" {
		return "", errors.New("neither $XDG_STATE_HOME nor $HOME are defined")
	}

	return home + "/.local/state", nil
}

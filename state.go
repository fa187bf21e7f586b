package go_bridgemanager

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/gofrs/flock"
	log "github.com/sirupsen/logrus"
)

// AppState is the state persisted between runs. It only holds the manager session credential,
// everything else is fetched from the server.
type AppState struct {
	mu sync.Mutex

	path string
	lock *flock.Flock

	Credentials struct {
		UserId      string `json:"user_id"`
		AccessToken string `json:"access_token"`
	} `json:"credentials"`
}

func (s *AppState) Read(stateDir string) error {
	if err := os.MkdirAll(stateDir, 0o700); err != nil {
		return fmt.Errorf("failed creating state directory: %w", err)
	}

	s.path = filepath.Join(stateDir, "state.json")
	s.lock = flock.New(s.path + ".lock")

	content, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		log.Debugf("no app state found")
		return nil
	} else if err != nil {
		return fmt.Errorf("failed reading state file: %w", err)
	}

	if err := json.Unmarshal(content, s); err != nil {
		return fmt.Errorf("failed unmarshalling state file: %w", err)
	}

	log.Debugf("app state loaded")
	return nil
}

// HasCredentials reports whether a manager session was stored.
func (s *AppState) HasCredentials() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.Credentials.UserId) > 0 && len(s.Credentials.AccessToken) > 0
}

// SetCredentials replaces the stored credentials and writes the state to disk.
func (s *AppState) SetCredentials(userId, accessToken string) error {
	s.mu.Lock()
	s.Credentials.UserId = userId
	s.Credentials.AccessToken = accessToken
	s.mu.Unlock()

	return s.Write()
}

// ClearCredentials forgets the stored credentials and writes the state to disk.
func (s *AppState) ClearCredentials() error {
	return s.SetCredentials("", "")
}

func (s *AppState) Write() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.path) == 0 {
		return fmt.Errorf("app state was never read")
	}

	// Other instances of the manager may share the same state directory.
	if err := s.lock.Lock(); err != nil {
		return fmt.Errorf("failed locking app state: %w", err)
	}
	defer func() { _ = s.lock.Unlock() }()

	// Create a temporary file, and overwrite the old file.
	// The file is created with mode 0o600 so we don't need to change the mode.
	tmpFile, err := os.CreateTemp(filepath.Dir(s.path), filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed creating temporary file for app state: %w", err)
	}

	if err := json.NewEncoder(tmpFile).Encode(s); err != nil {
		_ = tmpFile.Close()
		_ = os.Remove(tmpFile.Name())
		return fmt.Errorf("failed writing marshalled app state: %w", err)
	} else if err := tmpFile.Close(); err != nil {
		_ = os.Remove(tmpFile.Name())
		return fmt.Errorf("failed closing app state file: %w", err)
	}

	if err := os.Rename(tmpFile.Name(), s.path); err != nil {
		return fmt.Errorf("failed replacing app state file: %w", err)
	}

	return nil
}

// GetCredentials returns the stored user ID and access token, empty if missing.
func (s *AppState) GetCredentials() (userId, accessToken string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.Credentials.UserId, s.Credentials.AccessToken
}

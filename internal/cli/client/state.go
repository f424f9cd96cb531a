package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/cloo-solutions/coach/internal/domain"
)

const stateFileName = "knowledge_base.json"

var getStateDirFunc = defaultGetStateDir

func defaultGetStateDir() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user config directory: %w", err)
	}
	return filepath.Join(configDir, "coach"), nil
}

// DefaultStatePath returns where the knowledge base is kept between turns.
func DefaultStatePath() (string, error) {
	dir, err := getStateDirFunc()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, stateFileName), nil
}

// StateStore keeps the latest knowledge base on disk so the next turn can send it back.
type StateStore struct {
	path string
}

func NewStateStore(path string) *StateStore {
	return &StateStore{path: path}
}

// NewStateStoreWithCmd uses --state when set, else the default path.
func NewStateStoreWithCmd(cmd *cobra.Command) (*StateStore, error) {
	if cmd != nil {
		if flagPath, err := cmd.Flags().GetString("state"); err == nil && flagPath != "" {
			return NewStateStore(flagPath), nil
		}
	}
	path, err := DefaultStatePath()
	if err != nil {
		return nil, err
	}
	return NewStateStore(path), nil
}

func (s *StateStore) Path() string {
	return s.path
}

// Load returns nil (not an error) when no conversation has been saved.
func (s *StateStore) Load() (*domain.KnowledgeBase, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read state file: %w", err)
	}

	var kb domain.KnowledgeBase
	if err := json.Unmarshal(data, &kb); err != nil {
		return nil, fmt.Errorf("failed to parse state file %s: %w", s.path, err)
	}
	return &kb, nil
}

func (s *StateStore) Save(kb domain.KnowledgeBase) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}

	data, err := json.MarshalIndent(kb, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal knowledge base: %w", err)
	}

	if err := os.WriteFile(s.path, data, 0600); err != nil {
		return fmt.Errorf("failed to write state file: %w", err)
	}
	return nil
}

// Delete removes the saved knowledge base. Missing state is not an error.
func (s *StateStore) Delete() error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to delete state file: %w", err)
	}
	return nil
}

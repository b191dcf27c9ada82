package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/channelguard/channel-guard/internal/types"
)

// FileStore keeps the state mapping in a single JSON file shared by all
// guard processes. Writes re-read the file, overlay the caller's entry and
// atomically replace the file, under an advisory lock.
type FileStore struct {
	path        string
	lockTimeout time.Duration
}

const defaultLockTimeout = 5 * time.Second

var errLockTimeout = errors.New("state file is locked by another process")

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path, lockTimeout: defaultLockTimeout}
}

func (s *FileStore) Path() string {
	return s.path
}

func (s *FileStore) Load(ctx context.Context) (map[string]types.ChannelState, error) {
	return s.read(ctx), nil
}

func (s *FileStore) Save(ctx context.Context, channelID string, state types.ChannelState) error {
	return s.update(ctx, func(states map[string]types.ChannelState) error {
		states[channelID] = state
		return nil
	})
}

func (s *FileStore) Delete(ctx context.Context, channelID string) error {
	return s.update(ctx, func(states map[string]types.ChannelState) error {
		if _, ok := states[channelID]; !ok {
			return &NotFoundError{
				Key:     channelID,
				Message: fmt.Sprintf("channel %s has no stored state", channelID),
			}
		}
		delete(states, channelID)
		return nil
	})
}

// update runs a read-merge-write cycle on the file.
func (s *FileStore) update(ctx context.Context, mutate func(map[string]types.ChannelState) error) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create state dir %s: %w", dir, err)
	}

	unlock, err := lockFile(ctx, s.path+".lock", s.lockTimeout)
	if err != nil {
		return fmt.Errorf("failed to lock state file: %w", err)
	}
	defer unlock()

	states := s.read(ctx)
	if err := mutate(states); err != nil {
		return err
	}

	return s.writeAtomic(states)
}

// read never fails: a missing file is an empty mapping, a malformed one is
// reported and treated as empty.
func (s *FileStore) read(ctx context.Context) map[string]types.ChannelState {
	states := make(map[string]types.ChannelState)

	data, err := os.ReadFile(s.path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			log.Ctx(ctx).Warn().Err(err).Str("path", s.path).
				Msg("could not read state file, starting fresh")
		}
		return states
	}

	if err := json.Unmarshal(data, &states); err != nil {
		corrupt := types.NewStateCorruptionError("state file is not valid JSON", err)
		log.Ctx(ctx).Warn().Err(corrupt).Str("path", s.path).
			Msg("could not load state file, starting fresh")
		return make(map[string]types.ChannelState)
	}
	if states == nil {
		// the file contained a JSON null
		states = make(map[string]types.ChannelState)
	}

	return states
}

func (s *FileStore) writeAtomic(states map[string]types.ChannelState) error {
	data, err := json.MarshalIndent(states, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode state: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temporary state file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) //nolint:errcheck

	if _, err := tmp.Write(data); err != nil {
		tmp.Close() //nolint:errcheck
		return fmt.Errorf("failed to write temporary state file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close() //nolint:errcheck
		return fmt.Errorf("failed to sync temporary state file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temporary state file: %w", err)
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("failed to replace state file: %w", err)
	}

	return nil
}

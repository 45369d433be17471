package recovery

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Sentinel file names in the manager directory
const (
	StatusFlagFile      = "flagFile.txt"
	LegacyFlagFile      = "flagFile_Svc.txt"
	DeleteErrorFlagFile = "flagFile_DeleteError.txt"
)

// DetectPriorCrash reports whether the status flag survived the previous run
func (m *Manager) DetectPriorCrash() bool {
	return m.flagExists(StatusFlagFile)
}

// DetectUnresolvedDeleteError reports whether an earlier cleanup left files behind
func (m *Manager) DetectUnresolvedDeleteError() bool {
	return m.flagExists(DeleteErrorFlagFile)
}

// AcknowledgeDeleteError clears the delete-error flag. It does nothing when
// the flag is absent.
func (m *Manager) AcknowledgeDeleteError() {
	m.ClearDeleteErrorFlag()
}

// CreateStatusFlag marks the manager as running
func (m *Manager) CreateStatusFlag() {
	m.createFlag(StatusFlagFile)
}

// DeleteStatusFlag marks a clean exit
func (m *Manager) DeleteStatusFlag() {
	if err := m.removeFlag(StatusFlagFile); err != nil {
		m.logger.Error().Err(err).Msg("Failed to delete status flag")
	}
}

// CreateDeleteErrorFlag records that cleanup left files behind
func (m *Manager) CreateDeleteErrorFlag() {
	m.createFlag(DeleteErrorFlagFile)
}

// ClearDeleteErrorFlag removes the delete-error flag
func (m *Manager) ClearDeleteErrorFlag() {
	if err := m.removeFlag(DeleteErrorFlagFile); err != nil {
		m.logger.Error().Err(err).Msg("Failed to delete delete-error flag")
	}
}

func (m *Manager) flagPath(name string) string {
	return filepath.Join(m.opts.ManagerDir, name)
}

func (m *Manager) flagExists(name string) bool {
	_, err := os.Stat(m.flagPath(name))
	return err == nil
}

func (m *Manager) createFlag(name string) {
	path := m.flagPath(name)
	content := fmt.Sprintf("%s\n", m.opts.Now().Format(time.RFC3339))
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		m.logger.Error().Err(err).Str("path", path).Msg("Failed to create flag file")
		return
	}
	m.logger.Debug().Str("path", path).Msg("flag file created")
}

// removeFlag deletes a flag file; a missing file is not an error
func (m *Manager) removeFlag(name string) error {
	path := m.flagPath(name)
	if err := m.opts.FS.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete %s: %w", path, err)
	}
	return nil
}

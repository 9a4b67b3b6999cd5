// Package sandbox owns the per-request workspace directories and the
// subprocesses that compile and run generated programs inside them.
package sandbox

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Manager creates workspaces under a single root directory and remembers
// which of them are still open
type Manager struct {
	root   string
	logger *logrus.Entry

	mutex sync.Mutex
	live  map[string]struct{}
}

// NewManager creates a workspace manager, creating root if needed
func NewManager(root string) (*Manager, error) {
	if root == "" {
		root = filepath.Join(os.TempDir(), "judge")
	}
	if err := os.MkdirAll(root, 0700); err != nil {
		return nil, fmt.Errorf("failed to create workspace root: %w", err)
	}
	return &Manager{
		root:   root,
		logger: logrus.WithField("component", "sandbox"),
		live:   make(map[string]struct{}),
	}, nil
}

// Root returns the directory holding all workspaces
func (m *Manager) Root() string {
	return m.root
}

// InUse reports whether the workspace id has been handed out and not closed
func (m *Manager) InUse(id string) bool {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	_, ok := m.live[id]
	return ok
}

func (m *Manager) release(id string) {
	m.mutex.Lock()
	delete(m.live, id)
	m.mutex.Unlock()
}

// Workspace is a directory exclusively owned by one request
type Workspace struct {
	ID  string
	Dir string

	manager *Manager
	logger  *logrus.Entry
}

// NewWorkspace creates a fresh directory named by a random UUID
func (m *Manager) NewWorkspace() (*Workspace, error) {
	id := uuid.New().String()
	dir := filepath.Join(m.root, id)

	// Mkdir fails if the directory exists, so a workspace is never shared
	if err := os.Mkdir(dir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create workspace: %w", err)
	}

	m.mutex.Lock()
	m.live[id] = struct{}{}
	m.mutex.Unlock()

	return &Workspace{
		ID:      id,
		Dir:     dir,
		manager: m,
		logger:  m.logger.WithField("workspace", id),
	}, nil
}

// WriteFile writes content to name inside the workspace
func (w *Workspace) WriteFile(name, content string) error {
	// Prevent path traversal
	if name == "" || strings.Contains(name, "..") || filepath.IsAbs(name) {
		return fmt.Errorf("invalid file name: %q", name)
	}

	path := filepath.Join(w.Dir, name)
	rel, err := filepath.Rel(w.Dir, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return fmt.Errorf("path traversal detected: %s", name)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	return nil
}

// Path returns the absolute path of name inside the workspace
func (w *Workspace) Path(name string) string {
	return filepath.Join(w.Dir, name)
}

// Close removes the workspace and everything in it
func (w *Workspace) Close() error {
	defer w.manager.release(w.ID)
	if err := os.RemoveAll(w.Dir); err != nil {
		w.logger.WithError(err).Warn("Failed to remove workspace")
		return fmt.Errorf("failed to remove workspace: %w", err)
	}
	w.logger.Debug("Workspace removed")
	return nil
}

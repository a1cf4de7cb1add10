package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"media-pipeline/internal/logging"
)

// ErrRepositoryNotFound is returned when no registered repository matches
// a lookup.
var ErrRepositoryNotFound = errors.New("repository not found")

// ErrLegacyRepository signals a repository.config marker at the storage
// root itself instead of under a named sub-repository. That layout
// predates the primary-repository scheme and must be migrated, not
// silently adopted.
var ErrLegacyRepository = errors.New("legacy repository detected")

// Repository is a registered storage repository.
type Repository struct {
	ID        string            `json:"id"`
	Name      string            `json:"name"`
	Path      string            `json:"path"`
	Config    *RepositoryConfig `json:"config"`
	CreatedAt time.Time         `json:"created_at"`
}

// Manager tracks registered repositories and resolves asset placement
// within them. The registry is rebuilt from marker files at startup and
// is read-mostly afterwards.
type Manager struct {
	mu     sync.RWMutex
	byID   map[string]*Repository
	byPath map[string]*Repository
}

// NewManager creates an empty repository manager.
func NewManager() *Manager {
	return &Manager{
		byID:   make(map[string]*Repository),
		byPath: make(map[string]*Repository),
	}
}

// ValidationResult reports what repository validation found.
type ValidationResult struct {
	Valid    bool     `json:"valid"`
	Errors   []string `json:"errors,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
}

// ValidateRepository checks that path holds a well-formed, non-nested
// repository. Problems are collected rather than failing on the first.
func (m *Manager) ValidateRepository(path string) (*ValidationResult, error) {
	result := &ValidationResult{Valid: true}

	cleanPath, err := normalizePath(path)
	if err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Sprintf("invalid path: %v", err))
		return result, nil
	}

	info, err := os.Stat(cleanPath)
	if os.IsNotExist(err) {
		result.Valid = false
		result.Errors = append(result.Errors, "repository directory does not exist")
		return result, nil
	}
	if err == nil && !info.IsDir() {
		result.Valid = false
		result.Errors = append(result.Errors, "path is not a directory")
		return result, nil
	}

	if !IsRepositoryRoot(cleanPath) {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Sprintf("missing %s file", ConfigFileName))
		return result, nil
	}

	if _, err := LoadConfigFromFile(cleanPath); err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Sprintf("invalid configuration: %v", err))
		return result, nil
	}

	if nested, parent := isNestedRepository(cleanPath); nested {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Sprintf("repository is nested inside another repository at %s", parent))
	}

	return result, nil
}

// InitializeRepository creates a new repository at path: the directory is
// created if needed and the marker file written. Fails if path already
// holds a repository.
func (m *Manager) InitializeRepository(path string, config *RepositoryConfig) (*Repository, error) {
	cleanPath, err := normalizePath(path)
	if err != nil {
		return nil, fmt.Errorf("invalid path: %w", err)
	}
	if config == nil {
		return nil, fmt.Errorf("repository config cannot be nil")
	}

	if IsRepositoryRoot(cleanPath) {
		return nil, fmt.Errorf("repository already initialized at %s", cleanPath)
	}
	if nested, parent := isNestedRepository(cleanPath); nested {
		return nil, fmt.Errorf("cannot initialize repository nested inside %s", parent)
	}

	if err := os.MkdirAll(cleanPath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create repository directory: %w", err)
	}
	if err := config.SaveConfigToFile(cleanPath); err != nil {
		return nil, fmt.Errorf("failed to write repository config: %w", err)
	}

	repo := &Repository{
		ID:        config.ID,
		Name:      config.Name,
		Path:      cleanPath,
		Config:    config,
		CreatedAt: config.CreatedAt,
	}
	m.register(repo)

	logging.Info("Initialized repository %q (%s) at %s", repo.Name, repo.ID, cleanPath)
	return repo, nil
}

// AddRepository registers an existing, already-initialized repository.
func (m *Manager) AddRepository(path string) (*Repository, error) {
	cleanPath, err := normalizePath(path)
	if err != nil {
		return nil, fmt.Errorf("invalid path: %w", err)
	}

	result, err := m.ValidateRepository(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to validate repository: %w", err)
	}
	if !result.Valid {
		return nil, fmt.Errorf("invalid repository at %s: %v", cleanPath, result.Errors)
	}

	if _, err := m.GetRepositoryByPath(cleanPath); err == nil {
		return nil, fmt.Errorf("repository at %s is already registered", cleanPath)
	}

	config, err := LoadConfigFromFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load repository configuration: %w", err)
	}
	config.MergeWithDefaults()

	if _, err := m.GetRepository(config.ID); err == nil {
		return nil, fmt.Errorf("repository with ID %s is already registered", config.ID)
	}

	repo := &Repository{
		ID:        config.ID,
		Name:      config.Name,
		Path:      cleanPath,
		Config:    config,
		CreatedAt: config.CreatedAt,
	}
	m.register(repo)

	logging.Info("Registered repository %q (%s) at %s", repo.Name, repo.ID, cleanPath)
	return repo, nil
}

// GetRepository looks a repository up by ID.
func (m *Manager) GetRepository(id string) (*Repository, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if repo, ok := m.byID[id]; ok {
		return repo, nil
	}
	return nil, fmt.Errorf("repository %s: %w", id, ErrRepositoryNotFound)
}

// GetRepositoryByPath looks a repository up by its root path.
func (m *Manager) GetRepositoryByPath(path string) (*Repository, error) {
	cleanPath, err := normalizePath(path)
	if err != nil {
		return nil, fmt.Errorf("invalid path: %w", err)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	if repo, ok := m.byPath[cleanPath]; ok {
		return repo, nil
	}
	return nil, fmt.Errorf("repository at %s: %w", cleanPath, ErrRepositoryNotFound)
}

// ListRepositories returns all registered repositories.
func (m *Manager) ListRepositories() []*Repository {
	m.mu.RLock()
	defer m.mu.RUnlock()
	repos := make([]*Repository, 0, len(m.byID))
	for _, repo := range m.byID {
		repos = append(repos, repo)
	}
	return repos
}

// RemoveRepository unregisters a repository. Files on disk are untouched.
func (m *Manager) RemoveRepository(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	repo, ok := m.byID[id]
	if !ok {
		return fmt.Errorf("repository %s: %w", id, ErrRepositoryNotFound)
	}
	delete(m.byID, id)
	delete(m.byPath, repo.Path)
	return nil
}

// PlaceFile resolves the final path for a file inside the repository and
// moves it there from src. It returns the repository-relative path.
func (m *Manager) PlaceFile(repoID, src, originalFilename, hash string) (string, error) {
	repo, err := m.GetRepository(repoID)
	if err != nil {
		return "", err
	}

	relPath, err := ResolvePath(repo.Path, repo.Config, originalFilename, hash)
	if err != nil {
		return "", fmt.Errorf("failed to resolve storage path: %w", err)
	}

	dst := filepath.Join(repo.Path, relPath)
	if err := MoveFile(src, dst); err != nil {
		return "", fmt.Errorf("failed to place file: %w", err)
	}
	return relPath, nil
}

// Exists reports whether a repository-relative path exists on disk.
func (m *Manager) Exists(repoID, relPath string) (bool, error) {
	repo, err := m.GetRepository(repoID)
	if err != nil {
		return false, err
	}
	_, err = os.Stat(filepath.Join(repo.Path, relPath))
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}

func (m *Manager) register(repo *Repository) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byID[repo.ID] = repo
	m.byPath[repo.Path] = repo
}

func normalizePath(path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("path cannot be empty")
	}
	return filepath.Abs(filepath.Clean(path))
}

// isNestedRepository walks up from path looking for a repository marker
// in any ancestor directory.
func isNestedRepository(path string) (bool, string) {
	current := filepath.Dir(path)
	for len(current) > 1 && current != "." {
		if IsRepositoryRoot(current) {
			return true, current
		}
		parent := filepath.Dir(current)
		if parent == current {
			break
		}
		current = parent
	}
	return false, ""
}

package storage

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

const (
	historyName  = "bookshelf"
	historyEmail = "bookshelf@localhost"
)

// ErrStagedChanges is returned by Commit when the index already holds changes
// to other files. A commit would otherwise include them.
var ErrStagedChanges = errors.New("other changes are staged")

// Commit is one entry of the catalog history.
type Commit struct {
	Hash    string    `json:"hash"`
	Message string    `json:"message"`
	Author  string    `json:"author"`
	Date    time.Time `json:"date"`
}

// History versions the catalog file in a git repository.
type History struct {
	dir  string
	repo *gogit.Repository
	mu   sync.Mutex
}

// OpenHistory opens the git repository in dir, initializing it if needed.
func OpenHistory(dir string) (*History, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create history directory: %w", err)
	}
	repo, err := gogit.PlainOpen(dir)
	if err != nil {
		if !errors.Is(err, gogit.ErrRepositoryNotExists) {
			return nil, fmt.Errorf("failed to open git repo in %s: %w", dir, err)
		}
		repo, err = gogit.PlainInit(dir, false)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize git repo in %s: %w", dir, err)
		}
		cfg, err := repo.Config()
		if err != nil {
			return nil, fmt.Errorf("failed to read git config: %w", err)
		}
		cfg.User.Name = historyName
		cfg.User.Email = historyEmail
		if err := repo.SetConfig(cfg); err != nil {
			return nil, fmt.Errorf("failed to write git config: %w", err)
		}
	}
	return &History{dir: dir, repo: repo}, nil
}

func (h *History) relPath(file string) (string, error) {
	abs, err := filepath.Abs(file)
	if err != nil {
		return "", err
	}
	root, err := filepath.Abs(h.dir)
	if err != nil {
		return "", err
	}
	rel, err := filepath.Rel(root, abs)
	if err != nil {
		return "", err
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%s is outside of %s", file, h.dir)
	}
	return filepath.ToSlash(rel), nil
}

// Commit stages file and commits it with msg. Nothing is committed when the
// file did not change.
//
// The repository may be shared with other work, so Commit refuses to run
// while changes to other files are staged.
func (h *History) Commit(file, msg string) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	rel, err := h.relPath(file)
	if err != nil {
		return err
	}
	w, err := h.repo.Worktree()
	if err != nil {
		return fmt.Errorf("failed to get worktree: %w", err)
	}
	status, err := w.Status()
	if err != nil {
		return fmt.Errorf("failed to get worktree status: %w", err)
	}
	for name, s := range status {
		if name != rel && s.Staging != gogit.Unmodified && s.Staging != gogit.Untracked {
			return fmt.Errorf("%w in %s: %s", ErrStagedChanges, h.dir, name)
		}
	}
	if _, err := w.Add(rel); err != nil {
		return fmt.Errorf("failed to stage %s: %w", rel, err)
	}
	status, err = w.Status()
	if err != nil {
		return fmt.Errorf("failed to get worktree status: %w", err)
	}
	if s, ok := status[rel]; !ok || s.Staging == gogit.Unmodified {
		return nil
	}

	now := time.Now()
	sig := &object.Signature{Name: historyName, Email: historyEmail, When: now}
	if _, err := w.Commit(msg, &gogit.CommitOptions{Author: sig, Committer: sig}); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	return nil
}

// Log returns up to n commits touching file, newest first.
func (h *History) Log(file string, n int) ([]Commit, error) {
	if n <= 0 || n > 1000 {
		n = 1000
	}
	rel, err := h.relPath(file)
	if err != nil {
		return nil, err
	}
	h.mu.Lock()
	defer h.mu.Unlock()

	iter, err := h.repo.Log(&gogit.LogOptions{FileName: &rel})
	if err != nil {
		if errors.Is(err, plumbing.ErrReferenceNotFound) {
			// No commits yet.
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read history of %s: %w", rel, err)
	}
	defer iter.Close()

	var commits []Commit
	for range n {
		c, err := iter.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read history of %s: %w", rel, err)
		}
		subject, _, _ := strings.Cut(c.Message, "\n")
		commits = append(commits, Commit{
			Hash:    c.Hash.String(),
			Message: subject,
			Author:  c.Author.Name,
			Date:    c.Author.When,
		})
	}
	return commits, nil
}

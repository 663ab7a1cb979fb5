package auth

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/bft-labs/streamship/internal/ports"
)

// FileTokenProvider serves a bearer token read from a file and reloads it
// when the file changes, so tokens rotated by a sidecar are picked up without
// a restart. A failed reload keeps the previous token.
type FileTokenProvider struct {
	path   string
	logger ports.Logger

	mu    sync.RWMutex
	token string
}

// NewFileTokenProvider reads the initial token from path.
func NewFileTokenProvider(path string, logger ports.Logger) (*FileTokenProvider, error) {
	p := &FileTokenProvider{path: path, logger: logger}
	if err := p.reload(); err != nil {
		return nil, err
	}
	return p, nil
}

// Token implements ports.TokenProvider.
func (p *FileTokenProvider) Token() (string, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.token == "" {
		return "", ErrNoToken
	}
	return p.token, nil
}

// Run watches the token file until ctx is done. The parent directory is
// watched rather than the file itself because rotation usually replaces the
// file (rename or symlink swap) instead of writing it in place.
func (p *FileTokenProvider) Run(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	dir := filepath.Dir(p.path)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}

	name := filepath.Base(p.path)
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			// Kubernetes projected volumes swap a ..data symlink.
			base := filepath.Base(event.Name)
			if base != name && base != "..data" {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if err := p.reload(); err != nil {
				p.logger.Warn("token reload failed, keeping previous token",
					ports.String("path", p.path),
					ports.Err(err),
				)
				continue
			}
			p.logger.Info("token reloaded", ports.String("path", p.path))

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			p.logger.Warn("token watcher error", ports.Err(err))
		}
	}
}

func (p *FileTokenProvider) reload() error {
	data, err := os.ReadFile(p.path)
	if err != nil {
		return fmt.Errorf("read token file %s: %w", p.path, err)
	}
	token := strings.TrimSpace(string(data))
	if token == "" {
		return fmt.Errorf("token file %s: %w", p.path, ErrNoToken)
	}

	p.mu.Lock()
	p.token = token
	p.mu.Unlock()
	return nil
}

var _ ports.TokenProvider = (*FileTokenProvider)(nil)

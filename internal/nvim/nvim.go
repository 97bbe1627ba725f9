package nvim

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/neovim/go-client/nvim"
)

// AddressEnv is set by Neovim in the environment of its terminal jobs.
const AddressEnv = "NVIM"

// ErrNoAddress is returned when no Neovim address is configured.
var ErrNoAddress = errors.New("no neovim address")

// Manager handles the connection to a running Neovim instance.
type Manager struct {
	nvim *nvim.Nvim
}

// ResolveAddress returns addr, falling back to $NVIM when addr is the
// placeholder "env".
func ResolveAddress(addr string) string {
	if addr == "env" {
		return os.Getenv(AddressEnv)
	}
	return addr
}

// New connects to the Neovim instance listening on addr (unix socket path
// or host:port).
func New(addr string) (*Manager, error) {
	if addr == "" {
		return nil, ErrNoAddress
	}
	v, err := nvim.Dial(addr)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to nvim at %s: %w", addr, err)
	}
	return &Manager{nvim: v}, nil
}

// Close disconnects from Neovim.
func (m *Manager) Close() {
	if m.nvim != nil {
		m.nvim.Close()
	}
}

// processSequentially runs processFn over items in order, splitting the
// paths into succeeded and failed.
func processSequentially[T any](
	items []T,
	processFn func(item T) (path string, success bool),
	progressCb func(int),
) (succeeded, failed []string) {
	for i, item := range items {
		path, success := processFn(item)
		if success {
			succeeded = append(succeeded, path)
		} else {
			failed = append(failed, path)
		}
		if progressCb != nil {
			progressCb(i + 1)
		}
	}
	return succeeded, failed
}

// ReloadBuffers runs :checktime for every path that is loaded in a buffer
// so Neovim picks up the rewritten content. Paths without a buffer are
// skipped and reported as neither reloaded nor failed.
func (m *Manager) ReloadBuffers(paths []string) (reloaded, failed []string) {
	var loaded []string
	for _, p := range paths {
		absPath, err := filepath.Abs(p)
		if err != nil {
			failed = append(failed, p)
			continue
		}
		var isLoaded int
		if err := m.nvim.Call("bufloaded", &isLoaded, absPath); err != nil {
			failed = append(failed, p)
			continue
		}
		if isLoaded == 1 {
			loaded = append(loaded, p)
		}
	}

	processFn := func(p string) (string, bool) {
		return p, m.reloadBuffer(p)
	}
	ok, bad := processSequentially(loaded, processFn, nil)
	return ok, append(failed, bad...)
}

func (m *Manager) reloadBuffer(filePath string) bool {
	absPath, err := filepath.Abs(filePath)
	if err != nil {
		return false
	}
	var escaped string
	if err := m.nvim.Call("fnameescape", &escaped, absPath); err != nil {
		return false
	}
	return m.nvim.Command("checktime "+escaped) == nil
}

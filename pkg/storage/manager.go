package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/shashiranjanraj/radio/config"
)

// Manager holds the named disks built at start-up and the default one.
type Manager struct {
	mu          sync.RWMutex
	disks       map[string]Disk
	defaultDisk string
}

// NewManager returns an empty manager whose default disk is def.
func NewManager(def string) *Manager {
	return &Manager{disks: map[string]Disk{}, defaultDisk: def}
}

// Connect boots the disks named by cfg: "local" always, "s3" when a bucket
// is configured. The configured default must be one of them.
func Connect(ctx context.Context, cfg config.Config) (*Manager, error) {
	m := NewManager(cfg.Storage.Disk)

	local, err := NewLocalDisk(cfg.Dir.Public)
	if err != nil {
		return nil, err
	}
	m.RegisterDisk("local", local)

	if cfg.Storage.S3Bucket != "" {
		d, err := NewS3Disk(ctx, cfg.Storage)
		if err != nil {
			return nil, err
		}
		m.RegisterDisk("s3", d)
	}

	if _, err := m.Use(m.defaultDisk); err != nil {
		return nil, err
	}
	return m, nil
}

// RegisterDisk plugs in a Disk under name, replacing any previous one.
func (m *Manager) RegisterDisk(name string, d Disk) {
	m.mu.Lock()
	m.disks[name] = d
	m.mu.Unlock()
}

// Use returns the named disk.
func (m *Manager) Use(name string) (Disk, error) {
	m.mu.RLock()
	d, ok := m.disks[name]
	m.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrDiskNotConfigured, name)
	}
	return d, nil
}

// Default returns the default disk. Connect guarantees it exists.
func (m *Manager) Default() Disk {
	d, err := m.Use(m.defaultDisk)
	if err != nil {
		panic(err.Error())
	}
	return d
}

// Names lists the registered disk names in order.
func (m *Manager) Names() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	names := make([]string, 0, len(m.disks))
	for n := range m.disks {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

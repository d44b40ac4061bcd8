// engine.go: Chaotic engine contract and provider manager
//
// This module decouples the benchmark from any particular chaotic-map cipher.
// An engine is configured with one packed matrix and encrypts it; providers
// build engines and are managed by an EngineManager, which can also carry a
// github.com/agilira/go-plugins manager for engines living out of process.
//
// Copyright (c) 2025 halinhhh
// Series: cov
// SPDX-License-Identifier: MPL-2.0

package cov

import (
	"context"
	"encoding/hex"
	"fmt"
	"sort"
	"sync"
	"time"

	goerrors "github.com/agilira/go-errors"
	goplugins "github.com/agilira/go-plugins"
	"github.com/agilira/go-timecache"
)

// ChaoticEngine is the contract the chaotic-map pipeline needs from an
// external image-encryption engine.
//
// Configure resizes the engine to the matrix dimensions, assigns the matrix
// as the working image and resets every intermediate working buffer to zero.
// Encrypt encrypts the working image and must return a matrix of the
// configured dimensions.
type ChaoticEngine interface {
	Configure(m Matrix) error
	Encrypt() (Matrix, error)
}

// EngineCapability represents a feature an engine provider supports
type EngineCapability string

const (
	CapabilityEncrypt   EngineCapability = "encrypt"   // ChaoticEngine.Encrypt
	CapabilityDecrypt   EngineCapability = "decrypt"   // Inverse transform available
	CapabilitySeeded    EngineCapability = "seeded"    // Deterministic from a caller supplied seed
	CapabilityStateless EngineCapability = "stateless" // No state survives Configure
	CapabilityRemote    EngineCapability = "remote"    // Runs behind a plugin transport
)

// EngineProvider builds chaotic engines.
type EngineProvider interface {
	// Provider Information
	Name() string
	Version() string
	Capabilities() []EngineCapability

	// Lifecycle Management
	NewEngine(ctx context.Context, config map[string]interface{}) (ChaoticEngine, error)
	IsHealthy() bool
	Close() error
}

// EngineInfo describes a registered provider.
type EngineInfo struct {
	Name         string             `json:"name"`
	Version      string             `json:"version"`
	Capabilities []EngineCapability `json:"capabilities"`
	RegisteredAt time.Time          `json:"registered_at"`
}

// EngineRequest is the message sent to an engine behind a plugin transport.
type EngineRequest struct {
	Operation string `json:"operation"` // OperationConfigure or OperationEncrypt
	Height    int    `json:"height"`
	Width     int    `json:"width"`
	Cells     []byte `json:"cells"`
}

// EngineResponse is the reply of an engine behind a plugin transport.
type EngineResponse struct {
	Success bool   `json:"success"`
	Height  int    `json:"height"`
	Width   int    `json:"width"`
	Cells   []byte `json:"cells"`
	Error   string `json:"error"`
}

// EngineManagerConfig provides configuration for the engine manager
type EngineManagerConfig struct {
	DefaultProvider string                            `json:"default_provider"` // Provider used when no name is given
	ProviderConfigs map[string]map[string]interface{} `json:"provider_configs"` // Per-provider engine configuration
	CreateTimeout   time.Duration                     `json:"create_timeout"`   // Deadline passed to providers; construction finishing past it fails
	PluginTimeout   time.Duration                     `json:"plugin_timeout"`   // Per-request bound for plugin backed engines
}

// Common engine manager errors
var (
	ErrEngineProviderNotFound = goerrors.New("ENGINE_003", "engine provider not found")
	ErrEngineProviderNil      = goerrors.New("ENGINE_004", "engine provider cannot be nil")
	ErrEngineUnhealthy        = goerrors.New("ENGINE_005", "engine provider health check failed")
	ErrEngineDuplicate        = goerrors.New("ENGINE_006", "engine provider already registered")
)

type registeredProvider struct {
	provider     EngineProvider
	registeredAt time.Time
}

// EngineManager manages chaotic engine providers
type EngineManager struct {
	mu              sync.RWMutex
	pluginManager   *goplugins.Manager[EngineRequest, EngineResponse] // Transport for out-of-process engines, may be nil
	providers       map[string]*registeredProvider
	defaultProvider string
	config          *EngineManagerConfig
}

// NewEngineManager creates an engine manager. A nil config selects a 10s
// construction timeout and the first registered provider as default.
func NewEngineManager(config *EngineManagerConfig, pluginManager *goplugins.Manager[EngineRequest, EngineResponse]) (*EngineManager, error) {
	if config == nil {
		config = &EngineManagerConfig{
			CreateTimeout: 10 * time.Second,
		}
	}

	return &EngineManager{
		pluginManager: pluginManager,
		providers:     make(map[string]*registeredProvider),
		config:        config,
	}, nil
}

// PluginManager returns the plugin transport handle, or nil.
func (m *EngineManager) PluginManager() *goplugins.Manager[EngineRequest, EngineResponse] {
	return m.pluginManager
}

// RegisterProvider adds a provider under its Name().
func (m *EngineManager) RegisterProvider(provider EngineProvider) error {
	if provider == nil {
		return ErrEngineProviderNil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	name := provider.Name()
	if _, exists := m.providers[name]; exists {
		return fmt.Errorf("%w: %s", ErrEngineDuplicate, name)
	}

	m.providers[name] = &registeredProvider{
		provider:     provider,
		registeredAt: timecache.CachedTime().UTC(),
	}

	if m.defaultProvider == "" || m.config.DefaultProvider == name {
		m.defaultProvider = name
	}
	return nil
}

// GetProvider returns a healthy provider by name; "" selects the default.
func (m *EngineManager) GetProvider(name string) (EngineProvider, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if name == "" {
		name = m.defaultProvider
	}

	var provider EngineProvider
	if rp, exists := m.providers[name]; exists {
		provider = rp.provider
	} else if m.pluginManager != nil {
		if _, err := m.pluginManager.GetPlugin(name); err == nil {
			provider = NewPluginEngineProvider(m.pluginManager, name, m.config.PluginTimeout)
		}
	}
	if provider == nil {
		return nil, fmt.Errorf("%w: provider %q", ErrEngineProviderNotFound, name)
	}
	if !provider.IsHealthy() {
		return nil, fmt.Errorf("%w: provider %q", ErrEngineUnhealthy, name)
	}
	return provider, nil
}

// NewEngine builds an engine from the named provider. Names not registered as
// providers are looked up in the plugin manager. Every failure, including a
// construction that outlives CreateTimeout, is returned as an *EngineError so
// callers can degrade gracefully.
func (m *EngineManager) NewEngine(name string) (ChaoticEngine, error) {
	provider, err := m.GetProvider(name)
	if err != nil {
		return nil, newEngineError("init", err)
	}

	ctx := context.Background()
	if timeout := m.config.CreateTimeout; timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	engine, err := provider.NewEngine(ctx, m.config.ProviderConfigs[provider.Name()])
	if err != nil {
		return nil, newEngineError("init", err)
	}
	if engine == nil {
		return nil, newEngineError("init", goerrors.New(ErrCodeEngine, fmt.Sprintf("provider %q returned no engine", provider.Name())))
	}
	if err := ctx.Err(); err != nil {
		return nil, newEngineError("init", goerrors.Wrap(err, ErrCodeEngine, fmt.Sprintf("provider %q exceeded the construction timeout", provider.Name())))
	}
	return engine, nil
}

// Providers lists registered providers sorted by name.
func (m *EngineManager) Providers() []EngineInfo {
	m.mu.RLock()
	defer m.mu.RUnlock()

	infos := make([]EngineInfo, 0, len(m.providers))
	for name, rp := range m.providers {
		infos = append(infos, EngineInfo{
			Name:         name,
			Version:      rp.provider.Version(),
			Capabilities: rp.provider.Capabilities(),
			RegisteredAt: rp.registeredAt,
		})
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
	return infos
}

// Close shuts down all providers
func (m *EngineManager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var errs []error
	for name, rp := range m.providers {
		if err := rp.provider.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close engine provider %s: %w", name, err))
		}
	}
	m.providers = make(map[string]*registeredProvider)
	m.defaultProvider = ""

	if len(errs) > 0 {
		return fmt.Errorf("failed to close some engine providers: %v", errs)
	}
	return nil
}

// PLCMProviderName is the name of the built-in PLCM provider.
const PLCMProviderName = "plcm"

// PLCMProvider builds PLCMEngine instances. With no "seed" entry in the
// engine config every engine gets a fresh random seed; a hex encoded "seed"
// makes engines reproducible.
type PLCMProvider struct {
	mu     sync.RWMutex
	closed bool
}

// NewPLCMProvider returns the built-in PLCM provider.
func NewPLCMProvider() *PLCMProvider {
	return &PLCMProvider{}
}

func (p *PLCMProvider) Name() string    { return PLCMProviderName }
func (p *PLCMProvider) Version() string { return "1.0.0" }

func (p *PLCMProvider) Capabilities() []EngineCapability {
	return []EngineCapability{CapabilityEncrypt, CapabilityDecrypt, CapabilitySeeded, CapabilityStateless}
}

func (p *PLCMProvider) NewEngine(ctx context.Context, config map[string]interface{}) (ChaoticEngine, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !p.IsHealthy() {
		return nil, ErrEngineUnhealthy
	}

	raw, ok := config["seed"]
	if !ok {
		return NewRandomPLCMEngine()
	}
	s, ok := raw.(string)
	if !ok {
		return nil, goerrors.New(ErrCodeEngine, fmt.Sprintf("seed must be a hex string, got %T", raw))
	}
	seed, err := hex.DecodeString(s)
	if err != nil {
		return nil, goerrors.Wrap(err, ErrCodeEngine, "failed to decode hex seed")
	}
	defer Zeroize(seed)
	return NewPLCMEngine(seed)
}

func (p *PLCMProvider) IsHealthy() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return !p.closed
}

func (p *PLCMProvider) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	return nil
}

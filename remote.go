// remote.go: Chaotic engines served by go-plugins transports
//
// A plugin registered with the engine manager's go-plugins manager acts as an
// engine provider under its plugin name. Configure and Encrypt become
// EngineRequest messages executed through the plugin manager, so an engine can
// live behind HTTP, gRPC or a unix socket.
//
// Copyright (c) 2025 halinhhh
// Series: cov
// SPDX-License-Identifier: MPL-2.0

package cov

import (
	"context"
	"fmt"
	"sync"
	"time"

	goerrors "github.com/agilira/go-errors"
	goplugins "github.com/agilira/go-plugins"
)

// Operations carried in EngineRequest.Operation.
const (
	OperationConfigure = "configure"
	OperationEncrypt   = "encrypt"
)

// DefaultPluginTimeout bounds one plugin round trip.
const DefaultPluginTimeout = 30 * time.Second

// PluginEngineProvider exposes one go-plugins plugin as an EngineProvider.
type PluginEngineProvider struct {
	manager *goplugins.Manager[EngineRequest, EngineResponse]
	name    string
	timeout time.Duration
}

// NewPluginEngineProvider creates a provider for the plugin registered as name.
// A non-positive timeout selects DefaultPluginTimeout.
func NewPluginEngineProvider(manager *goplugins.Manager[EngineRequest, EngineResponse], name string, timeout time.Duration) *PluginEngineProvider {
	if timeout <= 0 {
		timeout = DefaultPluginTimeout
	}
	return &PluginEngineProvider{manager: manager, name: name, timeout: timeout}
}

func (p *PluginEngineProvider) Name() string { return p.name }

func (p *PluginEngineProvider) Version() string {
	plugin, err := p.plugin()
	if err != nil {
		return ""
	}
	return plugin.Info().Version
}

func (p *PluginEngineProvider) Capabilities() []EngineCapability {
	return []EngineCapability{CapabilityEncrypt, CapabilityRemote}
}

func (p *PluginEngineProvider) plugin() (goplugins.Plugin[EngineRequest, EngineResponse], error) {
	if p.manager == nil {
		return nil, goerrors.New(ErrCodeEngine, "no plugin manager configured")
	}
	return p.manager.GetPlugin(p.name)
}

// NewEngine returns an engine bound to the plugin. The config map is unused:
// plugin options travel in the go-plugins PluginConfig.
func (p *PluginEngineProvider) NewEngine(ctx context.Context, config map[string]interface{}) (ChaoticEngine, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if _, err := p.plugin(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEngineProviderNotFound, err)
	}
	return &pluginEngine{manager: p.manager, name: p.name, timeout: p.timeout}, nil
}

// IsHealthy reports whether the plugin answers its health check with a
// healthy or degraded status.
func (p *PluginEngineProvider) IsHealthy() bool {
	plugin, err := p.plugin()
	if err != nil {
		return false
	}
	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	defer cancel()
	switch plugin.Health(ctx).Status {
	case goplugins.StatusHealthy, goplugins.StatusDegraded:
		return true
	default:
		return false
	}
}

// Close is a no-op; the plugin manager owns the plugin's lifecycle.
func (p *PluginEngineProvider) Close() error { return nil }

// pluginEngine is a ChaoticEngine whose state lives in the plugin.
type pluginEngine struct {
	manager *goplugins.Manager[EngineRequest, EngineResponse]
	name    string
	timeout time.Duration

	mu         sync.Mutex
	configured bool
}

func (e *pluginEngine) Configure(m Matrix) error {
	if err := m.Validate(); err != nil {
		return newEngineError(OperationConfigure, fmt.Errorf("%w: %w", ErrEngineInvalidImage, err))
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if _, err := e.call(EngineRequest{
		Operation: OperationConfigure,
		Height:    m.Height,
		Width:     m.Width,
		Cells:     m.Cells,
	}); err != nil {
		e.configured = false
		return err
	}
	e.configured = true
	return nil
}

func (e *pluginEngine) Encrypt() (Matrix, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.configured {
		return Matrix{}, newEngineError(OperationEncrypt, ErrEngineNotConfigured)
	}
	resp, err := e.call(EngineRequest{Operation: OperationEncrypt})
	if err != nil {
		return Matrix{}, err
	}
	return Matrix{Height: resp.Height, Width: resp.Width, Cells: resp.Cells}, nil
}

// call makes a single attempt; engine failures are not retried.
func (e *pluginEngine) call(req EngineRequest) (EngineResponse, error) {
	ctx, cancel := context.WithTimeout(context.Background(), e.timeout)
	defer cancel()

	execCtx := goplugins.ExecutionContext{
		RequestID:  fmt.Sprintf("%s-%s-%d", e.name, req.Operation, time.Now().UnixNano()),
		Timeout:    e.timeout,
		MaxRetries: 0,
	}
	resp, err := e.manager.ExecuteWithOptions(ctx, e.name, execCtx, req)
	if err != nil {
		return EngineResponse{}, newEngineError(req.Operation, goerrors.Wrap(err, ErrCodeEngine, fmt.Sprintf("plugin %s unreachable", e.name)))
	}
	if !resp.Success {
		msg := resp.Error
		if msg == "" {
			msg = "plugin reported failure"
		}
		return EngineResponse{}, newEngineError(req.Operation, goerrors.New(ErrCodeEngine, fmt.Sprintf("plugin %s: %s", e.name, msg)))
	}
	return resp, nil
}

// ServeEngineRequest applies req to engine and builds the reply. Plugin
// implementations hosting a local ChaoticEngine use it as their Execute body.
func ServeEngineRequest(engine ChaoticEngine, req EngineRequest) EngineResponse {
	switch req.Operation {
	case OperationConfigure:
		m := Matrix{Height: req.Height, Width: req.Width, Cells: req.Cells}
		if err := engine.Configure(m); err != nil {
			return EngineResponse{Error: err.Error()}
		}
		return EngineResponse{Success: true, Height: m.Height, Width: m.Width}
	case OperationEncrypt:
		out, err := engine.Encrypt()
		if err != nil {
			return EngineResponse{Error: err.Error()}
		}
		return EngineResponse{Success: true, Height: out.Height, Width: out.Width, Cells: out.Cells}
	default:
		return EngineResponse{Error: fmt.Sprintf("unknown operation %q", req.Operation)}
	}
}

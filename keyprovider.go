// keyprovider.go: Plugin-based external key sources for startup secrets.
//
// This module provides a plugin architecture powered by
// github.com/agilira/go-plugins for sourcing the master key and signing
// secret from external systems (cloud KMS, PKCS#11 devices, software
// vaults) instead of static configuration. Providers are consulted once at
// process start; the Core itself never talks to a provider after
// construction.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package crypto

import (
	"context"
	"fmt"
	"sync"
	"time"

	goerrors "github.com/agilira/go-errors"
	goplugins "github.com/agilira/go-plugins"
	"github.com/google/uuid"
)

// KeyRequest asks a provider for one named secret. RequestID correlates the
// request in provider-side audit logs.
type KeyRequest struct {
	RequestID string `json:"request_id"` // Correlation ID for auditing
	KeyID     string `json:"key_id"`     // Provider-side identifier of the secret
	Length    int    `json:"length"`     // Expected key length in bytes, 0 for provider default
}

// KeyResponse carries one secret back from a provider.
type KeyResponse struct {
	Key      []byte            `json:"key"`                // The raw key material
	KeyID    string            `json:"key_id"`             // Echo of the requested identifier
	Metadata map[string]string `json:"metadata,omitempty"` // Provider-specific metadata
}

// KeyProvider is the interface every external key source must implement.
// Implementations should fail loudly: a provider that cannot produce a key
// must return an error, never truncated or padded material.
type KeyProvider interface {
	// Name returns the provider name (e.g. "aws-kms", "pkcs11").
	Name() string

	// Initialize establishes the provider connection.
	Initialize(ctx context.Context, config map[string]interface{}) error

	// Close shuts the provider down and releases its resources.
	Close() error

	// IsHealthy reports whether the provider can currently serve keys.
	IsHealthy() bool

	// FetchKey retrieves one secret by identifier.
	FetchKey(ctx context.Context, req KeyRequest) (*KeyResponse, error)
}

// KeyProviderConfig configures the provider manager.
type KeyProviderConfig struct {
	DefaultProvider  string                            `json:"default_provider"`  // Provider used when no name is given
	ProviderConfigs  map[string]map[string]interface{} `json:"provider_configs"`  // Per-provider configuration
	OperationTimeout time.Duration                     `json:"operation_timeout"` // Timeout for provider operations
}

// KeyProviderManager manages registered key providers using the go-plugins
// framework.
type KeyProviderManager struct {
	mu              sync.RWMutex
	pluginManager   *goplugins.Manager[KeyRequest, KeyResponse]
	activeProviders map[string]KeyProvider
	defaultProvider string
	config          *KeyProviderConfig
}

// Common provider errors with codes for auditing.
var (
	ErrProviderNotFound  = goerrors.New("KEYPROV_001", "key provider not found")
	ErrProviderUnhealthy = goerrors.New("KEYPROV_002", "key provider failed health check")
	ErrProviderFetch     = goerrors.New("KEYPROV_003", "key provider fetch failed")
)

// NewKeyProviderManager creates a provider manager. A nil config gets a
// 10-second operation timeout.
func NewKeyProviderManager(config *KeyProviderConfig, pluginManager *goplugins.Manager[KeyRequest, KeyResponse]) *KeyProviderManager {
	if config == nil {
		config = &KeyProviderConfig{
			OperationTimeout: 10 * time.Second,
		}
	}

	return &KeyProviderManager{
		pluginManager:   pluginManager,
		activeProviders: make(map[string]KeyProvider),
		config:          config,
	}
}

// RegisterProvider initializes a provider with its configured settings and
// makes it available for key fetches. The first registered provider, or the
// one named in the config, becomes the default.
func (m *KeyProviderManager) RegisterProvider(name string, provider KeyProvider) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if provider == nil {
		return fmt.Errorf("provider cannot be nil")
	}

	ctx := context.Background()
	if timeout := m.config.OperationTimeout; timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	if err := provider.Initialize(ctx, m.config.ProviderConfigs[name]); err != nil {
		return fmt.Errorf("failed to initialize key provider %s: %w", name, err)
	}

	m.activeProviders[name] = provider

	if m.defaultProvider == "" || m.config.DefaultProvider == name {
		m.defaultProvider = name
	}

	return nil
}

// Provider returns a healthy provider by name, or the default provider when
// name is empty.
func (m *KeyProviderManager) Provider(name string) (KeyProvider, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if name == "" {
		name = m.defaultProvider
	}

	provider, exists := m.activeProviders[name]
	if !exists {
		return nil, fmt.Errorf("%w: provider %s", ErrProviderNotFound, name)
	}

	if !provider.IsHealthy() {
		return nil, fmt.Errorf("%w: provider %s", ErrProviderUnhealthy, name)
	}

	return provider, nil
}

// Close shuts down all registered providers.
func (m *KeyProviderManager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var errs []error
	for name, provider := range m.activeProviders {
		if err := provider.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close key provider %s: %w", name, err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("failed to close some key providers: %v", errs)
	}

	return nil
}

// fetch retrieves one secret through the named provider.
func (m *KeyProviderManager) fetch(ctx context.Context, providerName, keyID string, length int) ([]byte, error) {
	provider, err := m.Provider(providerName)
	if err != nil {
		return nil, err
	}

	resp, err := provider.FetchKey(ctx, KeyRequest{
		RequestID: uuid.NewString(),
		KeyID:     keyID,
		Length:    length,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: key %s: %w", ErrProviderFetch, keyID, err)
	}

	return resp.Key, nil
}

// LoadConfig fetches the master key and signing secret through the default
// provider and assembles a Config. Length validation still happens in
// NewCore, so a provider returning malformed material fails the startup
// rather than weakening it.
func (m *KeyProviderManager) LoadConfig(ctx context.Context, masterKeyID, signingSecretID string) (Config, error) {
	masterKey, err := m.fetch(ctx, "", masterKeyID, KeySize)
	if err != nil {
		return Config{}, err
	}

	signingSecret, err := m.fetch(ctx, "", signingSecretID, SigningSecretMinSize)
	if err != nil {
		return Config{}, err
	}

	return Config{MasterKey: masterKey, SigningSecret: signingSecret}, nil
}

package core

import (
	"context"
	"sync/atomic"
	"time"

	version "github.com/hashicorp/go-version"
	"go.uber.org/zap"
)

// Client calls the operations of one remote API described by a Config.
// It is safe for concurrent use.
type Client struct {
	config        *Config
	tls           atomic.Bool
	registry      *Registry
	resolver      *TemplateResolver
	transport     Doer
	codec         Codec
	auth          Authenticator
	logger        *zap.Logger
	metrics       *MetricsCollector
	serverVersion *version.Version
}

// NewClient validates a copy of config and builds a client from it.
// Operations declared in Endpoints and Schemas are registered up front.
func NewClient(config *Config) (*Client, error) {
	if config == nil {
		return nil, &ConfigError{Reason: "config is nil"}
	}
	cfg := config.clone()
	if err := cfg.Validate(
		WithHost,
		WithPathPrefix,
		WithSchemas,
		WithMinVersions,
		WithCodec,
		WithUserAgent,
		WithTimeout(time.Second*30),
		WithMaxConnections(10),
		WithLogger,
	); err != nil {
		return nil, err
	}

	codec, _ := codecByName(cfg.Codec)
	c := &Client{
		config:   cfg,
		resolver: NewTemplateResolver(cfg.Schemas, cfg.PathPrefix, cfg.StrictTemplates),
		codec:    codec,
		auth:     clientAuthenticator(cfg),
		logger:   cfg.Logger,
	}
	c.tls.Store(cfg.SSL)

	if cfg.ServerVersion != "" {
		c.serverVersion, _ = parseVersion(cfg.ServerVersion)
	}
	minVersions := make(map[string]*version.Version, len(cfg.MinVersions))
	for name, v := range cfg.MinVersions {
		minVersions[name], _ = parseVersion(v)
	}
	c.registry = newRegistry(c.dispatch, minVersions)
	for _, key := range cfg.Endpoints.Keys() {
		c.registry.Register(key.Method, key.Endpoint)
	}
	for key := range cfg.Schemas {
		c.registry.Register(key.Method, key.Endpoint)
	}

	if cfg.MetricsRegisterer != nil {
		c.metrics = NewMetricsCollector(cfg.MetricsRegisterer)
	}
	c.transport = cfg.Transport
	if c.transport == nil {
		c.transport = newHTTPClient(cfg)
	}
	if cfg.Debug {
		c.transport = newCurlDumper(c.transport, c.logger)
	}
	return c, nil
}

// NewClientWith builds a Config through a callback and then a client from it.
func NewClientWith(build func(config *Config)) (*Client, error) {
	config := &Config{}
	build(config)
	return NewClient(config)
}

// Call invokes the operation with the given name, e.g. "get_posts".
// Names not declared in the config are resolved from their method prefix.
func (c *Client) Call(ctx context.Context, name string, opts CallOptions) (*Response, error) {
	op, err := c.registry.Lookup(name)
	if err != nil {
		return nil, err
	}
	return op.Call(ctx, opts)
}

// Invoke calls (method, endpoint), registering it if needed.
func (c *Client) Invoke(ctx context.Context, method Method, endpoint string, opts CallOptions) (*Response, error) {
	return c.Register(method, endpoint).Call(ctx, opts)
}

func (c *Client) Get(ctx context.Context, endpoint string, opts CallOptions) (*Response, error) {
	return c.Invoke(ctx, MethodGet, endpoint, opts)
}

func (c *Client) Post(ctx context.Context, endpoint string, opts CallOptions) (*Response, error) {
	return c.Invoke(ctx, MethodPost, endpoint, opts)
}

func (c *Client) Put(ctx context.Context, endpoint string, opts CallOptions) (*Response, error) {
	return c.Invoke(ctx, MethodPut, endpoint, opts)
}

func (c *Client) Patch(ctx context.Context, endpoint string, opts CallOptions) (*Response, error) {
	return c.Invoke(ctx, MethodPatch, endpoint, opts)
}

func (c *Client) Delete(ctx context.Context, endpoint string, opts CallOptions) (*Response, error) {
	return c.Invoke(ctx, MethodDelete, endpoint, opts)
}

// Register returns the operation for (method, endpoint), creating it if needed.
func (c *Client) Register(method Method, endpoint string) *Operation {
	return c.registry.Register(method, endpoint)
}

// Operation resolves an operation by name without calling it.
func (c *Client) Operation(name string) (*Operation, error) {
	return c.registry.Lookup(name)
}

// Operations lists every registered operation.
func (c *Client) Operations() []OperationKey {
	return c.registry.Operations()
}

// ResolveURL returns the URL a call would be sent to and the params that
// would be forwarded with it, without sending anything.
func (c *Client) ResolveURL(method Method, endpoint string, opts CallOptions) (string, Params, error) {
	call, err := c.prepare(OperationKey{Method: method, Endpoint: endpoint}, opts)
	if err != nil {
		return "", nil, err
	}
	return call.url, call.params, nil
}

func (c *Client) EnableTLS() {
	c.tls.Store(true)
}

func (c *Client) DisableTLS() {
	c.tls.Store(false)
}

func (c *Client) TLSEnabled() bool {
	return c.tls.Load()
}

// Close releases idle connections held by the transport.
func (c *Client) Close() {
	if closer, ok := c.transport.(interface{ CloseIdleConnections() }); ok {
		closer.CloseIdleConnections()
	}
	_ = c.logger.Sync()
}

func (c *Client) context() context.Context {
	if c.config.Context != nil {
		return c.config.Context
	}
	return context.Background()
}

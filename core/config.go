package core

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"runtime"
	"sort"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// SchemaTable maps an operation to its URL template.
type SchemaTable map[OperationKey]string

// Set registers a template for (method, endpoint).
func (s SchemaTable) Set(method Method, endpoint, template string) {
	s[OperationKey{Method: method, Endpoint: endpoint}] = template
}

// Lookup returns the template for key, if any.
func (s SchemaTable) Lookup(key OperationKey) (string, bool) {
	tmpl, ok := s[key]
	return tmpl, ok
}

// Endpoints lists the endpoint names declared per method.
type Endpoints map[Method][]string

// Keys flattens the declaration into operation keys, sorted.
func (e Endpoints) Keys() []OperationKey {
	var keys []OperationKey
	for method, names := range e {
		for _, name := range names {
			keys = append(keys, OperationKey{Method: method, Endpoint: name})
		}
	}
	sortKeys(keys)
	return keys
}

func sortKeys(keys []OperationKey) {
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Method != keys[j].Method {
			return keys[i].Method < keys[j].Method
		}
		return keys[i].Endpoint < keys[j].Endpoint
	})
}

// Config describes a client: where the API lives, which operations it exposes
// and how their URLs are built.
type Config struct {
	Host       string            `yaml:"host"`        // Hostname of the remote API, without scheme.
	SSL        bool              `yaml:"ssl"`         // Use https instead of http.
	Port       uint16            `yaml:"port"`        // Optional port. Zero means the scheme default.
	PathPrefix string            `yaml:"path_prefix"` // Prefix for paths built without a schema template.
	Headers    map[string]string `yaml:"headers"`     // Headers sent with every request.
	Extension  string            `yaml:"extension"`   // Default extension appended to every path, e.g. "json".
	Options    Params            `yaml:"options"`     // Default call options merged under every call.
	Schemas    SchemaTable       `yaml:"schemas"`     // Per-operation URL templates.
	Endpoints  Endpoints         `yaml:"endpoints"`   // Operations registered up front.

	// MinVersions maps an operation name ("get_posts") to the first server
	// version that supports it. Checked against ServerVersion before dispatch.
	MinVersions   map[string]string `yaml:"min_versions"`
	ServerVersion string            `yaml:"server_version"`

	Username string `yaml:"username"`  // Client-level basic auth username. Per-call credentials win.
	Password string `yaml:"password"`  // Client-level basic auth password.
	ApiToken string `yaml:"api_token"` // Static bearer token used when no basic credentials apply.

	// StrictTemplates makes a template that references an unsupplied variable
	// fail with TemplateRenderError instead of rendering it empty.
	StrictTemplates bool `yaml:"strict_templates"`

	Codec          string         `yaml:"codec"`           // Request body codec: "json" (default) or "msgpack".
	Debug          bool           `yaml:"debug"`           // Log every outgoing request as a curl command.
	SkipTLSVerify  bool           `yaml:"skip_tls_verify"` // Accept any server certificate. Verification is on by default.
	Timeout        *time.Duration `yaml:"timeout"`         // HTTP client timeout. If nil, a default is applied by validators.
	MaxConnections int            `yaml:"max_connections"` // Maximum number of concurrent connections per host.
	UserAgent      string         `yaml:"user_agent"`      // Optional custom User-Agent header.

	// Context is an optional parent context for calls made without one.
	Context context.Context `yaml:"-"`
	// Logger receives request/response logs. If nil, one is built from TAKEOUT_LOG.
	Logger *zap.Logger `yaml:"-"`
	// MetricsRegisterer enables per-operation metrics when set.
	MetricsRegisterer prometheus.Registerer `yaml:"-"`
	// Transport overrides the HTTP collaborator. If nil, an *http.Client is built from this config.
	Transport Doer `yaml:"-"`

	// BeforeRequestFn is an optional hook executed before a request is sent.
	// Returning an error aborts the call.
	//
	// Parameters:
	//   - ctx: The request context.
	//   - r: The outgoing request, headers and auth already applied.
	//   - op: The operation being called.
	//   - body: The encoded request body, nil for query-only methods.
	BeforeRequestFn func(ctx context.Context, r *http.Request, op OperationKey, body io.Reader) error `yaml:"-"`

	// AfterRequestFn is an optional hook executed after a successful response
	// has been classified. It may return a replacement Response.
	AfterRequestFn func(ctx context.Context, op OperationKey, response *Response) (*Response, error) `yaml:"-"`
}

// ConfigFunc modifies or validates a Config.
type ConfigFunc func(*Config) error

// Validate applies the given validators in order and returns the first error.
func (config *Config) Validate(validators ...ConfigFunc) error {
	for _, fn := range validators {
		if err := fn(config); err != nil {
			return err
		}
	}
	return nil
}

// WithHost validates that Host is set and carries no scheme or path.
func WithHost(config *Config) error {
	host := strings.TrimSpace(config.Host)
	if host == "" {
		return &ConfigError{Reason: "host cannot be empty string"}
	}
	if strings.Contains(host, "://") {
		return &ConfigError{Reason: fmt.Sprintf("host %q must not contain a scheme, use SSL to select https", host)}
	}
	if strings.ContainsAny(host, "/?#") {
		return &ConfigError{Reason: fmt.Sprintf("host %q must not contain a path, use PathPrefix", host)}
	}
	config.Host = host
	return nil
}

// WithPathPrefix normalizes PathPrefix to "/prefix" (or empty).
func WithPathPrefix(config *Config) error {
	prefix := strings.Trim(strings.TrimSpace(config.PathPrefix), "/")
	if prefix == "" {
		config.PathPrefix = ""
	} else {
		config.PathPrefix = "/" + prefix
	}
	return nil
}

// WithSchemas validates every template in the schema table.
func WithSchemas(config *Config) error {
	for key, tmpl := range config.Schemas {
		if err := validateTemplate(tmpl); err != nil {
			return &ConfigError{Op: key.Name(), Reason: err.Error()}
		}
	}
	return nil
}

// WithMinVersions validates that every declared minimum version parses.
func WithMinVersions(config *Config) error {
	for name, v := range config.MinVersions {
		if _, err := parseVersion(v); err != nil {
			return &ConfigError{Op: name, Reason: fmt.Sprintf("invalid minimum version %q: %v", v, err)}
		}
	}
	if config.ServerVersion != "" {
		if _, err := parseVersion(config.ServerVersion); err != nil {
			return &ConfigError{Reason: fmt.Sprintf("invalid server version %q: %v", config.ServerVersion, err)}
		}
	}
	return nil
}

// WithCodec validates the configured request codec.
func WithCodec(config *Config) error {
	if _, err := codecByName(config.Codec); err != nil {
		return &ConfigError{Reason: err.Error()}
	}
	return nil
}

// WithTimeout returns a ConfigFunc that sets a default timeout if none is provided.
func WithTimeout(timeout time.Duration) ConfigFunc {
	return func(config *Config) error {
		if config.Timeout == nil {
			config.Timeout = &timeout
		}
		return nil
	}
}

// WithMaxConnections returns a ConfigFunc that sets the maximum number of connections
// if not explicitly provided.
func WithMaxConnections(maxConnections int) ConfigFunc {
	return func(config *Config) error {
		if config.MaxConnections == 0 {
			config.MaxConnections = maxConnections
		}
		return nil
	}
}

// WithUserAgent sets a default User-Agent header if none is provided in the config.
func WithUserAgent(config *Config) error {
	if config.UserAgent == "" {
		config.UserAgent = fmt.Sprintf(
			"%s,os:%s,arch:%s",
			fmt.Sprintf("go-takeout-client-%s", ClientVersion()),
			runtime.GOOS,
			runtime.GOARCH,
		)
	}
	return nil
}

// WithLogger installs the environment-driven logger when none is configured.
func WithLogger(config *Config) error {
	if config.Logger == nil {
		logger, err := NewLoggerFromEnv()
		if err != nil {
			return err
		}
		config.Logger = logger
	}
	return nil
}

// clone returns a deep copy of the maps the client reads per call, so that
// later changes to the caller's Config cannot leak into a running client.
func (config *Config) clone() *Config {
	out := *config
	out.Headers = make(map[string]string, len(config.Headers))
	for k, v := range config.Headers {
		out.Headers[k] = v
	}
	out.Options = config.Options.Copy()
	out.Schemas = make(SchemaTable, len(config.Schemas))
	for k, v := range config.Schemas {
		out.Schemas[k] = v
	}
	out.Endpoints = make(Endpoints, len(config.Endpoints))
	for k, v := range config.Endpoints {
		out.Endpoints[k] = append([]string(nil), v...)
	}
	out.MinVersions = make(map[string]string, len(config.MinVersions))
	for k, v := range config.MinVersions {
		out.MinVersions[k] = v
	}
	return &out
}

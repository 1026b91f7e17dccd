package takeout

import (
	"github.com/vast-data/go-takeout-client/core"
)

type (
	Config          = core.Config
	ConfigFunc      = core.ConfigFunc
	Client          = core.Client
	CallOptions     = core.CallOptions
	BasicAuth       = core.BasicAuth
	Params          = core.Params
	Response        = core.Response
	Renderable      = core.Renderable
	Method          = core.Method
	OperationKey    = core.OperationKey
	Operation       = core.Operation
	SchemaTable     = core.SchemaTable
	Endpoints       = core.Endpoints
	EndpointFailure = core.EndpointFailure
	ConfigError     = core.ConfigError
	TemplateError   = core.TemplateRenderError
)

const (
	MethodGet    = core.MethodGet
	MethodPost   = core.MethodPost
	MethodPut    = core.MethodPut
	MethodPatch  = core.MethodPatch
	MethodDelete = core.MethodDelete
)

var (
	ErrConfig            = core.ErrConfig
	ErrTemplateRender    = core.ErrTemplateRender
	ErrNotFound          = core.ErrNotFound
	ErrServerFailure     = core.ErrServerFailure
	ErrRedirectUnhandled = core.ErrRedirectUnhandled
)

func NewClient(config *Config) (*Client, error) {
	return core.NewClient(config)
}

func NewClientWith(build func(config *Config)) (*Client, error) {
	return core.NewClientWith(build)
}

// LoadConfig reads a YAML client description from path.
func LoadConfig(path string) (*Config, error) {
	return core.LoadConfig(path)
}

func NewCallOptions(params Params) CallOptions {
	return core.NewCallOptions(params)
}

func IsNotFound(err error) bool {
	return core.IsNotFound(err)
}

func IsEndpointFailure(err error) bool {
	return core.IsEndpointFailure(err)
}

func IsConfigError(err error) bool {
	return core.IsConfigError(err)
}

func IgnoreStatusCodes(err error, codes ...int) error {
	return core.IgnoreStatusCodes(err, codes...)
}

func ExpectStatusCodes(err error, codes ...int) bool {
	return core.ExpectStatusCodes(err, codes...)
}

func ClientVersion() string {
	return core.ClientVersion()
}

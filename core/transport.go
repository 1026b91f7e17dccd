package core

import (
	"crypto/tls"
	"net/http"

	"go.uber.org/zap"
	"moul.io/http2curl"
)

// Doer executes HTTP requests. *http.Client satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// newHTTPClient builds the default transport collaborator. Redirects are
// returned to the caller instead of being followed.
func newHTTPClient(config *Config) *http.Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: config.SkipTLSVerify}
	transport.MaxConnsPerHost = config.MaxConnections
	client := &http.Client{
		Transport: transport,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
	if config.Timeout != nil {
		client.Timeout = *config.Timeout
		transport.IdleConnTimeout = *config.Timeout
	}
	return client
}

// curlDumper logs every request as an equivalent curl command before
// handing it to the wrapped Doer.
type curlDumper struct {
	impl   Doer
	logger *zap.Logger
}

func newCurlDumper(impl Doer, logger *zap.Logger) *curlDumper {
	return &curlDumper{impl: impl, logger: logger}
}

func (d *curlDumper) Do(req *http.Request) (*http.Response, error) {
	// GetCurlCommand restores req.Body after reading it.
	curl, err := http2curl.GetCurlCommand(req)
	if err != nil {
		d.logger.Warn("failed to render curl command", zap.String("url", req.URL.String()), zap.Error(err))
	} else {
		d.logger.Info("http request", zap.String("curl", curl.String()))
	}
	return d.impl.Do(req)
}

// CloseIdleConnections forwards to the wrapped client when it supports it.
func (d *curlDumper) CloseIdleConnections() {
	if c, ok := d.impl.(interface{ CloseIdleConnections() }); ok {
		c.CloseIdleConnections()
	}
}

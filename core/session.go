package core

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// preparedCall is a fully resolved request: everything the transport needs.
type preparedCall struct {
	method  Method
	url     string
	params  Params
	headers map[string]string
	auth    *BasicAuth
}

// prepare merges configuration layers and call options, resolves the path
// and composes the final URL. It performs no I/O and mutates nothing shared.
func (c *Client) prepare(key OperationKey, opts CallOptions) (*preparedCall, error) {
	state := mergeCall(c.config, opts)
	path, remaining, err := c.resolver.Resolve(key, state)
	if err != nil {
		return nil, err
	}
	requestURL := c.composeURL(path)
	if !key.Method.hasBody() && len(remaining) > 0 {
		requestURL.RawQuery = remaining.ToQuery()
	}
	return &preparedCall{
		method:  key.Method,
		url:     requestURL.String(),
		params:  remaining,
		headers: state.headers,
		auth:    state.auth,
	}, nil
}

// composeURL builds scheme://host[:port]/path. The TLS flag is read once.
func (c *Client) composeURL(path string) *url.URL {
	scheme := "http"
	if c.tls.Load() {
		scheme = "https"
	}
	host := c.config.Host
	if c.config.Port != 0 {
		host = net.JoinHostPort(host, strconv.Itoa(int(c.config.Port)))
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	u := &url.URL{Scheme: scheme, Host: host}
	if unescaped, err := url.PathUnescape(path); err == nil {
		u.Path = unescaped
		u.RawPath = path
	} else {
		u.Path = path
	}
	return u
}

// dispatch runs the full pipeline for one call of op.
func (c *Client) dispatch(ctx context.Context, op *Operation, opts CallOptions) (*Response, error) {
	if ctx == nil {
		ctx = c.context()
	}
	if err := checkVersionCompat(op, c.serverVersion); err != nil {
		return nil, err
	}
	call, err := c.prepare(op.Key, opts)
	if err != nil {
		return nil, err
	}

	done := c.metrics.start(op)
	response, err := c.doRequest(ctx, op, call)
	if err != nil {
		var failure *EndpointFailure
		if errors.As(err, &failure) {
			done(outcomeOfFailure(failure), failure.StatusCode)
		} else {
			done(OutcomeFailure, 0)
		}
		failureLog(c.logger, op, err)
		return nil, err
	}
	done(OutcomeSuccess, response.StatusCode)
	return response, nil
}

// doRequest creates the HTTP request, executes it and classifies the result.
func (c *Client) doRequest(ctx context.Context, op *Operation, call *preparedCall) (*Response, error) {
	var (
		body        []byte
		requestData io.Reader
		err         error
	)
	if call.method.hasBody() && len(call.params) > 0 {
		if body, err = c.codec.Marshal(call.params); err != nil {
			return nil, fmt.Errorf("failed to encode request body for %s: %w", op.Name, err)
		}
		requestData = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, string(call.method), call.url, requestData)
	if err != nil {
		return nil, fmt.Errorf("failed to build request for %s: %w", op.Name, err)
	}
	c.setupHeaders(req, call, body != nil)

	if err = c.doBeforeRequest(ctx, req, op, body); err != nil {
		return nil, err
	}
	response, err := c.transport.Do(req)
	if err != nil {
		if response != nil && response.Body != nil {
			response.Body.Close()
		}
		return nil, transportFailure(call.method, call.url, err)
	}
	result, err := classifyResponse(call.method, call.url, response)
	if err != nil {
		return nil, err
	}
	return c.doAfterRequest(ctx, op, result)
}

// setupHeaders applies merged headers, then fills defaults that are still
// absent, then authentication.
func (c *Client) setupHeaders(req *http.Request, call *preparedCall, hasBody bool) {
	for key, value := range call.headers {
		req.Header.Set(key, value)
	}
	if req.Header.Get(HeaderAccept) == "" {
		req.Header.Set(HeaderAccept, ContentTypeJSON)
	}
	if hasBody && req.Header.Get(HeaderContentType) == "" {
		req.Header.Set(HeaderContentType, c.codec.ContentType())
	}
	if req.Header.Get(HeaderUserAgent) == "" {
		req.Header.Set(HeaderUserAgent, c.config.UserAgent)
	}
	if auth := c.authenticatorFor(call.auth); auth != nil {
		auth.setAuthHeader(req.Header)
	}
}

func outcomeOfFailure(failure *EndpointFailure) Outcome {
	switch failure.Kind {
	case FailureNotFound:
		return OutcomeMissing
	case FailureRedirect:
		return OutcomeRedirect
	}
	return OutcomeFailure
}

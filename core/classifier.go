package core

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// Outcome is the class of a completed transport attempt.
type Outcome int

const (
	OutcomeSuccess Outcome = iota
	OutcomeRedirect
	OutcomeMissing
	OutcomeFailure
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeRedirect:
		return "redirect"
	case OutcomeMissing:
		return "missing"
	default:
		return "failure"
	}
}

// classifyStatus maps a status code to an outcome. Redirects are terminal.
func classifyStatus(code int) Outcome {
	switch {
	case code >= 200 && code <= 299:
		return OutcomeSuccess
	case code >= 300 && code <= 399:
		return OutcomeRedirect
	case code >= 400 && code <= 499:
		return OutcomeMissing
	default:
		return OutcomeFailure
	}
}

// ParseHeaderBlock parses a raw "Key: Value\r\n" header block. The first line
// is the status line and is discarded; lines without ": " are skipped. A
// repeated header keeps its last value.
func ParseHeaderBlock(raw string) map[string]string {
	headers := make(map[string]string)
	lines := strings.Split(strings.ReplaceAll(raw, "\r\n", "\n"), "\n")
	if len(lines) > 0 {
		lines = lines[1:]
	}
	for _, line := range lines {
		key, value, found := strings.Cut(line, ": ")
		if !found || key == "" {
			continue
		}
		headers[key] = value
	}
	return headers
}

// rawHeaderBlock renders the status line and headers of response the way
// they appear on the wire.
func rawHeaderBlock(response *http.Response) string {
	var b strings.Builder
	proto := response.Proto
	if proto == "" {
		proto = "HTTP/1.1"
	}
	status := response.Status
	if status == "" {
		status = fmt.Sprintf("%d %s", response.StatusCode, http.StatusText(response.StatusCode))
	}
	b.WriteString(proto + " " + status + "\r\n")
	_ = response.Header.Write(&b)
	return b.String()
}

// classifyResponse turns a transport response into a Response or an
// EndpointFailure. The response body is always consumed and closed.
func classifyResponse(method Method, requestURL string, response *http.Response) (*Response, error) {
	defer response.Body.Close()
	body, readErr := io.ReadAll(response.Body)

	outcome := classifyStatus(response.StatusCode)
	if outcome != OutcomeSuccess {
		return nil, newEndpointFailure(method, requestURL, response.StatusCode, body, outcome, readErr)
	}
	if readErr != nil {
		return nil, fmt.Errorf("failed to read response body from %s: %w", requestURL, readErr)
	}

	var decoded any
	if len(bytes.TrimSpace(body)) > 0 && response.StatusCode != http.StatusNoContent {
		codec := codecForContentType(response.Header.Get(HeaderContentType))
		var err error
		if decoded, err = codec.Unmarshal(body); err != nil {
			return nil, fmt.Errorf("failed to decode %s response from %s: %w", codec.ContentType(), requestURL, err)
		}
	}
	return &Response{
		Headers:    ParseHeaderBlock(rawHeaderBlock(response)),
		Body:       decoded,
		StatusCode: response.StatusCode,
		Raw:        response,
	}, nil
}

func newEndpointFailure(method Method, requestURL string, code int, body []byte, outcome Outcome, cause error) *EndpointFailure {
	kind := FailureServer
	switch outcome {
	case OutcomeMissing:
		kind = FailureNotFound
	case OutcomeRedirect:
		kind = FailureRedirect
	}
	return &EndpointFailure{
		Method:     method,
		URL:        requestURL,
		StatusCode: code,
		Body:       string(body),
		Kind:       kind,
		Err:        cause,
	}
}

// transportFailure is the failure for an attempt that produced no response.
func transportFailure(method Method, requestURL string, cause error) *EndpointFailure {
	return &EndpointFailure{
		Method: method,
		URL:    requestURL,
		Kind:   FailureServer,
		Err:    cause,
	}
}

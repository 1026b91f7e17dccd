package core

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ######################################################
//
//	REQUEST/RESPONSE INTERCEPTORS
//
// ######################################################

// doBeforeRequest logs the outgoing request and runs the user hook.
func (c *Client) doBeforeRequest(ctx context.Context, r *http.Request, op *Operation, body []byte) error {
	beforeRequestLog(c.logger, op, r, body)
	if c.config.BeforeRequestFn == nil {
		return nil
	}
	if body == nil {
		return c.config.BeforeRequestFn(ctx, r, op.Key, nil)
	}
	return c.config.BeforeRequestFn(ctx, r, op.Key, bytes.NewReader(body))
}

// doAfterRequest logs the classified response and runs the user hook.
func (c *Client) doAfterRequest(ctx context.Context, op *Operation, response *Response) (*Response, error) {
	afterRequestLog(c.logger, op, response)
	if c.config.AfterRequestFn == nil {
		return response, nil
	}
	return c.config.AfterRequestFn(ctx, op.Key, response)
}

// ######################################################
//
//	REQUEST/RESPONSE LOGGING
//
// ######################################################

// beforeRequestLog logs method and URL; at debug level the compacted body is included.
func beforeRequestLog(logger *zap.Logger, op *Operation, r *http.Request, body []byte) {
	fields := []zap.Field{
		zap.String("operation", op.Name),
		zap.String("method", r.Method),
		zap.String("url", r.URL.String()),
	}
	if logger.Core().Enabled(zapcore.DebugLevel) && len(body) > 0 {
		var compact bytes.Buffer
		if err := json.Compact(&compact, body); err == nil {
			fields = append(fields, zap.String("body", compact.String()))
		} else {
			fields = append(fields, zap.Binary("body", body))
		}
		logger.Debug("http request start", fields...)
		return
	}
	logger.Info("http request start", fields...)
}

func afterRequestLog(logger *zap.Logger, op *Operation, response *Response) {
	fields := []zap.Field{
		zap.String("operation", op.Name),
		zap.Int("status_code", response.StatusCode),
	}
	switch body := response.Body.(type) {
	case map[string]any:
		fields = append(fields, zap.Int("attrs", len(body)))
	case []any:
		fields = append(fields, zap.Int("records", len(body)))
	}
	if logger.Core().Enabled(zapcore.DebugLevel) {
		logger.Debug("response", append(fields, zap.String("body", response.PrettyJson()))...)
		return
	}
	logger.Info("response", fields...)
}

func failureLog(logger *zap.Logger, op *Operation, err error) {
	logger.Warn("request failed", zap.String("operation", op.Name), zap.Error(err))
}

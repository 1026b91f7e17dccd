package core

import (
	"fmt"
	"net/http"
)

// BasicAuth carries basic authentication credentials for a call.
type BasicAuth struct {
	Username string
	Password string
}

// CallOptions are the per-call inputs of an operation.
//
// Precedence, lowest first: Config.Options, Params, then the typed fields.
type CallOptions struct {
	// Headers are merged over Config.Headers. Call headers win on collision.
	Headers map[string]string
	// ObjectID is appended to the fallback path and bound to {{objectId}} in templates.
	ObjectID any
	// Extension overrides Config.Extension for this call.
	Extension string
	// Auth enables basic authentication for this call.
	Auth *BasicAuth
	// Params are template variables and pass-through request parameters.
	Params Params
}

// NewCallOptions builds CallOptions from a plain map, moving reserved keys
// (headers, extension, objectId/object_id, username+password) into their
// typed fields.
func NewCallOptions(params Params) CallOptions {
	remaining := params.Copy()
	reserved := extractReserved(remaining)
	return CallOptions{
		Headers:   reserved.headers,
		ObjectID:  reserved.objectID,
		Extension: reserved.extension,
		Auth:      reserved.auth,
		Params:    remaining,
	}
}

// callState is the merged, per-call view of configuration and options.
// Every map in it is freshly allocated; nothing is shared with the client.
type callState struct {
	headers   map[string]string
	params    Params
	objectID  any
	extension string
	auth      *BasicAuth
}

type reservedOptions struct {
	headers   map[string]string
	objectID  any
	extension string
	auth      *BasicAuth
}

// extractReserved removes reserved keys from params and returns their values.
func extractReserved(params Params) reservedOptions {
	var out reservedOptions
	if raw, ok := params.pop(OptionHeaders); ok {
		out.headers = toStringMap(raw)
	}
	if raw, ok := params.pop(OptionExtension); ok && raw != nil {
		out.extension = fmt.Sprint(raw)
	}
	if raw, ok := params.pop(OptionObjectID2); ok && raw != nil {
		out.objectID = raw
	}
	if raw, ok := params.pop(OptionObjectID); ok && raw != nil {
		out.objectID = raw
	}
	user, hasUser := params[OptionUsername]
	pass, hasPass := params[OptionPassword]
	if hasUser && hasPass {
		params.Without(OptionUsername, OptionPassword)
		out.auth = &BasicAuth{Username: fmt.Sprint(user), Password: fmt.Sprint(pass)}
	}
	return out
}

// mergeCall layers configuration defaults, call params and typed call options
// into a new callState. config is only read.
func mergeCall(config *Config, opts CallOptions) *callState {
	params := config.Options.Copy()
	defaults := extractReserved(params)
	callParams := opts.Params.Copy()
	reserved := extractReserved(callParams)
	params.Update(callParams, true)

	state := &callState{
		headers:   mergeHeaders(config.Headers, defaults.headers, reserved.headers, opts.Headers),
		params:    params,
		objectID:  defaults.objectID,
		extension: defaults.extension,
		auth:      defaults.auth,
	}
	if reserved.objectID != nil {
		state.objectID = reserved.objectID
	}
	if reserved.extension != "" {
		state.extension = reserved.extension
	}
	if reserved.auth != nil {
		state.auth = reserved.auth
	}
	if opts.ObjectID != nil {
		state.objectID = opts.ObjectID
	}
	if opts.Extension != "" {
		state.extension = opts.Extension
	}
	if state.extension == "" {
		state.extension = config.Extension
	}
	if opts.Auth != nil {
		state.auth = opts.Auth
	}
	if state.auth == nil && config.Username != "" && config.Password != "" {
		state.auth = &BasicAuth{Username: config.Username, Password: config.Password}
	}
	return state
}

// mergeHeaders returns a new map with later layers overriding earlier ones.
func mergeHeaders(layers ...map[string]string) map[string]string {
	size := 0
	for _, layer := range layers {
		size += len(layer)
	}
	out := make(map[string]string, size)
	for _, layer := range layers {
		for k, v := range layer {
			out[k] = v
		}
	}
	return out
}

func toStringMap(raw any) map[string]string {
	switch h := raw.(type) {
	case map[string]string:
		return mergeHeaders(h)
	case map[string]any:
		out := make(map[string]string, len(h))
		for k, v := range h {
			out[k] = fmt.Sprint(v)
		}
		return out
	case Params:
		out := make(map[string]string, len(h))
		for k, v := range h {
			out[k] = fmt.Sprint(v)
		}
		return out
	case http.Header:
		out := make(map[string]string, len(h))
		for k := range h {
			out[k] = h.Get(k)
		}
		return out
	}
	return nil
}

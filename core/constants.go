package core

// HTTP-related constants for REST operations
// These constants provide type-safe header names, content types, and auth types

// HTTP Header Names
const (
	HeaderAccept        = "Accept"
	HeaderAuthorization = "Authorization"
	HeaderContentType   = "Content-Type"
	HeaderUserAgent     = "User-Agent"
)

// HTTP Content Types
const (
	ContentTypeJSON        = "application/json"
	ContentTypeMsgpack     = "application/msgpack"
	ContentTypeXMsgpack    = "application/x-msgpack"
	ContentTypeTextPlain   = "text/plain"
	ContentTypeOctetStream = "application/octet-stream"
)

// HTTP Authentication Types
const (
	AuthTypeBasic  = "Basic"
	AuthTypeBearer = "Bearer"
)

// Reserved call option keys. They are extracted from Params maps into
// CallOptions fields and never forwarded to the remote API.
const (
	OptionHeaders   = "headers"
	OptionExtension = "extension"
	OptionObjectID  = "objectId"
	OptionObjectID2 = "object_id"
	OptionUsername  = "username"
	OptionPassword  = "password"
)

// Implicit template variables.
const (
	TemplateVarEndpoint = "endpoint"
)

// Codec names accepted by Config.Codec.
const (
	CodecJSON    = "json"
	CodecMsgpack = "msgpack"
)

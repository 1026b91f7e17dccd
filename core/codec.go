package core

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime"
	"strings"

	"github.com/vmihailenco/msgpack/v5"
)

// Codec encodes request bodies and decodes response bodies.
type Codec interface {
	ContentType() string
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte) (any, error)
}

type JSONCodec struct{}

func (JSONCodec) ContentType() string { return ContentTypeJSON }

func (JSONCodec) Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

// Unmarshal decodes any JSON value. Numbers become float64, as with encoding/json.
func (JSONCodec) Unmarshal(data []byte) (any, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, nil
	}
	var out any
	if err := json.Unmarshal(trimmed, &out); err != nil {
		return nil, err
	}
	return out, nil
}

type MsgpackCodec struct{}

func (MsgpackCodec) ContentType() string { return ContentTypeMsgpack }

func (MsgpackCodec) Marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	enc.SetCustomStructTag("json")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Unmarshal decodes a msgpack payload. Maps decode as map[string]any and
// integers as int64/uint64.
func (MsgpackCodec) Unmarshal(data []byte) (any, error) {
	if len(data) == 0 {
		return nil, nil
	}
	dec := msgpack.NewDecoder(bytes.NewReader(data))
	dec.UseLooseInterfaceDecoding(true)
	out, err := dec.DecodeInterface()
	if err != nil {
		return nil, err
	}
	return out, nil
}

// codecByName returns the request codec selected in the config.
func codecByName(name string) (Codec, error) {
	switch strings.ToLower(name) {
	case "", CodecJSON:
		return JSONCodec{}, nil
	case CodecMsgpack:
		return MsgpackCodec{}, nil
	}
	return nil, fmt.Errorf("unknown codec %q", name)
}

// codecForContentType picks the decoder for a response Content-Type header.
// Anything that is not msgpack is decoded as JSON.
func codecForContentType(contentType string) Codec {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		mediaType = strings.ToLower(strings.TrimSpace(contentType))
	}
	switch mediaType {
	case ContentTypeMsgpack, ContentTypeXMsgpack:
		return MsgpackCodec{}
	}
	return JSONCodec{}
}

/*
Package takeout builds HTTP API clients from configuration.

A client is described by a host, the operations it exposes (an HTTP method
paired with a logical endpoint name) and optional per-operation URL templates
such as "/{{endpoint}}/{{category}}". Operations are called by name, for
example "get_posts" or "delete_comments", and return a Response or a typed
error. Names that were not declared up front are resolved from their method
prefix on first use.

The main entry point is NewClient, which takes a Config. Configs can also be
read from YAML with LoadConfig, or built from an OpenAPI document with the
openapi_schema package.
*/
package takeout

package core

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadConfig reads a YAML client description from path.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	config, err := ParseConfig(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return config, nil
}

// ParseConfig decodes a YAML client description:
//
//	host: api.example.com
//	ssl: true
//	extension: json
//	endpoints:
//	  get: [posts, comments]
//	  post: posts
//	schemas:
//	  get:
//	    posts: "/{{endpoint}}/{{category}}"
func ParseConfig(data []byte) (*Config, error) {
	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, err
	}
	return &config, nil
}

// UnmarshalYAML decodes the nested {method: {endpoint: template}} form.
func (s *SchemaTable) UnmarshalYAML(node *yaml.Node) error {
	var raw map[string]map[string]string
	if err := node.Decode(&raw); err != nil {
		return err
	}
	table := make(SchemaTable)
	for verb, templates := range raw {
		method, ok := ParseMethod(verb)
		if !ok {
			return fmt.Errorf("schemas: unknown http method %q", verb)
		}
		for endpoint, tmpl := range templates {
			table.Set(method, endpoint, tmpl)
		}
	}
	*s = table
	return nil
}

// MarshalYAML encodes the table in the same nested form it is read from.
func (s SchemaTable) MarshalYAML() (any, error) {
	out := make(map[string]map[string]string)
	for key, tmpl := range s {
		verb := key.Method.Lower()
		if out[verb] == nil {
			out[verb] = make(map[string]string)
		}
		out[verb][key.Endpoint] = tmpl
	}
	return out, nil
}

// UnmarshalYAML accepts either a single endpoint name or a list per method.
func (e *Endpoints) UnmarshalYAML(node *yaml.Node) error {
	var raw map[string]yaml.Node
	if err := node.Decode(&raw); err != nil {
		return err
	}
	endpoints := make(Endpoints)
	for verb, value := range raw {
		method, ok := ParseMethod(verb)
		if !ok {
			return fmt.Errorf("endpoints: unknown http method %q", verb)
		}
		switch value.Kind {
		case yaml.ScalarNode:
			endpoints[method] = append(endpoints[method], value.Value)
		case yaml.SequenceNode:
			var names []string
			if err := value.Decode(&names); err != nil {
				return fmt.Errorf("endpoints.%s: %w", verb, err)
			}
			endpoints[method] = append(endpoints[method], names...)
		default:
			return fmt.Errorf("endpoints.%s: expected a name or a list of names", verb)
		}
	}
	*e = endpoints
	return nil
}

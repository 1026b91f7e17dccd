package openapi_schema

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
)

// Document is a parsed OpenAPI 3 description.
type Document struct {
	doc *openapi3.T
}

// Load reads an OpenAPI document from path. JSON and YAML files are parsed
// directly; ".tar.gz" and ".tgz" archives are unpacked with LoadArchive.
func Load(path string) (*Document, error) {
	if isArchive(path) {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read archive %s: %w", path, err)
		}
		return LoadArchive(data)
	}
	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromFile(path)
	if err != nil {
		return nil, fmt.Errorf("load openapi document %s: %w", path, err)
	}
	return &Document{doc: doc}, nil
}

// LoadFromData parses an OpenAPI document held in memory, JSON or YAML.
func LoadFromData(data []byte) (*Document, error) {
	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromData(data)
	if err != nil {
		return nil, fmt.Errorf("parse openapi document: %w", err)
	}
	return &Document{doc: doc}, nil
}

// LoadArchive reads the first JSON or YAML file found in a gzip-compressed
// tar archive and parses it as an OpenAPI document.
func LoadArchive(data []byte) (*Document, error) {
	gzr, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("gzip reader: %w", err)
	}
	defer gzr.Close()

	tr := tar.NewReader(gzr)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return nil, fmt.Errorf("no openapi document found in archive")
		}
		if err != nil {
			return nil, fmt.Errorf("tar read error: %w", err)
		}
		if hdr.Typeflag != tar.TypeReg || !isDocument(hdr.Name) {
			continue
		}
		content, err := io.ReadAll(tr)
		if err != nil {
			return nil, fmt.Errorf("read %s from archive: %w", hdr.Name, err)
		}
		return LoadFromData(content)
	}
}

// Validate checks the document against the OpenAPI 3 rules.
func (d *Document) Validate(ctx context.Context) error {
	return d.doc.Validate(ctx)
}

// Raw exposes the underlying kin-openapi document.
func (d *Document) Raw() *openapi3.T {
	return d.doc
}

func isArchive(path string) bool {
	return strings.HasSuffix(path, ".tar.gz") || strings.HasSuffix(path, ".tgz")
}

func isDocument(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".json", ".yaml", ".yml":
		return true
	}
	return false
}

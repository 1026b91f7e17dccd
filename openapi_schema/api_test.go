package openapi_schema

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/vast-data/go-takeout-client/core"
	"github.com/vast-data/go-takeout-client/internal/fakeapi"
)

const blogAPI = `
openapi: 3.0.3
info:
  title: Blog
  version: 1.0.0
servers:
  - url: https://{region}.blog.test:8443/api/v1/
    variables:
      region:
        default: eu
paths:
  /posts:
    get:
      summary: List posts
      parameters:
        - name: userId
          in: query
          schema:
            type: integer
        - name: title
          in: query
          schema:
            type: string
        - name: tags
          in: query
          schema:
            type: array
            items:
              type: string
      responses:
        "200":
          description: ok
    post:
      responses:
        "200":
          description: ok
  /posts/{id}:
    parameters:
      - name: id
        in: path
        required: true
        schema:
          type: integer
    get:
      responses:
        "200":
          description: ok
    patch:
      x-min-version: 2.1.0
      responses:
        "200":
          description: ok
    delete:
      responses:
        "200":
          description: ok
  /posts/{postId}/comments:
    get:
      parameters:
        - name: postId
          in: path
          required: true
          schema:
            type: integer
      responses:
        "200":
          description: ok
  /user-groups:
    get:
      responses:
        "200":
          description: ok
  /archive/{year}/{month}/:
    get:
      parameters:
        - name: year
          in: path
          required: true
          schema:
            type: integer
        - name: month
          in: path
          required: true
          schema:
            type: integer
      responses:
        "200":
          description: ok
`

func loadBlog(t *testing.T) *Document {
	t.Helper()
	doc, err := LoadFromData([]byte(blogAPI))
	require.NoError(t, err)
	require.NoError(t, doc.Validate(context.Background()))
	return doc
}

func TestServer(t *testing.T) {
	info, err := loadBlog(t).Server()
	require.NoError(t, err)
	require.Equal(t, ServerInfo{Host: "eu.blog.test", SSL: true, Port: 8443, BasePath: "/api/v1"}, info)

	doc, err := LoadFromData([]byte("openapi: 3.0.3\ninfo: {title: t, version: '1'}\nservers: [{url: /v2}]\npaths: {}\n"))
	require.NoError(t, err)
	info, err = doc.Server()
	require.NoError(t, err)
	require.Equal(t, ServerInfo{BasePath: "/v2"}, info)
}

func TestCatalog(t *testing.T) {
	catalog, err := loadBlog(t).Catalog()
	require.NoError(t, err)

	require.Equal(t, core.Endpoints{
		core.MethodGet:    {"archive", "posts", "posts_comments", "user_groups"},
		core.MethodPost:   {"posts"},
		core.MethodPatch:  {"posts"},
		core.MethodDelete: {"posts"},
	}, catalog.Endpoints)

	require.Equal(t, core.SchemaTable{
		{Method: core.MethodGet, Endpoint: "archive"}:        "/api/v1/archive/{{year}}/{{month}}/",
		{Method: core.MethodGet, Endpoint: "posts_comments"}: "/api/v1/posts/{{postId}}/comments",
		{Method: core.MethodGet, Endpoint: "user_groups"}:    "/api/v1/user-groups",
	}, catalog.Schemas)

	require.Equal(t, map[string]string{"patch_posts": "2.1.0"}, catalog.MinVersions)
	require.Empty(t, catalog.Conflicts)

	var list *Route
	for i := range catalog.Routes {
		if catalog.Routes[i].Path == "/posts" && catalog.Routes[i].Key.Method == core.MethodGet {
			list = &catalog.Routes[i]
		}
	}
	require.NotNil(t, list)
	require.Equal(t, "List posts", list.Summary)
	require.Equal(t, map[string]string{"userId": "integer", "title": "string", "tags": "array"}, list.Query)
}

func TestCatalog_Conflicts(t *testing.T) {
	doc, err := LoadFromData([]byte(`
openapi: 3.0.3
info: {title: t, version: "1"}
paths:
  /a/{x}/b:
    get:
      responses: {"200": {description: ok}}
  /a/b/{y}/:
    get:
      responses: {"200": {description: ok}}
  /items:
    get:
      responses: {"200": {description: ok}}
  /items/{id}/:
    get:
      responses: {"200": {description: ok}}
  /{id}:
    get:
      responses: {"200": {description: ok}}
`))
	require.NoError(t, err)

	catalog, err := doc.Catalog()
	require.NoError(t, err)
	require.Equal(t, core.SchemaTable{
		{Method: core.MethodGet, Endpoint: "a_b"}: "/a/b/{{y}}/",
	}, catalog.Schemas)
	require.Equal(t, []string{
		"/{id}: no literal segment",
		"GET a_b: /a/{x}/b ignored",
		"GET items: /items/{id}/ ignored",
	}, catalog.Conflicts)
}

func TestEndpointFor(t *testing.T) {
	tests := []struct {
		path     string
		endpoint string
		direct   bool
	}{
		{"/posts", "posts", true},
		{"/posts/{id}", "posts", true},
		{"/posts/{slug}", "posts", true},
		{"/posts/", "posts", false},
		{"/Posts", "posts", false},
		{"/user-groups", "user_groups", false},
		{"/posts/{id}/comments", "posts_comments", false},
		{"/{tenant}/posts", "posts", false},
		{"/", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			endpoint, direct := endpointFor(tt.path)
			require.Equal(t, tt.endpoint, endpoint)
			require.Equal(t, tt.direct, direct)
		})
	}
}

func TestTemplateFor(t *testing.T) {
	require.Equal(t, "/posts/{{objectId}}/comments", templateFor("/posts/{id}/comments"))
	require.Equal(t, "/users/{{user_id}}/", templateFor("/users/{user-id}/"))
	require.Equal(t, "/", templateFor("/"))
}

func TestApply(t *testing.T) {
	catalog, err := loadBlog(t).Catalog()
	require.NoError(t, err)

	config := &core.Config{}
	catalog.Apply(config)
	require.Equal(t, "eu.blog.test", config.Host)
	require.True(t, config.SSL)
	require.Equal(t, uint16(8443), config.Port)
	require.Equal(t, "/api/v1", config.PathPrefix)

	config = &core.Config{
		Host:        "test.com",
		Endpoints:   core.Endpoints{core.MethodGet: {"posts"}},
		Schemas:     core.SchemaTable{{Method: core.MethodGet, Endpoint: "user_groups"}: "/groups"},
		MinVersions: map[string]string{"patch_posts": "3.0.0"},
	}
	catalog.Apply(config)
	require.Equal(t, "test.com", config.Host)
	require.False(t, config.SSL)
	require.Zero(t, config.Port)
	require.Equal(t, []string{"posts", "archive", "posts_comments", "user_groups"}, config.Endpoints[core.MethodGet])
	require.Equal(t, "/groups", config.Schemas[core.OperationKey{Method: core.MethodGet, Endpoint: "user_groups"}])
	require.Equal(t, "3.0.0", config.MinVersions["patch_posts"])
}

func TestCatalogDrivesClient(t *testing.T) {
	catalog, err := loadBlog(t).Catalog()
	require.NoError(t, err)

	fake := fakeapi.New()
	config := &core.Config{
		Host:          "test.com",
		ServerVersion: "2.0.0",
		Transport:     fake,
		Logger:        zap.NewNop(),
	}
	catalog.Apply(config)

	client, err := core.NewClient(config)
	require.NoError(t, err)
	defer client.Close()

	url, _, err := client.ResolveURL(core.MethodGet, "posts_comments", core.NewCallOptions(core.Params{"postId": 5}))
	require.NoError(t, err)
	require.Equal(t, "http://test.com/api/v1/posts/5/comments", url)

	url, _, err = client.ResolveURL(core.MethodGet, "posts", core.NewCallOptions(core.Params{"objectId": 1}))
	require.NoError(t, err)
	require.Equal(t, "http://test.com/api/v1/posts/1", url)

	_, err = client.Call(context.Background(), "patch_posts", core.NewCallOptions(core.Params{"objectId": 1}))
	require.Error(t, err)
	require.True(t, core.IsConfigError(err))
	require.Zero(t, fake.Requests())
}

func TestQueryParameters(t *testing.T) {
	doc := loadBlog(t)

	params, err := doc.QueryParameters("get", "posts")
	require.NoError(t, err)
	require.Len(t, params, 3)

	params, err = doc.QueryParameters("DELETE", "posts/")
	require.NoError(t, err)
	require.Empty(t, params)

	names, err := doc.SearchableQueryParams("/posts/")
	require.NoError(t, err)
	require.Equal(t, []string{"title", "userId"}, names)

	_, err = doc.Resource("missing")
	require.ErrorContains(t, err, `path "missing" not found`)

	item, err := doc.Resource("archive/{year}/{month}")
	require.NoError(t, err)
	require.NotNil(t, item.Get)
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()

	plain := filepath.Join(dir, "blog.yaml")
	require.NoError(t, os.WriteFile(plain, []byte(blogAPI), 0o600))
	doc, err := Load(plain)
	require.NoError(t, err)
	require.Len(t, doc.Raw().Paths.Map(), 5)

	archive := filepath.Join(dir, "api.tar.gz")
	require.NoError(t, os.WriteFile(archive, tarball(t, map[string]string{
		"README.txt":    "not a document",
		"api/blog.yaml": blogAPI,
	}), 0o600))
	doc, err = Load(archive)
	require.NoError(t, err)
	require.Len(t, doc.Raw().Paths.Map(), 5)

	_, err = LoadArchive(tarball(t, map[string]string{"README.txt": "nothing"}))
	require.ErrorContains(t, err, "no openapi document found")

	_, err = LoadArchive([]byte("plain bytes"))
	require.ErrorContains(t, err, "gzip reader")

	_, err = Load(filepath.Join(dir, "absent.json"))
	require.Error(t, err)
}

// tarball builds a gzip-compressed tar archive. Files are written in the
// order README.txt first so the reader has to skip non-documents.
func tarball(t *testing.T, files map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	gzw := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gzw)

	names := []string{"README.txt"}
	for name := range files {
		if name != "README.txt" {
			names = append(names, name)
		}
	}
	for _, name := range names {
		content, ok := files[name]
		if !ok {
			continue
		}
		require.NoError(t, tw.WriteHeader(&tar.Header{
			Name:     name,
			Mode:     0o600,
			Size:     int64(len(content)),
			Typeflag: tar.TypeReg,
		}))
		_, err := tw.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, tw.Close())
	require.NoError(t, gzw.Close())
	return buf.Bytes()
}

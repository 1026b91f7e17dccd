// Package fakeapi is an in-process test double of a small JSON API.
//
// Routes:
//
//	GET  /posts, /posts.json        200 list of posts
//	POST /posts                     200 single post
//	PUT, DELETE /posts              404
//	GET, PUT, PATCH, DELETE /posts/1 200 single post
//	POST /posts/1                   404
//	*    /fake_failure              500
//	*    /fake_missing              404
//	*    /fake_redirect             301 to /posts
//	*    /echo/*path                200 description of the received request
package fakeapi

import (
	"embed"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"

	"github.com/gin-gonic/gin"
)

//go:embed fixtures/*.json
var fixtures embed.FS

// Echo is the body returned by /echo routes.
type Echo struct {
	Method  string            `json:"method"`
	Path    string            `json:"path"`
	RawPath string            `json:"raw_path"`
	Query   map[string]string `json:"query"`
	Headers map[string]string `json:"headers"`
	Body    string            `json:"body"`
}

// Server serves the fake API. It can be mounted on an httptest.Server through
// Handler or used directly as an HTTP transport through Do.
type Server struct {
	engine   *gin.Engine
	requests atomic.Int64
}

func New() *Server {
	gin.SetMode(gin.TestMode)
	s := &Server{engine: gin.New()}
	r := s.engine
	r.Use(func(c *gin.Context) {
		s.requests.Add(1)
		c.Next()
	})
	r.Use(gin.Recovery())

	r.GET("/posts", fixture(http.StatusOK, "posts.json"))
	r.GET("/posts.json", fixture(http.StatusOK, "posts.json"))
	r.POST("/posts", fixture(http.StatusOK, "post.json"))
	r.DELETE("/posts", empty(http.StatusNotFound))
	r.PUT("/posts", empty(http.StatusNotFound))

	r.GET("/posts/1", fixture(http.StatusOK, "post.json"))
	r.DELETE("/posts/1", fixture(http.StatusOK, "post.json"))
	r.PUT("/posts/1", fixture(http.StatusOK, "post.json"))
	r.PATCH("/posts/1", fixture(http.StatusOK, "post.json"))
	r.POST("/posts/1", empty(http.StatusNotFound))

	r.Any("/fake_failure", empty(http.StatusInternalServerError))
	r.Any("/fake_missing", empty(http.StatusNotFound))
	r.Any("/fake_redirect", func(c *gin.Context) {
		c.Header("Location", "/posts")
		empty(http.StatusMovedPermanently)(c)
	})

	r.Any("/echo/*path", echo)
	return s
}

// Handler returns the router for use with httptest.NewServer.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Do serves req in process and returns the recorded response.
func (s *Server) Do(req *http.Request) (*http.Response, error) {
	if err := req.Context().Err(); err != nil {
		return nil, err
	}
	if req.Body == nil {
		req.Body = http.NoBody
	}
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	return w.Result(), nil
}

// Requests reports how many requests reached the server.
func (s *Server) Requests() int64 {
	return s.requests.Load()
}

func fixture(status int, name string) gin.HandlerFunc {
	return func(c *gin.Context) {
		data, err := fixtures.ReadFile("fixtures/" + name)
		if err != nil {
			c.AbortWithStatus(http.StatusInternalServerError)
			return
		}
		c.Data(status, "application/json", data)
	}
}

func empty(status int) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Content-Type", "application/json")
		c.Status(status)
	}
}

func echo(c *gin.Context) {
	var body []byte
	if c.Request.Body != nil {
		body, _ = io.ReadAll(c.Request.Body)
	}
	out := Echo{
		Method:  c.Request.Method,
		Path:    c.Request.URL.Path,
		RawPath: c.Request.URL.EscapedPath(),
		Query:   make(map[string]string),
		Headers: make(map[string]string),
		Body:    string(body),
	}
	for key := range c.Request.URL.Query() {
		out.Query[key] = c.Request.URL.Query().Get(key)
	}
	for key := range c.Request.Header {
		out.Headers[key] = c.Request.Header.Get(key)
	}
	c.JSON(http.StatusOK, out)
}

package core

import (
	"reflect"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParams_ToQuery(t *testing.T) {
	tests := []struct {
		name   string
		params Params
		want   string
	}{
		{"empty", Params{}, ""},
		{"scalars", Params{"page": 2, "q": "go lang", "active": true}, "active=true&page=2&q=go+lang"},
		{"slices joined", Params{"ids": []int{1, 2, 3}}, "ids=1%2C2%2C3"},
		{"any slice", Params{"tags": []any{"a", "b"}}, "tags=a%2Cb"},
		{"bytes are a string", Params{"raw": []byte("abc")}, "raw=abc"},
		{"nil value", Params{"x": nil}, "x="},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.params.ToQuery(); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestParams_Update(t *testing.T) {
	params := Params{"a": 1, "b": 2}
	params.Update(Params{"b": 3, "c": 4}, false)
	require.Equal(t, Params{"a": 1, "b": 2, "c": 4}, params)

	params.Update(Params{"b": 3}, true)
	require.Equal(t, 3, params["b"])

	params.Without("a", "missing")
	require.Equal(t, []string{"b", "c"}, params.Keys())
}

func TestParams_CopyOfNil(t *testing.T) {
	var params Params
	out := params.Copy()
	require.NotNil(t, out)
	out["x"] = 1
	require.Nil(t, params)
}

func postsResponse() *Response {
	return &Response{
		StatusCode: 200,
		Body: []any{
			map[string]any{"id": float64(1), "userId": float64(1), "title": "first"},
			map[string]any{"id": float64(2), "userId": float64(1), "title": "second"},
			map[string]any{"id": float64(3), "userId": float64(2), "title": "third"},
		},
	}
}

func TestResponse_Accessors(t *testing.T) {
	list := postsResponse()
	require.Len(t, list.List(), 3)
	require.Nil(t, list.Record())
	require.False(t, list.Empty())

	record := &Response{Body: map[string]any{"id": float64(1)}}
	require.NotNil(t, record.Record())
	require.Nil(t, record.List())

	for _, body := range []any{nil, map[string]any{}, []any{}} {
		require.True(t, (&Response{Body: body}).Empty(), "body %v", body)
	}
	require.False(t, (&Response{Body: "text"}).Empty())
}

func TestResponse_Search(t *testing.T) {
	resp := postsResponse()

	ids, err := resp.Search("[?userId == `1`].id")
	require.NoError(t, err)
	require.Equal(t, []any{float64(1), float64(2)}, ids)

	title, err := resp.Search("[2].title")
	require.NoError(t, err)
	require.Equal(t, "third", title)

	_, err = resp.Search("[?")
	require.Error(t, err)
}

func TestResponse_Fill(t *testing.T) {
	type post struct {
		ID     string `json:"id"`
		UserID int    `json:"userId"`
		Title  string `json:"title"`
	}

	var posts []post
	require.NoError(t, postsResponse().Fill(&posts))
	require.Len(t, posts, 3)
	require.Equal(t, post{ID: "1", UserID: 1, Title: "first"}, posts[0])

	var single post
	record := &Response{Body: map[string]any{"id": float64(7), "userId": float64(2), "title": "x"}}
	require.NoError(t, record.Fill(&single))
	require.Equal(t, "7", single.ID)

	require.Error(t, record.Fill(single))
}

func TestResponse_PrettyTable(t *testing.T) {
	record := &Response{Body: map[string]any{
		"id":    float64(1),
		"title": "hello",
		"tags":  []any{"a", "b"},
		"gone":  nil,
	}}
	table := record.PrettyTable()
	for _, want := range []string{"attr", "value", "title", "hello", `["a","b"]`} {
		if !strings.Contains(table, want) {
			t.Errorf("expected %q in table:\n%s", want, table)
		}
	}
	if strings.Contains(table, "gone") {
		t.Errorf("nil attributes should be skipped:\n%s", table)
	}

	list := postsResponse().PrettyTable()
	if !strings.HasPrefix(list, "[\n") || strings.Count(list, "title") != 3 {
		t.Errorf("unexpected list rendering:\n%s", list)
	}

	if got := (&Response{}).PrettyTable(); got != "<>" {
		t.Errorf("expected <> for empty body, got %q", got)
	}
	if got := (&Response{Body: []any{}}).PrettyTable(); got != "[]" {
		t.Errorf("expected [] for empty list, got %q", got)
	}
}

func TestResponse_PrettyJson(t *testing.T) {
	resp := &Response{Body: map[string]any{"id": 1}}
	if got := resp.PrettyJson(); got != `{"id":1}` {
		t.Errorf("unexpected compact json %q", got)
	}
	if got := resp.PrettyJson("  "); got != "{\n  \"id\": 1\n}" {
		t.Errorf("unexpected indented json %q", got)
	}
}

func TestCodecs(t *testing.T) {
	payload := Params{"title": "hello", "tags": []string{"a", "b"}, "n": 3}

	for _, codec := range []Codec{JSONCodec{}, MsgpackCodec{}} {
		t.Run(codec.ContentType(), func(t *testing.T) {
			data, err := codec.Marshal(payload)
			require.NoError(t, err)
			decoded, err := codec.Unmarshal(data)
			require.NoError(t, err)

			record, ok := decoded.(map[string]any)
			require.True(t, ok, "expected map[string]any, got %T", decoded)
			require.Equal(t, "hello", record["title"])
			require.Len(t, record["tags"], 2)
			require.Equal(t, float64(3), normalizeForSearch(record["n"]))
		})
	}

	empty, err := JSONCodec{}.Unmarshal([]byte("  "))
	require.NoError(t, err)
	require.Nil(t, empty)
}

func TestCodecSelection(t *testing.T) {
	tests := map[string]string{
		"application/json":                ContentTypeJSON,
		"application/json; charset=utf-8": ContentTypeJSON,
		"application/msgpack":             ContentTypeMsgpack,
		"application/x-msgpack":           ContentTypeMsgpack,
		"text/plain":                      ContentTypeJSON,
		"":                                ContentTypeJSON,
	}
	for contentType, want := range tests {
		if got := codecForContentType(contentType).ContentType(); got != want {
			t.Errorf("codecForContentType(%q) = %q, want %q", contentType, got, want)
		}
	}

	codec, err := codecByName("msgpack")
	require.NoError(t, err)
	require.IsType(t, MsgpackCodec{}, codec)
	_, err = codecByName("xml")
	require.Error(t, err)
}

func TestFlexibleUnmarshal(t *testing.T) {
	type author struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}
	type post struct {
		ID       string   `json:"id"`
		Views    int64    `json:"views"`
		Draft    string   `json:"draft"`
		Rating   string   `json:"rating"`
		Labels   []string `json:"labels"`
		Author   author   `json:"author"`
		Subtitle string   `json:"subtitle"`
	}

	data := []byte(`{
		"id": 42,
		"views": 1000,
		"draft": false,
		"rating": 4.5,
		"labels": ["go", 1, true],
		"author": {"id": 7.0, "name": "ann"},
		"subtitle": null
	}`)

	var got post
	require.NoError(t, FlexibleUnmarshal(data, &got))
	want := post{
		ID:     "42",
		Views:  1000,
		Draft:  "false",
		Rating: "4.5",
		Labels: []string{"go", "1", "true"},
		Author: author{ID: "7", Name: "ann"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %+v, got %+v", want, got)
	}
}

func TestFlexibleUnmarshal_InvalidTarget(t *testing.T) {
	var m map[string]any
	require.Error(t, FlexibleUnmarshal([]byte(`{}`), &m))
	require.Error(t, FlexibleUnmarshal([]byte(`{}`), nil))

	var s struct{}
	require.Error(t, FlexibleUnmarshal([]byte(`{}`), s))
	require.Error(t, FlexibleUnmarshal([]byte(`{broken`), &s))
}

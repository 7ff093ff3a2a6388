package apiclient

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedRequest struct {
	Method  string
	Path    string
	Query   string
	Headers http.Header
	Body    []byte
}

func newTestServer(t *testing.T, status int, body string) (*httptest.Server, *[]recordedRequest) {
	t.Helper()
	var requests []recordedRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		requests = append(requests, recordedRequest{
			Method:  r.Method,
			Path:    r.URL.Path,
			Query:   r.URL.RawQuery,
			Headers: r.Header.Clone(),
			Body:    data,
		})
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv, &requests
}

func newTestClient(t *testing.T, baseURL string, opts ...Option) *Client {
	t.Helper()
	c, err := New(baseURL, opts...)
	require.NoError(t, err)
	return c
}

func TestNew(t *testing.T) {
	tests := []struct {
		name     string
		baseURL  string
		errorMsg string
	}{
		{name: "valid http", baseURL: "http://localhost:3001"},
		{name: "valid https with trailing slash", baseURL: "https://qr.example.com/"},
		{name: "empty", baseURL: "", errorMsg: "base URL is required"},
		{name: "no scheme", baseURL: "/api", errorMsg: "scheme must be http or https"},
		{name: "no host", baseURL: "http://", errorMsg: "must have a host"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := New(tt.baseURL)
			if tt.errorMsg != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errorMsg)
				assert.Nil(t, c)
				return
			}
			require.NoError(t, err)
			assert.False(t, strings.HasSuffix(c.BaseURL(), "/"))
		})
	}
}

func TestCall_CreatedReturnsBodyWithoutErrorFlag(t *testing.T) {
	srv, _ := newTestServer(t, http.StatusCreated, `{"id": 1}`)
	c := newTestClient(t, srv.URL)

	result, err := c.Post(context.Background(), "/api/v1/boards", map[string]interface{}{"name": "x"}, nil)
	require.NoError(t, err)

	assert.False(t, result.IsError)
	assert.Equal(t, http.StatusCreated, result.Status)
	assert.Equal(t, map[string]interface{}{"id": float64(1)}, result.Fields)
	assert.NotContains(t, result.Fields, ErrorFlagKey)
	assert.NoError(t, result.Err())
}

func TestCall_NotFoundWithJSONBody(t *testing.T) {
	srv, _ := newTestServer(t, http.StatusNotFound, `{"error": "not found"}`)
	c := newTestClient(t, srv.URL)

	result, err := c.Get(context.Background(), "/api/v1/boards/42")
	require.NoError(t, err)

	assert.True(t, result.IsError)
	assert.Equal(t, map[string]interface{}{
		"_error": true,
		"status": 404,
		"error":  "not found",
	}, result.Fields)
	assert.Equal(t, "HTTP 404: not found", result.ErrorMessage())

	var statusErr *StatusError
	require.ErrorAs(t, result.Err(), &statusErr)
	assert.Equal(t, 404, statusErr.Status)
}

func TestCall_ServerErrorWithTextBody(t *testing.T) {
	srv, _ := newTestServer(t, http.StatusInternalServerError, "oops")
	c := newTestClient(t, srv.URL)

	result, err := c.Get(context.Background(), "/api/v1/health")
	require.NoError(t, err)

	assert.True(t, result.IsError)
	assert.Equal(t, map[string]interface{}{
		"_error": true,
		"status": 500,
		"error":  "oops",
	}, result.Fields)
	assert.True(t, result.Get("_error").Bool())
	assert.Equal(t, int64(500), result.Get("status").Int())
}

func TestCall_ErrorFlagAndStatusAreAuthoritative(t *testing.T) {
	srv, _ := newTestServer(t, http.StatusConflict, `{"status": "duplicate", "_error": false, "detail": "exists"}`)
	c := newTestClient(t, srv.URL)

	result, err := c.Get(context.Background(), "/api/v1/x")
	require.NoError(t, err)

	assert.Equal(t, true, result.Fields["_error"])
	assert.Equal(t, 409, result.Fields["status"])
	assert.Equal(t, "exists", result.Fields["detail"])
}

func TestCall_EmptyBodyYieldsEmptyMapping(t *testing.T) {
	srv, _ := newTestServer(t, http.StatusNoContent, "")
	c := newTestClient(t, srv.URL)

	result, err := c.Delete(context.Background(), "/api/v1/monitors/1", BearerAuth("k"))
	require.NoError(t, err)

	assert.False(t, result.IsError)
	assert.Empty(t, result.Fields)
	assert.False(t, result.IsArray())
}

func TestCall_ArrayBody(t *testing.T) {
	srv, _ := newTestServer(t, http.StatusOK, `[{"id": "r1", "name": "random"}, {"id": "r2", "name": "general"}]`)
	c := newTestClient(t, srv.URL)

	result, err := c.Get(context.Background(), "/api/v1/rooms")
	require.NoError(t, err)

	assert.True(t, result.IsArray())
	assert.Len(t, result.Items(), 2)
	assert.Empty(t, result.Fields)
	assert.Equal(t, "general", result.String("1.name"))

	var rooms []struct {
		ID string `json:"id"`
	}
	require.NoError(t, result.Decode(&rooms))
	assert.Equal(t, "r1", rooms[0].ID)
}

func TestCall_InvalidJSONOnSuccess(t *testing.T) {
	srv, _ := newTestServer(t, http.StatusOK, "<html>")
	c := newTestClient(t, srv.URL)

	result, err := c.Get(context.Background(), "/api/v1/health")
	require.Error(t, err)
	assert.Nil(t, result)
	assert.Contains(t, err.Error(), "not valid JSON")
	assert.False(t, IsTransportError(err))
}

func TestCall_RequestShape(t *testing.T) {
	srv, requests := newTestServer(t, http.StatusOK, `{}`)
	c := newTestClient(t, srv.URL)

	_, err := c.Post(context.Background(), "/api/v1/boards/7/tasks?key=abc%2B1",
		map[string]interface{}{"title": "t", "priority": 2},
		map[string]string{"X-Extra": "yes"})
	require.NoError(t, err)

	require.Len(t, *requests, 1)
	req := (*requests)[0]
	assert.Equal(t, http.MethodPost, req.Method)
	assert.Equal(t, "/api/v1/boards/7/tasks", req.Path)
	assert.Equal(t, "key=abc%2B1", req.Query)
	assert.Equal(t, "application/json", req.Headers.Get("Content-Type"))
	assert.Equal(t, "yes", req.Headers.Get("X-Extra"))

	var sent map[string]interface{}
	require.NoError(t, json.Unmarshal(req.Body, &sent))
	assert.Equal(t, "t", sent["title"])
	assert.Equal(t, float64(2), sent["priority"])
}

func TestCall_HeadersOverrideDefaults(t *testing.T) {
	srv, requests := newTestServer(t, http.StatusOK, `{}`)
	c := newTestClient(t, srv.URL)

	_, err := c.Post(context.Background(), "/api/v1/stats", []map[string]interface{}{{"key": "k", "value": 1}},
		map[string]string{"Content-Type": "application/vnd.hnr+json", "Authorization": "Bearer s3cret"})
	require.NoError(t, err)

	req := (*requests)[0]
	assert.Equal(t, "application/vnd.hnr+json", req.Headers.Get("Content-Type"))
	assert.Equal(t, "Bearer s3cret", req.Headers.Get("Authorization"))
	assert.JSONEq(t, `[{"key":"k","value":1}]`, string(req.Body))
}

func TestCall_EmptyBodiesAreNotSent(t *testing.T) {
	tests := []struct {
		name string
		body interface{}
	}{
		{"nil", nil},
		{"empty map", map[string]interface{}{}},
		{"empty slice", []interface{}{}},
		{"nil map pointer", (*map[string]string)(nil)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, requests := newTestServer(t, http.StatusOK, `{}`)
			c := newTestClient(t, srv.URL)

			_, err := c.Post(context.Background(), "/api/v1/boards/1/archive?key=k", tt.body, nil)
			require.NoError(t, err)
			assert.Empty(t, (*requests)[0].Body)
		})
	}
}

func TestCall_RejectsRelativePath(t *testing.T) {
	c := newTestClient(t, "http://localhost:3001")
	_, err := c.Get(context.Background(), "api/v1/health")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "path must start with /")
}

func TestCall_ConnectionRefusedIsTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	c := newTestClient(t, url)
	result, err := c.Get(context.Background(), "/api/v1/health")

	require.Error(t, err)
	assert.Nil(t, result)
	assert.True(t, IsTransportError(err))

	var te *TransportError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, http.MethodGet, te.Method)
	assert.Equal(t, url+"/api/v1/health", te.URL)
	assert.False(t, te.Timeout())
}

func TestCall_TimeoutIsTransportError(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	c := newTestClient(t, srv.URL, WithTimeout(50*time.Millisecond))
	_, err := c.Get(context.Background(), "/api/v1/health")

	var te *TransportError
	require.ErrorAs(t, err, &te)
	assert.True(t, te.Timeout())
}

func TestCall_ContextCancelled(t *testing.T) {
	srv, requests := newTestServer(t, http.StatusOK, `{}`)
	c := newTestClient(t, srv.URL)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Get(ctx, "/api/v1/health")
	require.Error(t, err)
	assert.True(t, IsTransportError(err))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, *requests)
}

func TestResultString(t *testing.T) {
	srv, _ := newTestServer(t, http.StatusOK, `{"monitor": {"id": 12, "name": "demo"}, "manage_key": "mk", "gone": null}`)
	c := newTestClient(t, srv.URL)

	result, err := c.Get(context.Background(), "/")
	require.NoError(t, err)

	assert.Equal(t, "12", result.String("monitor.id"))
	assert.Equal(t, "demo", result.String("monitor.name"))
	assert.Equal(t, "mk", result.String("manage_key"))
	assert.Equal(t, "", result.String("gone"))
	assert.False(t, result.Has("gone"))
	assert.False(t, result.Has("missing"))
	assert.True(t, result.Has("monitor"))
}

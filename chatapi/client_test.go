package chatapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExchangeSuccess(t *testing.T) {
	var got Request
	var gotID, gotType string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		gotType = r.Header.Get("Content-Type")
		gotID = r.Header.Get(RequestIDHeader)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(Response{Response: "Hi **there**"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	ex, err := c.Exchange(context.Background(), "bot-1", "hello")
	require.NoError(t, err)

	assert.Equal(t, Request{BotID: "bot-1", Message: "hello"}, got)
	assert.Equal(t, "application/json", gotType)
	assert.Equal(t, ex.ID, gotID)
	assert.NotEmpty(t, ex.ID)
	assert.Equal(t, "Hi **there**", ex.Reply)
	assert.Equal(t, http.StatusOK, ex.Status)
	assert.JSONEq(t, `{"bot_id":"bot-1","message":"hello"}`, string(ex.RequestBody))
}

func TestExchangeFailures(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		check   func(t *testing.T, err error)
	}{
		{
			name: "server error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "boom", http.StatusInternalServerError)
			},
			check: func(t *testing.T, err error) {
				var se *StatusError
				require.ErrorAs(t, err, &se)
				assert.Equal(t, http.StatusInternalServerError, se.StatusCode)
				assert.Contains(t, se.Body, "boom")
			},
		},
		{
			name: "not found",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusNotFound)
			},
			check: func(t *testing.T, err error) {
				var se *StatusError
				require.ErrorAs(t, err, &se)
				assert.Equal(t, http.StatusNotFound, se.StatusCode)
			},
		},
		{
			name: "invalid json",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`<html>oops</html>`))
			},
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, ErrMalformedResponse)
			},
		},
		{
			name: "missing response field",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"answer":"hi"}`))
			},
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, ErrMalformedResponse)
			},
		},
		{
			name: "response not a string",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"response":42}`))
			},
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, ErrMalformedResponse)
			},
		},
		{
			name: "response null",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"response":null}`))
			},
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, ErrMalformedResponse)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			ex, err := NewClient(srv.URL).Exchange(context.Background(), "b", "m")
			require.Error(t, err)
			require.NotNil(t, ex, "exchange record should survive failures")
			tt.check(t, err)
		})
	}
}

func TestExchangeTransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	ex, err := NewClient(url).Exchange(context.Background(), "b", "m")
	require.Error(t, err)
	assert.Zero(t, ex.Status)

	var se *StatusError
	assert.False(t, errors.As(err, &se))
}

func TestExchangeTimeoutOption(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	c := NewClient(srv.URL, WithTimeout(30*time.Millisecond))
	_, err := c.Exchange(context.Background(), "b", "m")
	require.Error(t, err)
}

func TestTimeoutLeavesSharedClientAlone(t *testing.T) {
	shared := &http.Client{}
	before := NewClient("", WithTimeout(time.Second), WithHTTPClient(shared))
	after := NewClient("", WithHTTPClient(shared), WithTimeout(time.Second))

	assert.Zero(t, shared.Timeout)
	assert.Equal(t, time.Second, before.http.Timeout)
	assert.Equal(t, time.Second, after.http.Timeout)
	assert.Same(t, shared, NewClient("", WithHTTPClient(shared)).http)
}

func TestNewClientDefaultEndpoint(t *testing.T) {
	assert.Equal(t, DefaultEndpoint, NewClient("").Endpoint())
}

package backend

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chatwidget/chatapi"
	"chatwidget/identity"
)

type fakeStore map[string]*Bot

func (s fakeStore) LookupBot(_ context.Context, id string) (*Bot, error) {
	if b, ok := s[id]; ok {
		return b, nil
	}
	return nil, ErrUnknownBot
}

type failingReplier struct{}

func (failingReplier) Reply(context.Context, *Bot, string) (string, error) {
	return "", errors.New("model down")
}

func newTestServer(t *testing.T, store BotStore, replier Replier) *httptest.Server {
	t.Helper()
	svc := NewService(store, replier, zerolog.Nop())
	h := NewHandler(svc, "https://cdn.example.com/static", zerolog.Nop())
	srv := httptest.NewServer(NewRouter(h, []string{"*"}))
	t.Cleanup(srv.Close)
	return srv
}

func postChat(t *testing.T, url, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(url+"/chat", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestHandleChatEcho(t *testing.T) {
	srv := newTestServer(t, nil, EchoReplier{})

	resp := postChat(t, srv.URL, `{"bot_id":"shop","message":"hello"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	var out chatapi.Response
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, "**shop** heard you:\n\n> hello", out.Response)
}

func TestHandleChatRejectsBadRequests(t *testing.T) {
	srv := newTestServer(t, nil, EchoReplier{})

	tests := []struct {
		name string
		body string
	}{
		{"invalid json", `{"bot_id":`},
		{"missing bot", `{"message":"hi"}`},
		{"blank message", `{"bot_id":"shop","message":"  "}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := postChat(t, srv.URL, tt.body)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		})
	}
}

func TestHandleChatUnknownBot(t *testing.T) {
	srv := newTestServer(t, fakeStore{"shop": {ID: "shop", Name: "Shop"}}, EchoReplier{})

	resp := postChat(t, srv.URL, `{"bot_id":"other","message":"hi"}`)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = postChat(t, srv.URL, `{"bot_id":"shop","message":"hi"}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestHandleChatReplierFailure(t *testing.T) {
	srv := newTestServer(t, nil, failingReplier{})

	resp := postChat(t, srv.URL, `{"bot_id":"shop","message":"hi"}`)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.NotContains(t, string(body), "model down")
}

func TestClientAgainstBackend(t *testing.T) {
	srv := newTestServer(t, nil, EchoReplier{})

	c := chatapi.NewClient(srv.URL + "/chat")
	ex, err := c.Exchange(context.Background(), "shop", "ping")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, ex.Status)
	assert.Contains(t, ex.Reply, "ping")

	_, err = chatapi.NewClient(srv.URL+"/missing").Exchange(context.Background(), "shop", "ping")
	var se *chatapi.StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusNotFound, se.StatusCode)
}

func TestHandleEmbed(t *testing.T) {
	srv := newTestServer(t, nil, EchoReplier{})

	resp, err := http.Get(srv.URL + "/embed/support-bot")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, identity.BotID("support-bot"), identity.ResolveString(string(body)))
	assert.Contains(t, string(body), "https://cdn.example.com/static/chat-widget.js")
}

func TestHandlePing(t *testing.T) {
	srv := newTestServer(t, nil, EchoReplier{})

	resp, err := http.Get(srv.URL + "/ping")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, "pong", string(body))
}

func TestCORSPreflight(t *testing.T) {
	srv := newTestServer(t, nil, EchoReplier{})

	req, err := http.NewRequest(http.MethodOptions, srv.URL+"/chat", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "https://shop.example.com")
	req.Header.Set("Access-Control-Request-Method", "POST")
	req.Header.Set("Access-Control-Request-Headers", "Content-Type")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestOpenAIReplier(t *testing.T) {
	var got openai.ChatCompletionRequest
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"id":"c1","object":"chat.completion","model":"gpt-4o-mini",
			"choices":[{"index":0,"message":{"role":"assistant","content":"  Hi **there**  "},"finish_reason":"stop"}]}`)
	}))
	defer api.Close()

	cfg := openai.DefaultConfig("test-key")
	cfg.BaseURL = api.URL + "/v1"
	r := NewOpenAIReplierWithConfig(cfg, "")

	reply, err := r.Reply(context.Background(), &Bot{ID: "shop", Name: "Shop", SystemPrompt: "Be terse."}, "hello")
	require.NoError(t, err)
	assert.Equal(t, "Hi **there**", reply)

	assert.Equal(t, openai.GPT4oMini, got.Model)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, "Be terse.", got.Messages[0].Content)
	assert.Equal(t, openai.ChatMessageRoleUser, got.Messages[1].Role)
	assert.Equal(t, "hello", got.Messages[1].Content)
}

func TestOpenAIReplierNoChoices(t *testing.T) {
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"id":"c1","object":"chat.completion","choices":[]}`)
	}))
	defer api.Close()

	cfg := openai.DefaultConfig("test-key")
	cfg.BaseURL = api.URL + "/v1"
	_, err := NewOpenAIReplierWithConfig(cfg, "gpt-4o").Reply(context.Background(), &Bot{Name: "x"}, "hi")
	assert.ErrorIs(t, err, ErrEmptyReply)
}

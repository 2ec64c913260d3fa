// Package telegramtest provides a fake Telegram Bot API server for tests.
package telegramtest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/go-telegram/bot"
)

// Token is accepted by the fake server.
const Token = "123456:TEST-TOKEN"

// Call is one recorded Bot API request.
type Call struct {
	Method string
	Params map[string]string
}

// Server records Bot API calls and answers them with plausible results.
type Server struct {
	*httptest.Server

	mu       sync.Mutex
	calls    []Call
	failing  map[string]bool
	commands json.RawMessage
	nextID   int
}

// NewServer starts a fake Bot API server that is closed with the test.
func NewServer(t testing.TB) *Server {
	t.Helper()
	s := &Server{failing: map[string]bool{}, commands: json.RawMessage("[]")}
	s.Server = httptest.NewServer(http.HandlerFunc(s.handle))
	t.Cleanup(s.Close)
	return s
}

// Bot returns a client pointed at the fake server.
func (s *Server) Bot(t testing.TB, opts ...bot.Option) *bot.Bot {
	t.Helper()
	opts = append([]bot.Option{bot.WithServerURL(s.URL), bot.WithSkipGetMe()}, opts...)
	b, err := bot.New(Token, opts...)
	if err != nil {
		t.Fatalf("failed to create test bot: %v", err)
	}
	return b
}

// Fail makes every later call to method return a Bot API error.
func (s *Server) Fail(method string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failing[method] = true
}

// Calls returns the recorded calls, optionally filtered by method.
func (s *Server) Calls(method ...string) []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(method) == 0 {
		return append([]Call(nil), s.calls...)
	}
	var out []Call
	for _, c := range s.calls {
		for _, m := range method {
			if c.Method == m {
				out = append(out, c)
			}
		}
	}
	return out
}

// Texts returns the text of every sendMessage call in order.
func (s *Server) Texts() []string {
	var out []string
	for _, c := range s.Calls("sendMessage") {
		out = append(out, c.Params["text"])
	}
	return out
}

// Reset forgets the recorded calls.
func (s *Server) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = nil
}

func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	method := path.Base(r.URL.Path)
	params := readParams(r)

	s.mu.Lock()
	s.calls = append(s.calls, Call{Method: method, Params: params})
	failing := s.failing[method]
	s.nextID++
	id := s.nextID
	if method == "setMyCommands" {
		s.commands = json.RawMessage(params["commands"])
	}
	commands := s.commands
	s.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	if failing {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"ok": false, "error_code": http.StatusBadRequest, "description": "Bad Request: forced failure",
		})
		return
	}

	var result any
	switch method {
	case "getMe":
		result = map[string]any{"id": 1, "is_bot": true, "first_name": "Maintain", "username": "maintain_bot"}
	case "getMyCommands":
		result = commands
	case "answerCallbackQuery", "deleteMessage", "sendChatAction", "setMyCommands", "deleteMyCommands":
		result = true
	default:
		chatID, _ := strconv.ParseInt(params["chat_id"], 10, 64)
		result = map[string]any{
			"message_id": id,
			"date":       0,
			"chat":       map[string]any{"id": chatID, "type": "private"},
			"text":       params["text"],
		}
	}
	_ = json.NewEncoder(w).Encode(map[string]any{"ok": true, "result": result})
}

func readParams(r *http.Request) map[string]string {
	params := map[string]string{}
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(1 << 20); err == nil {
			for k, v := range r.MultipartForm.Value {
				if len(v) > 0 {
					params[k] = v[0]
				}
			}
			return params
		}
	}
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		var raw map[string]json.RawMessage
		if err := json.NewDecoder(r.Body).Decode(&raw); err == nil {
			for k, v := range raw {
				var s string
				if json.Unmarshal(v, &s) == nil {
					params[k] = s
				} else {
					params[k] = string(v)
				}
			}
		}
		return params
	}
	if err := r.ParseForm(); err == nil {
		for k, v := range r.Form {
			if len(v) > 0 {
				params[k] = v[0]
			}
		}
	}
	return params
}

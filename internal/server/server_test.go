package server

import (
	"bytes"
	"context"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
)

type staticHandler struct{ body string }

func (h staticHandler) Routes() []string { return []string{"GET /static/"} }

func (h staticHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	io.WriteString(w, h.body+r.URL.Path)
}

func TestBasicRouter(t *testing.T) {
	t.Run("Method Patterns And Path Values", func(t *testing.T) {
		r := NewBasicRouter()
		r.HandleFunc("GET", "/movies/{id}", func(w http.ResponseWriter, req *http.Request) {
			io.WriteString(w, "movie "+req.PathValue("id"))
		})

		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/movies/7", nil))
		if rec.Code != http.StatusOK || rec.Body.String() != "movie 7" {
			t.Errorf("unexpected response %d %q", rec.Code, rec.Body.String())
		}

		rec = httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/movies/7", nil))
		if rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("expected 405, got %d", rec.Code)
		}
	})

	t.Run("Any Method", func(t *testing.T) {
		r := NewBasicRouter()
		r.HandleFunc("", "/ping", func(w http.ResponseWriter, _ *http.Request) { io.WriteString(w, "pong") })

		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/ping", nil))
		if rec.Body.String() != "pong" {
			t.Errorf("unexpected body %q", rec.Body.String())
		}
	})

	t.Run("Middleware Order", func(t *testing.T) {
		var order []string
		mw := func(name string) Middleware {
			return func(next http.Handler) http.Handler {
				return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					order = append(order, name)
					next.ServeHTTP(w, r)
				})
			}
		}

		r := NewBasicRouter()
		r.Use(mw("first"), mw("second"))
		r.HandleFunc("GET", "/", func(http.ResponseWriter, *http.Request) { order = append(order, "handler") })
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

		if strings.Join(order, ",") != "first,second,handler" {
			t.Errorf("unexpected order %v", order)
		}
	})

	t.Run("Custom Handler", func(t *testing.T) {
		r := NewBasicRouter()
		r.Handler(staticHandler{body: "asset "})

		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/static/app.css", nil))
		if rec.Body.String() != "asset /static/app.css" {
			t.Errorf("unexpected body %q", rec.Body.String())
		}
	})
}

func TestMiddleware(t *testing.T) {
	t.Run("Request ID Generated", func(t *testing.T) {
		var seen string
		h := RequestID(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
			seen = RequestIDFrom(r.Context())
		}))

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		if seen == "" || rec.Header().Get(RequestIDHeader) != seen {
			t.Errorf("expected matching ids, got context %q header %q", seen, rec.Header().Get(RequestIDHeader))
		}
	})

	t.Run("Request ID Reused", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(RequestIDHeader, "abc-123")
		rec := httptest.NewRecorder()
		RequestID(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {})).ServeHTTP(rec, req)

		if rec.Header().Get(RequestIDHeader) != "abc-123" {
			t.Errorf("expected client id to be kept, got %q", rec.Header().Get(RequestIDHeader))
		}
		if RequestIDFrom(context.Background()) != "" {
			t.Error("expected no id outside a request")
		}
	})

	t.Run("Logger", func(t *testing.T) {
		var buf bytes.Buffer
		logger := log.New(&buf)

		h := RequestID(Logger(logger)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusTeapot)
		})))
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/login", nil))

		out := buf.String()
		for _, want := range []string{"request", "method=POST", "path=/login", "status=418", "request_id="} {
			if !strings.Contains(out, want) {
				t.Errorf("log missing %q: %s", want, out)
			}
		}
	})

	t.Run("Logger Defaults To 200", func(t *testing.T) {
		var buf bytes.Buffer
		h := Logger(log.New(&buf))(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
		if !strings.Contains(buf.String(), "status=200") {
			t.Errorf("expected status=200, got %s", buf.String())
		}
	})

	t.Run("Recover", func(t *testing.T) {
		var buf bytes.Buffer
		h := Recover(log.New(&buf))(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
			panic("boom")
		}))

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		if rec.Code != http.StatusInternalServerError {
			t.Errorf("expected 500, got %d", rec.Code)
		}
		if !strings.Contains(buf.String(), "boom") {
			t.Errorf("expected panic to be logged, got %s", buf.String())
		}
	})
}

func freeAddr(t *testing.T) string {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to reserve a port: %v", err)
	}
	defer l.Close()
	return l.Addr().String()
}

func TestServe(t *testing.T) {
	t.Run("Stops On Cancel", func(t *testing.T) {
		addr := freeAddr(t)
		srv := New(addr, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { io.WriteString(w, "ok") }))

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error, 1)
		go func() { done <- Serve(ctx, srv, log.New(io.Discard), nil) }()

		var resp *http.Response
		var err error
		for range 50 {
			if resp, err = http.Get("http://" + addr); err == nil {
				break
			}
			time.Sleep(20 * time.Millisecond)
		}
		if err != nil {
			t.Fatalf("server never came up: %v", err)
		}
		resp.Body.Close()

		cancel()
		select {
		case err := <-done:
			if err != nil {
				t.Errorf("Serve returned %v", err)
			}
		case <-time.After(5 * time.Second):
			t.Fatal("Serve did not return after cancel")
		}
	})

	t.Run("Listen Error", func(t *testing.T) {
		l, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			t.Fatalf("failed to listen: %v", err)
		}
		defer l.Close()

		err = Serve(context.Background(), New(l.Addr().String(), http.NotFoundHandler()), log.New(io.Discard), nil)
		if err == nil {
			t.Error("expected an error for a busy address")
		}
	})
}

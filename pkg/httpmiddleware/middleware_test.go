package httpmiddleware

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/go-faster/sdk/zctx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/metric/noop"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestWrap_Order(t *testing.T) {
	var calls []string
	mark := func(name string) Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				calls = append(calls, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	h := Wrap(okHandler(), mark("outer"), mark("inner"))
	serve(h, nil)

	assert.Equal(t, []string{"outer", "inner"}, calls)
}

func TestRequestID(t *testing.T) {
	var seen string
	h := RequestID()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = RequestIDFromContext(r.Context())
	}))

	t.Run("generated", func(t *testing.T) {
		w := serve(h, nil)
		assert.NotEmpty(t, seen)
		assert.Equal(t, seen, w.Header().Get(RequestIDHeader))
	})

	t.Run("reused", func(t *testing.T) {
		w := serve(h, func(r *http.Request) { r.Header.Set(RequestIDHeader, "abc-123") })
		assert.Equal(t, "abc-123", seen)
		assert.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))
	})

	t.Run("invalid replaced", func(t *testing.T) {
		w := serve(h, func(r *http.Request) { r.Header.Set(RequestIDHeader, strings.Repeat("x", 129)) })
		assert.Len(t, seen, 36)
		assert.Equal(t, seen, w.Header().Get(RequestIDHeader))
	})
}

func TestInjectLoggerAndLogRequests(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))

	h := Wrap(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			zctx.From(r.Context()).Info("Handling")
			w.WriteHeader(http.StatusCreated)
		}),
		RequestID(),
		Instrument("test", tp, noop.NewMeterProvider()),
		InjectLogger(zap.New(core)),
		LogRequests(),
	)

	serve(h, func(r *http.Request) { r.Header.Set(RequestIDHeader, "req-1") })

	handling := logs.FilterMessage("Handling").All()
	require.Len(t, handling, 1)
	fields := handling[0].ContextMap()
	assert.Equal(t, "req-1", fields["request_id"])
	assert.NotEmpty(t, fields["trace_id"])
	assert.Equal(t, 1, countFields(handling[0], "trace_id"))

	request := logs.FilterMessage("Request").All()
	require.Len(t, request, 1)
	fields = request[0].ContextMap()
	assert.Equal(t, "GET", fields["method"])
	assert.Equal(t, "/", fields["path"])
	assert.EqualValues(t, http.StatusCreated, fields["status"])

	assert.Len(t, recorder.Ended(), 1)
}

func countFields(entry observer.LoggedEntry, key string) int {
	n := 0
	for _, f := range entry.Context {
		if f.Key == key {
			n++
		}
	}
	return n
}

func TestRecovery(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	h := Wrap(
		http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
			panic("boom")
		}),
		InjectLogger(zap.New(core)),
		Recovery(),
	)

	w := serve(h, nil)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	var body map[string]any
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	assert.Equal(t, float64(500), body["code"])
	assert.Equal(t, 1, logs.FilterMessage("Panic recovered").Len())
}

func TestCORS(t *testing.T) {
	preflight := func(origin string) func(*http.Request) {
		return func(r *http.Request) {
			r.Method = http.MethodOptions
			r.Header.Set("Origin", origin)
			r.Header.Set("Access-Control-Request-Method", http.MethodPost)
			r.Header.Set("Access-Control-Request-Headers", "Content-Type")
		}
	}
	simple := func(origin string) func(*http.Request) {
		return func(r *http.Request) { r.Header.Set("Origin", origin) }
	}

	t.Run("wildcard", func(t *testing.T) {
		h := CORS(CORSConfig{AllowOrigins: []string{"*"}, MaxAge: 600})(okHandler())

		w := serve(h, preflight("https://shop.example"))
		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "GET, POST, OPTIONS", w.Header().Get("Access-Control-Allow-Methods"))
		assert.Equal(t, "Content-Type", w.Header().Get("Access-Control-Allow-Headers"))
		assert.Equal(t, "600", w.Header().Get("Access-Control-Max-Age"))
	})

	t.Run("listed origin case insensitive", func(t *testing.T) {
		h := CORS(CORSConfig{AllowOrigins: []string{"https://Shop.example"}})(okHandler())

		w := serve(h, simple("https://shop.example"))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "https://Shop.example", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Contains(t, w.Header().Values("Vary"), "Origin")
	})

	t.Run("unknown origin", func(t *testing.T) {
		h := CORS(CORSConfig{AllowOrigins: []string{"https://shop.example"}})(okHandler())

		w := serve(h, preflight("https://evil.example"))
		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("credentials echo origin", func(t *testing.T) {
		h := CORS(CORSConfig{AllowOrigins: []string{"*"}, AllowCredentials: true})(okHandler())

		w := serve(h, simple("https://shop.example"))
		assert.Equal(t, "https://shop.example", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
	})

	t.Run("no origin", func(t *testing.T) {
		h := CORS(CORSConfig{})(okHandler())

		w := serve(h, nil)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	})
}

func TestRecovery_InsideLogger(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	h := Wrap(
		http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
			panic("boom")
		}),
		RequestID(),
		InjectLogger(zap.New(core)),
		LogRequests(),
		Recovery(),
	)

	w := serve(h, func(r *http.Request) { r.Header.Set(RequestIDHeader, "req-9") })

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	recovered := logs.FilterMessage("Panic recovered").All()
	require.Len(t, recovered, 1)
	assert.Equal(t, "req-9", recovered[0].ContextMap()["request_id"])

	request := logs.FilterMessage("Request").All()
	require.Len(t, request, 1)
	assert.EqualValues(t, http.StatusInternalServerError, request[0].ContextMap()["status"])
}

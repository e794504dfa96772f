package api_test

import (
	"compress/gzip"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/buildbarn/bb-pagesim/internal/mock"
	"github.com/buildbarn/bb-pagesim/pkg/api"
	"github.com/buildbarn/bb-pagesim/pkg/eviction"
	"github.com/buildbarn/bb-pagesim/pkg/reference"
	"github.com/buildbarn/bb-pagesim/pkg/simulator"
	"github.com/buildbarn/bb-pagesim/pkg/testutil"
	"github.com/buildbarn/bb-pagesim/pkg/util"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const testRequestID = "d9e7b1b2-36cd-4a3c-8e5c-bb0d6d5a2f11"

func newTestHandler(t *testing.T, errorLogger util.ErrorLogger) http.Handler {
	runner := simulator.NewLocalRunner(eviction.DefaultMarkovLookahead, false)
	return api.NewHandler(api.HandlerOptions{
		Parser:         reference.DefaultParser,
		Runner:         runner,
		Comparer:       simulator.NewComparer(runner),
		MaximumFrames:  64,
		AllowedOrigins: []string{"http://localhost:5173"},
		UUIDGenerator: func() (uuid.UUID, error) {
			return uuid.MustParse(testRequestID), nil
		},
		ErrorLogger: errorLogger,
	})
}

func doRequest(handler http.Handler, method, target, body string, header http.Header) *httptest.ResponseRecorder {
	r := httptest.NewRequest(method, target, strings.NewReader(body))
	for key, values := range header {
		r.Header[key] = values
	}
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)
	return w
}

func decodeJSON(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	require.Equal(t, "application/json", w.Header().Get("Content-Type"))
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestHandlerRoot(t *testing.T) {
	handler := newTestHandler(t, util.DefaultErrorLogger)

	w := doRequest(handler, http.MethodGet, "/", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, testRequestID, w.Header().Get("X-Request-Id"))
	require.Equal(t, map[string]any{
		"message":    api.WelcomeMessage,
		"algorithms": []any{"fifo", "lru", "predictive", "markov"},
	}, decodeJSON(t, w))

	w = doRequest(handler, http.MethodGet, "/algorithms", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, map[string]any{
		"algorithms": []any{"fifo", "lru", "predictive", "markov"},
		"compared":   []any{"fifo", "lru", "predictive"},
		"default":    "fifo",
	}, decodeJSON(t, w))
}

func TestHandlerSimulate(t *testing.T) {
	handler := newTestHandler(t, util.DefaultErrorLogger)

	t.Run("String", func(t *testing.T) {
		w := doRequest(handler, http.MethodPost, "/simulate", `{"reference_string": "7, 0, 1, 7", "frames": 2, "algorithm": "LRU"}`, nil)
		require.Equal(t, http.StatusOK, w.Code)
		require.Equal(t, map[string]any{
			"algorithm":  "lru",
			"frames":     2.0,
			"faults":     4.0,
			"hits":       0.0,
			"fault_rate": 1.0,
			"steps": []any{
				map[string]any{"page": 7.0, "frames": []any{7.0}, "fault": true},
				map[string]any{"page": 0.0, "frames": []any{7.0, 0.0}, "fault": true},
				map[string]any{"page": 1.0, "frames": []any{0.0, 1.0}, "fault": true},
				map[string]any{"page": 7.0, "frames": []any{1.0, 7.0}, "fault": true},
			},
		}, decodeJSON(t, w))
	})

	t.Run("ArrayWithDefaultAlgorithm", func(t *testing.T) {
		w := doRequest(handler, http.MethodPost, "/simulate", `{"reference_string": [1, "2", 1], "frames": 2}`, nil)
		require.Equal(t, http.StatusOK, w.Code)
		body := decodeJSON(t, w)
		require.Equal(t, "fifo", body["algorithm"])
		require.Equal(t, 2.0, body["faults"])
		require.Equal(t, 1.0, body["hits"])
	})

	t.Run("EmptySequence", func(t *testing.T) {
		w := doRequest(handler, http.MethodPost, "/simulate", `{"reference_string": "", "frames": 3, "algorithm": "predictive"}`, nil)
		require.Equal(t, http.StatusOK, w.Code)
		require.Equal(t, map[string]any{
			"algorithm":  "predictive",
			"frames":     3.0,
			"faults":     0.0,
			"hits":       0.0,
			"fault_rate": 0.0,
			"steps":      []any{},
		}, decodeJSON(t, w))
	})

	t.Run("Query", func(t *testing.T) {
		w := doRequest(handler, http.MethodPost, "/simulate?query=steps%5B%3Ffault%5D.page", `{"reference_string": "1,2,1,3", "frames": 2, "algorithm": "lru"}`, nil)
		require.Equal(t, http.StatusOK, w.Code)
		require.Equal(t, "application/json", w.Header().Get("Content-Type"))
		require.JSONEq(t, `[1, 2, 3]`, w.Body.String())
	})

	t.Run("Text", func(t *testing.T) {
		w := doRequest(handler, http.MethodPost, "/simulate", `{"reference_string": "1,2,1", "frames": 1}`, http.Header{
			"Accept": []string{"text/plain"},
		})
		require.Equal(t, http.StatusOK, w.Code)
		require.Equal(t, "text/plain; charset=utf-8", w.Header().Get("Content-Type"))
		require.Equal(t,
			"STEP  PAGE  FRAMES  RESULT\n"+
				"1     1     [1]     fault\n"+
				"2     2     [2]     fault\n"+
				"3     1     [1]     fault\n"+
				"algorithm=fifo frames=1 faults=3 hits=0 fault_rate=1.0000\n",
			w.Body.String())
	})

	t.Run("Compressed", func(t *testing.T) {
		pages := make([]string, 0, 500)
		for i := 0; i < 500; i++ {
			pages = append(pages, "1")
		}
		w := doRequest(handler, http.MethodPost, "/simulate", `{"reference_string": "`+strings.Join(pages, ",")+`", "frames": 1}`, http.Header{
			"Accept-Encoding": []string{"gzip"},
		})
		require.Equal(t, http.StatusOK, w.Code)
		require.Equal(t, "gzip", w.Header().Get("Content-Encoding"))

		reader, err := gzip.NewReader(w.Body)
		require.NoError(t, err)
		data, err := io.ReadAll(reader)
		require.NoError(t, err)
		var body map[string]any
		require.NoError(t, json.Unmarshal(data, &body))
		require.Equal(t, 1.0, body["faults"])
		require.Equal(t, 499.0, body["hits"])
	})
}

func TestHandlerSimulateAll(t *testing.T) {
	handler := newTestHandler(t, util.DefaultErrorLogger)

	w := doRequest(handler, http.MethodPost, "/simulate_all", `{"reference_string": "1,2,3,4,1,2,5,1,2,3,4,5", "frames": 3, "algorithm": "bogus"}`, nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeJSON(t, w)
	require.Equal(t, map[string]any{"fifo": 9.0, "lru": 10.0, "predictive": 7.0}, body["all_faults"])
	require.Equal(t, "predictive", body["recommendation"])
	require.Equal(t, simulator.TieBreakRule, body["tie_break"])
	for _, name := range []string{"fifo", "lru", "predictive"} {
		run := body[name].(map[string]any)
		require.Equal(t, name, run["algorithm"])
		require.Len(t, run["steps"], 12)
	}

	// Fields read by the web frontend.
	require.Equal(t, body["predictive"], body["ai"])
	require.Equal(t, "predictive", body["ai_recommendation"])
}

func TestHandlerUnlimitedFrames(t *testing.T) {
	runner := simulator.NewLocalRunner(eviction.DefaultMarkovLookahead, false)
	handler := api.NewHandler(api.HandlerOptions{
		Parser:        reference.DefaultParser,
		Runner:        runner,
		Comparer:      simulator.NewComparer(runner),
		UUIDGenerator: uuid.NewRandom,
		ErrorLogger:   util.DefaultErrorLogger,
	})

	// Frame counts far exceeding the length of the sequence are
	// valid, and must not cause large allocations.
	for _, path := range []string{"/simulate", "/simulate_all"} {
		t.Run(path, func(t *testing.T) {
			w := doRequest(handler, http.MethodPost, path, `{"reference_string": "1,2,1", "frames": 1125899906842624}`, nil)
			require.Equal(t, http.StatusOK, w.Code)
			body := decodeJSON(t, w)
			if path == "/simulate" {
				require.Equal(t, 2.0, body["faults"])
			} else {
				require.Equal(t, map[string]any{"fifo": 2.0, "lru": 2.0, "predictive": 2.0}, body["all_faults"])
			}
		})
	}
}

func TestHandlerErrors(t *testing.T) {
	handler := newTestHandler(t, util.DefaultErrorLogger)

	for _, testCase := range []struct {
		name       string
		path       string
		body       string
		statusCode int
		kind       string
		message    string
	}{
		{"NotJSON", "/simulate", `1,2,3`, http.StatusBadRequest, "MALFORMED_INPUT", ""},
		{"MissingReferenceString", "/simulate", `{"frames": 3}`, http.StatusBadRequest, "MALFORMED_INPUT", "Invalid reference_string: Field is required"},
		{"MalformedToken", "/simulate", `{"reference_string": "1,x,3", "frames": 3}`, http.StatusBadRequest, "MALFORMED_INPUT", "Invalid reference_string: Reference 2: Page identifier \"x\" is not an integer"},
		{"EmptyToken", "/simulate_all", `{"reference_string": "1,,3", "frames": 3}`, http.StatusBadRequest, "MALFORMED_INPUT", "Invalid reference_string: Reference 2: Page identifier is empty"},
		{"BooleanElement", "/simulate", `{"reference_string": [1, true], "frames": 3}`, http.StatusBadRequest, "MALFORMED_INPUT", "Invalid reference_string: Reference 2: Page identifier must be a string or a number"},
		{"ZeroFrames", "/simulate", `{"reference_string": "1,2,3", "frames": 0}`, http.StatusBadRequest, "INVALID_CAPACITY", "Invalid frames: Frame pool capacity must be positive, while 0 frames were requested"},
		{"ZeroFramesAll", "/simulate_all", `{"reference_string": "1,2,3", "frames": 0}`, http.StatusBadRequest, "INVALID_CAPACITY", "Invalid frames: Frame pool capacity must be positive, while 0 frames were requested"},
		{"FractionalFrames", "/simulate", `{"reference_string": "1,2,3", "frames": 2.5}`, http.StatusBadRequest, "INVALID_CAPACITY", "Invalid frames: Number of frames must be an integer, while 2.5 was provided"},
		{"StringFrames", "/simulate", `{"reference_string": "1,2,3", "frames": "three"}`, http.StatusBadRequest, "INVALID_CAPACITY", "Invalid frames: Number of frames must be an integer, while \"three\" was provided"},
		{"TooManyFrames", "/simulate", `{"reference_string": "1,2,3", "frames": 65}`, http.StatusBadRequest, "INVALID_CAPACITY", "Invalid frames: Number of frames must not exceed 64, while 65 frames were requested"},
		{"UnknownAlgorithm", "/simulate", `{"reference_string": "1,2,3", "frames": 3, "algorithm": "optimal"}`, http.StatusBadRequest, "UNKNOWN_ALGORITHM", "Invalid algorithm: Unknown replacement policy \"optimal\""},
	} {
		t.Run(testCase.name, func(t *testing.T) {
			w := doRequest(handler, http.MethodPost, testCase.path, testCase.body, nil)
			require.Equal(t, testCase.statusCode, w.Code)
			body := decodeJSON(t, w)
			require.Len(t, body, 1)
			details := body["error"].(map[string]any)
			require.Equal(t, testCase.kind, details["kind"])
			if testCase.message != "" {
				require.Equal(t, testCase.message, details["message"])
			}
		})
	}

	t.Run("InvalidQuery", func(t *testing.T) {
		w := doRequest(handler, http.MethodGet, "/?query=%5B", "", nil)
		require.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("NotFound", func(t *testing.T) {
		w := doRequest(handler, http.MethodGet, "/nonexistent", "", nil)
		require.Equal(t, http.StatusNotFound, w.Code)
		require.Equal(t, map[string]any{
			"error": map[string]any{"message": "No route for path \"/nonexistent\""},
		}, decodeJSON(t, w))
	})

	t.Run("MethodNotAllowed", func(t *testing.T) {
		w := doRequest(handler, http.MethodGet, "/simulate", "", nil)
		require.Equal(t, http.StatusMethodNotAllowed, w.Code)
	})
}

func TestHandlerInternalError(t *testing.T) {
	ctrl := gomock.NewController(t)

	runner := mock.NewMockRunner(ctrl)
	errorLogger := mock.NewMockErrorLogger(ctrl)
	handler := api.NewHandler(api.HandlerOptions{
		Parser:   reference.DefaultParser,
		Runner:   runner,
		Comparer: simulator.NewComparer(runner),
		UUIDGenerator: func() (uuid.UUID, error) {
			return uuid.MustParse(testRequestID), nil
		},
		ErrorLogger: errorLogger,
	})

	runner.EXPECT().Run(gomock.Any(), reference.NewSequence("1"), 1, eviction.LeastRecentlyUsed).
		Return(nil, util.NewKindError(codes.Internal, util.ErrorKindNotResident, "Page \"1\" is not resident"))
	// The error kind must be retained while wrapping.
	errorLogger.EXPECT().Log(testutil.EqStatus(t, util.NewKindError(codes.Internal, util.ErrorKindNotResident, "Request "+testRequestID+": POST /simulate: Page \"1\" is not resident")))

	w := doRequest(handler, http.MethodPost, "/simulate", `{"reference_string": "1", "frames": 1, "algorithm": "lru"}`, nil)
	require.Equal(t, http.StatusInternalServerError, w.Code)
	require.Equal(t, map[string]any{
		"error": map[string]any{
			"kind":    "NOT_RESIDENT",
			"message": "Page \"1\" is not resident",
		},
	}, decodeJSON(t, w))
}

func TestHandlerRequestIDFailure(t *testing.T) {
	ctrl := gomock.NewController(t)

	errorLogger := mock.NewMockErrorLogger(ctrl)
	runner := mock.NewMockRunner(ctrl)
	handler := api.NewHandler(api.HandlerOptions{
		Parser:   reference.DefaultParser,
		Runner:   runner,
		Comparer: simulator.NewComparer(runner),
		UUIDGenerator: func() (uuid.UUID, error) {
			return uuid.UUID{}, errors.New("Entropy pool exhausted")
		},
		ErrorLogger: errorLogger,
	})

	// Requests are still served, albeit without an identifier.
	errorLogger.EXPECT().Log(testutil.EqPrefixedStatus(status.Error(codes.Internal, "Failed to generate request ID: ")))

	w := doRequest(handler, http.MethodGet, "/", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Empty(t, w.Header().Get("X-Request-Id"))
}

func TestHandlerCORS(t *testing.T) {
	handler := newTestHandler(t, util.DefaultErrorLogger)

	t.Run("Preflight", func(t *testing.T) {
		w := doRequest(handler, http.MethodOptions, "/simulate", "", http.Header{
			"Origin":                         []string{"http://localhost:5173"},
			"Access-Control-Request-Method":  []string{"POST"},
			"Access-Control-Request-Headers": []string{"content-type"},
		})
		require.Equal(t, http.StatusNoContent, w.Code)
		require.Equal(t, "http://localhost:5173", w.Header().Get("Access-Control-Allow-Origin"))
		require.Equal(t, "GET, POST, OPTIONS", w.Header().Get("Access-Control-Allow-Methods"))
		require.Equal(t, "content-type", w.Header().Get("Access-Control-Allow-Headers"))
	})

	t.Run("PreflightDisallowedOrigin", func(t *testing.T) {
		w := doRequest(handler, http.MethodOptions, "/simulate", "", http.Header{
			"Origin":                        []string{"http://evil.example.com"},
			"Access-Control-Request-Method": []string{"POST"},
		})
		require.Equal(t, http.StatusForbidden, w.Code)
		require.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("SimpleRequest", func(t *testing.T) {
		w := doRequest(handler, http.MethodGet, "/", "", http.Header{
			"Origin": []string{"http://localhost:5173"},
		})
		require.Equal(t, http.StatusOK, w.Code)
		require.Equal(t, "http://localhost:5173", w.Header().Get("Access-Control-Allow-Origin"))
		require.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
	})

	t.Run("SimpleRequestDisallowedOrigin", func(t *testing.T) {
		w := doRequest(handler, http.MethodGet, "/", "", http.Header{
			"Origin": []string{"http://evil.example.com"},
		})
		require.Equal(t, http.StatusOK, w.Code)
		require.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	})
}

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/aohorodnyk/mimeheader"
	"github.com/buildbarn/bb-pagesim/pkg/eviction"
	bb_http "github.com/buildbarn/bb-pagesim/pkg/http"
	"github.com/buildbarn/bb-pagesim/pkg/jmespath"
	"github.com/buildbarn/bb-pagesim/pkg/reference"
	"github.com/buildbarn/bb-pagesim/pkg/simulator"
	"github.com/buildbarn/bb-pagesim/pkg/util"
	"github.com/gorilla/mux"
	"github.com/klauspost/compress/gzhttp"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	requestIDHeader = "X-Request-Id"
	queryParameter  = "query"

	mediaTypeJSON = "application/json"
	mediaTypeText = "text/plain"
)

var supportedMediaTypes = []string{mediaTypeJSON, mediaTypeText}

// WelcomeMessage is returned by the root endpoint.
const WelcomeMessage = "Welcome to Page Replacement Simulator"

// HandlerOptions contains the dependencies of the handler returned by
// NewHandler.
type HandlerOptions struct {
	Parser   *reference.Parser
	Runner   simulator.Runner
	Comparer simulator.Comparer
	// Largest number of frames that may be requested. Zero means
	// there is no limit.
	MaximumFrames int
	// Origins from which browsers may make cross-origin requests.
	AllowedOrigins []string
	UUIDGenerator  util.UUIDGenerator
	ErrorLogger    util.ErrorLogger
}

type handler struct {
	decoder       requestDecoder
	runner        simulator.Runner
	comparer      simulator.Comparer
	uuidGenerator util.UUIDGenerator
	errorLogger   util.ErrorLogger
}

// NewHandler creates an HTTP handler that exposes the simulator as a
// JSON API. Clients that prefer text/plain receive human readable
// traces instead. Responses may be projected by providing a JMESPath
// expression in the "query" URL parameter.
func NewHandler(options HandlerOptions) http.Handler {
	h := &handler{
		decoder: requestDecoder{
			parser:        options.Parser,
			maximumFrames: options.MaximumFrames,
		},
		runner:        options.Runner,
		comparer:      options.Comparer,
		uuidGenerator: options.UUIDGenerator,
		errorLogger:   options.ErrorLogger,
	}

	router := mux.NewRouter()
	router.HandleFunc("/", h.handleRoot).Methods(http.MethodGet)
	router.HandleFunc("/algorithms", h.handleAlgorithms).Methods(http.MethodGet)
	router.HandleFunc("/simulate", h.handleSimulate).Methods(http.MethodPost)
	router.HandleFunc("/simulate_all", h.handleSimulateAll).Methods(http.MethodPost)
	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h.writeError(w, r, status.Errorf(codes.NotFound, "No route for path %#v", r.URL.Path))
	})
	router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h.writeErrorWithStatusCode(w, r, status.Errorf(codes.InvalidArgument, "Method %s is not allowed for path %#v", r.Method, r.URL.Path), http.StatusMethodNotAllowed)
	})

	return NewCORSHandler(gzhttp.GzipHandler(h.withRequestID(router)), options.AllowedOrigins)
}

type requestIDKey struct{}

// withRequestID attaches a unique identifier to every request, so that
// logged errors can be correlated with responses.
func (h *handler) withRequestID(base http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := h.uuidGenerator()
		if err != nil {
			h.errorLogger.Log(util.StatusWrapWithCode(err, codes.Internal, "Failed to generate request ID"))
			base.ServeHTTP(w, r)
			return
		}
		requestID := id.String()
		w.Header().Set(requestIDHeader, requestID)
		base.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey{}, requestID)))
	})
}

func (h *handler) handleRoot(w http.ResponseWriter, r *http.Request) {
	h.writeResult(w, r, &welcomeResponse{
		Message:    WelcomeMessage,
		Algorithms: policyNames(eviction.AllPolicies()),
	}, nil)
}

func (h *handler) handleAlgorithms(w http.ResponseWriter, r *http.Request) {
	h.writeResult(w, r, &algorithmsResponse{
		Algorithms: policyNames(eviction.AllPolicies()),
		Compared:   policyNames(simulator.ComparedPolicies),
		Default:    eviction.FirstInFirstOut.String(),
	}, nil)
}

func (h *handler) handleSimulate(w http.ResponseWriter, r *http.Request) {
	s, err := h.decoder.decode(r.Body, true)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	run, err := h.runner.Run(r.Context(), s.sequence, s.capacity, s.policy)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeResult(w, r, newRunResponse(run), func() ([]byte, error) {
		var b bytes.Buffer
		err := WriteRunTable(&b, run)
		return b.Bytes(), err
	})
}

func (h *handler) handleSimulateAll(w http.ResponseWriter, r *http.Request) {
	s, err := h.decoder.decode(r.Body, false)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	comparison, err := h.comparer.Compare(r.Context(), s.sequence, s.capacity)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeResult(w, r, newComparisonResponse(comparison), func() ([]byte, error) {
		var b bytes.Buffer
		err := WriteComparisonTable(&b, comparison)
		return b.Bytes(), err
	})
}

// negotiateMediaType determines whether the client prefers JSON or
// plain text. JSON is used if the client expresses no preference.
func negotiateMediaType(r *http.Request) string {
	accept := r.Header.Get("Accept")
	if accept == "" {
		return mediaTypeJSON
	}
	_, mediaType, matched := mimeheader.ParseAcceptHeader(accept).Negotiate(supportedMediaTypes, mediaTypeJSON)
	if !matched {
		return mediaTypeJSON
	}
	return mediaType
}

// writeResult sends a successful response. The response is projected
// if the client provided a JMESPath expression. Otherwise it may be
// rendered as text, if renderText is provided and the client prefers
// it.
func (h *handler) writeResult(w http.ResponseWriter, r *http.Request, result interface{}, renderText func() ([]byte, error)) {
	if query := r.URL.Query().Get(queryParameter); query != "" {
		expression, err := jmespath.Compile(query)
		if err != nil {
			h.writeError(w, r, util.StatusWrapf(err, "Invalid %#v parameter", queryParameter))
			return
		}
		projected, err := expression.SearchValue(result)
		if err != nil {
			h.writeError(w, r, err)
			return
		}
		h.writeJSON(w, r, projected, http.StatusOK)
		return
	}

	if renderText != nil && negotiateMediaType(r) == mediaTypeText {
		body, err := renderText()
		if err != nil {
			h.writeError(w, r, util.StatusWrapWithCode(err, codes.Internal, "Failed to render text"))
			return
		}
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		w.Write(body)
		return
	}
	h.writeJSON(w, r, result, http.StatusOK)
}

func (h *handler) writeJSON(w http.ResponseWriter, r *http.Request, value interface{}, statusCode int) {
	body, err := json.Marshal(value)
	if err != nil {
		h.logError(r, util.StatusWrapWithCode(err, codes.Internal, "Failed to marshal response"))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	w.Write(append(body, '\n'))
}

func (h *handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	h.writeErrorWithStatusCode(w, r, err, bb_http.StatusCodeFromError(err))
}

func (h *handler) writeErrorWithStatusCode(w http.ResponseWriter, r *http.Request, err error, statusCode int) {
	if statusCode >= http.StatusInternalServerError {
		h.logError(r, err)
	}
	h.writeJSON(w, r, &errorResponse{
		Error: errorDetails{
			Kind:    util.ErrorKindOf(err),
			Message: status.Convert(err).Message(),
		},
	}, statusCode)
}

func (h *handler) logError(r *http.Request, err error) {
	errorLogger := h.errorLogger
	if requestID, ok := r.Context().Value(requestIDKey{}).(string); ok {
		errorLogger = util.NewPrefixingErrorLogger(errorLogger, fmt.Sprintf("Request %s", requestID))
	}
	errorLogger.Log(util.StatusWrapf(err, "%s %s", r.Method, r.URL.Path))
}

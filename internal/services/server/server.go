// Package server serves a generated document together with the file contents
// its viewer fetches, so the document works without copying it next to the
// source tree.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/temirov/srcview/internal/services/metrics"
	"github.com/temirov/srcview/internal/treepath"
)

const (
	defaultListenAddress    = "127.0.0.1:0"
	defaultShutdownDuration = 5 * time.Second

	headerContentType   = "Content-Type"
	headerContentLength = "Content-Length"
	headerCacheControl  = "Cache-Control"
	mimeTypeHTML        = "text/html; charset=utf-8"
	mimeTypeText        = "text/plain; charset=utf-8"
	cacheControlNoStore = "no-store"

	rootPath    = "/"
	metricsPath = "/metrics"

	routeDocument = "document"
	routeContent  = "content"
	routeMetrics  = "metrics"
)

// ContentSource resolves tree paths to file text.
type ContentSource interface {
	Contains(path treepath.Path) bool
	Fetch(ctx context.Context, path treepath.Path) (string, error)
}

// Config defines runtime options for the server.
type Config struct {
	Address         string
	Document        []byte
	Content         ContentSource
	ShutdownTimeout time.Duration
	// DisableMetrics removes the /metrics endpoint.
	DisableMetrics bool
	Logger         *zap.Logger
}

// Server serves the document at / and tree file text at /<tree path>.
type Server struct {
	config Config
}

// NewServer creates a new Server with defaults applied.
func NewServer(config Config) Server {
	normalized := config
	if normalized.Address == "" {
		normalized.Address = defaultListenAddress
	}
	if normalized.ShutdownTimeout <= 0 {
		normalized.ShutdownTimeout = defaultShutdownDuration
	}
	if normalized.Logger == nil {
		normalized.Logger = zap.NewNop()
	}
	return Server{config: normalized}
}

// Handler returns the HTTP handler for the document, tree files and metrics.
// A tree file named like the metrics endpoint shadows it.
func (server Server) Handler() http.Handler {
	return http.HandlerFunc(server.route)
}

// Run starts the server and blocks until ctx is canceled. notify receives the
// bound address once the listener is active.
func (server Server) Run(ctx context.Context, notify func(string)) error {
	listener, listenErr := net.Listen("tcp", server.config.Address)
	if listenErr != nil {
		return fmt.Errorf("listen on %s: %w", server.config.Address, listenErr)
	}
	actualAddress := listener.Addr().String()

	httpServer := &http.Server{Handler: server.Handler(), ReadHeaderTimeout: 10 * time.Second}
	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		serveErr := httpServer.Serve(listener)
		if serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			return fmt.Errorf("serve document: %w", serveErr)
		}
		return nil
	})

	server.config.Logger.Info("serving document", zap.String("address", actualAddress))
	if notify != nil {
		notify(actualAddress)
	}

	group.Go(func() error {
		<-groupCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), server.config.ShutdownTimeout)
		defer cancel()
		shutdownErr := httpServer.Shutdown(shutdownCtx)
		if shutdownErr != nil && !errors.Is(shutdownErr, context.Canceled) && !errors.Is(shutdownErr, http.ErrServerClosed) {
			return fmt.Errorf("shutdown server: %w", shutdownErr)
		}
		server.config.Logger.Info("server stopped")
		return nil
	})

	return group.Wait()
}

func (server Server) route(writer http.ResponseWriter, request *http.Request) {
	if request.Method != http.MethodGet && request.Method != http.MethodHead {
		writer.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if request.URL.Path == rootPath {
		server.observe(routeDocument, writer, request, server.handleDocument)
		return
	}
	encodedPath := strings.TrimPrefix(request.URL.Path, rootPath)
	treePath, parseErr := treepath.Parse(encodedPath)
	if parseErr == nil && server.config.Content != nil && server.config.Content.Contains(treePath) {
		server.observe(routeContent, writer, request, func(writer http.ResponseWriter, request *http.Request) {
			server.handleContent(writer, request, treePath)
		})
		return
	}
	if request.URL.Path == metricsPath && !server.config.DisableMetrics {
		metrics.Handler().ServeHTTP(writer, request)
		return
	}
	server.observe(routeContent, writer, request, func(writer http.ResponseWriter, request *http.Request) {
		http.NotFound(writer, request)
	})
}

func (server Server) handleDocument(writer http.ResponseWriter, request *http.Request) {
	writer.Header().Set(headerContentType, mimeTypeHTML)
	writer.Header().Set(headerContentLength, strconv.Itoa(len(server.config.Document)))
	writer.WriteHeader(http.StatusOK)
	if request.Method == http.MethodHead {
		return
	}
	_, _ = writer.Write(server.config.Document)
}

func (server Server) handleContent(writer http.ResponseWriter, request *http.Request, path treepath.Path) {
	text, fetchErr := server.config.Content.Fetch(request.Context(), path)
	if fetchErr != nil {
		metrics.RecordContentFetch(0, false)
		statusCode := statusCodeFromError(fetchErr)
		server.config.Logger.Debug("content fetch failed", zap.String("path", path.String()), zap.Error(fetchErr))
		http.Error(writer, http.StatusText(statusCode), statusCode)
		return
	}
	metrics.RecordContentFetch(len(text), true)
	writer.Header().Set(headerContentType, mimeTypeText)
	writer.Header().Set(headerCacheControl, cacheControlNoStore)
	writer.Header().Set(headerContentLength, strconv.Itoa(len(text)))
	writer.WriteHeader(http.StatusOK)
	if request.Method == http.MethodHead {
		return
	}
	_, _ = writer.Write([]byte(text))
}

func (server Server) observe(route string, writer http.ResponseWriter, request *http.Request, handler http.HandlerFunc) {
	startedAt := time.Now()
	recorder := &statusRecorder{ResponseWriter: writer, statusCode: http.StatusOK}
	handler(recorder, request)
	metrics.RecordHTTPRequest(request.Method, route, recorder.statusCode, time.Since(startedAt))
}

func statusCodeFromError(err error) int {
	switch {
	case errors.Is(err, ErrNotInTree):
		return http.StatusNotFound
	case errors.Is(err, ErrBinaryContent):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (recorder *statusRecorder) WriteHeader(statusCode int) {
	recorder.statusCode = statusCode
	recorder.ResponseWriter.WriteHeader(statusCode)
}

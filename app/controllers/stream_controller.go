package controllers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"runtime/debug"
	"sync"

	"github.com/shashiranjanraj/radio/app/routes"
	"github.com/shashiranjanraj/radio/app/services"
	"github.com/shashiranjanraj/radio/pkg/logger"
	"github.com/shashiranjanraj/radio/pkg/metrics"
	"github.com/shashiranjanraj/radio/pkg/reqid"
)

// Resolver opens the resource behind a logical path.
type Resolver interface {
	GetFileStream(ctx context.Context, file string) (services.FileStream, error)
}

// TypeTable looks up the MIME type for an extension token.
type TypeTable interface {
	Lookup(ext string) (string, bool)
}

// ErrorLogger receives unexpected failures. *slog.Logger satisfies it.
type ErrorLogger interface {
	Error(msg string, args ...any)
}

// errClientGone marks a stream cut short because the request context ended.
var errClientGone = errors.New("client went away")

type failure int

const (
	failureInternal failure = iota
	failureNotFound
	failureAborted
)

func (f failure) String() string {
	switch f {
	case failureNotFound:
		return "not_found"
	case failureAborted:
		return "aborted"
	default:
		return "error"
	}
}

func classify(err error) failure {
	switch {
	case errors.Is(err, services.ErrFileNotFound):
		return failureNotFound
	case errors.Is(err, errClientGone), errors.Is(err, context.Canceled):
		return failureAborted
	default:
		return failureInternal
	}
}

// Dispatcher is the per-request error boundary: it runs the routing
// decision, streams the resolved resource and turns every failure into
// exactly one terminal response.
type Dispatcher struct {
	router *routes.Router
	files  Resolver
	types  TypeTable
	log    ErrorLogger
}

// NewDispatcher wires the collaborators. A nil log sends failures to the
// process logger.
func NewDispatcher(router *routes.Router, files Resolver, types TypeTable, log ErrorLogger) *Dispatcher {
	if log == nil {
		log = processLogger{}
	}
	return &Dispatcher{router: router, files: files, types: types, log: log}
}

func (d *Dispatcher) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	rw := &responseState{ResponseWriter: w}
	route := d.router.Match(r.Method, r.URL.Path)

	if err := d.dispatch(rw, r, route); err != nil {
		d.fail(rw, r, route, err)
	}
}

// dispatch executes route. Panics below it are reported as errors so they
// get the same 500 treatment as any other failure.
func (d *Dispatcher) dispatch(w *responseState, r *http.Request, route routes.Route) (err error) {
	defer func() {
		if p := recover(); p != nil {
			if p == http.ErrAbortHandler {
				panic(p)
			}
			err = fmt.Errorf("panic: %v\n%s", p, debug.Stack())
		}
	}()

	switch route.Kind {
	case routes.KindRedirect:
		w.Header().Set("Location", route.Target)
		w.WriteHeader(http.StatusFound)
		return nil

	case routes.KindPage, routes.KindFile:
		fs, err := d.files.GetFileStream(r.Context(), route.Target)
		if err != nil {
			metrics.RecordResolve(classify(err).String())
			return err
		}
		metrics.RecordResolve("found")
		return d.stream(w, r, route, fs)

	default:
		w.WriteHeader(http.StatusNotFound)
		return nil
	}
}

// stream writes headers (file routes with a known extension only) and then
// pipes the resource to the client. The source is closed on every path,
// including when the client disconnects while the copy is blocked on it.
func (d *Dispatcher) stream(w *responseState, r *http.Request, route routes.Route, fs services.FileStream) error {
	src := &onceCloser{rc: fs.Stream}
	defer src.Close()

	stop := context.AfterFunc(r.Context(), func() { _ = src.Close() })
	defer stop()

	if route.Kind == routes.KindFile && fs.Type != "" {
		if ct, ok := d.types.Lookup(fs.Type); ok {
			w.Header().Set("Content-Type", ct)
		}
		w.WriteHeader(http.StatusOK)
	}

	n, err := io.Copy(w, src)
	metrics.RecordStream(route.Kind.String(), n)
	if err != nil {
		if ctxErr := r.Context().Err(); ctxErr != nil {
			return fmt.Errorf("%w after %d bytes: %w", errClientGone, n, ctxErr)
		}
		return fmt.Errorf("stream %s after %d bytes: %w", route.Target, n, err)
	}
	return nil
}

func (d *Dispatcher) fail(w *responseState, r *http.Request, route routes.Route, err error) {
	switch classify(err) {
	case failureNotFound:
		w.finalize(http.StatusNotFound)

	case failureAborted:
		metrics.RecordAbort()
		logger.WithCtx(r.Context()).Debug("stream aborted", "path", r.URL.Path, "error", err)

	case failureInternal:
		d.log.Error("request failed",
			"request_id", reqid.FromCtx(r.Context()),
			"method", r.Method,
			"path", r.URL.Path,
			"route", route.Kind.String(),
			"headers_sent", w.wroteHeader,
			"error", err,
		)
		w.finalize(http.StatusInternalServerError)
	}
}

// responseState remembers whether the status line has gone out so a late
// failure never tries to write a second one.
type responseState struct {
	http.ResponseWriter
	wroteHeader bool
}

func (w *responseState) WriteHeader(code int) {
	if w.wroteHeader {
		return
	}
	w.wroteHeader = true
	w.ResponseWriter.WriteHeader(code)
}

func (w *responseState) Write(b []byte) (int, error) {
	w.wroteHeader = true
	return w.ResponseWriter.Write(b)
}

func (w *responseState) Unwrap() http.ResponseWriter { return w.ResponseWriter }

// finalize sends a body-less status unless headers are already out, in which
// case returning from the handler ends the response.
func (w *responseState) finalize(status int) {
	if w.wroteHeader {
		return
	}
	w.WriteHeader(status)
}

type onceCloser struct {
	rc   io.ReadCloser
	once sync.Once
	err  error
}

func (c *onceCloser) Read(p []byte) (int, error) { return c.rc.Read(p) }

func (c *onceCloser) Close() error {
	c.once.Do(func() { c.err = c.rc.Close() })
	return c.err
}

// processLogger defers to logger.L at call time so a sink attached after
// start-up still receives failures.
type processLogger struct{}

func (processLogger) Error(msg string, args ...any) { logger.Error(msg, args...) }

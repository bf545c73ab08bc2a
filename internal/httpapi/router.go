// Package httpapi serves the color map analyzer over HTTP.
//
// Routes:
//
//	GET  /healthz                 liveness
//	GET  /v1/config               analyzer configuration in effect
//	GET  /v1/distance?a=..&b=..   Delta E between two hex colors
//	POST /v1/analyze              multipart field "image"; query max_regions
//	POST /v1/match                multipart fields "a" and "b"; query tolerance, max_regions
//	GET  /v1/stream               websocket; binary image frames in, one JSON reply per frame
//
// Images larger than Config.MaxImageDimension are analyzed on a downsized
// copy: coordinates refer to the upload, counts to the copy.
//
// Errors are returned as {"error": "..."} with 400 for bad input, 422 when
// pixels cannot be extracted, 503 when the analysis time limit is hit and
// 500 otherwise.
package httpapi

import (
	"bufio"
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/ironsheep/colormatch-mcp/internal/colorregion"
	"github.com/ironsheep/colormatch-mcp/internal/config"
)

type handler struct {
	analyzer *colorregion.Analyzer
	cfg      config.Config
	log      *logrus.Logger
}

// NewRouter builds the HTTP API for cfg.
func NewRouter(cfg config.Config, logger *logrus.Logger) http.Handler {
	h := &handler{
		analyzer: colorregion.NewAnalyzer(cfg.Analyzer),
		cfg:      cfg,
		log:      logger,
	}

	router := mux.NewRouter()
	router.Use(h.logRequests)
	router.HandleFunc("/healthz", h.health).Methods(http.MethodGet)

	v1 := router.PathPrefix("/v1").Subrouter()
	v1.HandleFunc("/config", h.config).Methods(http.MethodGet)
	v1.HandleFunc("/distance", h.distance).Methods(http.MethodGet)
	v1.HandleFunc("/analyze", h.analyze).Methods(http.MethodPost)
	v1.HandleFunc("/match", h.match).Methods(http.MethodPost)
	v1.HandleFunc("/stream", h.stream).Methods(http.MethodGet)

	return router
}

// ListenAndServe serves handler on addr until ctx is done, then shuts down
// gracefully.
func ListenAndServe(ctx context.Context, addr string, handler http.Handler, logger *logrus.Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.WithField("addr", addr).Info("http api listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

// statusRecorder captures the response status for logging.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// Hijack lets the websocket upgrade take over the connection.
func (r *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hj, ok := r.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("response writer does not support hijacking")
	}
	r.status = http.StatusSwitchingProtocols
	return hj.Hijack()
}

func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

func (h *handler) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		h.log.WithFields(logrus.Fields{
			"method":  r.Method,
			"path":    r.URL.Path,
			"status":  rec.status,
			"elapsed": time.Since(start).Round(time.Microsecond),
		}).Debug("http request")
	})
}

package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"net/http"
	"strconv"

	"github.com/ironsheep/colormatch-mcp/internal/colorregion"
	"github.com/ironsheep/colormatch-mcp/internal/imaging"
)

type errorResponse struct {
	Error string `json:"error"`
}

type configResponse struct {
	Analyzer          colorregion.Config `json:"analyzer"`
	MaxImageDimension int                `json:"max_image_dimension"`
	MaxUploadBytes    int64              `json:"max_upload_bytes"`
}

type distanceResponse struct {
	A         string  `json:"a"`
	B         string  `json:"b"`
	DeltaE    float64 `json:"delta_e"`
	Tolerance float64 `json:"tolerance"`
	Match     bool    `json:"match"`
}

type matchResponse struct {
	Matched   bool                      `json:"matched"`
	Match     *colorregion.ColorMatch   `json:"match"`
	Tolerance float64                   `json:"tolerance"`
	RegionsA  []colorregion.ColorRegion `json:"regions_a"`
	RegionsB  []colorregion.ColorRegion `json:"regions_b"`
	Scores    [][]float64               `json:"scores"`
}

// badRequest marks errors caused by the client.
type badRequest struct{ err error }

func (e badRequest) Error() string { return e.err.Error() }
func (e badRequest) Unwrap() error { return e.err }

func invalid(format string, args ...interface{}) error {
	return badRequest{fmt.Errorf(format, args...)}
}

func writeJSONResponse(w http.ResponseWriter, status int, body interface{}) {
	marshaled, err := json.Marshal(body)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(marshaled)
}

func (h *handler) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	var br badRequest
	var extraction *colorregion.ExtractionError
	switch {
	case errors.As(err, &br):
		status = http.StatusBadRequest
	case errors.As(err, &extraction):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, context.DeadlineExceeded):
		status = http.StatusServiceUnavailable
	}
	if status >= http.StatusInternalServerError {
		h.log.WithError(err).Error("request failed")
	}
	writeJSONResponse(w, status, errorResponse{Error: err.Error()})
}

func (h *handler) health(w http.ResponseWriter, _ *http.Request) {
	writeJSONResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *handler) config(w http.ResponseWriter, _ *http.Request) {
	writeJSONResponse(w, http.StatusOK, configResponse{
		Analyzer:          h.analyzer.Config(),
		MaxImageDimension: h.cfg.MaxImageDimension,
		MaxUploadBytes:    h.cfg.MaxUploadBytes,
	})
}

func (h *handler) distance(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	a, err := colorregion.ParseHex(q.Get("a"))
	if err != nil {
		h.writeError(w, invalid("a: %v", err))
		return
	}
	b, err := colorregion.ParseHex(q.Get("b"))
	if err != nil {
		h.writeError(w, invalid("b: %v", err))
		return
	}
	tol, err := h.tolerance(r)
	if err != nil {
		h.writeError(w, err)
		return
	}

	d := colorregion.ColorDistance(a, b)
	writeJSONResponse(w, http.StatusOK, distanceResponse{
		A:         a.Hex(),
		B:         b.Hex(),
		DeltaE:    d,
		Tolerance: tol,
		Match:     d <= tol,
	})
}

func (h *handler) analyze(w http.ResponseWriter, r *http.Request) {
	maxRegions, err := queryInt(r, "max_regions")
	if err != nil {
		h.writeError(w, err)
		return
	}
	if err := h.parseUpload(w, r); err != nil {
		h.writeError(w, err)
		return
	}
	img, err := h.formImage(r, "image")
	if err != nil {
		h.writeError(w, err)
		return
	}

	m, err := h.analyzer.AnalyzeFit(r.Context(), img, h.cfg.MaxImageDimension, maxRegions)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, m)
}

func (h *handler) match(w http.ResponseWriter, r *http.Request) {
	maxRegions, err := queryInt(r, "max_regions")
	if err != nil {
		h.writeError(w, err)
		return
	}
	tol, err := h.tolerance(r)
	if err != nil {
		h.writeError(w, err)
		return
	}
	if err := h.parseUpload(w, r); err != nil {
		h.writeError(w, err)
		return
	}

	maps := make([]*colorregion.ImageColorMap, 2)
	for i, field := range []string{"a", "b"} {
		img, err := h.formImage(r, field)
		if err != nil {
			h.writeError(w, err)
			return
		}
		if maps[i], err = h.analyzer.AnalyzeFit(r.Context(), img, h.cfg.MaxImageDimension, maxRegions); err != nil {
			h.writeError(w, fmt.Errorf("image %s: %w", field, err))
			return
		}
	}

	m := colorregion.FindBestColorMatch(maps[0].Regions, maps[1].Regions, tol)
	scores := colorregion.ScoreRows(colorregion.ScoreMatrix(maps[0].Regions, maps[1].Regions))
	if scores == nil {
		scores = [][]float64{}
	}
	writeJSONResponse(w, http.StatusOK, matchResponse{
		Matched:   m != nil,
		Match:     m,
		Tolerance: tol,
		RegionsA:  maps[0].Regions,
		RegionsB:  maps[1].Regions,
		Scores:    scores,
	})
}

func (h *handler) parseUpload(w http.ResponseWriter, r *http.Request) error {
	r.Body = http.MaxBytesReader(w, r.Body, h.cfg.MaxUploadBytes)
	if err := r.ParseMultipartForm(h.cfg.MaxUploadBytes); err != nil {
		return invalid("invalid multipart upload: %v", err)
	}
	return nil
}

func (h *handler) formImage(r *http.Request, field string) (image.Image, error) {
	f, _, err := r.FormFile(field)
	if err != nil {
		return nil, invalid("missing file field %q", field)
	}
	defer f.Close()

	img, _, err := imaging.DecodeImageLimit(f, h.cfg.MaxImagePixels)
	if err != nil {
		return nil, invalid("field %q: %v", field, err)
	}
	return img, nil
}

// queryInt returns 0 when the parameter is absent.
func queryInt(r *http.Request, name string) (int, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, invalid("%s: %v", name, err)
	}
	return n, nil
}

func (h *handler) tolerance(r *http.Request) (float64, error) {
	v := r.URL.Query().Get("tolerance")
	if v == "" {
		return h.analyzer.Config().ColorTolerance, nil
	}
	tol, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, invalid("tolerance: %v", err)
	}
	return tol, nil
}

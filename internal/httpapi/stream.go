package httpapi

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/ironsheep/colormatch-mcp/internal/colorregion"
	"github.com/ironsheep/colormatch-mcp/internal/imaging"
)

const streamWriteTimeout = 10 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
}

// streamFrame answers one binary image message on /v1/stream.
type streamFrame struct {
	Frame int                        `json:"frame"`
	Map   *colorregion.ImageColorMap `json:"map,omitempty"`

	// Transition plans the crossfade from the previous good frame to this
	// one. Absent for the first frame.
	Transition *colorregion.TransitionPlan `json:"transition,omitempty"`
	Error      string                      `json:"error,omitempty"`
}

// stream analyzes a sequence of images, typically the slides of a
// slideshow, sent as binary websocket messages. Every message gets one JSON
// reply. A frame that cannot be decoded or analyzed is reported and skipped;
// the next frame is planned against the last good one.
func (h *handler) stream(w http.ResponseWriter, r *http.Request) {
	maxRegions, err := queryInt(r, "max_regions")
	if err != nil {
		h.writeError(w, err)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already replied to the client.
		h.log.WithError(err).Debug("websocket upgrade failed")
		return
	}
	defer conn.Close()
	conn.SetReadLimit(h.cfg.MaxUploadBytes)

	log := h.log.WithField("remote", r.RemoteAddr)
	log.Debug("stream opened")

	var prev *colorregion.ImageColorMap
	for frame := 0; ; frame++ {
		kind, data, err := conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.WithError(err).Debug("stream read")
			}
			log.WithField("frames", frame).Debug("stream closed")
			return
		}

		reply := streamFrame{Frame: frame}
		if m, err := h.streamAnalyze(r, kind, data, maxRegions); err != nil {
			reply.Error = err.Error()
		} else {
			reply.Map = m
			if prev != nil {
				reply.Transition = h.analyzer.PlanTransition(prev, m)
			}
			prev = m
		}

		_ = conn.SetWriteDeadline(time.Now().Add(streamWriteTimeout))
		if err := conn.WriteJSON(reply); err != nil {
			log.WithError(err).WithFields(logrus.Fields{"frame": frame}).Warn("stream write")
			return
		}
	}
}

func (h *handler) streamAnalyze(r *http.Request, kind int, data []byte, maxRegions int) (*colorregion.ImageColorMap, error) {
	if kind != websocket.BinaryMessage {
		return nil, errors.New("expected a binary image message")
	}
	img, _, err := imaging.DecodeImageLimit(bytes.NewReader(data), h.cfg.MaxImagePixels)
	if err != nil {
		return nil, err
	}
	m, err := h.analyzer.AnalyzeFit(r.Context(), img, h.cfg.MaxImageDimension, maxRegions)
	if err != nil {
		return nil, fmt.Errorf("analyze: %w", err)
	}
	return m, nil
}

// Package webstream relays report payloads to websocket clients. Each
// client names the report classes it wants on connect and receives the
// matching payloads as JSON text messages.
package webstream

import (
	"context"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"nuha.dev/gpsdjson/internal/sublist"
)

type Handler struct {
	sl     *sublist.Sublist
	logger zerolog.Logger
}

func NewHandler(sl *sublist.Sublist, logger zerolog.Logger) *Handler {
	o := &Handler{sl: sl}
	o.logger = logger.With().Str("module", "webstream").Logger()
	return o
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true,
	})
	if err != nil {
		h.logger.Err(err).Msg("error while upgrading websocket")
		return
	}
	defer c.Close(websocket.StatusInternalError, "handler exited")

	// class subscription list, e.g. ["TPV","SKY"]; empty means all
	classes := []string{}
	readCtx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()
	err = wsjson.Read(readCtx, c, &classes)
	if err != nil {
		h.logger.Err(err).Msg("error while reading subscription request")
		return
	}

	wc := newClient(c, classes, h.logger)
	id := h.sl.Subscribe(wc)
	defer h.sl.Unsubscribe(id)
	wc.run(r.Context())
}

type wsClient struct {
	c       *websocket.Conn
	wch     chan []byte
	want    map[string]bool
	dropped uint64
	closed  uint32
	logger  zerolog.Logger
}

func newClient(c *websocket.Conn, classes []string, logger zerolog.Logger) *wsClient {
	wc := &wsClient{c: c, wch: make(chan []byte, 16), logger: logger}
	if len(classes) > 0 {
		wc.want = make(map[string]bool, len(classes))
		for _, cl := range classes {
			wc.want[cl] = true
		}
	}
	return wc
}

func (wc *wsClient) run(ctx context.Context) {
	go wc.readloop(ctx)
	for {
		select {
		case d := <-wc.wch:
			err := wc.c.Write(ctx, websocket.MessageText, d)
			if err != nil {
				wc.logger.Err(err).Msg("error while writing to connection")
				atomic.StoreUint32(&wc.closed, 1)
				return
			}
		case <-ctx.Done():
			atomic.StoreUint32(&wc.closed, 1)
			return
		}
	}
}

// readloop drains inbound frames so pings are answered; any read error
// marks the client gone.
func (wc *wsClient) readloop(ctx context.Context) {
	for {
		_, _, err := wc.c.Read(ctx)
		if err != nil {
			atomic.StoreUint32(&wc.closed, 1)
			return
		}
	}
}

// Push enqueues data without blocking the sender. A full queue drops
// the payload; a stale client reports closed and gets pruned.
func (wc *wsClient) Push(class string, data []byte) bool {
	if atomic.LoadUint32(&wc.closed) == 1 {
		return true
	}
	if wc.want != nil && !wc.want[class] {
		return false
	}
	select {
	case wc.wch <- data:
	default:
		n := atomic.AddUint64(&wc.dropped, 1)
		wc.logger.Debug().Uint64("dropped", n).Str("class", class).Msg("slow client, dropping payload")
	}
	return false
}

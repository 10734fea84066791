package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/alejandrodnm/polyhedx/internal/domain"
	"github.com/gorilla/websocket"
)

const (
	defaultWSBase = "wss://api.polyhedx.com"

	// writeWait is the time allowed to write a control message to the peer.
	writeWait = 10 * time.Second

	// pongWait is the time allowed to read the next message or pong from the peer.
	pongWait = 60 * time.Second

	// pingPeriod must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	handshakeTimeout = 15 * time.Second
)

// Stream es el cliente WebSocket de precios en vivo: /ws/arenas/{id}/prices.
// Cada mensaje es un punto de precio JSON con el mismo formato que price-history.
type Stream struct {
	wsBase string
	dialer websocket.Dialer
}

// NewStream crea un Stream contra wsBase (ws:// o wss://). Vacío usa producción.
func NewStream(wsBase string) *Stream {
	if wsBase == "" {
		wsBase = defaultWSBase
	}
	return &Stream{
		wsBase: wsBase,
		dialer: websocket.Dialer{HandshakeTimeout: handshakeTimeout},
	}
}

// Stream abre la conexión y publica cada punto recibido en out.
// Devuelve nil cuando ctx se cancela y error si el dial o la lectura fallan.
func (s *Stream) Stream(ctx context.Context, arenaID string, out chan<- domain.PriceSample) error {
	u := fmt.Sprintf("%s/ws/arenas/%s/prices", s.wsBase, url.PathEscape(arenaID))

	conn, _, err := s.dialer.DialContext(ctx, u, nil)
	if err != nil {
		return fmt.Errorf("marketdata.Stream: connect %s: %w", arenaID, err)
	}
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	// Cierra la conexión al cancelar ctx para desbloquear ReadMessage.
	done := make(chan struct{})
	defer close(done)
	go s.pingLoop(ctx, conn, done)

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("marketdata.Stream: read %s: %w", arenaID, err)
		}
		conn.SetReadDeadline(time.Now().Add(pongWait))

		var p pricePointDTO
		if err := json.Unmarshal(msg, &p); err != nil {
			slog.Debug("marketdata: skipping malformed price message", "arena", arenaID, "err", err)
			continue
		}

		select {
		case out <- p.toDomain():
		case <-ctx.Done():
			return nil
		}
	}
}

// pingLoop mantiene viva la conexión y la cierra cuando ctx termina.
func (s *Stream) pingLoop(ctx context.Context, conn *websocket.Conn, done <-chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ctx.Done():
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(writeWait))
			conn.Close()
			return
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}

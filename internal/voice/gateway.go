// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package voice

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/jeranaias/verity-tui/internal/logging"
)

// =============================================================================
// NATIVE GATEWAY VARIANT
// =============================================================================

// Gateway wire messages. The device gateway speaks JSON text frames in
// both directions.
type gatewayMsg struct {
	Type     string `json:"type"`
	Text     string `json:"text,omitempty"`
	Language string `json:"language,omitempty"`
	Error    string `json:"error,omitempty"`
}

// Outbound message types.
const (
	msgStartCapture = "start_capture"
	msgStopCapture  = "stop_capture"
	msgSpeak        = "speak"
	msgStopSpeaking = "stop_speaking"
	msgHaptic       = "haptic"
)

// Inbound message types.
const (
	msgPartial = "partial"
	msgFinal   = "final"
	msgDenied  = "denied"
	msgError   = "error"
)

// dialTimeout bounds both the capability probe and capture connects.
const dialTimeout = 5 * time.Second

// GatewayBridge talks to the device speech service over a websocket. One
// connection per capture; speak commands use short-lived connections so a
// stuck synthesis never blocks capture.
type GatewayBridge struct {
	url string
	log *zap.Logger

	mu          sync.Mutex
	captureConn *websocket.Conn
	speakConn   *websocket.Conn
}

// probeGateway reports whether a speech gateway answers at url. This is
// the startup capability check; it has no side effects on the gateway.
func probeGateway(url string) bool {
	if url == "" {
		return false
	}
	dialer := websocket.Dialer{HandshakeTimeout: dialTimeout}
	conn, _, err := dialer.Dial(url, nil)
	if err != nil {
		return false
	}
	conn.Close()
	return true
}

// newGatewayBridge wraps an already-probed gateway endpoint.
func newGatewayBridge(url string) *GatewayBridge {
	return &GatewayBridge{url: url, log: logging.Named("voice.gateway")}
}

// StartCapture opens a capture stream on the gateway. Emits partial
// transcripts then exactly one final transcript, then the channel closes.
func (g *GatewayBridge) StartCapture(ctx context.Context, languageHint string) (<-chan CaptureEvent, error) {
	g.StopCapture()

	dialer := websocket.Dialer{HandshakeTimeout: dialTimeout}
	conn, _, err := dialer.DialContext(ctx, g.url, nil)
	if err != nil {
		return nil, ErrCaptureUnavailable
	}

	start := gatewayMsg{Type: msgStartCapture, Language: normalizeLanguage(languageHint)}
	if err := conn.WriteJSON(start); err != nil {
		conn.Close()
		return nil, ErrCaptureUnavailable
	}

	g.mu.Lock()
	g.captureConn = conn
	g.mu.Unlock()

	events := make(chan CaptureEvent, 16)
	go g.readCapture(ctx, conn, events)
	return events, nil
}

// readCapture forwards gateway transcript messages until the final one, a
// denial, or connection loss.
func (g *GatewayBridge) readCapture(ctx context.Context, conn *websocket.Conn, events chan<- CaptureEvent) {
	defer close(events)
	defer g.releaseCapture(conn)

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}

		var msg gatewayMsg
		if err := json.Unmarshal(data, &msg); err != nil {
			g.log.Debug("unreadable gateway frame", zap.Error(err))
			continue
		}

		switch msg.Type {
		case msgPartial:
			select {
			case events <- CaptureEvent{PartialText: msg.Text}:
			case <-ctx.Done():
				return
			}
		case msgFinal:
			select {
			case events <- CaptureEvent{PartialText: msg.Text, IsFinal: true}:
			case <-ctx.Done():
			}
			return
		case msgDenied, msgError:
			g.log.Info("capture ended by gateway", zap.String("type", msg.Type), zap.String("error", msg.Error))
			return
		}
	}
}

// releaseCapture closes conn and clears it if it is still the active one.
func (g *GatewayBridge) releaseCapture(conn *websocket.Conn) {
	conn.Close()
	g.mu.Lock()
	if g.captureConn == conn {
		g.captureConn = nil
	}
	g.mu.Unlock()
}

// StopCapture ends any in-progress capture. Idempotent.
func (g *GatewayBridge) StopCapture() {
	g.mu.Lock()
	conn := g.captureConn
	g.captureConn = nil
	g.mu.Unlock()

	if conn == nil {
		return
	}
	_ = conn.WriteJSON(gatewayMsg{Type: msgStopCapture})
	conn.Close()
}

// Speak asks the gateway to synthesize text, first cancelling whatever is
// still playing. All failures are absorbed.
func (g *GatewayBridge) Speak(text, languageHint string) {
	if text == "" {
		return
	}

	g.mu.Lock()
	if g.speakConn != nil {
		_ = g.speakConn.WriteJSON(gatewayMsg{Type: msgStopSpeaking})
		g.speakConn.Close()
		g.speakConn = nil
	}
	g.mu.Unlock()

	dialer := websocket.Dialer{HandshakeTimeout: dialTimeout}
	conn, _, err := dialer.Dial(g.url, nil)
	if err != nil {
		g.log.Debug("speak connect failed", zap.Error(err))
		return
	}

	msg := gatewayMsg{Type: msgSpeak, Text: text, Language: normalizeLanguage(languageHint)}
	if err := conn.WriteJSON(msg); err != nil {
		conn.Close()
		return
	}

	g.mu.Lock()
	g.speakConn = conn
	g.mu.Unlock()

	// Drain acks in the background so the gateway can flow-control; the
	// connection is torn down by the next Speak or by the gateway.
	go func() {
		defer func() {
			g.mu.Lock()
			if g.speakConn == conn {
				g.speakConn = nil
			}
			g.mu.Unlock()
			conn.Close()
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

// HapticPulse forwards a best-effort pulse; errors are ignored.
func (g *GatewayBridge) HapticPulse() {
	dialer := websocket.Dialer{HandshakeTimeout: dialTimeout}
	conn, _, err := dialer.Dial(g.url, nil)
	if err != nil {
		return
	}
	_ = conn.WriteJSON(gatewayMsg{Type: msgHaptic})
	conn.Close()
}

// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package voice

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

// =============================================================================
// GATEWAY BRIDGE TESTS
// =============================================================================

var testUpgrader = websocket.Upgrader{}

// gatewayServer runs handler for each websocket connection and returns the
// ws:// URL to dial.
func gatewayServer(t *testing.T, handler func(*websocket.Conn)) string {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := testUpgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		handler(conn)
	}))
	t.Cleanup(srv.Close)
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func TestProbeGateway(t *testing.T) {
	url := gatewayServer(t, func(conn *websocket.Conn) {
		// Accept and wait for the probe to hang up.
		_, _, _ = conn.ReadMessage()
	})

	if !probeGateway(url) {
		t.Error("Probe should succeed against a live gateway")
	}
	if probeGateway("") {
		t.Error("Probe must fail for an empty URL")
	}
	if probeGateway("ws://127.0.0.1:1/speech") {
		t.Error("Probe must fail for an unreachable gateway")
	}
}

func TestGatewayBridge_CaptureFlow(t *testing.T) {
	url := gatewayServer(t, func(conn *websocket.Conn) {
		var start gatewayMsg
		if err := conn.ReadJSON(&start); err != nil {
			t.Errorf("ReadJSON failed: %v", err)
			return
		}
		if start.Type != msgStartCapture {
			t.Errorf("Expected start_capture, got %q", start.Type)
		}
		if start.Language != "fr-FR" {
			t.Errorf("Language hint not normalized: %q", start.Language)
		}

		_ = conn.WriteJSON(gatewayMsg{Type: msgPartial, Text: "bon"})
		_ = conn.WriteJSON(gatewayMsg{Type: msgPartial, Text: "bonjour"})
		_ = conn.WriteJSON(gatewayMsg{Type: msgFinal, Text: "bonjour le monde"})
	})

	b := newGatewayBridge(url)
	events, err := b.StartCapture(context.Background(), "FR-fr")
	if err != nil {
		t.Fatalf("StartCapture failed: %v", err)
	}

	var got []CaptureEvent
	timeout := time.After(5 * time.Second)
	for {
		select {
		case ev, ok := <-events:
			if !ok {
				if len(got) != 3 {
					t.Fatalf("Expected 3 events, got %d: %+v", len(got), got)
				}
				last := got[2]
				if !last.IsFinal || last.PartialText != "bonjour le monde" {
					t.Errorf("Wrong final event: %+v", last)
				}
				for _, ev := range got[:2] {
					if ev.IsFinal {
						t.Error("Partial event marked final")
					}
				}
				return
			}
			got = append(got, ev)
		case <-timeout:
			t.Fatal("Capture never finished")
		}
	}
}

func TestGatewayBridge_CaptureDenied(t *testing.T) {
	url := gatewayServer(t, func(conn *websocket.Conn) {
		var start gatewayMsg
		_ = conn.ReadJSON(&start)
		_ = conn.WriteJSON(gatewayMsg{Type: msgDenied, Error: "microphone refused"})
	})

	b := newGatewayBridge(url)
	events, err := b.StartCapture(context.Background(), "fr-FR")
	if err != nil {
		t.Fatalf("StartCapture failed: %v", err)
	}

	// Denial closes the channel without a final transcript.
	select {
	case ev, ok := <-events:
		if ok {
			t.Errorf("Expected closed channel, got event %+v", ev)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Channel never closed after denial")
	}
}

func TestGatewayBridge_StopCaptureIdempotent(t *testing.T) {
	b := newGatewayBridge("ws://127.0.0.1:1/speech")
	// No capture in progress; both calls must be safe.
	b.StopCapture()
	b.StopCapture()
}

func TestGatewayBridge_CaptureUnreachable(t *testing.T) {
	b := newGatewayBridge("ws://127.0.0.1:1/speech")
	if _, err := b.StartCapture(context.Background(), "fr-FR"); err != ErrCaptureUnavailable {
		t.Errorf("Expected ErrCaptureUnavailable, got %v", err)
	}
}

package live

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/Pickle1024/Yapyap-AI/internal/audio"
	"github.com/Pickle1024/Yapyap-AI/internal/config"
	"github.com/Pickle1024/Yapyap-AI/internal/model/game"
)

// fakeLiveServer 模拟远端语音服务：收下 setup 帧后交给测试脚本驱动。
func fakeLiveServer(t *testing.T, script func(conn *websocket.Conn, setup clientMessage)) (*httptest.Server, config.LiveConfig) {
	t.Helper()
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade failed: %v", err)
			return
		}
		defer conn.Close()

		var setup clientMessage
		if err := conn.ReadJSON(&setup); err != nil {
			t.Errorf("read setup failed: %v", err)
			return
		}
		script(conn, setup)
	}))

	cfg := config.LiveConfig{
		Endpoint: "ws" + strings.TrimPrefix(srv.URL, "http"),
		Model:    "test-model",
		Voice:    "Kore",
		Enabled:  true,
	}
	return srv, cfg
}

func TestConnectSendsSetupAndDeliversTranscripts(t *testing.T) {
	entries := make(chan game.TranscriptEntry, 4)
	played := make(chan []float32, 4)
	disconnected := make(chan struct{})

	srv, cfg := fakeLiveServer(t, func(conn *websocket.Conn, setup clientMessage) {
		if setup.Setup == nil {
			t.Error("expected setup payload in first frame")
			return
		}
		if setup.Setup.Model != "test-model" {
			t.Errorf("unexpected model: %s", setup.Setup.Model)
		}
		if setup.Setup.SystemInstruction == nil || len(setup.Setup.SystemInstruction.Parts) == 0 {
			t.Error("expected system instruction")
		}
		if setup.Setup.InputAudioTranscription == nil || setup.Setup.OutputAudioTranscription == nil {
			t.Error("expected both transcription flags enabled")
		}

		conn.WriteJSON(serverMessage{SetupComplete: &struct{}{}})
		conn.WriteJSON(serverMessage{ServerContent: &serverContent{
			InputTranscription: &transcriptionText{Text: "nice party"},
		}})
		conn.WriteJSON(serverMessage{ServerContent: &serverContent{
			ModelTurn: &content{Parts: []part{{
				InlineData: &blob{MimeType: "audio/pcm;rate=24000", Data: audio.EncodeBase64(make([]float32, 240))},
			}}},
			OutputTranscription: &transcriptionText{Text: "yeah, great vibes"},
			TurnComplete:        true,
		}})

		// Give the client a moment to drain before the remote closes.
		time.Sleep(100 * time.Millisecond)
	})
	defer srv.Close()

	source := audio.NewStreamSource(true)
	sink := audio.SinkFunc(func(samples []float32) error {
		played <- samples
		return nil
	})
	session := NewSession(cfg, source, sink, Callbacks{
		OnDisconnect:       func() { close(disconnected) },
		OnTranscriptUpdate: func(entry game.TranscriptEntry) { entries <- entry },
	})

	if err := session.Connect(context.Background(), "stay in character", nil); err != nil {
		t.Fatalf("connect failed: %v", err)
	}
	defer session.Disconnect()

	var got []game.TranscriptEntry
	for len(got) < 2 {
		select {
		case entry := <-entries:
			got = append(got, entry)
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for transcripts, have %d", len(got))
		}
	}
	if !got[0].IsUser || got[0].Text != "nice party" {
		t.Fatalf("unexpected first entry: %+v", got[0])
	}
	if got[1].IsUser || got[1].Text != "yeah, great vibes" {
		t.Fatalf("unexpected second entry: %+v", got[1])
	}

	select {
	case samples := <-played:
		if len(samples) != 240 {
			t.Fatalf("expected 240 playback samples, got %d", len(samples))
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for playback")
	}

	select {
	case <-disconnected:
	case <-time.After(2 * time.Second):
		t.Fatal("expected disconnect callback after remote close")
	}
}

func TestCaptureFramesForwarded(t *testing.T) {
	received := make(chan clientMessage, 4)

	srv, cfg := fakeLiveServer(t, func(conn *websocket.Conn, _ clientMessage) {
		var msg clientMessage
		if err := conn.ReadJSON(&msg); err != nil {
			return
		}
		received <- msg
		time.Sleep(100 * time.Millisecond)
	})
	defer srv.Close()

	source := audio.NewStreamSource(true)
	session := NewSession(cfg, source, audio.SinkFunc(func([]float32) error { return nil }), Callbacks{})

	if err := session.Connect(context.Background(), "x", nil); err != nil {
		t.Fatalf("connect failed: %v", err)
	}
	defer session.Disconnect()

	source.Push(make([]float32, audio.FrameSize))

	select {
	case msg := <-received:
		if msg.RealtimeInput == nil || len(msg.RealtimeInput.MediaChunks) != 1 {
			t.Fatalf("expected one media chunk, got %+v", msg)
		}
		chunk := msg.RealtimeInput.MediaChunks[0]
		if chunk.MimeType != "audio/pcm;rate=16000" {
			t.Fatalf("unexpected mime type: %s", chunk.MimeType)
		}
		if chunk.Data == "" {
			t.Fatal("expected base64 audio data")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for capture frame")
	}
}

func TestConnectDeviceDenied(t *testing.T) {
	var mu sync.Mutex
	disconnects := 0

	source := audio.NewStreamSource(false)
	session := NewSession(config.LiveConfig{Endpoint: "ws://127.0.0.1:1/never"}, source,
		audio.SinkFunc(func([]float32) error { return nil }),
		Callbacks{OnDisconnect: func() {
			mu.Lock()
			disconnects++
			mu.Unlock()
		}})

	err := session.Connect(context.Background(), "x", nil)
	if err == nil {
		t.Fatal("expected connect error when device denied")
	}
	if !IsDeviceUnavailable(err) {
		t.Fatalf("expected device unavailable error, got %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if disconnects != 1 {
		t.Fatalf("expected one disconnect notification, got %d", disconnects)
	}
}

func TestDisconnectIdempotent(t *testing.T) {
	source := audio.NewStreamSource(true)
	session := NewSession(config.LiveConfig{}, source,
		audio.SinkFunc(func([]float32) error { return nil }), Callbacks{})

	// Safe before any connection and safe to repeat.
	session.Disconnect()
	session.Disconnect()
}

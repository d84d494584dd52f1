package session

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/Pickle1024/Yapyap-AI/internal/audio"
	"github.com/Pickle1024/Yapyap-AI/internal/model/game"
	gamesvc "github.com/Pickle1024/Yapyap-AI/internal/service/game"
	"github.com/Pickle1024/Yapyap-AI/internal/service/live"
)

const readDeadline = 60 * time.Second

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
}

type inboundMessage struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

type startPayload struct {
	MicGranted bool `json:"micGranted"`
}

type audioPayload struct {
	Data string `json:"data"`
}

type outboundMessage struct {
	Type      string      `json:"type"`
	SessionID string      `json:"sessionId,omitempty"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp int64       `json:"timestamp"`
}

// wsWriter 串行化对同一连接的并发写入。事件回调来自多个协程，
// 而 gorilla 的连接不允许并发写。
type wsWriter struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (w *wsWriter) send(sessionID, msgType string, data interface{}) {
	msg := outboundMessage{
		Type:      msgType,
		SessionID: sessionID,
		Data:      data,
		Timestamp: time.Now().UnixMilli(),
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.conn.WriteJSON(msg); err != nil {
		log.Printf("[websocket] write %s failed: %v", msgType, err)
	}
}

func (w *wsWriter) sendError(sessionID, message string) {
	w.send(sessionID, "error", map[string]string{"message": message})
}

func (w *wsWriter) ping() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.conn.WriteMessage(websocket.PingMessage, nil)
}

// liveTransport 把实时链路适配成编排器需要的传输接口。
// 角色代理不挂载任何工具。
type liveTransport struct {
	session *live.Session
}

func (t liveTransport) Connect(ctx context.Context, systemInstruction string) error {
	return t.session.Connect(ctx, systemInstruction, nil)
}

func (t liveTransport) Disconnect() {
	t.session.Disconnect()
}

// handleWebSocket 承载一场会话的浏览器通道：上行麦克风音频与控制
// 指令，下行状态、音量、转写、健康度、提示、播放音频与终局报告。
func (h *Handler) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	if sessionID == "" {
		http.Error(w, "sessionID is required", http.StatusBadRequest)
		return
	}

	record, err := h.registry.Get(r.Context(), sessionID)
	if err != nil {
		http.Error(w, "session not found", http.StatusNotFound)
		return
	}
	if record.Session != nil {
		http.Error(w, "session already active", http.StatusConflict)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[websocket] upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	log.Printf("[websocket] new connection for session: %s", sessionID)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	conn.SetReadDeadline(time.Now().Add(readDeadline))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(readDeadline))
		return nil
	})

	writer := &wsWriter{conn: conn}
	go pingLoop(ctx, writer)

	writer.send(sessionID, "state", map[string]any{
		"text":     "Ready.",
		"scenario": record.Scenario.ID,
	})

	var (
		source *audio.StreamSource
		sess   *gamesvc.Session
	)
	defer func() {
		if sess == nil {
			return
		}
		// 浏览器掉线时放弃还在进行中的会话，终局路径不受影响。
		switch sess.CurrentPhase() {
		case gamesvc.PhaseInitializing, gamesvc.PhaseConnected:
			sess.Abort()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		default:
			var msg inboundMessage
			if err := conn.ReadJSON(&msg); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
					log.Printf("[websocket] read error: %v", err)
				}
				return
			}

			conn.SetReadDeadline(time.Now().Add(readDeadline))

			switch msg.Type {
			case "start":
				if sess != nil {
					writer.sendError(sessionID, "session already started")
					continue
				}
				source, sess = h.startSession(ctx, writer, record, msg.Data)
			case "audio":
				h.handleAudioMessage(writer, sessionID, source, msg.Data)
			case "finish":
				if sess == nil {
					writer.sendError(sessionID, "session not started")
					continue
				}
				go sess.Finish(context.Background())
			case "abort":
				if sess != nil {
					sess.Abort()
				}
				return
			default:
				writer.sendError(sessionID, "unsupported message type: "+msg.Type)
			}
		}
	}
}

// startSession 搭建整条管线：音频源汇、实时链路、编排器，然后接通。
func (h *Handler) startSession(ctx context.Context, writer *wsWriter, record *gamesvc.Record, raw json.RawMessage) (*audio.StreamSource, *gamesvc.Session) {
	sessionID := record.ID

	if h.judge == nil || h.evaluator == nil || !h.liveCfg.Enabled {
		writer.sendError(sessionID, "session services unavailable")
		return nil, nil
	}

	var start startPayload
	if err := json.Unmarshal(raw, &start); err != nil {
		writer.sendError(sessionID, "invalid start payload")
		return nil, nil
	}

	source := audio.NewStreamSource(start.MicGranted)
	sink := audio.SinkFunc(func(samples []float32) error {
		writer.send(sessionID, "audio", map[string]any{
			"data":       audio.EncodeBase64(samples),
			"sampleRate": audio.PlaybackRate,
		})
		return nil
	})

	// 回调经由闭包引用 sess。赋值先于 Connect 发生，而所有回调都在
	// Connect 启动的协程里触发，不存在读到零值的窗口。
	var sess *gamesvc.Session
	liveSess := live.NewSession(h.liveCfg, source, sink, live.Callbacks{
		OnDisconnect: func() {
			if sess != nil {
				sess.HandleDisconnect()
			}
		},
		OnVolumeChange: func(volume float64) {
			if sess != nil {
				sess.HandleVolume(volume)
			}
		},
		OnTranscriptUpdate: func(entry game.TranscriptEntry) {
			if sess != nil {
				sess.HandleTranscript(entry)
			}
		},
	})

	events := gamesvc.Events{
		OnState: func(text string) {
			writer.send(sessionID, "state", map[string]any{"text": text})
		},
		OnVolume: func(volume float64) {
			writer.send(sessionID, "volume", map[string]any{"level": volume})
		},
		OnTranscript: func(entry game.TranscriptEntry) {
			writer.send(sessionID, "transcript", entry)
		},
		OnHealth: func(health game.HealthState) {
			writer.send(sessionID, "health", health)
		},
		OnTip: func(tip string) {
			writer.send(sessionID, "tip", map[string]any{"text": tip})
		},
		OnCountdown: func(remaining int) {
			writer.send(sessionID, "state", map[string]any{"timeLeft": remaining})
		},
		OnReport: func(report game.EvaluationReport) {
			writer.send(sessionID, "report", report)
		},
	}

	cfg := game.SessionConfig{Scenario: record.Scenario, Duration: record.Duration}
	sess = gamesvc.NewSession(record.ID, cfg, liveTransport{session: liveSess}, h.judge, h.evaluator, events)

	if err := h.registry.Attach(record.ID, sess); err != nil {
		writer.sendError(sessionID, err.Error())
		return nil, nil
	}

	if err := sess.Start(ctx); err != nil {
		log.Printf("[websocket] session start failed session=%s: %v", sessionID, err)
		h.registry.Detach(record.ID)
		if live.IsDeviceUnavailable(err) {
			writer.sendError(sessionID, "microphone unavailable")
		} else {
			writer.sendError(sessionID, "failed to reach speech service")
		}
		return nil, nil
	}

	return source, sess
}

// handleAudioMessage 把浏览器上行的PCM16音频推进采集源。
func (h *Handler) handleAudioMessage(writer *wsWriter, sessionID string, source *audio.StreamSource, raw json.RawMessage) {
	if source == nil {
		writer.sendError(sessionID, "session not started")
		return
	}

	var payload audioPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		writer.sendError(sessionID, "invalid audio payload")
		return
	}

	samples, err := audio.DecodeBase64(payload.Data)
	if err != nil {
		writer.sendError(sessionID, "invalid audio encoding")
		return
	}
	source.Push(samples)
}

// pingLoop 定期发送ping消息
func pingLoop(ctx context.Context, writer *wsWriter) {
	ticker := time.NewTicker(54 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := writer.ping(); err != nil {
				return
			}
		}
	}
}

package live

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/Pickle1024/Yapyap-AI/internal/audio"
	"github.com/Pickle1024/Yapyap-AI/internal/config"
	"github.com/Pickle1024/Yapyap-AI/internal/model/game"
)

// Callbacks 在构造时一次性注入，之后不再改动任何回调槽位。
// 所有回调都可能在内部协程上被调用，接收方自行负责串行化。
type Callbacks struct {
	OnConnect          func()
	OnDisconnect       func()
	OnVolumeChange     func(volume float64)
	OnTranscriptUpdate func(entry game.TranscriptEntry)
	// OnToolCall 可选。返回的结果会原样回传给服务端。
	OnToolCall func(ctx context.Context, calls []ToolCall) []ToolResponse
}

// Session 持有一条到语音模型的双向实时链路：采集设备、播放调度器
// 与 WebSocket 连接的生命周期都归它独占管理。
type Session struct {
	cfg       config.LiveConfig
	callbacks Callbacks
	dialer    *websocket.Dialer
	source    audio.Source
	sink      audio.Sink

	mu        sync.Mutex
	conn      *websocket.Conn
	cancel    context.CancelFunc
	scheduler *audio.Scheduler

	writeMu sync.Mutex
}

// NewSession 创建会话。source/sink 由调用方提供，链路存续期间为本会话独占。
func NewSession(cfg config.LiveConfig, source audio.Source, sink audio.Sink, callbacks Callbacks) *Session {
	return &Session{
		cfg:       cfg,
		callbacks: callbacks,
		source:    source,
		sink:      sink,
		dialer: &websocket.Dialer{
			HandshakeTimeout: 30 * time.Second,
		},
	}
}

// Connect 建立链路。先拆除任何旧连接，保证干净重启；采集设备获取失败
// 视为本次连接的终止性错误：通知 OnDisconnect 且不残留任何资源。
func (s *Session) Connect(ctx context.Context, systemInstruction string, tools []ToolSpec) error {
	s.Disconnect()

	frames, err := s.source.Open(ctx)
	if err != nil {
		log.Printf("[live] capture device acquisition failed: %v", err)
		s.notifyDisconnect()
		return fmt.Errorf("failed to acquire capture device: %w", err)
	}

	conn, _, err := s.dialer.DialContext(ctx, s.endpointURL(), nil)
	if err != nil {
		_ = s.source.Close()
		s.notifyDisconnect()
		return fmt.Errorf("failed to dial live endpoint: %w", err)
	}

	if err := s.writeMessage(conn, clientMessage{Setup: s.buildSetup(systemInstruction, tools)}); err != nil {
		conn.Close()
		_ = s.source.Close()
		s.notifyDisconnect()
		return fmt.Errorf("failed to send setup message: %w", err)
	}

	runCtx, cancel := context.WithCancel(context.Background())
	scheduler := audio.NewScheduler(s.sink)

	s.mu.Lock()
	s.conn = conn
	s.cancel = cancel
	s.scheduler = scheduler
	s.mu.Unlock()

	go s.captureLoop(runCtx, conn, frames)
	go s.readLoop(runCtx, conn)

	if s.callbacks.OnConnect != nil {
		s.callbacks.OnConnect()
	}
	return nil
}

// Disconnect 拆除链路：停止采集、排空调度器、关闭连接。
// 幂等，未连接时调用同样安全。每条退出路径都必须经过这里。
func (s *Session) Disconnect() {
	s.teardown(nil)
}

// teardown 执行实际的资源释放。conn 非空时仅在它仍是活动连接的情况下拆除，
// 用于区分远端关闭与本地已完成的拆除；返回是否真正执行了拆除。
func (s *Session) teardown(conn *websocket.Conn) bool {
	s.mu.Lock()
	if conn != nil && s.conn != conn {
		s.mu.Unlock()
		return false
	}
	active := s.conn
	cancel := s.cancel
	scheduler := s.scheduler
	s.conn = nil
	s.cancel = nil
	s.scheduler = nil
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if active != nil {
		active.Close()
	}
	if scheduler != nil {
		_ = scheduler.Close()
	}
	_ = s.source.Close()
	return active != nil
}

func (s *Session) notifyDisconnect() {
	if s.callbacks.OnDisconnect != nil {
		s.callbacks.OnDisconnect()
	}
}

func (s *Session) endpointURL() string {
	endpoint := s.cfg.Endpoint
	if s.cfg.APIKey != "" {
		endpoint += "?key=" + url.QueryEscape(s.cfg.APIKey)
	}
	return endpoint
}

func (s *Session) buildSetup(systemInstruction string, tools []ToolSpec) *setupPayload {
	setup := &setupPayload{
		Model: s.cfg.Model,
		SystemInstruction: &content{
			Parts: []part{{Text: systemInstruction}},
		},
		GenerationConfig: &generationConfig{
			ResponseModalities: []string{"AUDIO"},
			SpeechConfig: &speechConfig{
				VoiceConfig: &voiceConfig{
					PrebuiltVoiceConfig: &prebuiltVoiceConfig{VoiceName: s.cfg.Voice},
				},
			},
		},
		InputAudioTranscription:  &struct{}{},
		OutputAudioTranscription: &struct{}{},
	}

	if len(tools) > 0 {
		setup.Tools = []toolDeclaration{{FunctionDeclarations: tools}}
	}
	return setup
}

// captureLoop 消费采集帧：计算RMS供可视化，编码后立即发送。
// 发送失败只记录日志并丢帧，过期的音频不值得重试。
func (s *Session) captureLoop(ctx context.Context, conn *websocket.Conn, frames <-chan []float32) {
	for {
		select {
		case <-ctx.Done():
			return
		case frame, ok := <-frames:
			if !ok {
				return
			}
			if s.callbacks.OnVolumeChange != nil {
				s.callbacks.OnVolumeChange(audio.RMS(frame) * 100)
			}

			msg := clientMessage{
				RealtimeInput: &realtimeInput{
					MediaChunks: []blob{{
						MimeType: captureMimeType,
						Data:     audio.EncodeBase64(frame),
					}},
				},
			}
			if err := s.writeMessage(conn, msg); err != nil {
				log.Printf("[live] dropped capture frame: %v", err)
			}
		}
	}
}

// readLoop 消费服务端消息。读取结束后走统一的拆除路径；
// 若拆除确实由这里完成（远端关闭），再通知 OnDisconnect。
func (s *Session) readLoop(ctx context.Context, conn *websocket.Conn) {
	defer func() {
		if s.teardown(conn) {
			s.notifyDisconnect()
		}
	}()

	for {
		var msg serverMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if ctx.Err() == nil && !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Printf("[live] read error: %v", err)
			}
			return
		}
		s.handleServerMessage(ctx, conn, &msg)
	}
}

func (s *Session) handleServerMessage(ctx context.Context, conn *websocket.Conn, msg *serverMessage) {
	if msg.SetupComplete != nil {
		log.Printf("[live] setup complete")
		return
	}

	if msg.ToolCall != nil && len(msg.ToolCall.FunctionCalls) > 0 && s.callbacks.OnToolCall != nil {
		responses := s.callbacks.OnToolCall(ctx, msg.ToolCall.FunctionCalls)
		if len(responses) > 0 {
			reply := clientMessage{ToolResponse: &toolResponsePayload{FunctionResponses: responses}}
			if err := s.writeMessage(conn, reply); err != nil {
				log.Printf("[live] failed to send tool response: %v", err)
			}
		}
	}

	sc := msg.ServerContent
	if sc == nil {
		return
	}

	if sc.ModelTurn != nil {
		for _, p := range sc.ModelTurn.Parts {
			if p.InlineData == nil || p.InlineData.Data == "" {
				continue
			}
			samples, err := audio.DecodeBase64(p.InlineData.Data)
			if err != nil {
				// 单帧编解码错误不致命，丢弃后继续。
				log.Printf("[live] dropped response frame: %v", err)
				continue
			}
			if s.callbacks.OnVolumeChange != nil {
				s.callbacks.OnVolumeChange(audio.RMS(samples) * 100)
			}
			s.schedulePlayback(samples)
		}
	}

	now := time.Now()
	if sc.InputTranscription != nil && sc.InputTranscription.Text != "" && s.callbacks.OnTranscriptUpdate != nil {
		s.callbacks.OnTranscriptUpdate(game.TranscriptEntry{
			Text:      sc.InputTranscription.Text,
			IsUser:    true,
			Timestamp: now,
		})
	}
	if sc.OutputTranscription != nil && sc.OutputTranscription.Text != "" && s.callbacks.OnTranscriptUpdate != nil {
		s.callbacks.OnTranscriptUpdate(game.TranscriptEntry{
			Text:      sc.OutputTranscription.Text,
			IsUser:    false,
			Timestamp: now,
		})
	}
}

func (s *Session) schedulePlayback(samples []float32) {
	s.mu.Lock()
	scheduler := s.scheduler
	s.mu.Unlock()
	if scheduler != nil {
		scheduler.Schedule(samples)
	}
}

func (s *Session) writeMessage(conn *websocket.Conn, msg clientMessage) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return conn.WriteJSON(msg)
}

// IsDeviceUnavailable 判断连接错误是否为采集设备不可用。
func IsDeviceUnavailable(err error) bool {
	return errors.Is(err, audio.ErrDeviceUnavailable)
}

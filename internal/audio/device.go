package audio

import (
	"context"
	"errors"
	"sync"
)

// ErrDeviceUnavailable 表示麦克风权限被拒绝或设备不存在。
var ErrDeviceUnavailable = errors.New("audio: capture device unavailable")

// Source 抽象采集设备：Open 获取设备并返回帧通道，Close 释放设备。
// 通道关闭表示设备侧结束采集。
type Source interface {
	Open(ctx context.Context) (<-chan []float32, error)
	Close() error
}

// Sink 抽象播放渲染目标。
type Sink interface {
	Write(samples []float32) error
	Close() error
}

// SinkFunc 将函数适配为 Sink。
type SinkFunc func(samples []float32) error

// Write 调用底层函数。
func (f SinkFunc) Write(samples []float32) error { return f(samples) }

// Close 无资源可释放。
func (f SinkFunc) Close() error { return nil }

// StreamSource 实现 Source，由外部连接（浏览器会话）推送采集帧。
// granted 为 false 时 Open 以 ErrDeviceUnavailable 失败，对应前端麦克风授权被拒。
// Close 之后允许再次 Open，以支持传输层的干净重连语义。
type StreamSource struct {
	mu      sync.Mutex
	frames  chan []float32
	granted bool
	closed  bool
}

// NewStreamSource 创建推送式采集源。
func NewStreamSource(granted bool) *StreamSource {
	return &StreamSource{granted: granted}
}

// Open 获取采集通道。权限未授予时返回 ErrDeviceUnavailable。
func (s *StreamSource) Open(_ context.Context) (<-chan []float32, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.granted {
		return nil, ErrDeviceUnavailable
	}
	if s.frames == nil || s.closed {
		s.frames = make(chan []float32, 32)
		s.closed = false
	}
	return s.frames, nil
}

// Push 投递一帧采集样本。通道满时丢弃该帧，过期音频不值得排队。
func (s *StreamSource) Push(samples []float32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || s.frames == nil {
		return
	}
	select {
	case s.frames <- samples:
	default:
	}
}

// Close 结束当前采集。可重复调用，也可在从未 Open 时调用。
func (s *StreamSource) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || s.frames == nil {
		return nil
	}
	s.closed = true
	close(s.frames)
	return nil
}

package audio

import (
	"log"
	"sync"
	"time"
)

type scheduledChunk struct {
	samples []float32
	start   time.Time
}

// Scheduler 按单调递增的起播水位线调度播放：相邻块背靠背衔接、
// 既不重叠也不留空隙，且永远不会排到过去的时间点。
type Scheduler struct {
	sink Sink

	mu     sync.Mutex
	next   time.Time
	queue  chan scheduledChunk
	closed bool
	stop   chan struct{}
	done   chan struct{}

	now func() time.Time
}

// NewScheduler 创建调度器并启动播放协程。
func NewScheduler(sink Sink) *Scheduler {
	s := &Scheduler{
		sink:  sink,
		queue: make(chan scheduledChunk, 64),
		stop:  make(chan struct{}),
		done:  make(chan struct{}),
		now:   time.Now,
	}
	go s.playLoop()
	return s
}

// Schedule 为一块播放采样分配起播时间并入队。
// 队列满时丢弃该块，迟到的音频没有重播价值。
func (s *Scheduler) Schedule(samples []float32) {
	if len(samples) == 0 {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	start := s.now()
	if s.next.After(start) {
		start = s.next
	}
	duration := time.Duration(float64(len(samples)) / PlaybackRate * float64(time.Second))
	s.next = start.Add(duration)

	// 入队必须持锁完成，否则 Close 可能抢在发送之前关停队列。
	// default 分支保证这里不会在锁内阻塞。
	select {
	case s.queue <- scheduledChunk{samples: samples, start: start}:
	default:
		log.Printf("[audio] playback queue full, dropping %d samples", len(samples))
	}
}

// NextStart 返回当前的起播水位线，仅用于观测。
func (s *Scheduler) NextStart() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.next
}

// Close 停止调度并等待播放协程退出。尚未播出的块直接丢弃，
// 拆链路时没有人再听这些音频。可重复调用。
func (s *Scheduler) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	close(s.stop)
	s.mu.Unlock()

	<-s.done
	return nil
}

func (s *Scheduler) playLoop() {
	defer close(s.done)
	for {
		select {
		case <-s.stop:
			return
		case chunk := <-s.queue:
			if wait := time.Until(chunk.start); wait > 0 {
				timer := time.NewTimer(wait)
				select {
				case <-s.stop:
					timer.Stop()
					return
				case <-timer.C:
				}
			}
			if err := s.sink.Write(chunk.samples); err != nil {
				log.Printf("[audio] playback write failed, dropping chunk: %v", err)
			}
		}
	}
}

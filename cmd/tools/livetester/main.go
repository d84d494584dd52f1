package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/Pickle1024/Yapyap-AI/internal/audio"
	"github.com/Pickle1024/Yapyap-AI/internal/config"
	"github.com/Pickle1024/Yapyap-AI/internal/model/game"
	"github.com/Pickle1024/Yapyap-AI/internal/service/live"
)

// 把一个裸 PCM16 文件灌进实时语音链路，打印双向转写，
// 用于在没有浏览器的情况下手动验证链路。
func main() {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)

	if err := godotenv.Load(); err != nil {
		log.Printf("[WARN] 无法加载 .env，改用系统环境变量: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("配置加载失败: %v", err)
	}

	if !cfg.Live.Enabled {
		log.Fatal("实时语音服务未启用，请先配置 LIVE_API_KEY 或 ARK_API_KEY")
	}

	audioPath := flag.String("audio", "", "输入PCM16音频文件路径 (16kHz 单声道)")
	instruction := flag.String("instruction", "You are a friendly stranger making small talk. Keep replies short.", "角色系统指令")
	timeout := flag.Duration("timeout", 45*time.Second, "会话总时长上限")
	flag.Parse()

	if *audioPath == "" {
		flag.Usage()
		log.Fatal("请通过 -audio 指定音频文件路径")
	}

	data, err := os.ReadFile(*audioPath)
	if err != nil {
		log.Fatalf("读取音频文件失败: %v", err)
	}
	samples := audio.DecodePCM16(data)
	log.Printf("读入音频: %d 字节, %d 采样, 约 %.1f 秒", len(data), len(samples), float64(len(samples))/audio.CaptureRate)

	source := audio.NewStreamSource(true)
	var played int
	sink := audio.SinkFunc(func(chunk []float32) error {
		played += len(chunk)
		return nil
	})

	done := make(chan struct{})
	session := live.NewSession(cfg.Live, source, sink, live.Callbacks{
		OnConnect: func() {
			log.Println("链路已接通")
		},
		OnDisconnect: func() {
			close(done)
		},
		OnTranscriptUpdate: func(entry game.TranscriptEntry) {
			role := "NPC"
			if entry.IsUser {
				role = "User"
			}
			fmt.Printf("[%s] %s: %s\n", entry.Timestamp.Format("15:04:05.000"), role, entry.Text)
		},
	})

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	if err := session.Connect(ctx, *instruction, nil); err != nil {
		log.Fatalf("接通实时链路失败: %v", err)
	}
	defer session.Disconnect()

	// 按采集帧长实速推流，贴近真实的麦克风节奏。
	frameDuration := time.Duration(float64(audio.FrameSize) / audio.CaptureRate * float64(time.Second))
	ticker := time.NewTicker(frameDuration)
	defer ticker.Stop()

	for offset := 0; offset < len(samples); offset += audio.FrameSize {
		end := offset + audio.FrameSize
		if end > len(samples) {
			end = len(samples)
		}
		source.Push(samples[offset:end])

		select {
		case <-ctx.Done():
			log.Println("超时，结束推流")
			return
		case <-done:
			log.Println("远端关闭了链路")
			return
		case <-ticker.C:
		}
	}

	log.Println("推流完毕，等待剩余回复...")
	select {
	case <-ctx.Done():
	case <-done:
	}
	log.Printf("共收到 %d 个播放采样 (约 %.1f 秒)", played, float64(played)/audio.PlaybackRate)
}

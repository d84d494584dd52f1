package audio

import (
	"encoding/base64"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

// 流式链路要求的采样参数：上行16kHz单声道，下行24kHz单声道，均为16位PCM。
const (
	CaptureRate  = 16000
	PlaybackRate = 24000
	// FrameSize 是采集回调的固定帧长（样本数），与浏览器端处理器保持一致。
	FrameSize = 4096
)

// ErrCodec 表示音频载荷格式错误。上层记录日志并丢弃该帧，不中断会话。
var ErrCodec = errors.New("audio: malformed payload")

const pcmScale = 32767

// EncodePCM16 将 [-1,1] 范围内的浮点样本量化为16位小端PCM。
// 越界样本被钳制到边界，NaN 视为静音。
func EncodePCM16(samples []float32) []byte {
	out := make([]byte, len(samples)*2)
	for i, sample := range samples {
		v := float64(sample)
		switch {
		case math.IsNaN(v):
			v = 0
		case v > 1:
			v = 1
		case v < -1:
			v = -1
		}
		quantized := int16(math.Round(v * pcmScale))
		binary.LittleEndian.PutUint16(out[i*2:], uint16(quantized))
	}
	return out
}

// DecodePCM16 将16位小端PCM还原为浮点样本。
// 空输入或末尾的残缺字节不视为错误，多余的单字节被丢弃。
func DecodePCM16(data []byte) []float32 {
	count := len(data) / 2
	samples := make([]float32, count)
	for i := 0; i < count; i++ {
		quantized := int16(binary.LittleEndian.Uint16(data[i*2:]))
		samples[i] = float32(quantized) / pcmScale
	}
	return samples
}

// EncodeBase64 是传输层的薄封装：PCM16编码后再做base64。
func EncodeBase64(samples []float32) string {
	return base64.StdEncoding.EncodeToString(EncodePCM16(samples))
}

// DecodeBase64 解开base64封装并还原浮点样本。
// base64格式错误返回包裹 ErrCodec 的错误。
func DecodeBase64(payload string) ([]float32, error) {
	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCodec, err)
	}
	return DecodePCM16(raw), nil
}

// RMS 计算一帧样本的均方根振幅，用于音量可视化。
func RMS(samples []float32) float64 {
	if len(samples) == 0 {
		return 0
	}
	var sum float64
	for _, sample := range samples {
		sum += float64(sample) * float64(sample)
	}
	return math.Sqrt(sum / float64(len(samples)))
}

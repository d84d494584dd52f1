package audio

import (
	"errors"
	"math"
	"testing"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	in := []float32{0, 0.25, -0.25, 0.999, -0.999, 0.5}
	out := DecodePCM16(EncodePCM16(in))

	if len(out) != len(in) {
		t.Fatalf("expected %d samples, got %d", len(in), len(out))
	}
	step := float64(1) / pcmScale
	for i := range in {
		if diff := math.Abs(float64(in[i]) - float64(out[i])); diff > step {
			t.Fatalf("sample %d drifted beyond one quantization step: %f", i, diff)
		}
	}
}

func TestEncodeClampsOutOfRange(t *testing.T) {
	out := DecodePCM16(EncodePCM16([]float32{2.0, -3.0}))
	if out[0] != 1 {
		t.Fatalf("expected positive overflow clamped to 1, got %f", out[0])
	}
	if out[1] != -1 {
		t.Fatalf("expected negative overflow clamped to -1, got %f", out[1])
	}
}

func TestEncodeTreatsNaNAsSilence(t *testing.T) {
	out := DecodePCM16(EncodePCM16([]float32{float32(math.NaN())}))
	if out[0] != 0 {
		t.Fatalf("expected NaN encoded as silence, got %f", out[0])
	}
}

func TestDecodeDropsTrailingByte(t *testing.T) {
	out := DecodePCM16([]byte{0x00, 0x40, 0x7f})
	if len(out) != 1 {
		t.Fatalf("expected trailing byte dropped, got %d samples", len(out))
	}
}

func TestDecodeEmptyInput(t *testing.T) {
	if out := DecodePCM16(nil); len(out) != 0 {
		t.Fatalf("expected no samples from empty input, got %d", len(out))
	}
}

func TestDecodeBase64Malformed(t *testing.T) {
	_, err := DecodeBase64("not base64 !!!")
	if !errors.Is(err, ErrCodec) {
		t.Fatalf("expected ErrCodec, got %v", err)
	}
}

func TestRMS(t *testing.T) {
	if got := RMS(nil); got != 0 {
		t.Fatalf("expected zero RMS for empty frame, got %f", got)
	}
	got := RMS([]float32{0.5, -0.5, 0.5, -0.5})
	if math.Abs(got-0.5) > 1e-6 {
		t.Fatalf("expected RMS 0.5, got %f", got)
	}
}

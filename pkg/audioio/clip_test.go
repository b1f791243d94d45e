package audioio

import (
	"testing"
	"time"
)

func TestClipBytesRoundTrip(t *testing.T) {
	clip := Clip{
		Samples:    []int16{0, 1, -1, 32767, -32768, 12345},
		SampleRate: 16000,
		Channels:   1,
	}

	got := ClipFromBytes(clip.Bytes(), clip.SampleRate, clip.Channels)
	if len(got.Samples) != len(clip.Samples) {
		t.Fatalf("sample count = %d, want %d", len(got.Samples), len(clip.Samples))
	}
	for i := range clip.Samples {
		if got.Samples[i] != clip.Samples[i] {
			t.Errorf("sample[%d] = %d, want %d", i, got.Samples[i], clip.Samples[i])
		}
	}
}

func TestClipDuration(t *testing.T) {
	tests := []struct {
		name string
		clip Clip
		want time.Duration
	}{
		{
			name: "one second mono",
			clip: Clip{Samples: make([]int16, 16000), SampleRate: 16000, Channels: 1},
			want: time.Second,
		},
		{
			name: "half second stereo",
			clip: Clip{Samples: make([]int16, 16000), SampleRate: 16000, Channels: 2},
			want: 500 * time.Millisecond,
		},
		{
			name: "zero rate",
			clip: Clip{Samples: make([]int16, 100)},
			want: 0,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.clip.Duration(); got != tt.want {
				t.Errorf("Duration() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestClipStats(t *testing.T) {
	t.Run("silence", func(t *testing.T) {
		clip := Clip{Samples: make([]int16, 100), SampleRate: 16000, Channels: 1}
		peak, rms := clip.Stats()
		if peak != 0 || rms != 0 {
			t.Errorf("Stats() = (%d, %f), want (0, 0)", peak, rms)
		}
	})

	t.Run("square wave", func(t *testing.T) {
		samples := make([]int16, 100)
		for i := range samples {
			if i%2 == 0 {
				samples[i] = 1000
			} else {
				samples[i] = -1000
			}
		}
		clip := Clip{Samples: samples, SampleRate: 16000, Channels: 1}
		peak, rms := clip.Stats()
		if peak != 1000 {
			t.Errorf("peak = %d, want 1000", peak)
		}
		if rms < 999 || rms > 1001 {
			t.Errorf("rms = %f, want ~1000", rms)
		}
	})

	t.Run("empty", func(t *testing.T) {
		peak, rms := Clip{}.Stats()
		if peak != 0 || rms != 0 {
			t.Errorf("Stats() on empty = (%d, %f)", peak, rms)
		}
	})
}

func TestToMono(t *testing.T) {
	stereo := Clip{
		Samples:    []int16{100, 200, -100, -200},
		SampleRate: 16000,
		Channels:   2,
	}
	mono := stereo.ToMono()
	if mono.Channels != 1 {
		t.Fatalf("Channels = %d, want 1", mono.Channels)
	}
	if len(mono.Samples) != 2 {
		t.Fatalf("len = %d, want 2", len(mono.Samples))
	}
	if mono.Samples[0] != 150 || mono.Samples[1] != -150 {
		t.Errorf("samples = %v, want [150 -150]", mono.Samples)
	}

	// Mono passthrough returns the clip unchanged.
	if got := mono.ToMono(); len(got.Samples) != 2 {
		t.Errorf("mono ToMono changed the clip: %v", got.Samples)
	}
}

func TestWAVRoundTrip(t *testing.T) {
	src := ToneClip(16000, 440, 100*time.Millisecond)

	data := EncodeWAV(src)
	if len(data) != 44+len(src.Samples)*2 {
		t.Fatalf("wav size = %d, want %d", len(data), 44+len(src.Samples)*2)
	}
	if string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		t.Fatal("missing RIFF/WAVE magic")
	}

	got, err := DecodeWAV(data)
	if err != nil {
		t.Fatalf("DecodeWAV: %v", err)
	}
	if got.SampleRate != src.SampleRate {
		t.Errorf("SampleRate = %d, want %d", got.SampleRate, src.SampleRate)
	}
	if got.Channels != 1 {
		t.Errorf("Channels = %d, want 1", got.Channels)
	}
	if len(got.Samples) != len(src.Samples) {
		t.Fatalf("samples = %d, want %d", len(got.Samples), len(src.Samples))
	}
	for i := range src.Samples {
		if got.Samples[i] != src.Samples[i] {
			t.Fatalf("sample[%d] = %d, want %d", i, got.Samples[i], src.Samples[i])
		}
	}
}

func TestDecodeWAVInvalid(t *testing.T) {
	if _, err := DecodeWAV([]byte("not a wav file")); err == nil {
		t.Fatal("expected error for garbage input")
	}
	if _, err := DecodeWAV(nil); err == nil {
		t.Fatal("expected error for nil input")
	}
}

package audioio

import (
	"context"
	"testing"
	"time"
)

func TestResample(t *testing.T) {
	t.Run("same rate is identity", func(t *testing.T) {
		samples := []int16{1, 2, 3}
		got := Resample(samples, 16000, 16000)
		if len(got) != 3 {
			t.Fatalf("len = %d, want 3", len(got))
		}
	})

	t.Run("downsample halves length", func(t *testing.T) {
		samples := make([]int16, 1000)
		got := Resample(samples, 32000, 16000)
		if len(got) != 500 {
			t.Errorf("len = %d, want 500", len(got))
		}
	})

	t.Run("upsample doubles length", func(t *testing.T) {
		samples := make([]int16, 500)
		got := Resample(samples, 8000, 16000)
		if len(got) != 1000 {
			t.Errorf("len = %d, want 1000", len(got))
		}
	})

	t.Run("interpolates between samples", func(t *testing.T) {
		samples := []int16{0, 100}
		got := Resample(samples, 8000, 16000)
		if len(got) != 4 {
			t.Fatalf("len = %d, want 4", len(got))
		}
		// Position 0.5 lands halfway between 0 and 100.
		if got[1] != 50 {
			t.Errorf("got[1] = %d, want 50", got[1])
		}
	})

	t.Run("empty input", func(t *testing.T) {
		if got := Resample(nil, 8000, 16000); len(got) != 0 {
			t.Errorf("len = %d, want 0", len(got))
		}
	})
}

func TestStereoToMono(t *testing.T) {
	got := StereoToMono([]int16{100, 300, -100, -300})
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0] != 200 || got[1] != -200 {
		t.Errorf("got = %v, want [200 -200]", got)
	}
}

func TestMockRecorderQueue(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Backend = BackendMock
	rec := NewMockRecorder(cfg)
	rec.EnqueueTone(440, 100*time.Millisecond)

	ctx := context.Background()

	clip, err := rec.Record(ctx, 5*time.Second)
	if err != nil {
		t.Fatalf("Record: %v", err)
	}
	if clip.Empty() {
		t.Fatal("queued clip should not be empty")
	}
	if rec.LastMaxDuration() != 5*time.Second {
		t.Errorf("LastMaxDuration = %v", rec.LastMaxDuration())
	}

	// Exhausted queue behaves like a silent room.
	clip, err = rec.Record(ctx, time.Second)
	if err != nil {
		t.Fatalf("Record: %v", err)
	}
	if !clip.Empty() {
		t.Error("exhausted queue should return an empty clip")
	}
	if rec.Calls() != 2 {
		t.Errorf("Calls = %d, want 2", rec.Calls())
	}
}

func TestMockRecorderClosedAndCancelled(t *testing.T) {
	cfg := DefaultConfig()
	rec := NewMockRecorder(cfg)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := rec.Record(ctx, time.Second); err == nil {
		t.Error("cancelled context should fail Record")
	}

	rec.Close()
	if _, err := rec.Record(context.Background(), time.Second); err != ErrClosed {
		t.Errorf("Record after Close = %v, want ErrClosed", err)
	}
}

func TestMockPlayerRecordsPlays(t *testing.T) {
	p := NewMockPlayer()
	ctx := context.Background()

	clip := ToneClip(16000, 440, 50*time.Millisecond)
	if err := p.Play(ctx, clip); err != nil {
		t.Fatalf("Play: %v", err)
	}
	if err := p.PlayMP3(ctx, []byte{0xff, 0xfb}); err != nil {
		t.Fatalf("PlayMP3: %v", err)
	}

	if n := len(p.Played()); n != 1 {
		t.Errorf("Played = %d clips, want 1", n)
	}
	if n := len(p.PlayedMP3s()); n != 1 {
		t.Errorf("PlayedMP3s = %d buffers, want 1", n)
	}

	p.Close()
	if err := p.Play(ctx, clip); err != ErrClosed {
		t.Errorf("Play after Close = %v, want ErrClosed", err)
	}
}

func TestNewRecorderMockBackend(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Backend = BackendMock

	rec, err := NewRecorder(cfg, nil)
	if err != nil {
		t.Fatalf("NewRecorder: %v", err)
	}
	defer rec.Close()
	if rec.Name() != "mock" {
		t.Errorf("Name = %q, want mock", rec.Name())
	}

	if _, err := NewRecorder(Config{Backend: "tape-deck", SampleRate: 16000, Channels: 1, ChunkSize: 512, SilenceHold: time.Second}, nil); err != ErrUnsupportedBackend {
		t.Errorf("unknown backend error = %v, want ErrUnsupportedBackend", err)
	}

	bad := DefaultConfig()
	bad.SampleRate = 0
	if _, err := NewRecorder(bad, nil); err == nil {
		t.Error("invalid config should fail")
	}
}

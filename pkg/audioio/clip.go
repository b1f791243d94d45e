// Package audioio provides microphone capture, speaker playback, and
// PCM plumbing for the conversation loop.
//
// Capture uses PortAudio; playback uses the beep speaker. A mock
// backend keeps tests and CI off the hardware.
package audioio

import (
	"math"
	"time"
)

// Clip is a finished utterance or synthesized reply: PCM16 samples
// (little-endian) at a fixed rate. Helpers copy; a Clip is never
// mutated after it is returned.
type Clip struct {
	Samples    []int16
	SampleRate int
	Channels   int
}

// ClipFromBytes builds a Clip from raw PCM16 little-endian bytes.
func ClipFromBytes(data []byte, sampleRate, channels int) Clip {
	return Clip{
		Samples:    BytesToSamples(data),
		SampleRate: sampleRate,
		Channels:   channels,
	}
}

// Bytes returns the raw little-endian bytes of the clip.
func (c Clip) Bytes() []byte {
	return SamplesToBytes(c.Samples)
}

// Duration returns the playing time of the clip.
func (c Clip) Duration() time.Duration {
	if c.SampleRate == 0 || c.Channels == 0 {
		return 0
	}
	frames := len(c.Samples) / c.Channels
	return time.Duration(float64(frames) / float64(c.SampleRate) * float64(time.Second))
}

// Empty reports whether the clip holds no samples.
func (c Clip) Empty() bool {
	return len(c.Samples) == 0
}

// ToMono downmixes a stereo clip; mono clips come back unchanged.
func (c Clip) ToMono() Clip {
	if c.Channels < 2 {
		return c
	}
	return Clip{
		Samples:    StereoToMono(c.Samples),
		SampleRate: c.SampleRate,
		Channels:   1,
	}
}

// Stats returns the peak absolute amplitude and the RMS level of the
// clip on the int16 scale.
func (c Clip) Stats() (peak int, rms float64) {
	return pcm16Stats(c.Samples)
}

func pcm16Stats(samples []int16) (peak int, rms float64) {
	if len(samples) == 0 {
		return 0, 0
	}
	var sum float64
	for _, s := range samples {
		v := int(s)
		if v < 0 {
			v = -v
		}
		if v > peak {
			peak = v
		}
		sum += float64(s) * float64(s)
	}
	return peak, math.Sqrt(sum / float64(len(samples)))
}

// BytesToSamples converts raw PCM16 little-endian bytes to int16 samples.
func BytesToSamples(data []byte) []int16 {
	samples := make([]int16, len(data)/2)
	for i := range samples {
		samples[i] = int16(data[i*2]) | int16(data[i*2+1])<<8
	}
	return samples
}

// SamplesToBytes converts int16 samples to raw PCM16 little-endian bytes.
func SamplesToBytes(samples []int16) []byte {
	data := make([]byte, len(samples)*2)
	for i, s := range samples {
		data[i*2] = byte(s)
		data[i*2+1] = byte(s >> 8)
	}
	return data
}

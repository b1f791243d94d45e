package audioio

// Gate decides whether a captured clip contains voice rather than
// clicks, hum, or keyboard noise. A clip passes when it is loud
// enough, spans a real dynamic range, and its zero-crossing rate sits
// in the band typical of speech.
type Gate struct {
	// VolumeThreshold is the minimum RMS level (int16 scale).
	VolumeThreshold float64
	// MinDynamicRange is the minimum peak-to-trough spread.
	MinDynamicRange int
	// Zero-crossing rate band. Below it: hum or DC offset. Above it:
	// static or clicks.
	MinZeroCrossRate float64
	MaxZeroCrossRate float64
}

// DefaultGate returns thresholds tuned for close-mic 16kHz capture.
func DefaultGate() *Gate {
	return &Gate{
		VolumeThreshold:  150,
		MinDynamicRange:  1000,
		MinZeroCrossRate: 0.01,
		MaxZeroCrossRate: 0.3,
	}
}

// IsSpeech reports whether the samples look like actual speech.
func (g *Gate) IsSpeech(samples []int16) bool {
	if len(samples) < 2 {
		return false
	}

	_, rms := pcm16Stats(samples)
	if rms <= g.VolumeThreshold {
		return false
	}

	lo, hi := samples[0], samples[0]
	for _, s := range samples {
		if s < lo {
			lo = s
		}
		if s > hi {
			hi = s
		}
	}
	if int(hi)-int(lo) <= g.MinDynamicRange {
		return false
	}

	zcr := zeroCrossRate(samples)
	return zcr > g.MinZeroCrossRate && zcr < g.MaxZeroCrossRate
}

func zeroCrossRate(samples []int16) float64 {
	if len(samples) < 2 {
		return 0
	}
	var crossings int
	for i := 1; i < len(samples); i++ {
		if (samples[i-1] >= 0) != (samples[i] >= 0) {
			crossings++
		}
	}
	return float64(crossings) / float64(len(samples))
}

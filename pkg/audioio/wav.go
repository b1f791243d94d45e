package audioio

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

const (
	wavBitsPerSample = 16
	wavFormatPCM     = 1
	wavFmtChunkSize  = 16
)

// EncodeWAV renders the clip as a complete in-memory WAV file
// (16-bit PCM, little-endian) suitable for multipart upload.
func EncodeWAV(clip Clip) []byte {
	pcm := clip.Bytes()
	blockAlign := clip.Channels * wavBitsPerSample / 8
	byteRate := clip.SampleRate * blockAlign

	var buf bytes.Buffer
	buf.Grow(44 + len(pcm))

	buf.WriteString("RIFF")
	binary.Write(&buf, binary.LittleEndian, uint32(36+len(pcm)))
	buf.WriteString("WAVE")

	buf.WriteString("fmt ")
	binary.Write(&buf, binary.LittleEndian, uint32(wavFmtChunkSize))
	binary.Write(&buf, binary.LittleEndian, uint16(wavFormatPCM))
	binary.Write(&buf, binary.LittleEndian, uint16(clip.Channels))
	binary.Write(&buf, binary.LittleEndian, uint32(clip.SampleRate))
	binary.Write(&buf, binary.LittleEndian, uint32(byteRate))
	binary.Write(&buf, binary.LittleEndian, uint16(blockAlign))
	binary.Write(&buf, binary.LittleEndian, uint16(wavBitsPerSample))

	buf.WriteString("data")
	binary.Write(&buf, binary.LittleEndian, uint32(len(pcm)))
	buf.Write(pcm)

	return buf.Bytes()
}

// DecodeWAV parses an in-memory WAV file into a Clip.
func DecodeWAV(data []byte) (Clip, error) {
	dec := wav.NewDecoder(bytes.NewReader(data))
	if !dec.IsValidFile() {
		return Clip{}, ErrInvalidWAV
	}
	pb, err := dec.FullPCMBuffer()
	if err != nil {
		return Clip{}, fmt.Errorf("audioio: decode wav: %w", err)
	}
	if pb == nil || len(pb.Data) == 0 {
		return Clip{}, ErrInvalidWAV
	}
	bitDepth := int(dec.BitDepth)
	if bitDepth == 0 {
		bitDepth = 16
	}
	return clipFromIntBuffer(pb, bitDepth), nil
}

func clipFromIntBuffer(pb *audio.IntBuffer, bitDepth int) Clip {
	samples := make([]int16, len(pb.Data))
	for i, v := range pb.Data {
		switch {
		case bitDepth > 16:
			v >>= uint(bitDepth - 16)
		case bitDepth < 16:
			v <<= uint(16 - bitDepth)
		}
		if v > 32767 {
			v = 32767
		} else if v < -32768 {
			v = -32768
		}
		samples[i] = int16(v)
	}

	clip := Clip{Samples: samples, SampleRate: 16000, Channels: 1}
	if pb.Format != nil {
		if pb.Format.SampleRate > 0 {
			clip.SampleRate = pb.Format.SampleRate
		}
		if pb.Format.NumChannels > 0 {
			clip.Channels = pb.Format.NumChannels
		}
	}
	return clip
}

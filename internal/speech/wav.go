// Package speech gates recorded audio before the paid STT call: recordings
// that are empty, too short or effectively silent are rejected locally with
// an actionable message.
package speech

import (
	"encoding/binary"
	"math"
)

const (
	minDurationSeconds = 0.25
	// Capture below both ratios is treated as silence.
	silencePeakRatio = 0.0002
	silenceRMSRatio  = 0.00005
)

// Analyze inspects WAV bytes. ok=true means the recording should go to STT;
// ok=false carries a user-facing reason. Audio that does not parse as WAV is
// passed through so the remote decoder can decide.
func Analyze(data []byte) (ok bool, reason string) {
	wav, parsed := parseWAV(data)
	if !parsed {
		return true, ""
	}
	if wav.sampleWidth <= 0 || wav.sampleRate <= 0 || len(wav.frames) == 0 {
		return false, "Recorded audio was empty."
	}

	frameCount := len(wav.frames) / (wav.sampleWidth * wav.channels)
	duration := float64(frameCount) / float64(wav.sampleRate)
	if duration < minDurationSeconds {
		return false, "Recording was too short. Hold recording a bit longer before stopping."
	}

	samples := decodeSamples(wav.frames, wav.sampleWidth)
	if len(samples) == 0 {
		return false, "Recorded audio was empty."
	}

	maxAbs := float64(int64(1)<<(wav.sampleWidth*8-1) - 1)
	var peak float64
	var sumSquares float64
	for _, sample := range samples {
		abs := math.Abs(float64(sample))
		if abs > peak {
			peak = abs
		}
		sumSquares += float64(sample) * float64(sample)
	}
	rms := math.Sqrt(sumSquares / float64(len(samples)))

	if peak/maxAbs < silencePeakRatio && rms/maxAbs < silenceRMSRatio {
		return false, "No speech detected in recording. Check input device and mic permissions."
	}
	return true, ""
}

type wavData struct {
	sampleWidth int
	sampleRate  int
	channels    int
	frames      []byte
}

// parseWAV walks the RIFF chunks for fmt and data. Only PCM widths 1..4 are
// analyzed; anything else fails parsing and is passed through.
func parseWAV(data []byte) (wavData, bool) {
	var out wavData
	if len(data) < 12 || string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		return out, false
	}

	offset := 12
	haveFmt := false
	for offset+8 <= len(data) {
		chunkID := string(data[offset : offset+4])
		chunkSize := int(binary.LittleEndian.Uint32(data[offset+4 : offset+8]))
		body := offset + 8
		if chunkSize < 0 || body+chunkSize > len(data) {
			chunkSize = len(data) - body
			if chunkSize < 0 {
				break
			}
		}
		switch chunkID {
		case "fmt ":
			if chunkSize < 16 {
				return out, false
			}
			out.channels = int(binary.LittleEndian.Uint16(data[body+2 : body+4]))
			out.sampleRate = int(binary.LittleEndian.Uint32(data[body+4 : body+8]))
			bitsPerSample := int(binary.LittleEndian.Uint16(data[body+14 : body+16]))
			out.sampleWidth = bitsPerSample / 8
			haveFmt = true
		case "data":
			out.frames = data[body : body+chunkSize]
		}
		offset = body + chunkSize
		if chunkSize%2 == 1 {
			offset++
		}
	}

	if !haveFmt || out.sampleWidth < 1 || out.sampleWidth > 4 || out.channels < 1 {
		return out, false
	}
	return out, true
}

func decodeSamples(frames []byte, sampleWidth int) []int64 {
	count := len(frames) / sampleWidth
	samples := make([]int64, 0, count)
	for i := 0; i+sampleWidth <= len(frames); i += sampleWidth {
		switch sampleWidth {
		case 1:
			// 8-bit WAV is unsigned, centered at 128.
			samples = append(samples, int64(frames[i])-128)
		case 2:
			samples = append(samples, int64(int16(binary.LittleEndian.Uint16(frames[i:i+2]))))
		case 3:
			raw := int64(frames[i]) | int64(frames[i+1])<<8 | int64(frames[i+2])<<16
			if raw&0x800000 != 0 {
				raw -= 1 << 24
			}
			samples = append(samples, raw)
		case 4:
			samples = append(samples, int64(int32(binary.LittleEndian.Uint32(frames[i:i+4]))))
		}
	}
	return samples
}

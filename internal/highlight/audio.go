package highlight

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"clipper/internal/services"
)

// AudioHits returns the start time in seconds of every non-overlapping window
// whose RMS exceeds mean(RMS) times multiplier. The final window may be
// partial. Multi-channel input is averaged to mono.
func AudioHits(path string, window, multiplier float64) ([]float64, error) {
	rms, hop, sampleRate, err := windowRMS(path, window)
	if err != nil {
		return nil, err
	}
	return thresholdHits(rms, hop, sampleRate, multiplier), nil
}

func thresholdHits(rms []float64, hop, sampleRate int, multiplier float64) []float64 {
	hits := []float64{}
	if len(rms) == 0 || sampleRate <= 0 {
		return hits
	}
	var sum float64
	for _, v := range rms {
		sum += v
	}
	threshold := sum / float64(len(rms)) * multiplier
	for i, v := range rms {
		if v > threshold {
			hits = append(hits, float64(i*hop)/float64(sampleRate))
		}
	}
	return hits
}

// windowRMS streams the WAV file and returns one RMS value per window along
// with the hop size in frames and the sample rate.
func windowRMS(path string, window float64) ([]float64, int, int, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, 0, 0, services.Wrap(services.ErrNotFound, "highlight", "audio pass", "audio file missing: "+path, err)
		}
		return nil, 0, 0, services.Wrap(services.ErrIO, "highlight", "audio pass", "open audio", err)
	}
	defer file.Close()

	decoder := wav.NewDecoder(file)
	decoder.ReadInfo()
	if err := decoder.Err(); err != nil {
		return nil, 0, 0, services.Wrap(services.ErrValidation, "highlight", "audio pass", "not a PCM WAV file: "+path, err)
	}
	sampleRate := int(decoder.SampleRate)
	channels := int(decoder.NumChans)
	bitDepth := int(decoder.BitDepth)
	if sampleRate <= 0 || channels <= 0 || bitDepth <= 0 {
		return nil, 0, 0, services.Wrap(services.ErrValidation, "highlight", "audio pass",
			fmt.Sprintf("unsupported WAV header (rate=%d channels=%d depth=%d)", sampleRate, channels, bitDepth), nil)
	}
	if err := decoder.FwdToPCM(); err != nil {
		return nil, 0, 0, services.Wrap(services.ErrValidation, "highlight", "audio pass", "no PCM data chunk: "+path, err)
	}
	if decoder.PCMSize == 0 {
		return []float64{}, 0, sampleRate, nil
	}
	hop := int(float64(sampleRate) * window)
	if hop < 1 {
		hop = 1
	}
	scale := math.Pow(2, float64(bitDepth-1))

	buf := &audio.IntBuffer{
		Format: &audio.Format{NumChannels: channels, SampleRate: sampleRate},
		Data:   make([]int, hop*channels),
	}
	var (
		rms        []float64
		sumSquares float64
		frames     int
		pending    []int
	)
	for {
		n, err := decoder.PCMBuffer(buf)
		if n > 0 {
			// Carry any sample belonging to an incomplete frame into the next read.
			samples := append(pending, buf.Data[:n]...)
			whole := len(samples) / channels * channels
			for i := 0; i < whole; i += channels {
				var mixed float64
				for c := 0; c < channels; c++ {
					mixed += float64(samples[i+c])
				}
				mixed = mixed / float64(channels) / scale
				sumSquares += mixed * mixed
				frames++
				if frames == hop {
					rms = append(rms, math.Sqrt(sumSquares/float64(frames)))
					sumSquares, frames = 0, 0
				}
			}
			pending = append(pending[:0], samples[whole:]...)
		}
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				break
			}
			return nil, 0, 0, services.Wrap(services.ErrIO, "highlight", "audio pass", "decode audio", err)
		}
		if n == 0 {
			break
		}
	}
	if frames > 0 {
		rms = append(rms, math.Sqrt(sumSquares/float64(frames)))
	}
	return rms, hop, sampleRate, nil
}

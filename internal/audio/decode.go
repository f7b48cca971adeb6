package audio

import (
	"bytes"
	"fmt"
	"io"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/mp3"
	"github.com/gopxl/beep/v2/wav"
)

// clip is a fully decoded audio asset: interleaved stereo frames at the
// rate the file was encoded with.
type clip struct {
	samples [][2]float64
	rate    int
}

func (c *clip) frames() int64 {
	return int64(len(c.samples))
}

func (c *clip) seconds() float64 {
	if c.rate <= 0 {
		return 0
	}
	return float64(len(c.samples)) / float64(c.rate)
}

// decodeClip sniffs the container (WAV by RIFF header, MP3 otherwise) and
// decodes the whole payload into memory. Tracks are short scene assets,
// never feature-length files, so buffering them whole is fine.
func decodeClip(data []byte) (*clip, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty payload", ErrDecode)
	}

	var (
		streamer beep.StreamSeekCloser
		format   beep.Format
		err      error
	)

	rc := io.NopCloser(bytes.NewReader(data))
	if isWAV(data) {
		streamer, format, err = wav.Decode(rc)
	} else {
		streamer, format, err = mp3.Decode(rc)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	defer streamer.Close()

	samples := make([][2]float64, 0, 1<<14)
	buf := make([][2]float64, 512)
	for {
		n, ok := streamer.Stream(buf)
		samples = append(samples, buf[:n]...)
		if !ok {
			break
		}
	}
	if err := streamer.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	if len(samples) == 0 {
		return nil, fmt.Errorf("%w: no audio frames", ErrDecode)
	}

	return &clip{samples: samples, rate: int(format.SampleRate)}, nil
}

// convertRate resamples a clip to the engine rate when they differ.
func (c *clip) convertRate(engineRate int) *clip {
	if c.rate == engineRate {
		return c
	}
	return &clip{
		samples: resampleStereo(c.samples, c.rate, engineRate),
		rate:    engineRate,
	}
}

func isWAV(data []byte) bool {
	return len(data) >= 12 &&
		bytes.Equal(data[0:4], []byte("RIFF")) &&
		bytes.Equal(data[8:12], []byte("WAVE"))
}

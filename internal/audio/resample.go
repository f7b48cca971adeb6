package audio

import (
	"fmt"
	"io"
	"math"
)

// Resampler converts int16 PCM between sample rates.
type Resampler interface {
	Resample(input []int16, inputRate, outputRate, channels int) ([]int16, error)
}

// LinearResampler interpolates linearly between neighboring input frames.
// Good enough for speech; cheap enough to run inline on the playback path.
type LinearResampler struct{}

func NewLinearResampler() *LinearResampler {
	return &LinearResampler{}
}

func (r *LinearResampler) Resample(input []int16, inputRate, outputRate, channels int) ([]int16, error) {
	if inputRate <= 0 || outputRate <= 0 {
		return nil, fmt.Errorf("invalid sample rate: input=%d, output=%d", inputRate, outputRate)
	}
	if channels <= 0 {
		return nil, fmt.Errorf("invalid channels: %d", channels)
	}
	if len(input) == 0 {
		return []int16{}, nil
	}

	if inputRate == outputRate {
		result := make([]int16, len(input))
		copy(result, input)
		return result, nil
	}

	inputFrames := len(input) / channels
	if inputFrames == 0 {
		return []int16{}, nil
	}

	ratio := float64(inputRate) / float64(outputRate)
	outputFrames := int(math.Ceil(float64(inputFrames) / ratio))
	output := make([]int16, outputFrames*channels)

	for outFrame := 0; outFrame < outputFrames; outFrame++ {
		position := float64(outFrame) * ratio
		inFrame := int(position)
		frac := position - float64(inFrame)

		if inFrame >= inputFrames-1 {
			inFrame = inputFrames - 2
			if inFrame < 0 {
				inFrame = 0
			}
			frac = 1.0
		}

		for ch := 0; ch < channels; ch++ {
			idx1 := inFrame*channels + ch
			idx2 := (inFrame+1)*channels + ch
			if idx2 >= len(input) {
				idx2 = idx1
			}

			interpolated := float64(input[idx1])*(1.0-frac) + float64(input[idx2])*frac
			if interpolated > 32767 {
				interpolated = 32767
			} else if interpolated < -32768 {
				interpolated = -32768
			}
			output[outFrame*channels+ch] = int16(interpolated)
		}
	}

	return output, nil
}

// ResamplingReader wraps a PCM byte stream and converts it to the output
// rate on the fly. When the rates match it passes reads straight through.
type ResamplingReader struct {
	source     io.Reader
	resampler  Resampler
	inputRate  int
	outputRate int
	channels   int

	inputBuffer  []byte
	sampleBuffer []int16
	outputBuffer []int16
	outputPos    int
}

func NewResamplingReader(source io.Reader, inputRate, outputRate, channels int, resampler Resampler) *ResamplingReader {
	if resampler == nil {
		resampler = NewLinearResampler()
	}

	return &ResamplingReader{
		source:       source,
		resampler:    resampler,
		inputRate:    inputRate,
		outputRate:   outputRate,
		channels:     channels,
		inputBuffer:  make([]byte, 4096),
		sampleBuffer: make([]int16, 0, 2048),
		outputBuffer: make([]int16, 0, 4096),
	}
}

func (r *ResamplingReader) Read(p []byte) (n int, err error) {
	if r.inputRate == r.outputRate {
		return r.source.Read(p)
	}

	if r.outputPos < len(r.outputBuffer) {
		if n = r.copyOutputToBytes(p); n > 0 {
			return n, nil
		}
	}

	for {
		nr, err := r.source.Read(r.inputBuffer)
		if nr > 0 {
			r.sampleBuffer = append(r.sampleBuffer, bytesToInt16(r.inputBuffer[:nr])...)

			resampled, resampleErr := r.resampler.Resample(r.sampleBuffer, r.inputRate, r.outputRate, r.channels)
			if resampleErr != nil {
				return 0, resampleErr
			}

			r.outputBuffer = resampled
			r.outputPos = 0
			r.sampleBuffer = r.sampleBuffer[:0]

			if n = r.copyOutputToBytes(p); n > 0 {
				return n, nil
			}
		}

		if err != nil {
			if len(r.outputBuffer) > r.outputPos {
				if n = r.copyOutputToBytes(p); n > 0 {
					return n, nil
				}
			}
			return 0, err
		}
	}
}

func (r *ResamplingReader) copyOutputToBytes(p []byte) int {
	available := len(r.outputBuffer) - r.outputPos
	if available <= 0 {
		return 0
	}

	maxSamples := len(p) / 2
	if maxSamples > available {
		maxSamples = available
	}

	n := int16ToBytes(r.outputBuffer[r.outputPos:r.outputPos+maxSamples], p)
	r.outputPos += maxSamples
	return n
}

func (r *ResamplingReader) Close() error {
	if closer, ok := r.source.(io.ReadCloser); ok {
		return closer.Close()
	}
	return nil
}

// resampleStereo converts decoded stereo frames between rates with the
// same linear interpolation the PCM path uses.
func resampleStereo(input [][2]float64, inputRate, outputRate int) [][2]float64 {
	if len(input) == 0 || inputRate == outputRate || inputRate <= 0 || outputRate <= 0 {
		return input
	}

	ratio := float64(inputRate) / float64(outputRate)
	outputFrames := int(math.Ceil(float64(len(input)) / ratio))
	output := make([][2]float64, outputFrames)

	for outFrame := 0; outFrame < outputFrames; outFrame++ {
		position := float64(outFrame) * ratio
		inFrame := int(position)
		frac := position - float64(inFrame)

		if inFrame >= len(input)-1 {
			inFrame = len(input) - 1
			frac = 0
		}
		next := inFrame
		if inFrame+1 < len(input) {
			next = inFrame + 1
		}

		for ch := 0; ch < 2; ch++ {
			output[outFrame][ch] = input[inFrame][ch]*(1.0-frac) + input[next][ch]*frac
		}
	}

	return output
}

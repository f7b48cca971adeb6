package audio

import "io"

// mixInt16Stream reads one buffer's worth of 16-bit mono PCM from stream
// and adds it, scaled by volume, into every output channel. Short reads
// near EOF still contribute whatever samples arrived.
func mixInt16Stream(stream io.Reader, out [][]float32, volume float32) {
	if stream == nil || len(out) == 0 {
		return
	}

	frame := make([]byte, len(out[0])*2)
	n, err := io.ReadFull(stream, frame)
	if err != nil && err != io.ErrUnexpectedEOF {
		return
	}

	limit := n / 2
	for i := 0; i < limit && i < len(out[0]); i++ {
		sample := int16(frame[i*2]) | int16(frame[i*2+1])<<8
		value := float32(sample) / 32768.0 * volume

		for ch := range out {
			out[ch][i] = clamp32(out[ch][i] + value)
		}
	}
}

func clamp32(v float32) float32 {
	if v > 1.0 {
		return 1.0
	}
	if v < -1.0 {
		return -1.0
	}
	return v
}

func bytesToInt16(data []byte) []int16 {
	samples := make([]int16, len(data)/2)
	for i := 0; i < len(samples); i++ {
		samples[i] = int16(data[i*2]) | int16(data[i*2+1])<<8
	}
	return samples
}

func int16ToBytes(samples []int16, data []byte) int {
	n := 0
	for i := 0; i < len(samples) && n+1 < len(data); i++ {
		data[n] = byte(samples[i])
		data[n+1] = byte(samples[i] >> 8)
		n += 2
	}
	return n
}

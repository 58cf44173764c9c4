package wavfile

import (
	"github.com/go-audio/audio"
)

// Downmix averages all channels of buf into a single mono channel.
func Downmix(buf *audio.IntBuffer) *audio.IntBuffer {
	ch := buf.Format.NumChannels
	if ch <= 1 {
		return buf
	}

	frames := len(buf.Data) / ch
	mono := make([]int, frames)
	for f := 0; f < frames; f++ {
		sum := 0
		for c := 0; c < ch; c++ {
			sum += buf.Data[f*ch+c]
		}
		mono[f] = sum / ch
	}
	return &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 1, SampleRate: buf.Format.SampleRate},
		Data:           mono,
		SourceBitDepth: buf.SourceBitDepth,
	}
}

// Resample converts buf to rate with linear interpolation. Good enough for
// speech; not meant for music.
func Resample(buf *audio.IntBuffer, rate int) *audio.IntBuffer {
	if rate <= 0 || buf.Format.SampleRate == rate || buf.Format.SampleRate == 0 {
		return buf
	}

	ch := buf.Format.NumChannels
	inFrames := len(buf.Data) / ch
	ratio := float64(rate) / float64(buf.Format.SampleRate)
	outFrames := int(float64(inFrames) * ratio)
	out := make([]int, outFrames*ch)

	for i := 0; i < outFrames; i++ {
		pos := float64(i) / ratio
		idx := int(pos)
		frac := pos - float64(idx)

		for c := 0; c < ch; c++ {
			if idx >= inFrames-1 {
				out[i*ch+c] = buf.Data[(inFrames-1)*ch+c]
				continue
			}
			a := float64(buf.Data[idx*ch+c])
			b := float64(buf.Data[(idx+1)*ch+c])
			out[i*ch+c] = int(a*(1-frac) + b*frac)
		}
	}

	return &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: ch, SampleRate: rate},
		Data:           out,
		SourceBitDepth: buf.SourceBitDepth,
	}
}

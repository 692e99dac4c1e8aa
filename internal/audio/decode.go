package audio

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-audio/wav"
	mp3 "github.com/hajimehoshi/go-mp3"
	"github.com/jfreymuth/oggvorbis"
	"github.com/mewkiz/flac"
)

// Decoded is one fully decoded sound file, reduced to a single channel of
// 16-bit samples. The buffer is immutable for the rest of the session.
type Decoded struct {
	SampleRate int
	Samples    []int16
}

// ReadFile decodes the file at path into raw mono samples. Format is chosen
// by extension. Multi-channel input keeps the first channel only; other bit
// depths are converted to 16-bit. A decode failure is fatal to the session.
func ReadFile(path string) (Decoded, error) {
	f, err := os.Open(path)
	if err != nil {
		return Decoded{}, err
	}
	defer f.Close()

	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".wav":
		return readWAV(f)
	case ".mp3":
		return readMP3(f)
	case ".flac":
		return readFLAC(f)
	case ".ogg":
		return readOGG(f)
	default:
		return Decoded{}, fmt.Errorf("unsupported format: %s", ext)
	}
}

func readWAV(f *os.File) (Decoded, error) {
	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return Decoded{}, fmt.Errorf("invalid WAV file")
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return Decoded{}, fmt.Errorf("reading WAV PCM data: %w", err)
	}

	channels := buf.Format.NumChannels
	if channels < 1 {
		return Decoded{}, fmt.Errorf("WAV file reports %d channels", channels)
	}
	depth := buf.SourceBitDepth
	if depth == 0 {
		depth = 16
	}

	n := len(buf.Data) / channels
	samples := make([]int16, n)
	for i := 0; i < n; i++ {
		v := buf.Data[i*channels]
		switch depth {
		case 8:
			// 8-bit WAV is unsigned
			v = (v - 128) << 8
		case 16:
			// as-is
		case 24:
			v >>= 8
		case 32:
			v >>= 16
		default:
			return Decoded{}, fmt.Errorf("unsupported WAV bit depth: %d", depth)
		}
		samples[i] = clamp16(v)
	}

	return Decoded{SampleRate: buf.Format.SampleRate, Samples: samples}, nil
}

func readMP3(f *os.File) (Decoded, error) {
	dec, err := mp3.NewDecoder(f)
	if err != nil {
		return Decoded{}, fmt.Errorf("decoding MP3: %w", err)
	}

	// go-mp3 always emits 16-bit stereo frames.
	raw, err := io.ReadAll(dec)
	if err != nil {
		return Decoded{}, fmt.Errorf("reading MP3 PCM data: %w", err)
	}

	n := len(raw) / 4
	samples := make([]int16, n)
	for i := 0; i < n; i++ {
		samples[i] = int16(binary.LittleEndian.Uint16(raw[i*4:]))
	}

	return Decoded{SampleRate: dec.SampleRate(), Samples: samples}, nil
}

func readFLAC(f *os.File) (Decoded, error) {
	stream, err := flac.New(f)
	if err != nil {
		return Decoded{}, fmt.Errorf("decoding FLAC: %w", err)
	}

	info := stream.Info
	bps := int(info.BitsPerSample)
	samples := make([]int16, 0, info.NSamples)

	for {
		frame, err := stream.ParseNext()
		if err == io.EOF {
			break
		}
		if err != nil {
			return Decoded{}, fmt.Errorf("reading FLAC frame: %w", err)
		}
		for _, s := range frame.Subframes[0].Samples {
			v := int(s)
			switch {
			case bps > 16:
				v >>= bps - 16
			case bps < 16:
				v <<= 16 - bps
			}
			samples = append(samples, clamp16(v))
		}
	}

	return Decoded{SampleRate: int(info.SampleRate), Samples: samples}, nil
}

func readOGG(f *os.File) (Decoded, error) {
	data, format, err := oggvorbis.ReadAll(f)
	if err != nil {
		return Decoded{}, fmt.Errorf("decoding OGG: %w", err)
	}
	if format.Channels < 1 {
		return Decoded{}, fmt.Errorf("OGG file reports %d channels", format.Channels)
	}

	n := len(data) / format.Channels
	samples := make([]int16, n)
	for i := 0; i < n; i++ {
		s := data[i*format.Channels]
		if s > 1.0 {
			s = 1.0
		} else if s < -1.0 {
			s = -1.0
		}
		samples[i] = int16(s * 32767)
	}

	return Decoded{SampleRate: format.SampleRate, Samples: samples}, nil
}

func clamp16(v int) int16 {
	if v > 32767 {
		return 32767
	}
	if v < -32768 {
		return -32768
	}
	return int16(v)
}

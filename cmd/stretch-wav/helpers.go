package main

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	gomp3 "github.com/hajimehoshi/go-mp3"
	"github.com/jfreymuth/oggvorbis"
	"gopkg.in/yaml.v3"

	stretcher "github.com/tphakala/go-audio-stretcher"
)

const (
	bitsPerSample8  = 8
	bitsPerSample16 = 16
	bitsPerSample24 = 24
	bitsPerSample32 = 32

	// 24-bit samples are widened to 32 bits before scaling.
	int24Shift = 8

	// go-mp3 always decodes to interleaved 16-bit stereo.
	mp3Channels       = 2
	mp3BytesPerSample = 2

	monoChannels   = 1
	wavFormatPCM   = 1
	outputFileMode = 0o644
)

// inputAudio is a decoded mono signal.
type inputAudio struct {
	samples []float32
	rate    int
	format  string
}

// readInput decodes a WAV, MP3 or Ogg Vorbis file, chosen by extension.
func readInput(path string, verbose bool) (*inputAudio, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open input file: %w", err)
	}
	defer func() { _ = f.Close() }()

	var in *inputAudio
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".wav", ".wave":
		in, err = decodeWAV(f)
	case ".mp3":
		in, err = decodeMP3(f)
	case ".ogg", ".oga":
		in, err = decodeVorbis(f)
	default:
		return nil, fmt.Errorf("unsupported input format %q", ext)
	}
	if err != nil {
		return nil, err
	}

	if verbose {
		log.Printf("Input format: %s, %d Hz, %d samples", in.format, in.rate, len(in.samples))
	}
	return in, nil
}

// decodeWAV reads a mono PCM WAV stream.
func decodeWAV(r io.ReadSeeker) (*inputAudio, error) {
	dec := wav.NewDecoder(r)
	if !dec.IsValidFile() {
		return nil, fmt.Errorf("invalid WAV file")
	}
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to read audio data: %w", err)
	}
	if channels := buf.Format.NumChannels; channels != monoChannels {
		return nil, fmt.Errorf("input has %d channels; only mono is supported", channels)
	}

	depth := int(dec.BitDepth)
	samples, err := unpackPCM(buf.Data, depth)
	if err != nil {
		return nil, err
	}
	return &inputAudio{
		samples: samples,
		rate:    buf.Format.SampleRate,
		format:  fmt.Sprintf("wav %d-bit", depth),
	}, nil
}

// unpackPCM scales integer PCM to [-1, 1] through the format adapter.
func unpackPCM(data []int, depth int) ([]float32, error) {
	var arr *stretcher.Array
	switch depth {
	case bitsPerSample8:
		u := make([]uint8, len(data))
		for i, x := range data {
			u[i] = uint8(x)
		}
		arr = stretcher.NewArray(u)
	case bitsPerSample16:
		s := make([]int16, len(data))
		for i, x := range data {
			s[i] = int16(x)
		}
		arr = stretcher.NewArray(s)
	case bitsPerSample24, bitsPerSample32:
		shift := 0
		if depth == bitsPerSample24 {
			shift = int24Shift
		}
		s := make([]int32, len(data))
		for i, x := range data {
			s[i] = int32(x << shift)
		}
		arr = stretcher.NewArray(s)
	default:
		return nil, fmt.Errorf("unsupported bit depth %d", depth)
	}

	samples, kind, err := stretcher.Unpack(arr, stretcher.Float32)
	if err != nil {
		return nil, err
	}
	out := make([]float32, len(samples))
	for i, x := range samples {
		out[i] = float32(x)
	}
	// 8-bit WAV is offset binary: 0.5 is silence.
	if kind == stretcher.Uint8 {
		for i := range out {
			out[i] = 2*out[i] - 1
		}
	}
	return out, nil
}

// decodeMP3 reads an MP3 stream and downmixes it to mono.
func decodeMP3(r io.Reader) (*inputAudio, error) {
	dec, err := gomp3.NewDecoder(r)
	if err != nil {
		return nil, fmt.Errorf("invalid MP3 file: %w", err)
	}
	raw, err := io.ReadAll(dec)
	if err != nil {
		return nil, fmt.Errorf("failed to read audio data: %w", err)
	}

	pcm, _, err := stretcher.Unpack(stretcher.Bytes(littleEndianToNative(raw)), stretcher.Int16)
	if err != nil {
		return nil, err
	}
	return &inputAudio{
		samples: downmix(pcm, mp3Channels),
		rate:    dec.SampleRate(),
		format:  "mp3",
	}, nil
}

// littleEndianToNative reorders 16-bit little-endian PCM for native-endian
// decoding.
func littleEndianToNative(raw []byte) []byte {
	raw = raw[:len(raw)-len(raw)%mp3BytesPerSample]
	if binary.NativeEndian.Uint16([]byte{1, 0}) == 1 {
		return raw
	}
	out := make([]byte, len(raw))
	for i := 0; i < len(raw); i += mp3BytesPerSample {
		binary.NativeEndian.PutUint16(out[i:], binary.LittleEndian.Uint16(raw[i:]))
	}
	return out
}

// downmix averages interleaved frames of channels samples into mono.
func downmix(interleaved []float64, channels int) []float32 {
	frames := len(interleaved) / channels
	out := make([]float32, frames)
	for i := range frames {
		var sum float64
		for ch := range channels {
			sum += interleaved[i*channels+ch]
		}
		out[i] = float32(sum / float64(channels))
	}
	return out
}

// decodeVorbis reads a mono Ogg Vorbis stream.
func decodeVorbis(r io.Reader) (*inputAudio, error) {
	samples, format, err := oggvorbis.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("invalid Ogg Vorbis file: %w", err)
	}
	if format.Channels != monoChannels {
		return nil, fmt.Errorf("input has %d channels; only mono is supported", format.Channels)
	}
	return &inputAudio{
		samples: samples,
		rate:    format.SampleRate,
		format:  "ogg vorbis",
	}, nil
}

// stretchSamples runs the stretcher on a float32 array.
func stretchSamples(ctx context.Context, samples []float32, cfg *stretcher.Config) ([]float32, error) {
	out, err := stretcher.Stretch(ctx, stretcher.NewArray(samples), cfg)
	if err != nil {
		return nil, err
	}
	arr, ok := out.(*stretcher.Array)
	if !ok {
		return nil, fmt.Errorf("unexpected output container")
	}
	values, ok := stretcher.ArrayValues[float32](arr)
	if !ok {
		return nil, fmt.Errorf("unexpected output element kind %v", arr.Kind())
	}
	return values, nil
}

// writeWAV quantizes samples to bits and writes a mono PCM WAV file.
func writeWAV(path string, samples []float32, rate, bits int) (err error) {
	kind := stretcher.Int16
	if bits == bitsPerSample32 {
		kind = stretcher.Int32
	}

	in := make([]float64, len(samples))
	for i, x := range samples {
		in[i] = float64(x)
	}
	packed, err := stretcher.Pack(in, kind, stretcher.ContainerArray)
	if err != nil {
		return err
	}
	data := make([]int, len(samples))
	switch v := packed.(*stretcher.Array).Values().(type) {
	case []int16:
		for i, x := range v {
			data[i] = int(x)
		}
	case []int32:
		for i, x := range v {
			data[i] = int(x)
		}
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, outputFileMode)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() {
		if closeErr := f.Close(); err == nil {
			err = closeErr
		}
	}()

	enc := wav.NewEncoder(f, rate, bits, monoChannels, wavFormatPCM)
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: monoChannels, SampleRate: rate},
		Data:           data,
		SourceBitDepth: bits,
	}
	if err := enc.Write(buf); err != nil {
		return fmt.Errorf("failed to write audio data: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("failed to finalize WAV file: %w", err)
	}
	return nil
}

// preset is a YAML file of default settings.
type preset struct {
	Crispness *int     `yaml:"crispness"`
	Formants  *bool    `yaml:"formants"`
	Precise   *bool    `yaml:"precise"`
	Threaded  *bool    `yaml:"threaded"`
	Bits      *int     `yaml:"bits"`
	Chunk     *int     `yaml:"chunk"`
	Ratio     *float64 `yaml:"ratio"`
}

func loadPreset(path string) (*preset, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read preset: %w", err)
	}
	var p preset
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(&p); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse preset %s: %w", filepath.Base(path), err)
	}
	return &p, nil
}

// apply copies preset values into opts for flags not set explicitly.
func (p *preset) apply(opts *options, explicit map[string]bool) {
	if p.Crispness != nil && !explicit["crispness"] {
		opts.crispness = *p.Crispness
	}
	if p.Formants != nil && !explicit["formants"] {
		opts.formants = *p.Formants
	}
	if p.Precise != nil && !explicit["precise"] {
		opts.precise = *p.Precise
	}
	if p.Threaded != nil && !explicit["threaded"] {
		opts.threaded = *p.Threaded
	}
	if p.Bits != nil && !explicit["bits"] {
		opts.bits = *p.Bits
	}
	if p.Chunk != nil && !explicit["chunk"] {
		opts.chunk = *p.Chunk
	}
	if p.Ratio != nil && !explicit["ratio"] {
		opts.ratio = *p.Ratio
	}
}

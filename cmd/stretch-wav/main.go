// Command stretch-wav time-stretches a mono audio file to a new duration
// or by a ratio and writes the result as a WAV file.
//
// Usage:
//
//	stretch-wav -duration 12.5 input.wav output.wav
//	stretch-wav -ratio 0.8 -crispness 6 drums.wav faster.wav
//	stretch-wav -duration 30 -config voice.yaml speech.mp3 slow.wav
//
// WAV and Ogg Vorbis input must be mono. MP3 input is downmixed.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	stretcher "github.com/tphakala/go-audio-stretcher"
)

const (
	minRequiredArgs = 2

	exitProcessing = 1
	exitUsage      = 2
)

// errUsage marks command line errors.
var errUsage = errors.New("usage error")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()

	switch {
	case err == nil:
	case errors.Is(err, errUsage):
		log.Print(err)
		os.Exit(exitUsage)
	default:
		log.Print(err)
		os.Exit(exitProcessing)
	}
}

// options holds parsed command line settings.
type options struct {
	input     string
	output    string
	duration  float64
	ratio     float64
	crispness int
	formants  bool
	precise   bool
	threaded  bool
	bits      int
	chunk     int
	verbose   bool
}

func parseArgs(args []string, stderr io.Writer) (*options, error) {
	fs := flag.NewFlagSet("stretch-wav", flag.ContinueOnError)
	fs.SetOutput(stderr)

	opts := &options{}
	fs.Float64Var(&opts.duration, "duration", 0, "Target duration in seconds (overrides -ratio)")
	fs.Float64Var(&opts.ratio, "ratio", 1.0, "Output to input duration ratio")
	fs.IntVar(&opts.crispness, "crispness", stretcher.DefaultQuality, "Quality preset 0 (mushy) to 6 (percussive)")
	fs.BoolVar(&opts.formants, "formants", false, "Preserve formants when pitch scaling")
	fs.BoolVar(&opts.precise, "precise", false, "Use exact fractional analysis hops")
	fs.BoolVar(&opts.threaded, "threaded", false, "Run the engine on a worker goroutine")
	fs.IntVar(&opts.bits, "bits", bitsPerSample16, "Output bit depth: 16 or 32")
	fs.IntVar(&opts.chunk, "chunk", 0, "Samples per engine call (0 = default)")
	configPath := fs.String("config", "", "YAML preset file; explicit flags take precedence")
	fs.BoolVar(&opts.verbose, "v", false, "Verbose output")

	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: stretch-wav [options] input output.wav\n\n")
		fmt.Fprintf(stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(stderr, "\nExamples:\n")
		fmt.Fprintf(stderr, "  stretch-wav -duration 10 in.wav out.wav     # Stretch to 10 seconds\n")
		fmt.Fprintf(stderr, "  stretch-wav -ratio 2 -crispness 3 in.ogg out.wav\n")
	}

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("%w: %w", errUsage, err)
	}
	if fs.NArg() < minRequiredArgs {
		fs.Usage()
		return nil, fmt.Errorf("%w: insufficient arguments", errUsage)
	}
	opts.input = fs.Arg(0)
	opts.output = fs.Arg(1)

	if *configPath != "" {
		p, err := loadPreset(*configPath)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", errUsage, err)
		}
		explicit := make(map[string]bool)
		fs.Visit(func(f *flag.Flag) { explicit[f.Name] = true })
		p.apply(opts, explicit)
	}

	if opts.bits != bitsPerSample16 && opts.bits != bitsPerSample32 {
		return nil, fmt.Errorf("%w: -bits must be 16 or 32, got %d", errUsage, opts.bits)
	}
	if opts.crispness < stretcher.MinQuality || opts.crispness > stretcher.MaxQuality {
		return nil, fmt.Errorf("%w: -crispness must be in [%d, %d], got %d",
			errUsage, stretcher.MinQuality, stretcher.MaxQuality, opts.crispness)
	}
	if opts.duration < 0 {
		return nil, fmt.Errorf("%w: -duration must be positive", errUsage)
	}
	return opts, nil
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	opts, err := parseArgs(args, stderr)
	if err != nil {
		return err
	}

	var logger *slog.Logger
	if opts.verbose {
		log.Printf("Input: %s", opts.input)
		log.Printf("Output: %s", opts.output)
		log.Printf("Crispness: %d (%s)", opts.crispness, stretcher.PresetName(opts.crispness))
		logger = slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}

	in, err := readInput(opts.input, opts.verbose)
	if err != nil {
		return err
	}

	ratio := opts.ratio
	if opts.duration > 0 {
		ratio, err = stretcher.RatioForDuration(len(in.samples), in.rate, opts.duration)
		if err != nil {
			return fmt.Errorf("compute ratio: %w", err)
		}
	}

	cfg := stretcher.DefaultConfig()
	cfg.SampleRate = in.rate
	cfg.Ratio = ratio
	cfg.Quality = opts.crispness
	cfg.Formants = opts.formants
	cfg.Precise = opts.precise
	cfg.Threaded = opts.threaded
	cfg.ChunkSize = opts.chunk
	cfg.Logger = logger

	if opts.verbose {
		if info, err := stretcher.Inspect(&cfg); err == nil {
			log.Printf("Ratio: %.6f, window %d, hop %d/%.2f, options: %v",
				ratio, info.WindowSize, info.SynthesisHop, info.AnalysisHop, info.Options)
		}
	}

	start := time.Now()
	out, err := stretchSamples(ctx, in.samples, &cfg)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	if err := writeWAV(opts.output, out, in.rate, opts.bits); err != nil {
		return err
	}

	fmt.Fprintf(stdout, "Stretched %s -> %s\n", filepath.Base(opts.input), filepath.Base(opts.output))
	fmt.Fprintf(stdout, "  %d samples -> %d samples at %d Hz (ratio %.4f)\n",
		len(in.samples), len(out), in.rate, ratio)
	fmt.Fprintf(stdout, "  %.2fs -> %.2fs, processed in %.2fs\n",
		float64(len(in.samples))/float64(in.rate), float64(len(out))/float64(in.rate), elapsed.Seconds())
	return nil
}

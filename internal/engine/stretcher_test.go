package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/go-audio-stretcher/internal/testutil"
)

const testRate = 48000

// runStretcher studies input, processes it in chunks and drains all output.
func runStretcher(t *testing.T, s *Stretcher, input []float32, chunk int) []float32 {
	t.Helper()
	require.NoError(t, s.Study(input, true))

	var out []float32
	buf := make([]float32, 1000)
	drain := func() {
		for {
			n := s.Available()
			if n <= 0 {
				return
			}
			got := s.Retrieve(buf[:min(n, len(buf))])
			out = append(out, buf[:got]...)
		}
	}

	for off := 0; ; off += chunk {
		end := min(off+chunk, len(input))
		final := end == len(input)
		require.NoError(t, s.Process(input[off:end], final))
		drain()
		if final {
			break
		}
	}

	deadline := time.Now().Add(10 * time.Second)
	for s.Available() != -1 {
		require.True(t, time.Now().Before(deadline), "stretcher never finished")
		if s.Available() == 0 {
			time.Sleep(time.Millisecond)
			continue
		}
		drain()
	}
	require.NoError(t, s.Close())
	return out
}

func newTestStretcher(t *testing.T, quality int, ratio, pitch float64) *Stretcher {
	t.Helper()
	opts, err := MakeOptions(quality, false, false)
	require.NoError(t, err)
	s, err := New(testRate, 1, opts|OptionThreadingNever, ratio, pitch)
	require.NoError(t, err)
	return s
}

func TestNew_Validation(t *testing.T) {
	tests := []struct {
		name     string
		rate     int
		channels int
		ratio    float64
		pitch    float64
		wantErr  bool
	}{
		{"valid", 48000, 1, 1.5, 1.0, false},
		{"zero rate", 0, 1, 1, 1, true},
		{"stereo", 48000, 2, 1, 1, true},
		{"zero ratio", 48000, 1, 0, 1, true},
		{"negative pitch", 48000, 1, 1, -1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := New(tt.rate, tt.channels, 0, tt.ratio, tt.pitch)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrConfiguration)
				assert.Nil(t, s)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, s)
		})
	}
}

func TestWindowSize(t *testing.T) {
	assert.Equal(t, windowSizeStandard, windowSize(0, 48000))
	assert.Equal(t, windowSizeShort, windowSize(OptionWindowShort, 44100))
	assert.Equal(t, windowSizeLong, windowSize(OptionWindowLong, 48000))
	assert.Equal(t, 2*windowSizeStandard, windowSize(0, 96000))
	assert.Equal(t, windowSizeStandard/2, windowSize(0, 16000))
	assert.Equal(t, minWindowSize, windowSize(OptionWindowShort, 8000))
}

func TestStretcher_SilenceKeepsLength(t *testing.T) {
	s := newTestStretcher(t, DefaultQuality, 1.0, 1.0)
	out := runStretcher(t, s, make([]float32, 1024), 1024)

	require.Len(t, out, 1024)
	testutil.AssertSilent(t, out, 0)
}

func TestStretcher_EmptyInput(t *testing.T) {
	s := newTestStretcher(t, DefaultQuality, 2.0, 1.0)
	out := runStretcher(t, s, nil, 1024)

	assert.Empty(t, out)
	assert.Equal(t, -1, s.Available())
}

func TestStretcher_UnitRatioReconstructsInput(t *testing.T) {
	input := testutil.Sine[float32](9000, 440, testRate, 0.5)

	for quality := MinQuality; quality <= MaxQuality; quality++ {
		t.Run(PresetName(quality), func(t *testing.T) {
			s := newTestStretcher(t, quality, 1.0, 1.0)
			out := runStretcher(t, s, input, 1024)

			require.Len(t, out, len(input))
			for i := range input {
				require.InDelta(t, input[i], out[i], 1e-4, "sample %d", i)
			}
		})
	}
}

func TestStretcher_OutputLength(t *testing.T) {
	input := testutil.Sine[float32](10000, 330, testRate, 0.5)
	ratios := []float64{0.25, 0.5, 0.9, 1.5, 2.0, 3.7}

	for _, ratio := range ratios {
		for _, precise := range []bool{false, true} {
			opts, err := MakeOptions(DefaultQuality, false, precise)
			require.NoError(t, err)
			s, err := New(testRate, 1, opts, ratio, 1.0)
			require.NoError(t, err)

			out := runStretcher(t, s, input, 777)
			want := int(float64(len(input))*ratio + 0.5)
			assert.Len(t, out, want, "ratio %v precise %v", ratio, precise)
			testutil.AssertNoNaNOrInf(t, out)
		}
	}
}

func TestStretcher_DoubleLengthKeepsPitch(t *testing.T) {
	input := testutil.Sine[float32](48000, 440, testRate, 0.5)
	s := newTestStretcher(t, DefaultQuality, 2.0, 1.0)
	out := runStretcher(t, s, input, 4096)

	require.Len(t, out, 96000)
	testutil.AssertNoNaNOrInf(t, out)

	inCrossings := testutil.ZeroCrossings(input)
	outCrossings := testutil.ZeroCrossings(out[4096 : len(out)-4096])
	rate := float64(outCrossings) / float64(len(out)-8192)
	testutil.AssertRelativeError(t, float64(inCrossings)/float64(len(input)), rate, 0.05)

	testutil.AssertRelativeError(t, testutil.RMS(input), testutil.RMS(out[4096:len(out)-4096]), 0.2)
}

func TestStretcher_PitchScaleDoublesFrequency(t *testing.T) {
	input := testutil.Sine[float32](48000, 300, testRate, 0.5)

	for _, formants := range []bool{false, true} {
		opts, err := MakeOptions(DefaultQuality, formants, false)
		require.NoError(t, err)
		s, err := New(testRate, 1, opts, 1.0, 2.0)
		require.NoError(t, err)

		out := runStretcher(t, s, input, 2048)
		require.Len(t, out, len(input))
		testutil.AssertNoNaNOrInf(t, out)
		if formants {
			assert.Greater(t, testutil.RMS(out), 0.1)
			continue
		}

		body := out[4096 : len(out)-4096]
		rate := float64(testutil.ZeroCrossings(body)) / float64(len(body))
		want := 2 * float64(testutil.ZeroCrossings(input)) / float64(len(input))
		testutil.AssertRelativeError(t, want, rate, 0.05)
		testutil.AssertInRange(t, testutil.RMS(body), 0.25, 0.45)
	}
}

func TestStretcher_ChunkingDoesNotChangeOutput(t *testing.T) {
	input := testutil.Sine[float32](20000, 523, testRate, 0.3)

	whole := runStretcher(t, newTestStretcher(t, DefaultQuality, 1.3, 1.0), input, len(input))
	chunked := runStretcher(t, newTestStretcher(t, DefaultQuality, 1.3, 1.0), input, 333)

	assert.Equal(t, whole, chunked)
}

func TestStretcher_ThreadedMatchesInline(t *testing.T) {
	input := testutil.Sine[float32](20000, 523, testRate, 0.3)
	opts, err := MakeOptions(DefaultQuality, false, false)
	require.NoError(t, err)

	inline, err := New(testRate, 1, opts|OptionThreadingNever, 1.7, 1.0)
	require.NoError(t, err)
	threaded, err := New(testRate, 1, opts|OptionThreadingAlways, 1.7, 1.0)
	require.NoError(t, err)

	assert.Equal(t, runStretcher(t, inline, input, 1024), runStretcher(t, threaded, input, 1024))
}

func TestStretcher_StudyFindsTransients(t *testing.T) {
	clicks := testutil.Clicks[float32](48000, 12000)

	s := newTestStretcher(t, DefaultQuality, 1.5, 1.0)
	runStretcher(t, s, clicks, 4096)
	assert.Positive(t, s.Info().Transients)

	silent := newTestStretcher(t, DefaultQuality, 1.5, 1.0)
	runStretcher(t, silent, make([]float32, 48000), 4096)
	assert.Zero(t, silent.Info().Transients)
}

func TestStretcher_RealTimeSkipsStudy(t *testing.T) {
	input := testutil.Sine[float32](5000, 440, testRate, 0.5)
	s, err := New(testRate, 1, OptionProcessRealTime, 1.25, 1.0)
	require.NoError(t, err)

	out := runStretcher(t, s, input, 512)
	assert.Len(t, out, 6250)
	assert.Zero(t, s.Info().Transients)
}

func TestStretcher_ProtocolErrors(t *testing.T) {
	s := newTestStretcher(t, DefaultQuality, 1.0, 1.0)
	require.NoError(t, s.Study(make([]float32, 10), true))
	require.ErrorIs(t, s.Study(make([]float32, 10), true), ErrFinished)

	require.NoError(t, s.Process(make([]float32, 10), true))
	require.ErrorIs(t, s.Process(make([]float32, 10), true), ErrFinished)

	require.NoError(t, s.Close())
	require.NoError(t, s.Close())
	require.ErrorIs(t, s.Process(nil, true), ErrClosed)
	require.ErrorIs(t, s.Study(nil, true), ErrClosed)
}

func TestStretcher_StudyAfterProcess(t *testing.T) {
	s := newTestStretcher(t, DefaultQuality, 1.0, 1.0)
	require.NoError(t, s.Process(make([]float32, 10), false))
	require.ErrorIs(t, s.Study(make([]float32, 10), true), ErrFinished)
}

func TestStretcher_ExpectedDurationReleasesEarly(t *testing.T) {
	input := testutil.Sine[float32](20000, 440, testRate, 0.5)
	s := newTestStretcher(t, DefaultQuality, 1.0, 1.0)
	s.SetExpectedInputDuration(len(input))
	require.NoError(t, s.Study(input, true))

	require.NoError(t, s.Process(input[:10000], false))
	assert.Positive(t, s.Available())
	assert.LessOrEqual(t, s.Available(), 10000)
}

func TestStretcher_Latency(t *testing.T) {
	s := newTestStretcher(t, DefaultQuality, 1.0, 1.0)
	assert.Equal(t, windowSizeStandard+1, s.Latency())

	input := testutil.Sine[float32](s.Latency()-1, 440, testRate, 0.5)
	require.NoError(t, s.Process(input, false))
	assert.Zero(t, s.Available())

	require.NoError(t, s.Process([]float32{0}, false))
	assert.Positive(t, s.Available())
}

func TestStretcher_PitchUpRemovesAliasedContent(t *testing.T) {
	// 15 kHz shifted up an octave lands above Nyquist and must not fold back.
	input := testutil.Sine[float32](24000, 15000, testRate, 0.5)
	s := newTestStretcher(t, DefaultQuality, 1.0, 2.0)
	out := runStretcher(t, s, input, 2048)

	require.Len(t, out, len(input))
	assert.Less(t, testutil.RMS(out[4096:len(out)-4096]), 0.01)
}

func TestStretcher_ReleasesBuffers(t *testing.T) {
	input := testutil.Sine[float32](9000, 440, testRate, 0.5)
	s := newTestStretcher(t, DefaultQuality, 1.0, 1.0)

	require.NoError(t, s.Study(input, true))
	assert.Zero(t, s.study.in.Available(), "study input kept after the pass")

	require.NoError(t, s.Process(input, true))
	require.Positive(t, s.Available())
	require.NoError(t, s.Close())
	assert.Equal(t, -1, s.Available(), "output kept after Close")
}

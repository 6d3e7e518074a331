package stretcher

import "github.com/tphakala/go-audio-stretcher/internal/engine"

// Options is the engine option bitmask. Flag values match the Rubber Band
// library's RubberBandStretcher::Option constants.
type Options = engine.Options

// Option flags.
const (
	OptionProcessOffline  = engine.OptionProcessOffline
	OptionProcessRealTime = engine.OptionProcessRealTime

	OptionStretchElastic = engine.OptionStretchElastic
	OptionStretchPrecise = engine.OptionStretchPrecise

	OptionTransientsCrisp  = engine.OptionTransientsCrisp
	OptionTransientsMixed  = engine.OptionTransientsMixed
	OptionTransientsSmooth = engine.OptionTransientsSmooth

	OptionDetectorCompound   = engine.OptionDetectorCompound
	OptionDetectorPercussive = engine.OptionDetectorPercussive
	OptionDetectorSoft       = engine.OptionDetectorSoft

	OptionPhaseLaminar     = engine.OptionPhaseLaminar
	OptionPhaseIndependent = engine.OptionPhaseIndependent

	OptionThreadingAuto   = engine.OptionThreadingAuto
	OptionThreadingNever  = engine.OptionThreadingNever
	OptionThreadingAlways = engine.OptionThreadingAlways

	OptionWindowStandard = engine.OptionWindowStandard
	OptionWindowShort    = engine.OptionWindowShort
	OptionWindowLong     = engine.OptionWindowLong

	OptionFormantShifted   = engine.OptionFormantShifted
	OptionFormantPreserved = engine.OptionFormantPreserved
)

// Quality (crispness) bounds.
const (
	MinQuality     = engine.MinQuality
	MaxQuality     = engine.MaxQuality
	DefaultQuality = engine.DefaultQuality
)

// MakeOptions maps a quality index in [0, 6] and the formant and
// precision modifiers onto an option bitmask:
//
//	0 mushy            long window, independent phase, smooth transients
//	1 piano            long window, independent phase, soft detector
//	2 smooth           independent phase, smooth transients
//	3 balanced         smooth transients
//	4 percussive-tonal mixed transients
//	5 crisp            laminar phase, crisp transients, compound detector
//	6 percussive       short window, independent phase
func MakeOptions(quality int, formants, precise bool) (Options, error) {
	return engine.MakeOptions(quality, formants, precise)
}

// PresetName returns the name of a quality index, or "invalid".
func PresetName(quality int) string {
	return engine.PresetName(quality)
}

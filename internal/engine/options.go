package engine

import (
	"fmt"
	"strings"
)

// Options is a bitmask of engine configuration flags. Flag values are
// compatible with the Rubber Band library option set; zero-valued flags are
// the defaults of their group.
type Options uint32

// Processing mode.
const (
	OptionProcessOffline  Options = 0x00000000
	OptionProcessRealTime Options = 0x00000001
)

// Stretch mode.
const (
	OptionStretchElastic Options = 0x00000000
	OptionStretchPrecise Options = 0x00000010
)

// Transient handling.
const (
	OptionTransientsCrisp  Options = 0x00000000
	OptionTransientsMixed  Options = 0x00000100
	OptionTransientsSmooth Options = 0x00000200
)

// Onset detector.
const (
	OptionDetectorCompound   Options = 0x00000000
	OptionDetectorPercussive Options = 0x00000400
	OptionDetectorSoft       Options = 0x00000800
)

// Phase coherence.
const (
	OptionPhaseLaminar     Options = 0x00000000
	OptionPhaseIndependent Options = 0x00002000
)

// Threading.
const (
	OptionThreadingAuto   Options = 0x00000000
	OptionThreadingNever  Options = 0x00010000
	OptionThreadingAlways Options = 0x00020000
)

// Window length.
const (
	OptionWindowStandard Options = 0x00000000
	OptionWindowShort    Options = 0x00100000
	OptionWindowLong     Options = 0x00200000
)

// Formant handling.
const (
	OptionFormantShifted   Options = 0x00000000
	OptionFormantPreserved Options = 0x01000000
)

// Group masks.
const (
	maskProcess    = OptionProcessRealTime
	maskTransients = OptionTransientsMixed | OptionTransientsSmooth
	maskDetector   = OptionDetectorPercussive | OptionDetectorSoft
	maskThreading  = OptionThreadingNever | OptionThreadingAlways
	maskWindow     = OptionWindowShort | OptionWindowLong
)

// Quality index bounds.
const (
	MinQuality     = 0
	MaxQuality     = 6
	DefaultQuality = 5
)

type preset struct {
	name    string
	options Options
}

// presets maps a quality (crispness) index to its base flag set, from the
// softest long-window setting to short-window phase-independent processing.
var presets = [MaxQuality + 1]preset{
	{"mushy", OptionWindowLong | OptionPhaseIndependent | OptionTransientsSmooth},
	{"piano", OptionWindowLong | OptionPhaseIndependent | OptionDetectorSoft},
	{"smooth", OptionPhaseIndependent | OptionTransientsSmooth},
	{"balanced", OptionTransientsSmooth},
	{"percussive-tonal", OptionTransientsMixed},
	{"crisp", OptionPhaseLaminar | OptionTransientsCrisp | OptionDetectorCompound},
	{"percussive", OptionWindowShort | OptionPhaseIndependent},
}

// MakeOptions maps a quality index in [0, 6] plus the formant and precision
// modifiers onto an option bitmask.
func MakeOptions(quality int, formants, precise bool) (Options, error) {
	if quality < MinQuality || quality > MaxQuality {
		return 0, fmt.Errorf("%w: quality %d out of range [%d, %d]",
			ErrConfiguration, quality, MinQuality, MaxQuality)
	}

	opts := presets[quality].options
	if formants {
		opts |= OptionFormantPreserved
	}
	if precise {
		opts |= OptionStretchPrecise
	}
	return opts, nil
}

// PresetName returns the descriptive name of a quality index.
func PresetName(quality int) string {
	if quality < MinQuality || quality > MaxQuality {
		return "invalid"
	}
	return presets[quality].name
}

// Has reports whether every bit of flag is set in o.
func (o Options) Has(flag Options) bool {
	return o&flag == flag
}

func (o Options) realTime() bool    { return o&maskProcess == OptionProcessRealTime }
func (o Options) precise() bool     { return o.Has(OptionStretchPrecise) }
func (o Options) independent() bool { return o.Has(OptionPhaseIndependent) }
func (o Options) formants() bool    { return o.Has(OptionFormantPreserved) }
func (o Options) transients() Options {
	return o & maskTransients
}
func (o Options) detector() Options { return o & maskDetector }
func (o Options) threaded() bool    { return o&maskThreading == OptionThreadingAlways }
func (o Options) window() Options   { return o & maskWindow }

// String renders the flags of each group, for diagnostics.
func (o Options) String() string {
	parts := make([]string, 0, 8)
	if o.realTime() {
		parts = append(parts, "realtime")
	} else {
		parts = append(parts, "offline")
	}
	if o.precise() {
		parts = append(parts, "precise")
	} else {
		parts = append(parts, "elastic")
	}
	switch o.transients() {
	case OptionTransientsMixed:
		parts = append(parts, "transients=mixed")
	case OptionTransientsSmooth:
		parts = append(parts, "transients=smooth")
	default:
		parts = append(parts, "transients=crisp")
	}
	switch o.detector() {
	case OptionDetectorPercussive:
		parts = append(parts, "detector=percussive")
	case OptionDetectorSoft:
		parts = append(parts, "detector=soft")
	default:
		parts = append(parts, "detector=compound")
	}
	if o.independent() {
		parts = append(parts, "phase=independent")
	} else {
		parts = append(parts, "phase=laminar")
	}
	switch o.window() {
	case OptionWindowShort:
		parts = append(parts, "window=short")
	case OptionWindowLong:
		parts = append(parts, "window=long")
	default:
		parts = append(parts, "window=standard")
	}
	if o.formants() {
		parts = append(parts, "formants=preserved")
	}
	if o.threaded() {
		parts = append(parts, "threading=always")
	} else if o&maskThreading == OptionThreadingNever {
		parts = append(parts, "threading=never")
	}
	return strings.Join(parts, " ")
}

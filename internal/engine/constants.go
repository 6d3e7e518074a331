package engine

// Cubic (Hermite) interpolation constants
const (
	// Cubic interpolation uses 4-point window
	cubicInterpolationPoints = 4

	// Cubic interpolation latency (centered around middle points)
	cubicLatencySamples = 2

	// Hermite interpolation coefficients for smooth C1 continuity
	// Formula: y = ((a*x + b)*x + c)*x + d
	hermiteCoeff0_5 = 0.5
	hermiteCoeff1_5 = 1.5
	hermiteCoeff2_5 = 2.5
)

// Analysis window sizes at 48 kHz.
const (
	windowSizeShort    = 512
	windowSizeStandard = 2048
	windowSizeLong     = 4096

	highSampleRate = 96000 // window doubles at or above
	lowSampleRate  = 24000 // window halves at or below
	minWindowSize  = 256
)

// Overlap-add constants.
const (
	// overlapFactor is window size divided by synthesis hop.
	overlapFactor = 4

	// hannSquaredGain is the sum of squared periodic Hann windows at 4x overlap.
	hannSquaredGain = 1.5
)

// Onset detection constants.
const (
	// transientThreshold is the detection function level marking a transient.
	transientThreshold = 0.35

	// percussiveRise is the 3 dB amplitude rise counted by the percussive detector.
	percussiveRise = 1.4125375446227544

	// magnitudeFloor is the smallest bin magnitude considered non-silent.
	magnitudeFloor = 1e-8

	// mixedResetHz is the frequency above which mixed mode resets phases.
	mixedResetHz = 600.0

	// compoundWeight weights the percussive term of the compound detector.
	compoundWeight = 0.5
)

// Phase locking constants.
const (
	// peakNeighbours is the half width of the local-maximum test.
	peakNeighbours = 2
)

// Formant preservation constants.
const (
	// formantLifterHz bounds the cepstral lifter: quefrencies shorter than
	// one period at this frequency describe the spectral envelope.
	formantLifterHz = 700.0

	// formantMaxGain bounds the per-bin envelope correction.
	formantMaxGain = 4.0
)

// Buffer constants.
const (
	defaultRingCapacity = 8192
	bufferGrowthFactor  = 2
	workerQueueDepth    = 16
)

// Anti-alias filter for upward pitch shifts, relative to the post-shift Nyquist.
const (
	antiAliasPassband    = 0.9
	antiAliasTransition  = 0.1
	antiAliasAttenuation = 80.0
)

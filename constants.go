package stretcher

// DefaultSampleRate is the sample rate assumed when none is configured.
const DefaultSampleRate = 64000

// Common sample rates.
const (
	RateCD      = 44100
	RateDAT     = 48000
	RateHiRes96 = 96000
	RateSpeech  = 22050
	RateVoIP    = 16000
	RateTelecom = 8000
)

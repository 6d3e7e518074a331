package engine

import (
	"math"
)

// CubicStage implements cubic (4-point, 3rd order) Hermite interpolation.
// The engine runs it after the phase vocoder when the pitch scale is not 1,
// resampling the stretched signal by 1/pitch.
type CubicStage struct {
	ratio   float64
	step    float64
	phase   float64
	history [cubicInterpolationPoints]float64
	latency int
}

// NewCubicStage creates a new cubic interpolation stage.
// ratio is output samples per input sample.
func NewCubicStage(ratio float64) *CubicStage {
	return &CubicStage{
		ratio:   ratio,
		step:    1.0 / ratio,
		latency: cubicLatencySamples,
	}
}

// Process resamples input using cubic interpolation and returns the
// interpolated samples. State carries over between calls.
func (c *CubicStage) Process(input []float64) []float64 {
	if len(input) == 0 {
		return []float64{}
	}

	outputSize := int(math.Ceil(float64(len(input))*c.ratio)) + 1
	output := make([]float64, 0, outputSize)

	for _, sample := range input {
		c.history[3] = c.history[2]
		c.history[2] = c.history[1]
		c.history[1] = c.history[0]
		c.history[0] = sample

		for c.phase < 1.0 {
			output = append(output, c.interpolate(c.phase))
			c.phase += c.step
		}
		c.phase -= 1.0
	}

	return output
}

// Latency returns the stage delay in input samples.
func (c *CubicStage) Latency() int {
	return c.latency
}

// Reset clears the interpolation history.
func (c *CubicStage) Reset() {
	c.phase = 0
	c.history = [cubicInterpolationPoints]float64{}
}

// interpolate performs cubic Hermite interpolation.
// Uses the formula: y = ((a*x + b)*x + c)*x + d
// where x is the fractional position between samples.
func (c *CubicStage) interpolate(x float64) float64 {
	y0 := c.history[3] // oldest
	y1 := c.history[2]
	y2 := c.history[1]
	y3 := c.history[0] // newest

	coefA := -hermiteCoeff0_5*y0 + hermiteCoeff1_5*y1 - hermiteCoeff1_5*y2 + hermiteCoeff0_5*y3
	coefB := y0 - hermiteCoeff2_5*y1 + 2*y2 - hermiteCoeff0_5*y3
	coefC := -hermiteCoeff0_5*y0 + hermiteCoeff0_5*y2
	coefD := y1

	return ((coefA*x+coefB)*x+coefC)*x + coefD
}

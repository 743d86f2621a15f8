package translator

import (
	"github.com/Knetic/govaluate"
)

// Calibration applies an optional user-supplied correction formula to sensor
// readings. The formula is an expression over x, e.g. "x + 0.3" to offset a
// sensor that reads low, or "x * 0.98" for a proportional correction.
type Calibration struct {
	expr *govaluate.EvaluableExpression
}

// NewCalibration parses the formula. An empty formula yields a pass-through
// calibration; a malformed one is reported so configuration mistakes are
// caught at startup rather than producing silently uncorrected readings.
func NewCalibration(formula string) (*Calibration, error) {
	if formula == "" {
		return &Calibration{}, nil
	}
	expr, err := govaluate.NewEvaluableExpression(formula)
	if err != nil {
		return nil, err
	}
	return &Calibration{expr: expr}, nil
}

// Apply evaluates the formula for x. Evaluation failures and non-numeric
// results leave the reading unchanged.
func (c *Calibration) Apply(x float64) float64 {
	if c == nil || c.expr == nil {
		return x
	}
	result, err := c.expr.Evaluate(map[string]interface{}{"x": x})
	if err != nil {
		return x
	}
	if v, ok := result.(float64); ok {
		return v
	}
	return x
}

package domain

// Prediction is the expected consumption for one set of driver values.
type Prediction struct {
	PointEstimate float64 `json:"point_estimate"`
	LowerBound    float64 `json:"lower_bound"`
	UpperBound    float64 `json:"upper_bound"`
	Unit          string  `json:"unit"`
}

// Predict evaluates the model against the given feature values. Every
// trained feature must be present; absent features fail the call rather
// than silently contributing zero, since a zero driver value is a real
// operating condition, not a default.
func (m *BaselineModel) Predict(features map[string]float64) (*Prediction, error) {
	coeffs := m.Coefficients.Data()

	var missing []string
	for _, name := range m.FeatureNames {
		if _, ok := features[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, NewMissingFeatureError(missing, m.FeatureNames)
	}

	estimate := m.Intercept
	for _, name := range m.FeatureNames {
		estimate += coeffs[name] * features[name]
	}
	return &Prediction{
		PointEstimate: estimate,
		LowerBound:    estimate - m.PredictionInterval,
		UpperBound:    estimate + m.PredictionInterval,
	}, nil
}

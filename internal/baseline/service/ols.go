package service

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	aggregatedomain "github.com/voltgrid/enbase/internal/aggregate/domain"
)

var errSingularFit = errors.New("singular design matrix")

// fit is one ordinary least squares solution over a daily window.
type fit struct {
	Features     []string
	Coefficients map[string]float64
	Intercept    float64
	RSquared     float64
	AdjRSquared  float64
	RMSE         float64
	SampleCount  int
}

// fitOLS regresses daily energy totals on the given driver features with an
// intercept term, solving by QR decomposition. Days missing any requested
// driver are excluded from the fit.
func fitOLS(rows []aggregatedomain.DailyRow, features []string) (*fit, error) {
	usable := rows[:0:0]
	for _, row := range rows {
		complete := true
		for _, name := range features {
			if _, ok := row.Drivers[name]; !ok {
				complete = false
				break
			}
		}
		if complete {
			usable = append(usable, row)
		}
	}

	n := len(usable)
	p := len(features)
	if p == 0 {
		return nil, errors.New("no features to fit")
	}
	if n < p+2 {
		return nil, fmt.Errorf("need at least %d days to fit %d features, have %d", p+2, p, n)
	}

	x := mat.NewDense(n, p+1, nil)
	y := mat.NewDense(n, 1, nil)
	for i, row := range usable {
		x.Set(i, 0, 1)
		for j, name := range features {
			x.Set(i, j+1, row.Drivers[name])
		}
		y.Set(i, 0, row.EnergyTotal)
	}

	var qr mat.QR
	qr.Factorize(x)
	var beta mat.Dense
	if err := qr.SolveTo(&beta, false, y); err != nil {
		return nil, errSingularFit
	}

	mean := 0.0
	for i := 0; i < n; i++ {
		mean += y.At(i, 0)
	}
	mean /= float64(n)

	sse, sst := 0.0, 0.0
	for i := 0; i < n; i++ {
		predicted := beta.At(0, 0)
		for j := 0; j < p; j++ {
			predicted += beta.At(j+1, 0) * x.At(i, j+1)
		}
		residual := y.At(i, 0) - predicted
		sse += residual * residual
		d := y.At(i, 0) - mean
		sst += d * d
	}

	rSquared := 0.0
	if sst > 0 {
		rSquared = 1 - sse/sst
	}
	adjusted := rSquared
	if n > p+1 {
		adjusted = 1 - (1-rSquared)*float64(n-1)/float64(n-p-1)
	}

	coeffs := make(map[string]float64, p)
	for j, name := range features {
		coeffs[name] = beta.At(j+1, 0)
	}

	return &fit{
		Features:     append([]string(nil), features...),
		Coefficients: coeffs,
		Intercept:    beta.At(0, 0),
		RSquared:     rSquared,
		AdjRSquared:  adjusted,
		RMSE:         math.Sqrt(sse / float64(n)),
		SampleCount:  n,
	}, nil
}

package shrinkage

import (
	"fmt"
	"math"
	"sort"

	"github.com/pw2/beta-binomial-regression-for-priors/internal/models"
)

// LogLikelihood is an objective to be maximized over a parameter vector
type LogLikelihood func(params []float64) float64

// FitResult holds the optimum found by a fitter
type FitResult struct {
	Params     []float64
	Value      float64
	Iterations int
}

// MaximumLikelihoodFitter finds parameters maximizing a log-likelihood.
// The numerical method behind it is an implementation detail; callers only
// depend on getting an optimum or a non-convergence failure.
type MaximumLikelihoodFitter interface {
	Maximize(ll LogLikelihood, initial []float64) (FitResult, error)
}

const (
	defaultTolerance     = 1e-10
	defaultMaxIterations = 2000
	simplexStep          = 0.1
)

// NelderMeadFitter maximizes a log-likelihood with a derivative-free
// downhill simplex. Fully deterministic: the initial simplex is built from
// fixed offsets and no randomness enters the iteration.
type NelderMeadFitter struct {
	Tolerance     float64
	MaxIterations int
}

// NewNelderMeadFitter creates a fitter with the given convergence settings,
// falling back to defaults for non-positive values.
func NewNelderMeadFitter(tolerance float64, maxIterations int) *NelderMeadFitter {
	if tolerance <= 0 {
		tolerance = defaultTolerance
	}
	if maxIterations <= 0 {
		maxIterations = defaultMaxIterations
	}
	return &NelderMeadFitter{Tolerance: tolerance, MaxIterations: maxIterations}
}

// Maximize runs the simplex until the likelihood spread across vertices
// falls below the tolerance, or fails with ErrNonConvergence when the
// iteration cap is reached first.
func (f *NelderMeadFitter) Maximize(ll LogLikelihood, initial []float64) (FitResult, error) {
	n := len(initial)
	if n == 0 {
		return FitResult{}, fmt.Errorf("empty initial parameter vector: %w", models.ErrInvalidInput)
	}

	// Minimize the negated objective.
	objective := func(p []float64) float64 { return -ll(p) }

	// Initial simplex: the starting point plus one vertex per dimension.
	vertices := make([][]float64, n+1)
	values := make([]float64, n+1)
	for i := range vertices {
		v := append([]float64(nil), initial...)
		if i > 0 {
			if v[i-1] != 0 {
				v[i-1] *= 1 + simplexStep
			} else {
				v[i-1] = simplexStep
			}
		}
		vertices[i] = v
		values[i] = objective(v)
	}
	if math.IsInf(values[0], 1) {
		return FitResult{}, fmt.Errorf("initial parameters are infeasible: %w", models.ErrNonConvergence)
	}

	const (
		reflectCoeff  = 1.0
		expandCoeff   = 2.0
		contractCoeff = 0.5
		shrinkCoeff   = 0.5
	)

	order := func() {
		sort.Sort(&simplexSort{vertices: vertices, values: values})
	}
	order()

	for iter := 1; iter <= f.MaxIterations; iter++ {
		best, worst := values[0], values[n]
		if converged(best, worst, f.Tolerance) {
			return FitResult{
				Params:     vertices[0],
				Value:      -values[0],
				Iterations: iter,
			}, nil
		}

		// Centroid of all but the worst vertex.
		centroid := make([]float64, n)
		for i := 0; i < n; i++ {
			for j := 0; j < n; j++ {
				centroid[j] += vertices[i][j]
			}
		}
		for j := range centroid {
			centroid[j] /= float64(n)
		}

		reflected := combine(centroid, vertices[n], 1+reflectCoeff, -reflectCoeff)
		fr := objective(reflected)

		switch {
		case fr < values[0]:
			expanded := combine(centroid, vertices[n], 1+reflectCoeff*expandCoeff, -reflectCoeff*expandCoeff)
			if fe := objective(expanded); fe < fr {
				vertices[n], values[n] = expanded, fe
			} else {
				vertices[n], values[n] = reflected, fr
			}
		case fr < values[n-1]:
			vertices[n], values[n] = reflected, fr
		default:
			contracted := combine(centroid, vertices[n], 1-contractCoeff, contractCoeff)
			if fc := objective(contracted); fc < values[n] {
				vertices[n], values[n] = contracted, fc
			} else {
				// Shrink every vertex toward the best one.
				for i := 1; i <= n; i++ {
					vertices[i] = combine(vertices[0], vertices[i], 1-shrinkCoeff, shrinkCoeff)
					values[i] = objective(vertices[i])
				}
			}
		}
		order()
	}

	return FitResult{}, fmt.Errorf("no stable optimum after %d iterations: %w", f.MaxIterations, models.ErrNonConvergence)
}

// converged checks the spread between the best and worst vertex values
func converged(best, worst, tol float64) bool {
	if math.IsInf(worst, 1) {
		return false
	}
	return math.Abs(worst-best) <= tol*(math.Abs(best)+tol)
}

// combine returns wa*a + wb*b elementwise
func combine(a, b []float64, wa, wb float64) []float64 {
	out := make([]float64, len(a))
	for i := range a {
		out[i] = wa*a[i] + wb*b[i]
	}
	return out
}

type simplexSort struct {
	vertices [][]float64
	values   []float64
}

func (s *simplexSort) Len() int           { return len(s.values) }
func (s *simplexSort) Less(i, j int) bool { return s.values[i] < s.values[j] }
func (s *simplexSort) Swap(i, j int) {
	s.values[i], s.values[j] = s.values[j], s.values[i]
	s.vertices[i], s.vertices[j] = s.vertices[j], s.vertices[i]
}

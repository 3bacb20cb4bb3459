// Package distributions draws non-uniform samples (normal, log-Gaussian,
// gamma) from the simulation's deterministic RNG stream.
package distributions

import (
	"math"

	"github.com/talgya/cooperationsim/internal/rng"
)

// StandardNormal draws a standard-normal sample using Box-Muller, clamping
// the first uniform away from zero to avoid -Inf in the log.
func StandardNormal(r *rng.RNG) float64 {
	u1 := r.Next()
	if u1 < 1e-12 {
		u1 = 1e-12
	}
	u2 := r.Next()
	return math.Sqrt(-2*math.Log(u1)) * math.Cos(2*math.Pi*u2)
}

// Normal draws a sample from N(mean, std^2).
func Normal(r *rng.RNG, mean, std float64) float64 {
	return mean + std*StandardNormal(r)
}

// LogGaussian draws exp(mean + sqrt(variance) * Z) for standard normal Z.
func LogGaussian(r *rng.RNG, mean, variance float64) float64 {
	return math.Exp(mean + math.Sqrt(variance)*StandardNormal(r))
}

// Gamma draws a sample from Gamma(shape=k, scale=theta) via Marsaglia-Tsang.
// For k < 1, it recurses on k+1 and corrects by multiplying with u^(1/k).
func Gamma(r *rng.RNG, k, theta float64) float64 {
	if k < 1 {
		u := r.Next()
		for u <= 0 {
			u = r.Next()
		}
		return Gamma(r, k+1, theta) * math.Pow(u, 1/k)
	}

	d := k - 1.0/3.0
	c := 1.0 / math.Sqrt(9*d)

	for {
		var x, v float64
		for {
			x = StandardNormal(r)
			v = 1 + c*x
			if v > 0 {
				break
			}
		}
		v = v * v * v
		u := r.Next()

		if u < 1-0.0331*x*x*x*x {
			return d * v * theta
		}
		if math.Log(u) < 0.5*x*x+d*(1-v+math.Log(v)) {
			return d * v * theta
		}
	}
}

// Clamp01 clamps x into [0, 1].
func Clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}

// Clamp clamps x into [lo, hi].
func Clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

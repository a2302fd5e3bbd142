package exposure

import (
	"context"
	"math"
	"math/rand/v2"
	"slices"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/argus/pkg/domain/model"
	"github.com/secmon-lab/argus/pkg/domain/model/config"
	"github.com/secmon-lab/argus/pkg/domain/types"
)

// Options controls a Monte Carlo run. Iterations must be positive and at
// most MaxIterations. Zero MaxIterations means config.DefaultMaxIterations.
// Nil Percentiles means the default bands.
type Options struct {
	Iterations    int
	MaxIterations int
	Seed          uint64
	Percentiles   []float64
}

// Validate checks iteration count and percentile bands
func (o Options) Validate() error {
	if o.Iterations <= 0 {
		return goerr.Wrap(types.ErrInvalidArgument, "iterations must be positive",
			goerr.V(types.FieldKey, "iterations"), goerr.V(types.ValueKey, o.Iterations))
	}
	limit := o.MaxIterations
	if limit <= 0 {
		limit = config.DefaultMaxIterations
	}
	if o.Iterations > limit {
		return goerr.Wrap(types.ErrInvalidArgument, "iterations exceeds the maximum",
			goerr.V(types.FieldKey, "iterations"), goerr.V(types.ValueKey, o.Iterations),
			goerr.V("max_iterations", limit))
	}
	for _, p := range o.Percentiles {
		if math.IsNaN(p) || p <= 0 || p > 100 {
			return goerr.Wrap(types.ErrInvalidArgument, "percentile must be in (0, 100]",
				goerr.V(types.FieldKey, "percentiles"), goerr.V(types.ValueKey, p))
		}
	}
	return nil
}

// WithDefaults fills Percentiles when unset. Iterations is left alone so that
// an explicit zero is still rejected by Validate.
func (o Options) WithDefaults() Options {
	if o.Percentiles == nil {
		o.Percentiles = config.DefaultPercentiles()
	}
	return o
}

// sample is the per-risk input of a run, precomputed from the register
type sample struct {
	probability float64
	weight      float64
	mode        float64
	low         float64
	high        float64
	triangular  bool
}

func samplesOf(risks []*model.Risk) []sample {
	samples := make([]sample, 0, len(risks))
	for _, r := range risks {
		if !scored(r) {
			continue
		}
		a := r.Effective()
		s := sample{
			probability: a.Probability.Weight(),
			weight:      a.Impact.Weight(),
			mode:        r.CostImpact.InexactFloat64(),
		}
		if r.CostRange != nil {
			s.triangular = true
			s.low = r.CostRange.Optimistic.InexactFloat64()
			s.high = r.CostRange.Pessimistic.InexactFloat64()
		}
		samples = append(samples, s)
	}
	return samples
}

// Simulate draws, for every iteration and every active assessed risk, a
// Bernoulli occurrence with p = probability/5. An occurring risk adds
// impact/5 x cost to the iteration total, where cost is the estimate or a
// triangular draw over the cost range. The context is checked between
// iterations.
func Simulate(ctx context.Context, risks []*model.Risk, opts Options) (*model.SimulationResult, error) {
	opts = opts.WithDefaults()
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	samples := samplesOf(risks)
	rng := rand.New(rand.NewPCG(opts.Seed, opts.Seed^0x9e3779b97f4a7c15))
	totals := make([]float64, opts.Iterations)

	for i := range totals {
		if err := ctx.Err(); err != nil {
			return nil, goerr.Wrap(err, "simulation cancelled", goerr.V("iteration", i))
		}

		var total float64
		for _, s := range samples {
			if rng.Float64() >= s.probability {
				continue
			}
			cost := s.mode
			if s.triangular {
				cost = triangular(rng.Float64(), s.low, s.mode, s.high)
			}
			total += s.weight * cost
		}
		totals[i] = total
	}

	result := summarize(totals, opts.Percentiles)
	result.Seed = opts.Seed
	result.Risks = len(samples)
	result.Deterministic = Deterministic(risks).Total.InexactFloat64()
	return result, nil
}

// triangular maps a uniform u in [0,1) onto the triangular distribution
// (low, mode, high) by inverse CDF. Requires low <= mode <= high.
func triangular(u, low, mode, high float64) float64 {
	if high == low {
		return mode
	}
	split := (mode - low) / (high - low)
	if u < split {
		return low + math.Sqrt(u*(high-low)*(mode-low))
	}
	return high - math.Sqrt((1-u)*(high-low)*(high-mode))
}

// summarize computes mean, population standard deviation, range and
// nearest-rank percentiles of the totals
func summarize(totals []float64, percentiles []float64) *model.SimulationResult {
	result := &model.SimulationResult{
		Iterations:  len(totals),
		Percentiles: make([]model.PercentileValue, 0, len(percentiles)),
	}

	var sum float64
	for _, v := range totals {
		sum += v
	}
	result.Mean = sum / float64(len(totals))

	var sq float64
	for _, v := range totals {
		diff := v - result.Mean
		sq += diff * diff
	}
	result.StdDev = math.Sqrt(sq / float64(len(totals)))

	ordered := slices.Clone(totals)
	slices.Sort(ordered)
	result.Min = ordered[0]
	result.Max = ordered[len(ordered)-1]

	for _, p := range percentiles {
		result.Percentiles = append(result.Percentiles, model.PercentileValue{
			Percentile: p,
			Value:      nearestRank(ordered, p),
		})
	}

	return result
}

func nearestRank(ordered []float64, p float64) float64 {
	rank := int(math.Ceil(p / 100 * float64(len(ordered))))
	rank = min(max(rank, 1), len(ordered))
	return ordered[rank-1]
}

package motivation

import "math/rand/v2"

// Weight is one action's share of a distribution.
type Weight struct {
	Action Action `json:"action"`
	Value  int    `json:"value"`
}

// Distribution is an ordered set of non-negative action weights. Methods
// return new values; a Distribution is never edited in place.
type Distribution struct {
	weights []Weight
}

// NewDistribution copies weights, clamping negative values to zero.
func NewDistribution(weights ...Weight) Distribution {
	out := make([]Weight, len(weights))
	for i, w := range weights {
		if w.Value < 0 {
			w.Value = 0
		}
		out[i] = w
	}
	return Distribution{weights: out}
}

// Uniform gives every action the same weight.
func Uniform(value int, actions ...Action) Distribution {
	weights := make([]Weight, len(actions))
	for i, action := range actions {
		weights[i] = Weight{Action: action, Value: value}
	}
	return NewDistribution(weights...)
}

// Fallback is the distribution used when weight estimation fails.
func Fallback(stage Stage) Distribution {
	if stage == Precontemplation {
		return Uniform(20, Menu(stage)...)
	}
	return Uniform(1, Menu(stage)...)
}

// Weights returns a copy of the ordered weights.
func (d Distribution) Weights() []Weight {
	return append([]Weight(nil), d.weights...)
}

// Get returns the weight of action, or 0 when absent.
func (d Distribution) Get(action Action) int {
	for _, w := range d.weights {
		if w.Action == action {
			return w.Value
		}
	}
	return 0
}

// Total sums all weights.
func (d Distribution) Total() int {
	total := 0
	for _, w := range d.weights {
		total += w.Value
	}
	return total
}

// Add returns d with other's weights added action by action. Actions only
// present in other are ignored.
func (d Distribution) Add(other Distribution) Distribution {
	out := d.Weights()
	for i := range out {
		out[i].Value += other.Get(out[i].Action)
	}
	return NewDistribution(out...)
}

// Without returns d with the given actions set to zero.
func (d Distribution) Without(actions ...Action) Distribution {
	out := d.Weights()
	for i := range out {
		for _, action := range actions {
			if out[i].Action == action {
				out[i].Value = 0
			}
		}
	}
	return NewDistribution(out...)
}

// Rand is the randomness source used for sampling.
type Rand interface {
	IntN(n int) int
}

type globalRand struct{}

func (globalRand) IntN(n int) int { return rand.IntN(n) }

// DefaultRand samples from the process-wide generator.
var DefaultRand Rand = globalRand{}

// Sample draws one action with probability proportional to its weight. A
// distribution whose total is zero yields Engage.
func (d Distribution) Sample(rng Rand) Action {
	total := d.Total()
	if total <= 0 {
		return Engage
	}
	if rng == nil {
		rng = DefaultRand
	}

	r := rng.IntN(total)
	for _, w := range d.weights {
		if r < w.Value {
			return w.Action
		}
		r -= w.Value
	}
	return d.weights[len(d.weights)-1].Action
}

// Availability says which kinds of backing information the client still has.
type Availability struct {
	Personas bool
	Beliefs  bool
	Plans    bool
}

// ApplyConstraints zeroes out actions the client has nothing left to say for.
func ApplyConstraints(d Distribution, avail Availability) Distribution {
	var blocked []Action
	if !avail.Personas {
		blocked = append(blocked, Inform)
	}
	if !avail.Beliefs {
		blocked = append(blocked, Blame, Hesitate)
	}
	if !avail.Plans {
		blocked = append(blocked, Plan)
	}
	return d.Without(blocked...)
}

// receptivityTiers are the hand-authored Precontemplation weights per
// receptivity tier, from least to most receptive.
var receptivityTiers = [5]Distribution{
	NewDistribution(Weight{Deny, 23}, Weight{Downplay, 28}, Weight{Blame, 15}, Weight{Engage, 11}, Weight{Inform, 22}),
	NewDistribution(Weight{Deny, 20}, Weight{Downplay, 25}, Weight{Blame, 10}, Weight{Engage, 15}, Weight{Inform, 30}),
	NewDistribution(Weight{Deny, 19}, Weight{Downplay, 21}, Weight{Blame, 11}, Weight{Engage, 13}, Weight{Inform, 36}),
	NewDistribution(Weight{Deny, 9}, Weight{Downplay, 20}, Weight{Blame, 13}, Weight{Engage, 14}, Weight{Inform, 44}),
	NewDistribution(Weight{Deny, 7}, Weight{Downplay, 13}, Weight{Blame, 4}, Weight{Engage, 16}, Weight{Inform, 60}),
}

// ReceptivityTier maps a receptivity value to a tier index 0..4 using the
// thresholds 2, 3, 4 and 5.
func ReceptivityTier(receptivity float64) int {
	switch {
	case receptivity < 2:
		return 0
	case receptivity < 3:
		return 1
	case receptivity < 4:
		return 2
	case receptivity < 5:
		return 3
	default:
		return 4
	}
}

// ReceptivityDistribution returns the fixed weights for a receptivity value.
func ReceptivityDistribution(receptivity float64) Distribution {
	return receptivityTiers[ReceptivityTier(receptivity)]
}

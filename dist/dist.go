/*
Package dist compares shot-count distributions. Every function is total:
empty or all-zero inputs yield 0 rather than an error, and two-argument
metrics yield 0 whenever either side carries no mass.
*/
package dist

import (
	"math"
	"slices"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// DefaultKLEpsilon is the smoothing term used by Compare.
const DefaultKLEpsilon = 1e-10

// Counts maps an outcome label (typically a bitstring) to how often it was seen.
type Counts map[string]int

// Total is the number of shots in c, ignoring negative entries.
func Total(c Counts) int {
	total := 0
	for _, n := range c {
		if n > 0 {
			total += n
		}
	}
	return total
}

// Normalize returns the probability of every label in c.
func Normalize(c Counts) map[string]float64 {
	total := Total(c)
	out := make(map[string]float64, len(c))
	if total == 0 {
		return out
	}
	for label, n := range c {
		if n > 0 {
			out[label] = float64(n) / float64(total)
		}
	}
	return out
}

// probs returns the normalised probabilities of c in label order.
func probs(c Counts) []float64 {
	labels := make([]string, 0, len(c))
	for label := range c {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	p := Normalize(c)
	out := make([]float64, 0, len(labels))
	for _, label := range labels {
		out = append(out, p[label])
	}
	return out
}

// aligned returns the normalised probabilities of p and q over the union of
// their labels, missing labels being 0.
func aligned(p, q Counts) ([]float64, []float64, bool) {
	if Total(p) == 0 || Total(q) == 0 {
		return nil, nil, false
	}
	union := make(map[string]struct{}, len(p)+len(q))
	for label := range p {
		union[label] = struct{}{}
	}
	for label := range q {
		union[label] = struct{}{}
	}
	labels := make([]string, 0, len(union))
	for label := range union {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	np, nq := Normalize(p), Normalize(q)
	ps := make([]float64, len(labels))
	qs := make([]float64, len(labels))
	for i, label := range labels {
		ps[i] = np[label]
		qs[i] = nq[label]
	}
	return ps, qs, true
}

// Entropy is the Shannon entropy of c in bits.
func Entropy(c Counts) float64 {
	p := probs(c)
	if len(p) == 0 || floats.Sum(p) == 0 {
		return 0
	}
	h := stat.Entropy(p) / math.Ln2
	if h <= 0 {
		return 0
	}
	return h
}

// TotalVariationDistance is half the L1 distance between the normalised distributions.
func TotalVariationDistance(p, q Counts) float64 {
	ps, qs, ok := aligned(p, q)
	if !ok {
		return 0
	}
	return 0.5 * floats.Distance(ps, qs, 1)
}

/*
KLDivergence is the smoothed Kullback-Leibler divergence from p to q in nats,
summed over outcomes whose probability under p exceeds eps.
*/
func KLDivergence(p, q Counts, eps float64) float64 {
	ps, qs, ok := aligned(p, q)
	if !ok {
		return 0
	}
	kl := 0.0
	for i := range ps {
		if ps[i] > eps {
			kl += ps[i] * math.Log((ps[i]+eps)/(qs[i]+eps))
		}
	}
	return kl
}

// HellingerDistance lies in [0,1]; 0 for identical distributions.
func HellingerDistance(p, q Counts) float64 {
	ps, qs, ok := aligned(p, q)
	if !ok {
		return 0
	}
	sum := 0.0
	for i := range ps {
		d := math.Sqrt(ps[i]) - math.Sqrt(qs[i])
		sum += d * d
	}
	return math.Sqrt(0.5 * sum)
}

// Fidelity is the Bhattacharyya overlap of the two distributions, 1 when identical.
func Fidelity(p, q Counts) float64 {
	ps, qs, ok := aligned(p, q)
	if !ok {
		return 0
	}
	overlap := 0.0
	for i := range ps {
		overlap += math.Sqrt(ps[i] * qs[i])
	}
	return math.Min(overlap, 1)
}

// GiniCoefficient measures inequality over the sorted probabilities: 0 is uniform.
func GiniCoefficient(c Counts) float64 {
	p := probs(c)
	n := len(p)
	if n == 0 {
		return 0
	}
	sort.Float64s(p)
	cumsum := floats.CumSum(make([]float64, n), p)
	if cumsum[n-1] <= 0 {
		return 0
	}
	return (float64(n+1) - 2*floats.Sum(cumsum)/cumsum[n-1]) / float64(n)
}

// EffectiveSupport is the inverse participation ratio 1/Σp².
func EffectiveSupport(c Counts) float64 {
	p := probs(c)
	if len(p) == 0 {
		return 0
	}
	sumSq := floats.Dot(p, p)
	if sumSq == 0 {
		return 0
	}
	return 1 / sumSq
}

// TopKMass is the probability held by the k most frequent outcomes.
func TopKMass(c Counts, k int) float64 {
	p := descending(c)
	if len(p) == 0 || k <= 0 {
		return 0
	}
	return floats.Sum(p[:min(k, len(p))])
}

/*
OctaveBinnedMass bins the descending probabilities by log2 rank: octave o
holds the outcomes whose 1-based rank r satisfies 2^o <= r < 2^(o+1).
*/
func OctaveBinnedMass(c Counts, octaves int) []float64 {
	if octaves <= 0 {
		return nil
	}
	out := make([]float64, octaves)
	for i, v := range descending(c) {
		o := bitLength(i+1) - 1
		if o < octaves {
			out[o] += v
		}
	}
	return out
}

func bitLength(n int) int {
	l := 0
	for ; n > 0; n >>= 1 {
		l++
	}
	return l
}

func descending(c Counts) []float64 {
	p := probs(c)
	sort.Float64s(p)
	slices.Reverse(p)
	return p
}

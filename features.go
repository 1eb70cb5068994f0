package qlock

import "github.com/theapemachine/qlock/circuit"

/*
CircuitFeatures summarises a circuit as a standardised vector of length dim:
the first angle of every parameterised gate, or, for a circuit without
parameters, the gate count per kind in order of first appearance. The raw
values are tiled or truncated to dim.
*/
func CircuitFeatures(c *circuit.Circuit, dim int) []float64 {
	if dim <= 0 {
		return nil
	}

	var raw []float64
	if c != nil {
		for _, g := range c.Gates {
			if len(g.Params) > 0 {
				raw = append(raw, g.Params[0])
			}
		}
	}
	if len(raw) == 0 {
		raw = kindCounts(c)
	}

	vec := standardise(raw)
	out := make([]float64, dim)
	for i := range out {
		out[i] = vec[i%len(vec)]
	}
	return out
}

func kindCounts(c *circuit.Circuit) []float64 {
	if c == nil || len(c.Gates) == 0 {
		return []float64{0}
	}
	index := make(map[string]int)
	var counts []float64
	for _, g := range c.Gates {
		i, ok := index[g.Name]
		if !ok {
			i = len(counts)
			index[g.Name] = i
			counts = append(counts, 0)
		}
		counts[i]++
	}
	return counts
}

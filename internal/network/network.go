// Package network implements the weighted, directed social graph: decay,
// reinforcement, and reciprocity/assortativity/clustering statistics.
package network

import "sort"

const pruneThreshold = 0.01

// Edge is one directed, weighted connection from Source to Target.
type Edge struct {
	Source int     `json:"source"`
	Target int     `json:"target"`
	Weight float64 `json:"weight"`
}

type edgeKey struct {
	source int
	target int
}

// State is the mutable, serializable network snapshot. Agents are
// referenced by id only, never by pointer, so serialization is trivial and
// cycles cannot form (spec.md §9).
type State struct {
	Edges          []Edge         `json:"edges"`
	ForgetFactor   float64        `json:"forgetFactor"`
	CampMembership map[int]string `json:"campMembership"`
}

// Network wraps a State with an index for O(1) edge lookup/update.
type Network struct {
	forgetFactor   float64
	campMembership map[int]string
	weights        map[edgeKey]float64
	order          []edgeKey // insertion order, for deterministic serialization
}

// New creates an empty Network with the given forget factor and camp map.
func New(forgetFactor float64, campMembership map[int]string) *Network {
	cm := make(map[int]string, len(campMembership))
	for k, v := range campMembership {
		cm[k] = v
	}
	return &Network{
		forgetFactor:   forgetFactor,
		campMembership: cm,
		weights:        make(map[edgeKey]float64),
	}
}

// FromState reconstructs a Network from a previously serialized State.
func FromState(s State) *Network {
	n := &Network{
		forgetFactor:   s.ForgetFactor,
		campMembership: make(map[int]string, len(s.CampMembership)),
		weights:        make(map[edgeKey]float64, len(s.Edges)),
	}
	for k, v := range s.CampMembership {
		n.campMembership[k] = v
	}
	for _, e := range s.Edges {
		k := edgeKey{e.Source, e.Target}
		if _, exists := n.weights[k]; !exists {
			n.order = append(n.order, k)
		}
		n.weights[k] = e.Weight
	}
	return n
}

// State returns a serializable snapshot. Edges are emitted in insertion
// order for deterministic JSON across identical runs.
func (n *Network) State() State {
	edges := make([]Edge, 0, len(n.order))
	for _, k := range n.order {
		if w, ok := n.weights[k]; ok {
			edges = append(edges, Edge{Source: k.source, Target: k.target, Weight: w})
		}
	}
	cm := make(map[int]string, len(n.campMembership))
	for k, v := range n.campMembership {
		cm[k] = v
	}
	return State{Edges: edges, ForgetFactor: n.forgetFactor, CampMembership: cm}
}

// CampOf returns the camp membership of the given agent id, and whether it
// is known.
func (n *Network) CampOf(agentID int) (string, bool) {
	c, ok := n.campMembership[agentID]
	return c, ok
}

// ApplyDecay multiplies every edge weight by (1 - forgetFactor) and removes
// edges whose weight drops below the prune threshold.
func (n *Network) ApplyDecay() {
	retained := n.order[:0:0]
	for _, k := range n.order {
		w, ok := n.weights[k]
		if !ok {
			continue
		}
		w *= 1 - n.forgetFactor
		if w < pruneThreshold {
			delete(n.weights, k)
			continue
		}
		n.weights[k] = w
		retained = append(retained, k)
	}
	n.order = retained
}

// ReinforceInteraction adds delta to the existing (source,target) edge or
// creates it at weight delta. At most one edge exists per (source,target).
func (n *Network) ReinforceInteraction(source, target int, delta float64) {
	k := edgeKey{source, target}
	if _, exists := n.weights[k]; !exists {
		n.order = append(n.order, k)
		n.weights[k] = delta
		return
	}
	n.weights[k] += delta
}

// WeightOf returns the current weight of a (source,target) edge, and
// whether it exists.
func (n *Network) WeightOf(source, target int) (float64, bool) {
	w, ok := n.weights[edgeKey{source, target}]
	return w, ok
}

// Stats holds the graph-level statistics of spec.md §4.6.
type Stats struct {
	Reciprocity    float64 `json:"reciprocity"`
	Assortativity  float64 `json:"assortativity"`
	Clustering     float64 `json:"clustering"`
}

// ComputeStats computes reciprocity, assortativity, and clustering over the
// current edge set.
func (n *Network) ComputeStats() Stats {
	edges := n.order
	if len(edges) == 0 {
		return Stats{Assortativity: 0.5}
	}

	// Reciprocity: share of edges (s,t) whose reverse (t,s) also exists.
	reciprocal := 0
	for _, k := range edges {
		if _, ok := n.weights[edgeKey{k.target, k.source}]; ok {
			reciprocal++
		}
	}
	reciprocity := float64(reciprocal) / float64(len(edges))

	// Assortativity: share of edges whose endpoints share a known camp,
	// among edges where both endpoints' camps are known.
	sameCamp, knownBoth := 0, 0
	for _, k := range edges {
		cs, oks := n.campMembership[k.source]
		ct, okt := n.campMembership[k.target]
		if !oks || !okt {
			continue
		}
		knownBoth++
		if cs == ct {
			sameCamp++
		}
	}
	assortativity := 0.5
	if knownBoth > 0 {
		assortativity = float64(sameCamp) / float64(knownBoth)
	}

	clustering := n.computeClustering()

	return Stats{
		Reciprocity:   reciprocity,
		Assortativity: assortativity,
		Clustering:    clustering,
	}
}

// computeClustering computes closedTriads / openTriads using each node's
// out-neighbor set: for every pair (b,c) of out-neighbors of a, the triad
// a->b, a->c is "open"; it is "closed" if an edge exists between b and c in
// either direction.
func (n *Network) computeClustering() float64 {
	outNeighbors := make(map[int][]int)
	for _, k := range n.order {
		outNeighbors[k.source] = append(outNeighbors[k.source], k.target)
	}

	nodes := make([]int, 0, len(outNeighbors))
	for node := range outNeighbors {
		nodes = append(nodes, node)
	}
	sort.Ints(nodes)

	openTriads, closedTriads := 0, 0
	for _, a := range nodes {
		neighbors := outNeighbors[a]
		for i := 0; i < len(neighbors); i++ {
			for j := i + 1; j < len(neighbors); j++ {
				b, c := neighbors[i], neighbors[j]
				openTriads++
				_, bc := n.weights[edgeKey{b, c}]
				_, cb := n.weights[edgeKey{c, b}]
				if bc || cb {
					closedTriads++
				}
			}
		}
	}

	if openTriads == 0 {
		return 0
	}
	return float64(closedTriads) / float64(openTriads)
}

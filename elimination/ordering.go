package elimination

import (
	"sort"

	"github.com/rcushen/cassandra/network"
)

// OrderingFunc chooses an elimination order over residual (the network's
// non-query, non-evidence variables). Any deterministic ordering yields a
// correct result; the choice only affects intermediate factor sizes.
type OrderingFunc func(net *network.Network, residual []string) []string

// InsertionOrder eliminates residual in the order it is given. It is the
// default ordering.
func InsertionOrder(net *network.Network, residual []string) []string {
	out := make([]string, len(residual))
	copy(out, residual)
	return out
}

// MinFillOrder chooses an elimination order by the min-fill heuristic over
// the network's moral graph: at each step, eliminate the residual variable
// whose removal requires the fewest new ("fill") edges among its remaining
// neighbours, tie-breaking by variable name for determinism.
func MinFillOrder(net *network.Network, residual []string) []string {
	adjacency := net.MoralGraph()

	remaining := make(map[string]bool, len(residual))
	for _, v := range residual {
		remaining[v] = true
	}

	order := make([]string, 0, len(residual))
	for len(remaining) > 0 {
		candidates := make([]string, 0, len(remaining))
		for v := range remaining {
			candidates = append(candidates, v)
		}
		sort.Strings(candidates)

		best := ""
		bestFill := -1
		for _, v := range candidates {
			fill := fillCount(adjacency, v)
			if bestFill == -1 || fill < bestFill {
				bestFill = fill
				best = v
			}
		}

		// Connect the eliminated variable's neighbours pairwise, then
		// drop it from the working graph.
		neighbours := sortedNeighbours(adjacency, best)
		for i := 0; i < len(neighbours); i++ {
			for j := i + 1; j < len(neighbours); j++ {
				adjacency[neighbours[i]][neighbours[j]] = true
				adjacency[neighbours[j]][neighbours[i]] = true
			}
		}
		for _, nb := range neighbours {
			delete(adjacency[nb], best)
		}
		delete(adjacency, best)

		delete(remaining, best)
		order = append(order, best)
	}
	return order
}

// fillCount counts the edges that would need to be added among v's
// neighbours to make them pairwise connected (the "fill-in" of
// eliminating v).
func fillCount(adjacency map[string]map[string]bool, v string) int {
	neighbours := sortedNeighbours(adjacency, v)
	fill := 0
	for i := 0; i < len(neighbours); i++ {
		for j := i + 1; j < len(neighbours); j++ {
			if !adjacency[neighbours[i]][neighbours[j]] {
				fill++
			}
		}
	}
	return fill
}

func sortedNeighbours(adjacency map[string]map[string]bool, v string) []string {
	neighbours := make([]string, 0, len(adjacency[v]))
	for nb := range adjacency[v] {
		neighbours = append(neighbours, nb)
	}
	sort.Strings(neighbours)
	return neighbours
}

func contains(haystack []string, needle string) bool {
	for _, s := range haystack {
		if s == needle {
			return true
		}
	}
	return false
}

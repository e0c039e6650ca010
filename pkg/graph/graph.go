// Package graph implements the in-memory friendship graph: an undirected
// simple graph over usernames with breadth-first shortest path, degree
// statistics and common-neighbor friend suggestions.
//
// Graph is not safe for concurrent use; the owning service serializes
// access together with the account store it mirrors.
package graph

import "sort"

type nodeSet map[string]struct{}

type Graph struct {
	// adjacency holds a neighbor set per node. An isolated node maps to
	// an empty set.
	adjacency map[string]nodeSet
}

func New() *Graph {
	return &Graph{
		adjacency: make(map[string]nodeSet),
	}
}

// AddNode inserts an isolated node. Returns false if it already exists.
func (g *Graph) AddNode(username string) bool {
	if _, exists := g.adjacency[username]; exists {
		return false
	}
	g.adjacency[username] = make(nodeSet)
	return true
}

// HasNode reports whether username is a node.
func (g *Graph) HasNode(username string) bool {
	_, exists := g.adjacency[username]
	return exists
}

// AddEdge links two existing nodes. Adding an existing edge is a no-op.
// Returns false when either node is missing or u == v.
func (g *Graph) AddEdge(u, v string) bool {
	if u == v {
		return false
	}
	un, uok := g.adjacency[u]
	vn, vok := g.adjacency[v]
	if !uok || !vok {
		return false
	}
	un[v] = struct{}{}
	vn[u] = struct{}{}
	return true
}

// RemoveEdge unlinks two nodes. Returns false when the edge does not
// exist, so callers can skip the mirrored store update.
func (g *Graph) RemoveEdge(u, v string) bool {
	un, uok := g.adjacency[u]
	if !uok {
		return false
	}
	if _, adjacent := un[v]; !adjacent {
		return false
	}
	delete(un, v)
	delete(g.adjacency[v], u)
	return true
}

// HasEdge reports whether u and v are adjacent.
func (g *Graph) HasEdge(u, v string) bool {
	_, adjacent := g.adjacency[u][v]
	return adjacent
}

// Neighbors returns the neighbors of username in lexicographic order.
func (g *Graph) Neighbors(username string) []string {
	neighbors := make([]string, 0, len(g.adjacency[username]))
	for n := range g.adjacency[username] {
		neighbors = append(neighbors, n)
	}
	sort.Strings(neighbors)
	return neighbors
}

// Degree returns the number of edges incident to username.
func (g *Graph) Degree(username string) int {
	return len(g.adjacency[username])
}

// Len returns the node count.
func (g *Graph) Len() int {
	return len(g.adjacency)
}

// ShortestPath returns the node sequence from start to end with minimum
// edge count, both inclusive, or false when either node is missing or no
// path exists. ShortestPath(u, u) returns [u]. Neighbors are expanded in
// lexicographic order, so among equal-length paths the lexicographically
// smallest is returned.
func (g *Graph) ShortestPath(start, end string) ([]string, bool) {
	if !g.HasNode(start) || !g.HasNode(end) {
		return nil, false
	}
	if start == end {
		return []string{start}, true
	}

	parent := map[string]string{start: ""}
	queue := []string{start}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		for _, next := range g.Neighbors(current) {
			if _, visited := parent[next]; visited {
				continue
			}
			parent[next] = current
			if next == end {
				return buildPath(parent, start, end), true
			}
			queue = append(queue, next)
		}
	}
	return nil, false
}

func buildPath(parent map[string]string, start, end string) []string {
	var reversed []string
	for at := end; at != ""; at = parent[at] {
		reversed = append(reversed, at)
	}
	path := make([]string, 0, len(reversed))
	for i := len(reversed) - 1; i >= 0; i-- {
		path = append(path, reversed[i])
	}
	return path
}

// DegreeStats is the summary over all node degrees. MaxUser and MinUser
// are empty for an empty graph. Ties resolve to the lexicographically
// smallest username.
type DegreeStats struct {
	MaxUser string
	Max     int
	MinUser string
	Min     int
	Avg     float64
}

// Stats computes the degree statistics. ok is false for an empty graph.
func (g *Graph) Stats() (DegreeStats, bool) {
	if len(g.adjacency) == 0 {
		return DegreeStats{}, false
	}

	var stats DegreeStats
	sum := 0
	first := true
	for node, neighbors := range g.adjacency {
		d := len(neighbors)
		sum += d
		if first || d > stats.Max || (d == stats.Max && node < stats.MaxUser) {
			stats.MaxUser, stats.Max = node, d
		}
		if first || d < stats.Min || (d == stats.Min && node < stats.MinUser) {
			stats.MinUser, stats.Min = node, d
		}
		first = false
	}
	stats.Avg = float64(sum) / float64(len(g.adjacency))
	return stats, true
}

// Candidate is a suggestion candidate with its mutual-friend count.
type Candidate struct {
	Username string
	Common   int
}

// Suggestions ranks friends-of-friends of username that are not already
// friends by the number of mutual friends, descending, username ascending
// on ties, capped at limit. A node with no friends yields nothing.
func (g *Graph) Suggestions(username string, limit int) []Candidate {
	friends, ok := g.adjacency[username]
	if !ok || len(friends) == 0 {
		return nil
	}

	common := make(map[string]int)
	for friend := range friends {
		for candidate := range g.adjacency[friend] {
			if candidate == username {
				continue
			}
			if _, already := friends[candidate]; already {
				continue
			}
			common[candidate]++
		}
	}

	candidates := make([]Candidate, 0, len(common))
	for name, count := range common {
		candidates = append(candidates, Candidate{Username: name, Common: count})
	}
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].Common != candidates[j].Common {
			return candidates[i].Common > candidates[j].Common
		}
		return candidates[i].Username < candidates[j].Username
	})

	if limit > 0 && len(candidates) > limit {
		candidates = candidates[:limit]
	}
	return candidates
}

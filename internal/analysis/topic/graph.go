// Package topic models the static topic graph and the relevance scoring used
// to decide which topic a therapist utterance is pursuing.
package topic

import (
	"container/heap"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"sort"
)

// Edge is a weighted, directed link to another topic.
type Edge struct {
	Target string `json:"target"`
	Weight int    `json:"weight"`
}

// Entry lists the outgoing edges of one topic.
type Entry struct {
	Source string `json:"source"`
	Edges  []Edge `json:"edges"`
}

// Graph is an immutable weighted topic graph. Build a new one instead of
// patching an existing graph.
type Graph struct {
	adjacency map[string][]Edge
	nodes     map[string]struct{}
	topics    []string
}

// NewGraph builds a graph from ordered entries. Topics are listed in first
// appearance order: each source, then its targets. Negative weights are
// clamped to zero.
func NewGraph(entries []Entry) *Graph {
	g := &Graph{
		adjacency: make(map[string][]Edge, len(entries)),
		nodes:     make(map[string]struct{}),
	}
	add := func(name string) {
		if _, ok := g.nodes[name]; ok {
			return
		}
		g.nodes[name] = struct{}{}
		g.topics = append(g.topics, name)
	}

	for _, entry := range entries {
		add(entry.Source)
		edges := make([]Edge, 0, len(entry.Edges))
		for _, edge := range entry.Edges {
			add(edge.Target)
			if edge.Weight < 0 {
				edge.Weight = 0
			}
			edges = append(edges, edge)
		}
		g.adjacency[entry.Source] = append(g.adjacency[entry.Source], edges...)
	}
	return g
}

// LoadGraphJSON reads a {"source": {"target": weight}} table. Sources and
// targets are sorted so topic order is stable across runs.
func LoadGraphJSON(path string) (*Graph, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read topic graph: %w", err)
	}

	var table map[string]map[string]int
	if err := json.Unmarshal(raw, &table); err != nil {
		return nil, fmt.Errorf("parse topic graph %s: %w", path, err)
	}

	sources := make([]string, 0, len(table))
	for source := range table {
		sources = append(sources, source)
	}
	sort.Strings(sources)

	entries := make([]Entry, 0, len(sources))
	for _, source := range sources {
		targets := make([]string, 0, len(table[source]))
		for target := range table[source] {
			targets = append(targets, target)
		}
		sort.Strings(targets)

		entry := Entry{Source: source}
		for _, target := range targets {
			entry.Edges = append(entry.Edges, Edge{Target: target, Weight: table[source][target]})
		}
		entries = append(entries, entry)
	}
	return NewGraph(entries), nil
}

// Topics returns every node in first-appearance order.
func (g *Graph) Topics() []string {
	return append([]string(nil), g.topics...)
}

// Has reports whether name is a node of the graph.
func (g *Graph) Has(name string) bool {
	_, ok := g.nodes[name]
	return ok
}

// Distance returns the shortest-path weight from one topic to another, or
// +Inf when the start is not a node or the target cannot be reached.
func (g *Graph) Distance(from, to string) float64 {
	if !g.Has(from) {
		return math.Inf(1)
	}
	if from == to {
		return 0
	}

	dist := map[string]int{from: 0}
	visited := make(map[string]bool)
	pq := &distanceQueue{{topic: from, dist: 0}}

	for pq.Len() > 0 {
		current := heap.Pop(pq).(queueItem)
		if current.topic == to {
			return float64(current.dist)
		}
		if visited[current.topic] {
			continue
		}
		visited[current.topic] = true

		for _, edge := range g.adjacency[current.topic] {
			if visited[edge.Target] {
				continue
			}
			next := current.dist + edge.Weight
			if known, ok := dist[edge.Target]; !ok || next < known {
				dist[edge.Target] = next
				heap.Push(pq, queueItem{topic: edge.Target, dist: next})
			}
		}
	}
	return math.Inf(1)
}

type queueItem struct {
	topic string
	dist  int
}

type distanceQueue []queueItem

func (q distanceQueue) Len() int           { return len(q) }
func (q distanceQueue) Less(i, j int) bool { return q[i].dist < q[j].dist }
func (q distanceQueue) Swap(i, j int)      { q[i], q[j] = q[j], q[i] }

func (q *distanceQueue) Push(x any) { *q = append(*q, x.(queueItem)) }

func (q *distanceQueue) Pop() any {
	old := *q
	n := len(old)
	item := old[n-1]
	*q = old[:n-1]
	return item
}

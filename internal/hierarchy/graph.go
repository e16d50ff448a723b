// Package hierarchy resolves parent and child bookables over the related-bookable edges.
package hierarchy

import (
	"bookly/pkg/model"
	"context"
	"fmt"
)

const (
	DefaultAncestorDepth   = 5
	DefaultDescendantDepth = 100
)

// Graph indexes the related-bookable edges of one tenant in both directions.
// Following RelatedBookableIDs forward yields children, the reverse index yields parents.
type Graph struct {
	nodes    map[string]*model.Bookable
	children map[string][]string
	parents  map[string][]string
}

func NewGraph(bookables []*model.Bookable) *Graph {
	g := &Graph{
		nodes:    make(map[string]*model.Bookable, len(bookables)),
		children: make(map[string][]string, len(bookables)),
		parents:  make(map[string][]string),
	}
	for _, b := range bookables {
		if b == nil {
			continue
		}
		g.nodes[b.ID] = b
	}
	for _, b := range bookables {
		if b == nil {
			continue
		}
		for _, childID := range b.RelatedBookableIDs {
			g.children[b.ID] = append(g.children[b.ID], childID)
			g.parents[childID] = append(g.parents[childID], b.ID)
		}
	}
	return g
}

func (g *Graph) Bookable(id string) (*model.Bookable, bool) {
	b, ok := g.nodes[id]
	return b, ok
}

// All returns every bookable of the graph.
func (g *Graph) All() []*model.Bookable {
	out := make([]*model.Bookable, 0, len(g.nodes))
	for _, b := range g.nodes {
		out = append(out, b)
	}
	return out
}

// Descendants returns the bookables reachable from id by following children edges up
// to maxDepth hops. The origin is never part of the result.
func (g *Graph) Descendants(id string, maxDepth int) []*model.Bookable {
	return g.walk(id, maxDepth, g.children)
}

// Ancestors returns the bookables whose related ids lead to id within maxDepth hops.
func (g *Graph) Ancestors(id string, maxDepth int) []*model.Bookable {
	return g.walk(id, maxDepth, g.parents)
}

func (g *Graph) walk(origin string, maxDepth int, edges map[string][]string) []*model.Bookable {
	visited := map[string]struct{}{origin: {}}
	frontier := []string{origin}
	var out []*model.Bookable

	for depth := 0; depth < maxDepth && len(frontier) > 0; depth++ {
		var next []string
		for _, id := range frontier {
			for _, nb := range edges[id] {
				if _, seen := visited[nb]; seen {
					continue
				}
				visited[nb] = struct{}{}

				b, ok := g.nodes[nb]
				if !ok {
					// dangling reference
					continue
				}
				out = append(out, b)
				next = append(next, nb)
			}
		}
		frontier = next
	}
	return out
}

type BookableSource interface {
	FindByTenant(ctx context.Context, tenant string) ([]*model.Bookable, error)
}

type Resolver struct {
	source          BookableSource
	ancestorDepth   int
	descendantDepth int
}

func NewResolver(source BookableSource, ancestorDepth, descendantDepth int) *Resolver {
	if ancestorDepth <= 0 {
		ancestorDepth = DefaultAncestorDepth
	}
	if descendantDepth <= 0 {
		descendantDepth = DefaultDescendantDepth
	}
	return &Resolver{
		source:          source,
		ancestorDepth:   ancestorDepth,
		descendantDepth: descendantDepth,
	}
}

func (r *Resolver) AncestorDepth() int   { return r.ancestorDepth }
func (r *Resolver) DescendantDepth() int { return r.descendantDepth }

// Graph loads the tenant's bookables once and indexes them.
func (r *Resolver) Graph(ctx context.Context, tenant string) (*Graph, error) {
	bookables, err := r.source.FindByTenant(ctx, tenant)
	if err != nil {
		return nil, fmt.Errorf("load bookables for hierarchy: %w", err)
	}
	return NewGraph(bookables), nil
}

// Descendants resolves children of id. A maxDepth of zero or less uses the configured default.
func (r *Resolver) Descendants(ctx context.Context, tenant, id string, maxDepth int) ([]*model.Bookable, error) {
	g, err := r.Graph(ctx, tenant)
	if err != nil {
		return nil, err
	}
	if maxDepth <= 0 {
		maxDepth = r.descendantDepth
	}
	return g.Descendants(id, maxDepth), nil
}

func (r *Resolver) Ancestors(ctx context.Context, tenant, id string, maxDepth int) ([]*model.Bookable, error) {
	g, err := r.Graph(ctx, tenant)
	if err != nil {
		return nil, err
	}
	if maxDepth <= 0 {
		maxDepth = r.ancestorDepth
	}
	return g.Ancestors(id, maxDepth), nil
}

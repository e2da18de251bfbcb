package domain

import (
	"context"
	"fmt"
	"sort"
	"strings"
)

const exWorks = "EXW"

// IncotermHierarchy ranks Incoterm codes from least to most seller-inclusive.
// It is built once from the persisted chain and is read-only afterwards.
type IncotermHierarchy struct {
	order []string
	ranks map[string]int
	names map[string]string
}

// NormalizeIncoterm upper-cases and trims an Incoterm code.
func NormalizeIncoterm(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// NewIncotermHierarchy linearizes the chain by depth-first pre-order from its root,
// visiting siblings by Position.
func NewIncotermHierarchy(nodes []IncotermNode) (*IncotermHierarchy, error) {
	if len(nodes) == 0 {
		return nil, fmt.Errorf("%w: no incoterms defined", ErrInvalidHierarchy)
	}

	known := make(map[string]struct{}, len(nodes))
	names := make(map[string]string, len(nodes))
	for _, node := range nodes {
		code := NormalizeIncoterm(node.Code)
		if code == "" {
			return nil, fmt.Errorf("%w: empty incoterm code", ErrInvalidHierarchy)
		}
		if _, dup := known[code]; dup {
			return nil, fmt.Errorf("%w: duplicate code %s", ErrInvalidHierarchy, code)
		}
		known[code] = struct{}{}
		names[code] = node.Name
	}

	var roots []string
	children := make(map[string][]IncotermNode, len(nodes))
	for _, node := range nodes {
		prev := NormalizeIncoterm(node.PreviousCode)
		if prev == "" {
			roots = append(roots, NormalizeIncoterm(node.Code))
			continue
		}
		if _, ok := known[prev]; !ok {
			return nil, fmt.Errorf("%w: %s links to unknown previous %s",
				ErrInvalidHierarchy, node.Code, node.PreviousCode)
		}
		children[prev] = append(children[prev], node)
	}

	if len(roots) != 1 {
		return nil, fmt.Errorf("%w: expected exactly one root, found %d", ErrInvalidHierarchy, len(roots))
	}

	for prev := range children {
		siblings := children[prev]
		sort.SliceStable(siblings, func(i, j int) bool {
			if siblings[i].Position != siblings[j].Position {
				return siblings[i].Position < siblings[j].Position
			}
			return NormalizeIncoterm(siblings[i].Code) < NormalizeIncoterm(siblings[j].Code)
		})
	}

	h := &IncotermHierarchy{
		order: make([]string, 0, len(nodes)),
		ranks: make(map[string]int, len(nodes)),
		names: names,
	}

	stack := []string{roots[0]}
	for len(stack) > 0 {
		code := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		h.ranks[code] = len(h.order)
		h.order = append(h.order, code)

		next := children[code]
		for i := len(next) - 1; i >= 0; i-- {
			stack = append(stack, NormalizeIncoterm(next[i].Code))
		}
	}

	// Nodes caught in a cycle are never reached from the root.
	if len(h.order) != len(nodes) {
		return nil, fmt.Errorf("%w: %d of %d incoterms unreachable from %s",
			ErrInvalidHierarchy, len(nodes)-len(h.order), len(nodes), roots[0])
	}

	return h, nil
}

// LoadIncotermHierarchy reads the chain from the repository and builds the hierarchy.
func LoadIncotermHierarchy(ctx context.Context, repo IncotermRepository) (*IncotermHierarchy, error) {
	nodes, err := repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list incoterms: %w", err)
	}

	return NewIncotermHierarchy(nodes)
}

// Rank returns the position of code in the chain.
func (h *IncotermHierarchy) Rank(code string) (int, error) {
	rank, ok := h.ranks[NormalizeIncoterm(code)]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownIncoterm, code)
	}
	return rank, nil
}

// Contains reports whether code is part of the chain.
func (h *IncotermHierarchy) Contains(code string) bool {
	_, ok := h.ranks[NormalizeIncoterm(code)]
	return ok
}

// Name returns the stored display name of code, empty when unknown or unnamed.
func (h *IncotermHierarchy) Name(code string) string {
	return h.names[NormalizeIncoterm(code)]
}

// IsDutyEligible reports whether export duty applies under code.
func (h *IncotermHierarchy) IsDutyEligible(code string) bool {
	return NormalizeIncoterm(code) != exWorks
}

// Codes returns the chain in rank order.
func (h *IncotermHierarchy) Codes() []string {
	out := make([]string, len(h.order))
	copy(out, h.order)
	return out
}

// InclusionFilter decides whether a cost applies under the selected Incoterm.
type InclusionFilter struct {
	hierarchy *IncotermHierarchy
}

// NewInclusionFilter creates a filter over the given hierarchy.
func NewInclusionFilter(hierarchy *IncotermHierarchy) *InclusionFilter {
	return &InclusionFilter{hierarchy: hierarchy}
}

// Includes reports rank(selected) >= rank(threshold).
func (f *InclusionFilter) Includes(selected, threshold string) (bool, error) {
	selectedRank, err := f.hierarchy.Rank(selected)
	if err != nil {
		return false, err
	}

	thresholdRank, err := f.hierarchy.Rank(threshold)
	if err != nil {
		return false, fmt.Errorf("threshold: %w", err)
	}

	return selectedRank >= thresholdRank, nil
}

// Hierarchy returns the underlying hierarchy.
func (f *InclusionFilter) Hierarchy() *IncotermHierarchy {
	return f.hierarchy
}

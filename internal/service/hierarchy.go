package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/alexanderramin/orgdir/internal/domain"
	"github.com/alexanderramin/orgdir/internal/repository"
)

// depthOf walks parent links upward from parentID and returns the depth a
// new child of parentID would occupy. The walk is bounded by the number of
// stored activities, so a corrupted store fails instead of looping.
func depthOf(ctx context.Context, repo repository.ActivityRepo, parentID *string) (int, error) {
	if parentID == nil {
		return 0, nil
	}
	limit, err := repo.Count(ctx)
	if err != nil {
		return 0, err
	}

	visited := make(map[string]bool)
	depth := 0
	current := *parentID
	for {
		if visited[current] {
			return 0, fmt.Errorf("walking ancestors of %s: %w", *parentID, domain.ErrStructuralIntegrity)
		}
		next, err := repo.GetParentID(ctx, current)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) && depth > 0 {
				return 0, fmt.Errorf("dangling parent link at %s: %w", current, domain.ErrStructuralIntegrity)
			}
			return 0, err
		}
		// Every hop visits a stored node, so a walk longer than the store is a loop.
		visited[current] = true
		depth++
		if len(visited) > limit {
			return 0, fmt.Errorf("walking ancestors of %s: %w", *parentID, domain.ErrStructuralIntegrity)
		}
		if next == nil {
			return depth, nil
		}
		current = *next
	}
}

// descendantClosure returns id followed by all of its descendants in
// breadth-first order, plus the height of the subtree (0 for a leaf).
func descendantClosure(ctx context.Context, repo repository.ActivityRepo, id string) ([]string, int, error) {
	if _, err := repo.GetByID(ctx, id); err != nil {
		return nil, 0, err
	}
	limit, err := repo.Count(ctx)
	if err != nil {
		return nil, 0, err
	}

	visited := map[string]bool{id: true}
	closure := []string{id}
	level := []string{id}
	height := 0
	for len(level) > 0 {
		var next []string
		for _, nodeID := range level {
			children, err := repo.ListChildren(ctx, nodeID)
			if err != nil {
				return nil, 0, err
			}
			for _, child := range children {
				if visited[child.ID] || len(closure) >= limit {
					return nil, 0, fmt.Errorf("collecting descendants of %s: %w", id, domain.ErrStructuralIntegrity)
				}
				visited[child.ID] = true
				closure = append(closure, child.ID)
				next = append(next, child.ID)
			}
		}
		if len(next) > 0 {
			height++
		}
		level = next
	}
	return closure, height, nil
}

// buildForest nests activities under their parents. Activities whose parent
// is not in the slice become top-level entries. Order follows the input.
func buildForest(activities []*domain.Activity) []*domain.ActivityWithChildren {
	nodes := make(map[string]*domain.ActivityWithChildren, len(activities))
	for _, a := range activities {
		nodes[a.ID] = &domain.ActivityWithChildren{Activity: *a}
	}
	var roots []*domain.ActivityWithChildren
	for _, a := range activities {
		node := nodes[a.ID]
		if a.ParentID != nil {
			if parent, ok := nodes[*a.ParentID]; ok && *a.ParentID != a.ID {
				parent.Children = append(parent.Children, node)
				continue
			}
		}
		roots = append(roots, node)
	}
	return roots
}

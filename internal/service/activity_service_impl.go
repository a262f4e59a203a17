package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/alexanderramin/orgdir/internal/db"
	"github.com/alexanderramin/orgdir/internal/domain"
	"github.com/alexanderramin/orgdir/internal/repository"
)

type activityService struct {
	activities repository.ActivityRepo
	uow        db.UnitOfWork
	observer   UseCaseObserver

	// mu serializes structural edits so the validate-then-write sequence
	// never interleaves with another writer in this process.
	mu sync.Mutex
}

func NewActivityService(
	activities repository.ActivityRepo,
	uow db.UnitOfWork,
	observers ...UseCaseObserver,
) ActivityService {
	return &activityService{
		activities: activities,
		uow:        uow,
		observer:   useCaseObserverOrNoop(observers),
	}
}

func (s *activityService) observe(ctx context.Context, name string, startedAt time.Time, err error, fields map[string]any) {
	observeUseCase(ctx, s.observer, name, startedAt, err, fields)
}

func (s *activityService) Create(ctx context.Context, name string, parentID *string) (a *domain.Activity, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{"name": name}
	defer func() { s.observe(ctx, "activity.create", startedAt, err, fields) }()

	if err = domain.ValidateActivityName(name); err != nil {
		return nil, err
	}
	parentID = blankToNil(parentID)
	if parentID != nil {
		fields["parent_id"] = *parentID
	}

	now := time.Now().UTC()
	a = &domain.Activity{Name: name, ParentID: parentID, CreatedAt: now, UpdatedAt: now}

	s.mu.Lock()
	defer s.mu.Unlock()
	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		txActivities := repository.NewSQLiteActivityRepo(tx)
		depth, err := depthOf(ctx, txActivities, parentID)
		if err != nil {
			return err
		}
		if depth > domain.MaxActivityDepth {
			return fmt.Errorf("creating %q at depth %d: %w", name, depth, domain.ErrDepthExceeded)
		}
		return txActivities.Create(ctx, a)
	})
	if err != nil {
		return nil, err
	}
	fields["id"] = a.ID
	return a, nil
}

func (s *activityService) GetByID(ctx context.Context, id string) (*domain.Activity, error) {
	return s.activities.GetByID(ctx, id)
}

func (s *activityService) GetWithChildren(ctx context.Context, id string) (tree *domain.ActivityWithChildren, err error) {
	startedAt := time.Now().UTC()
	defer func() { s.observe(ctx, "activity.get-with-children", startedAt, err, map[string]any{"id": id}) }()

	err = s.uow.WithinReadTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		txActivities := repository.NewSQLiteActivityRepo(tx)
		closure, _, err := descendantClosure(ctx, txActivities, id)
		if err != nil {
			return err
		}
		all, err := txActivities.ListAll(ctx)
		if err != nil {
			return err
		}
		members := make(map[string]bool, len(closure))
		for _, memberID := range closure {
			members[memberID] = true
		}
		subset := make([]*domain.Activity, 0, len(closure))
		for _, a := range all {
			if members[a.ID] {
				subset = append(subset, a)
			}
		}
		for _, node := range buildForest(subset) {
			if node.ID == id {
				tree = node
				return nil
			}
		}
		return fmt.Errorf("activity %s missing from its own subtree: %w", id, domain.ErrStructuralIntegrity)
	})
	if err != nil {
		return nil, err
	}
	return tree, nil
}

func (s *activityService) List(ctx context.Context, offset, limit int) ([]*domain.Activity, error) {
	return s.activities.List(ctx, offset, limit)
}

func (s *activityService) ListRoots(ctx context.Context) ([]*domain.Activity, error) {
	return s.activities.ListRoots(ctx)
}

// Tree returns the whole forest. Every stored activity must be reachable
// from a root; otherwise the store holds a cycle.
func (s *activityService) Tree(ctx context.Context) (forest []*domain.ActivityWithChildren, err error) {
	startedAt := time.Now().UTC()
	defer func() { s.observe(ctx, "activity.tree", startedAt, err, nil) }()

	all, err := s.activities.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	forest = buildForest(all)
	reachable := 0
	var count func(nodes []*domain.ActivityWithChildren)
	count = func(nodes []*domain.ActivityWithChildren) {
		for _, n := range nodes {
			reachable++
			count(n.Children)
		}
	}
	count(forest)
	if reachable != len(all) {
		err = fmt.Errorf("%d of %d activities unreachable from a root: %w",
			len(all)-reachable, len(all), domain.ErrStructuralIntegrity)
		return nil, err
	}
	return forest, nil
}

func (s *activityService) Update(ctx context.Context, id string, upd domain.ActivityUpdate) (a *domain.Activity, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{"id": id}
	defer func() { s.observe(ctx, "activity.update", startedAt, err, fields) }()

	if upd.Name != nil {
		if err = domain.ValidateActivityName(*upd.Name); err != nil {
			return nil, err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		txActivities := repository.NewSQLiteActivityRepo(tx)
		current, err := txActivities.GetByID(ctx, id)
		if err != nil {
			return err
		}

		target := blankToNil(upd.TargetParent())
		if upd.Reparents() && !current.HasParent(target) {
			if err := validateMove(ctx, txActivities, id, target); err != nil {
				return err
			}
			if err := txActivities.SetParent(ctx, id, target); err != nil {
				return err
			}
			fields["parent_id"] = parentLabel(target)
		}
		if upd.Name != nil {
			if err := txActivities.SetName(ctx, id, *upd.Name); err != nil {
				return err
			}
			fields["name"] = *upd.Name
		}

		a, err = txActivities.GetByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return a, nil
}

// validateMove checks that hanging id under target keeps the forest acyclic
// and within the depth limit, counting the subtree that moves along.
func validateMove(ctx context.Context, repo repository.ActivityRepo, id string, target *string) error {
	if target == nil {
		return nil
	}
	if *target == id {
		return fmt.Errorf("activity %s: %w", id, domain.ErrSelfParent)
	}
	if _, err := repo.GetByID(ctx, *target); err != nil {
		return fmt.Errorf("parent activity: %w", err)
	}

	closure, height, err := descendantClosure(ctx, repo, id)
	if err != nil {
		return err
	}
	for _, descendant := range closure {
		if descendant == *target {
			return fmt.Errorf("moving %s under its descendant %s: %w", id, *target, domain.ErrCycle)
		}
	}

	depth, err := depthOf(ctx, repo, target)
	if err != nil {
		return err
	}
	if depth+height > domain.MaxActivityDepth {
		return fmt.Errorf("moving %s would reach depth %d: %w", id, depth+height, domain.ErrDepthExceeded)
	}
	return nil
}

func (s *activityService) Delete(ctx context.Context, id string) (deleted bool, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{"id": id}
	defer func() { s.observe(ctx, "activity.delete", startedAt, err, fields) }()

	s.mu.Lock()
	defer s.mu.Unlock()
	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		txActivities := repository.NewSQLiteActivityRepo(tx)
		if _, err := txActivities.GetByID(ctx, id); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil
			}
			return err
		}
		promoted, err := txActivities.DetachChildren(ctx, id)
		if err != nil {
			return err
		}
		fields["promoted_children"] = promoted
		if err := txActivities.Delete(ctx, id); err != nil {
			return err
		}
		deleted = true
		return nil
	})
	if err != nil {
		return false, err
	}
	fields["deleted"] = deleted
	return deleted, nil
}

func (s *activityService) DepthOf(ctx context.Context, parentID *string) (int, error) {
	return depthOf(ctx, s.activities, blankToNil(parentID))
}

func (s *activityService) DescendantClosure(ctx context.Context, id string) (closure []string, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{"id": id}
	defer func() { s.observe(ctx, "activity.descendant-closure", startedAt, err, fields) }()

	err = s.uow.WithinReadTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		closure, _, err = descendantClosure(ctx, repository.NewSQLiteActivityRepo(tx), id)
		return err
	})
	if err != nil {
		return nil, err
	}
	fields["size"] = len(closure)
	return closure, nil
}

func (s *activityService) ByNameExact(ctx context.Context, name string) (*domain.Activity, error) {
	return s.activities.FindByNameExact(ctx, name)
}

func (s *activityService) ByNameSubstring(ctx context.Context, name string) ([]*domain.Activity, error) {
	return s.activities.FindByNameContains(ctx, name)
}

func blankToNil(id *string) *string {
	if id == nil || *id == "" {
		return nil
	}
	return id
}

func parentLabel(id *string) string {
	if id == nil {
		return "root"
	}
	return *id
}

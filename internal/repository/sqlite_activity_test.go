package repository

import (
	"context"
	"database/sql"
	"testing"

	"github.com/alexanderramin/orgdir/internal/domain"
	"github.com/alexanderramin/orgdir/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupActivityRepo(t *testing.T) (*SQLiteActivityRepo, *sql.DB) {
	t.Helper()
	database := testutil.NewTestDB(t)
	return NewSQLiteActivityRepo(database), database
}

func activityIDs(list []*domain.Activity) []string {
	ids := make([]string, 0, len(list))
	for _, a := range list {
		ids = append(ids, a.ID)
	}
	return ids
}

func TestActivityRepo_CreateAssignsIDAndGetByID(t *testing.T) {
	repo, _ := setupActivityRepo(t)
	ctx := context.Background()

	root := &domain.Activity{Name: "  Food  "}
	require.NoError(t, repo.Create(ctx, root))
	require.NotEmpty(t, root.ID, "store assigns an id")

	child := testutil.NewTestActivity("Dairy", testutil.WithParent(root))
	require.NoError(t, repo.Create(ctx, child))

	got, err := repo.GetByID(ctx, child.ID)
	require.NoError(t, err)
	assert.Equal(t, "Dairy", got.Name)
	require.NotNil(t, got.ParentID)
	assert.Equal(t, root.ID, *got.ParentID)

	gotRoot, err := repo.GetByID(ctx, root.ID)
	require.NoError(t, err)
	assert.Equal(t, "Food", gotRoot.Name, "names are trimmed on insert")
	assert.Nil(t, gotRoot.ParentID)
	assert.False(t, gotRoot.CreatedAt.IsZero())
}

func TestActivityRepo_GetByID_NotFound(t *testing.T) {
	repo, _ := setupActivityRepo(t)
	_, err := repo.GetByID(context.Background(), "missing")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestActivityRepo_CreateRejectsUnknownParent(t *testing.T) {
	repo, _ := setupActivityRepo(t)
	orphan := testutil.NewTestActivity("Orphan", testutil.WithParentID("nope"))
	require.Error(t, repo.Create(context.Background(), orphan), "foreign key must reject dangling parent")
}

func TestActivityRepo_GetParentID(t *testing.T) {
	repo, database := setupActivityRepo(t)
	ctx := context.Background()
	chain := testutil.SeedActivityChain(t, database, "Food", "Dairy")

	parent, err := repo.GetParentID(ctx, chain[0].ID)
	require.NoError(t, err)
	assert.Nil(t, parent)

	parent, err = repo.GetParentID(ctx, chain[1].ID)
	require.NoError(t, err)
	require.NotNil(t, parent)
	assert.Equal(t, chain[0].ID, *parent)

	_, err = repo.GetParentID(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestActivityRepo_ListMethods_Hierarchy(t *testing.T) {
	repo, database := setupActivityRepo(t)
	ctx := context.Background()

	food := testutil.SeedActivityChain(t, database, "Food", "Dairy", "Milk")
	cars := testutil.SeedActivityChain(t, database, "Cars")
	meat := testutil.NewTestActivity("Meat", testutil.WithParent(food[0]))
	require.NoError(t, repo.Create(ctx, meat))

	roots, err := repo.ListRoots(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{food[0].ID, cars[0].ID}, activityIDs(roots))

	children, err := repo.ListChildren(ctx, food[0].ID)
	require.NoError(t, err)
	assert.Equal(t, []string{food[1].ID, meat.ID}, activityIDs(children), "children come back in insertion order")

	leaf, err := repo.ListChildren(ctx, food[2].ID)
	require.NoError(t, err)
	assert.Empty(t, leaf)

	all, err := repo.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 5)

	page, err := repo.List(ctx, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{food[1].ID, food[2].ID}, activityIDs(page))

	n, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5, n)
}

func TestActivityRepo_SetParentAndName(t *testing.T) {
	repo, database := setupActivityRepo(t)
	ctx := context.Background()
	chain := testutil.SeedActivityChain(t, database, "Food", "Dairy")
	other := testutil.SeedActivityChain(t, database, "Drinks")

	require.NoError(t, repo.SetParent(ctx, chain[1].ID, &other[0].ID))
	require.NoError(t, repo.SetName(ctx, chain[1].ID, " Juice "))

	got, err := repo.GetByID(ctx, chain[1].ID)
	require.NoError(t, err)
	assert.Equal(t, "Juice", got.Name)
	require.NotNil(t, got.ParentID)
	assert.Equal(t, other[0].ID, *got.ParentID)

	require.NoError(t, repo.SetParent(ctx, chain[1].ID, nil))
	got, err = repo.GetByID(ctx, chain[1].ID)
	require.NoError(t, err)
	assert.Nil(t, got.ParentID)

	assert.ErrorIs(t, repo.SetParent(ctx, "missing", nil), ErrNotFound)
	assert.ErrorIs(t, repo.SetName(ctx, "missing", "x"), ErrNotFound)
}

func TestActivityRepo_DetachChildrenAndDelete(t *testing.T) {
	repo, database := setupActivityRepo(t)
	ctx := context.Background()
	chain := testutil.SeedActivityChain(t, database, "Food", "Dairy", "Milk")
	meat := testutil.NewTestActivity("Meat", testutil.WithParent(chain[0]))
	require.NoError(t, repo.Create(ctx, meat))

	n, err := repo.DetachChildren(ctx, chain[0].ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	roots, err := repo.ListRoots(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{chain[0].ID, chain[1].ID, meat.ID}, activityIDs(roots))

	milk, err := repo.GetByID(ctx, chain[2].ID)
	require.NoError(t, err)
	require.NotNil(t, milk.ParentID, "grandchildren keep their parent")
	assert.Equal(t, chain[1].ID, *milk.ParentID)

	require.NoError(t, repo.Delete(ctx, chain[0].ID))
	_, err = repo.GetByID(ctx, chain[0].ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, chain[0].ID), ErrNotFound)
}

func TestActivityRepo_NameLookupsAreCaseInsensitive(t *testing.T) {
	repo, database := setupActivityRepo(t)
	ctx := context.Background()
	first := testutil.SeedActivityChain(t, database, "Молочная продукция")
	dup := testutil.SeedActivityChain(t, database, "МОЛОЧНАЯ ПРОДУКЦИЯ")
	testutil.SeedActivityChain(t, database, "Meat Products")

	got, err := repo.FindByNameExact(ctx, "молочная продукция")
	require.NoError(t, err)
	assert.Equal(t, first[0].ID, got.ID, "first match in store order")

	_, err = repo.FindByNameExact(ctx, "молочная")
	assert.ErrorIs(t, err, ErrNotFound)

	matches, err := repo.FindByNameContains(ctx, "ПРОДУК")
	require.NoError(t, err)
	assert.Equal(t, []string{first[0].ID, dup[0].ID}, activityIDs(matches))

	matches, err = repo.FindByNameContains(ctx, "products")
	require.NoError(t, err)
	assert.Len(t, matches, 1)

	matches, err = repo.FindByNameContains(ctx, "%")
	require.NoError(t, err)
	assert.Empty(t, matches, "wildcards are matched literally")
}

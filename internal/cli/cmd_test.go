package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/alexanderramin/orgdir/internal/app"
	"github.com/alexanderramin/orgdir/internal/domain"
	"github.com/alexanderramin/orgdir/internal/repository"
	"github.com/alexanderramin/orgdir/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var ansiPattern = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

// testApp wires a full App backed by an in-memory DB for CLI integration tests.
func testApp(t *testing.T) *App {
	t.Helper()
	dir := app.New(testutil.NewTestDB(t))
	return &App{
		Activities:    dir.Activities,
		Buildings:     dir.Buildings,
		Organizations: dir.Organizations,
		Import:        dir.Import,
		IsInteractive: func() bool { return false },
	}
}

// executeCmd runs a cobra command and captures stdout/stderr without ANSI codes.
func executeCmd(t *testing.T, a *App, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd(a)
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs(args)
	err := root.Execute()
	return ansiPattern.ReplaceAllString(buf.String(), ""), err
}

func mustExec(t *testing.T, a *App, args ...string) string {
	t.Helper()
	out, err := executeCmd(t, a, args...)
	require.NoError(t, err, "args %v, output: %s", args, out)
	return out
}

func seedFoodTree(t *testing.T, a *App) (food, dairy, milk *domain.Activity) {
	t.Helper()
	ctx := context.Background()
	var err error
	food, err = a.Activities.Create(ctx, "Food", nil)
	require.NoError(t, err)
	dairy, err = a.Activities.Create(ctx, "Dairy", &food.ID)
	require.NoError(t, err)
	milk, err = a.Activities.Create(ctx, "Milk", &dairy.ID)
	require.NoError(t, err)
	return food, dairy, milk
}

func TestActivityCmd_AddByParentName(t *testing.T) {
	a := testApp(t)

	out := mustExec(t, a, "activity", "add", "Food")
	assert.Contains(t, out, "Created activity Food")
	assert.Contains(t, out, "under root")

	out = mustExec(t, a, "activity", "add", "Dairy", "--parent", "food")
	assert.Contains(t, out, "under Food")

	mustExec(t, a, "activity", "add", "Milk", "--parent", "Dairy")
	_, err := executeCmd(t, a, "activity", "add", "Skim", "--parent", "Milk")
	assert.ErrorIs(t, err, domain.ErrDepthExceeded)
}

func TestActivityCmd_TreeAndClosure(t *testing.T) {
	a := testApp(t)
	food, _, _ := seedFoodTree(t, a)

	out := mustExec(t, a, "activity", "tree")
	assert.Contains(t, out, "Food")
	assert.Contains(t, out, "└─ Dairy")
	assert.Contains(t, out, "   └─ Milk")

	out = mustExec(t, a, "activity", "closure", food.ID[:8])
	assert.Contains(t, out, food.ID)
	assert.Contains(t, out, "3 activities")
}

func TestActivityCmd_UpdateRejectsCycle(t *testing.T) {
	a := testApp(t)
	_, dairy, milk := seedFoodTree(t, a)

	_, err := executeCmd(t, a, "activity", "update", dairy.ID, "--parent", milk.ID)
	assert.ErrorIs(t, err, domain.ErrCycle)

	_, err = executeCmd(t, a, "activity", "update", dairy.ID)
	assert.ErrorContains(t, err, "nothing to update")

	out := mustExec(t, a, "activity", "update", milk.ID, "--root", "--name", "Milk drinks")
	assert.Contains(t, out, "Milk drinks")
	assert.Contains(t, out, "parent: root")
}

func TestActivityCmd_RemoveConfirmation(t *testing.T) {
	a := testApp(t)
	food, dairy, _ := seedFoodTree(t, a)
	a.IsInteractive = func() bool { return true }

	var asked string
	a.Confirm = func(title string) (bool, error) {
		asked = title
		return false, nil
	}
	out := mustExec(t, a, "activity", "remove", food.ID)
	assert.Contains(t, out, "Cancelled")
	assert.Contains(t, asked, "1 child activities")
	_, err := a.Activities.GetByID(context.Background(), food.ID)
	require.NoError(t, err)

	out = mustExec(t, a, "activity", "remove", food.ID, "--yes")
	assert.Contains(t, out, "Removed activity Food")
	got, err := a.Activities.GetByID(context.Background(), dairy.ID)
	require.NoError(t, err)
	assert.Nil(t, got.ParentID)
}

func TestActivityCmd_Search(t *testing.T) {
	a := testApp(t)
	seedFoodTree(t, a)

	out := mustExec(t, a, "activity", "search", "ai")
	assert.Contains(t, out, "Dairy")
	assert.NotContains(t, out, "Milk")

	_, err := executeCmd(t, a, "activity", "search", "dai", "--exact")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestBuildingAndOrgCmds(t *testing.T) {
	a := testApp(t)
	seedFoodTree(t, a)

	mustExec(t, a, "building", "add", "--name", "Tower", "--address", "Lenina 1", "--lat", "55.7558", "--lon", "37.6173")
	mustExec(t, a, "building", "add", "--name", "Annex", "--address", "Lenina 3", "--lat", "55.7600", "--lon", "37.6173")
	buildings, err := a.Buildings.List(context.Background(), 0, -1)
	require.NoError(t, err)
	require.Len(t, buildings, 2)
	tower := buildings[0]
	if tower.Name != "Tower" {
		tower = buildings[1]
	}

	out := mustExec(t, a, "org", "add", "--name", "Creamery", "--building", tower.ID[:8],
		"--phone", "2-222-222", "--phone", "3-333-333", "--activity", "Dairy")
	assert.Contains(t, out, "Created organization Creamery")

	out = mustExec(t, a, "org", "search", "--activity-name", "food")
	assert.Contains(t, out, "Creamery")
	assert.Contains(t, out, "2-222-222, 3-333-333")

	out = mustExec(t, a, "org", "search", "--activity", "Food", "--children=false")
	assert.Contains(t, out, "No organizations")

	out = mustExec(t, a, "org", "search", "--lat", "55.7558", "--lon", "37.6173", "--radius", "100")
	assert.Contains(t, out, "Creamery")

	out = mustExec(t, a, "building", "near", "--lat", "55.7558", "--lon", "37.6173", "--radius", "1000")
	assert.Regexp(t, `(?s)Tower.*0 m.*Annex`, out)

	out = mustExec(t, a, "building", "show", tower.ID)
	assert.Contains(t, out, "Creamery")

	out = mustExec(t, a, "building", "remove", tower.ID, "--yes")
	assert.Contains(t, out, "Removed building Tower")
	out = mustExec(t, a, "org", "search")
	assert.Contains(t, out, "No organizations")
}

func TestOrgCmd_ShowAndRemove(t *testing.T) {
	a := testApp(t)
	ctx := context.Background()
	b := &domain.Building{Name: "Tower", Address: "Lenina 1", Latitude: 1, Longitude: 1}
	require.NoError(t, a.Buildings.Create(ctx, b))
	o, err := a.Organizations.Create(ctx, domain.OrganizationInput{Name: "Kiosk", BuildingID: b.ID})
	require.NoError(t, err)

	out := mustExec(t, a, "org", "show", o.ID[:8])
	assert.Contains(t, out, "Kiosk")
	assert.Contains(t, out, "Tower")

	mustExec(t, a, "org", "remove", o.ID, "-y")
	_, err = executeCmd(t, a, "org", "show", o.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestImportCmd(t *testing.T) {
	a := testApp(t)
	path := filepath.Join(t.TempDir(), "seed.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
buildings:
  - ref: hq
    name: HQ
    address: Blyukhera 32/1
    latitude: 55.03
    longitude: 82.92
activities:
  - ref: food
    name: Food
  - ref: meat
    parent_ref: food
    name: Meat
organizations:
  - name: Butcher
    building_ref: hq
    phones: ["8-923-666-13-13"]
    activity_refs: [meat]
`), 0o644))

	out := mustExec(t, a, "import", path)
	assert.Contains(t, out, "Imported 1 buildings, 2 activities, 1 organizations")

	out = mustExec(t, a, "org", "search", "--activity-name", "Food")
	assert.Contains(t, out, "Butcher")
}

func TestServeCmd(t *testing.T) {
	a := testApp(t)
	_, err := executeCmd(t, a, "serve")
	assert.ErrorContains(t, err, "not configured")

	called := false
	a.Serve = func(ctx context.Context) error {
		called = ctx != nil
		return nil
	}
	mustExec(t, a, "serve")
	assert.True(t, called)
}

func TestMatchID(t *testing.T) {
	ids := []string{"abc123", "abd456", "xyz789"}

	tests := []struct {
		name    string
		input   string
		want    string
		wantErr string
	}{
		{"exact", "xyz789", "xyz789", ""},
		{"unique prefix", "abc", "abc123", ""},
		{"ambiguous prefix", "ab", "", "ambiguous"},
		{"missing", "q", "", "not found"},
		{"empty", "", "", "required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := matchID("activity", tt.input, ids)
			if tt.wantErr != "" {
				assert.ErrorContains(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

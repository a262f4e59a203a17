package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/alexanderramin/orgdir/internal/domain"
	"github.com/alexanderramin/orgdir/internal/repository"
)

// matchID resolves input against ids: an exact match wins, otherwise a
// unique prefix. Listings show 8-character prefixes, so those work too.
func matchID(kind, input string, ids []string) (string, error) {
	if input == "" {
		return "", fmt.Errorf("%s ID is required", kind)
	}
	var matches []string
	for _, id := range ids {
		if id == input {
			return id, nil
		}
		if strings.HasPrefix(id, input) {
			matches = append(matches, id)
		}
	}
	switch len(matches) {
	case 0:
		return "", fmt.Errorf("%s %q: %w", kind, input, repository.ErrNotFound)
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("%s ID prefix %q is ambiguous (%d matches)", kind, input, len(matches))
	}
}

// resolveActivityID accepts a full ID, an ID prefix or an exact name.
func resolveActivityID(ctx context.Context, app *App, input string) (string, error) {
	input = strings.TrimSpace(input)
	list, err := app.Activities.List(ctx, 0, -1)
	if err != nil {
		return "", err
	}
	ids := make([]string, 0, len(list))
	for _, a := range list {
		ids = append(ids, a.ID)
	}
	id, err := matchID("activity", input, ids)
	if input == "" || err == nil || !errors.Is(err, repository.ErrNotFound) {
		return id, err
	}
	a, nameErr := app.Activities.ByNameExact(ctx, input)
	if nameErr != nil {
		return "", err
	}
	return a.ID, nil
}

func resolveBuildingID(ctx context.Context, app *App, input string) (string, error) {
	list, err := app.Buildings.List(ctx, 0, -1)
	if err != nil {
		return "", err
	}
	ids := make([]string, 0, len(list))
	for _, b := range list {
		ids = append(ids, b.ID)
	}
	return matchID("building", input, ids)
}

func resolveOrganizationID(ctx context.Context, app *App, input string) (string, error) {
	list, err := app.Organizations.List(ctx, 0, -1)
	if err != nil {
		return "", err
	}
	ids := make([]string, 0, len(list))
	for _, o := range list {
		ids = append(ids, o.ID)
	}
	return matchID("organization", input, ids)
}

func resolveActivityIDs(ctx context.Context, app *App, inputs []string) ([]string, error) {
	out := make([]string, 0, len(inputs))
	for _, in := range inputs {
		id, err := resolveActivityID(ctx, app, in)
		if err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, nil
}

func parentLabel(ctx context.Context, app *App, a *domain.Activity) string {
	if a.ParentID == nil {
		return "root"
	}
	if p, err := app.Activities.GetByID(ctx, *a.ParentID); err == nil {
		return p.Name
	}
	return *a.ParentID
}

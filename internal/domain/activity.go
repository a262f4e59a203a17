package domain

import (
	"fmt"
	"time"
)

// MaxActivityDepth is the deepest level an activity may occupy. Roots sit at
// depth 0, so the taxonomy has at most three levels.
const MaxActivityDepth = 2

// Activity is one node in the activity taxonomy forest.
type Activity struct {
	ID        string
	Name      string
	ParentID  *string // nil for roots
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (a *Activity) IsRoot() bool {
	return a.ParentID == nil
}

// HasParent reports whether the activity currently hangs under parentID.
// A nil parentID matches roots.
func (a *Activity) HasParent(parentID *string) bool {
	if a.ParentID == nil || parentID == nil {
		return a.ParentID == nil && parentID == nil
	}
	return *a.ParentID == *parentID
}

// ActivityWithChildren is an activity together with its nested descendants.
type ActivityWithChildren struct {
	Activity
	Children []*ActivityWithChildren
}

// ActivityUpdate describes a partial update. A nil field is left unchanged.
// Detach moves the activity to the root level and wins over ParentID.
type ActivityUpdate struct {
	Name     *string
	ParentID *string
	Detach   bool
}

// Reparents reports whether the update asks to change the parent link.
func (u ActivityUpdate) Reparents() bool {
	return u.Detach || u.ParentID != nil
}

// TargetParent returns the parent the update asks for, nil meaning root.
func (u ActivityUpdate) TargetParent() *string {
	if u.Detach {
		return nil
	}
	return u.ParentID
}

// ValidateActivityName rejects blank activity names.
func ValidateActivityName(name string) error {
	if NormalizeName(name) == "" {
		return fmt.Errorf("activity name is required: %w", ErrInvalidInput)
	}
	return nil
}

package formatter

import (
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/orgdir/internal/domain"
)

// FormatActivityTree renders a forest of activities. orgCounts, when not
// nil, adds an organization count badge to each node.
func FormatActivityTree(forest []*domain.ActivityWithChildren, orgCounts map[string]int) string {
	if len(forest) == 0 {
		return Dim("No activities") + "\n"
	}
	var items []TreeItem
	var walk func(nodes []*domain.ActivityWithChildren, level int, ancestors []bool)
	walk = func(nodes []*domain.ActivityWithChildren, level int, ancestors []bool) {
		for i, n := range nodes {
			last := i == len(nodes)-1
			item := TreeItem{
				Title:     n.Name,
				ID:        n.ID,
				Level:     level,
				IsLast:    last,
				Ancestors: ancestors,
			}
			if orgCounts != nil {
				item.Detail = pluralize(orgCounts[n.ID], "org", "orgs")
			}
			items = append(items, item)
			next := ancestors
			if level > 0 {
				next = append(append([]bool(nil), ancestors...), last)
			}
			walk(n.Children, level+1, next)
		}
	}
	walk(forest, 0, nil)
	return RenderTree(items)
}

func FormatActivityList(activities []*domain.Activity) string {
	headers := []string{"ID", "NAME", "PARENT"}
	rows := make([][]string, 0, len(activities))
	for _, a := range activities {
		parent := Dim("--")
		if a.ParentID != nil {
			parent = TruncID(*a.ParentID)
		}
		rows = append(rows, []string{TruncID(a.ID), Bold(a.Name), parent})
	}
	return RenderTable(headers, rows, "No activities")
}

// FormatActivityDetail renders one activity with its depth and children.
func FormatActivityDetail(node *domain.ActivityWithChildren, depth int, now time.Time) string {
	var b strings.Builder
	b.WriteString(Bold(node.Name) + "  " + DepthBadge(depth) + "\n\n")
	b.WriteString(Field("id", node.ID))
	parent := Dim("root")
	if node.ParentID != nil {
		parent = *node.ParentID
	}
	b.WriteString(Field("parent", parent))
	b.WriteString(Field("updated", HumanTimestamp(node.UpdatedAt, now)))
	if len(node.Children) > 0 {
		b.WriteString("\n" + FormatActivityTree(node.Children, nil))
	}
	return RenderBox("Activity", strings.TrimRight(b.String(), "\n"))
}

// FormatClosure renders a descendant closure, the root id first.
func FormatClosure(ids []string) string {
	var b strings.Builder
	for i, id := range ids {
		if i == 0 {
			b.WriteString(Bold(id) + "\n")
			continue
		}
		b.WriteString(Dim("  └ ") + id + "\n")
	}
	b.WriteString(Dim(pluralize(len(ids), "activity", "activities")) + "\n")
	return b.String()
}

func pluralize(n int, one, many string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, one)
	}
	return fmt.Sprintf("%d %s", n, many)
}

package formatter

import (
	"strings"

	"github.com/alexanderramin/orgdir/internal/domain"
)

func FormatBuildingList(buildings []*domain.Building) string {
	headers := []string{"ID", "NAME", "ADDRESS", "COORDINATES"}
	rows := make([][]string, 0, len(buildings))
	for _, b := range buildings {
		rows = append(rows, []string{
			TruncID(b.ID),
			Bold(b.Name),
			b.Address,
			Dim(FormatCoordinates(b.Latitude, b.Longitude)),
		})
	}
	return RenderTable(headers, rows, "No buildings")
}

// FormatNearbyBuildings lists buildings with their distance from a point.
func FormatNearbyBuildings(buildings []*domain.Building, lat, lon float64) string {
	headers := []string{"ID", "NAME", "ADDRESS", "DISTANCE"}
	rows := make([][]string, 0, len(buildings))
	for _, b := range buildings {
		rows = append(rows, []string{
			TruncID(b.ID),
			Bold(b.Name),
			b.Address,
			StyleYellow.Render(FormatDistance(domain.DistanceMeters(lat, lon, b.Latitude, b.Longitude))),
		})
	}
	return RenderTable(headers, rows, "No buildings in range")
}

func FormatBuildingDetail(b *domain.BuildingWithOrganizations) string {
	var s strings.Builder
	s.WriteString(Bold(b.Name) + "\n\n")
	s.WriteString(Field("id", b.ID))
	s.WriteString(Field("address", b.Address))
	s.WriteString(Field("location", FormatCoordinates(b.Latitude, b.Longitude)))
	s.WriteString("\n" + Header("Organizations") + "\n")
	if len(b.Organizations) == 0 {
		s.WriteString(Dim("None"))
	}
	for _, o := range b.Organizations {
		s.WriteString(TruncID(o.ID) + "  " + o.Name + "\n")
	}
	return RenderBox("Building", strings.TrimRight(s.String(), "\n"))
}

func FormatOrganizationList(orgs []*domain.OrganizationDetails) string {
	headers := []string{"ID", "NAME", "BUILDING", "ACTIVITIES", "PHONES"}
	rows := make([][]string, 0, len(orgs))
	for _, o := range orgs {
		building := Dim("--")
		if o.Building != nil {
			building = o.Building.Name
		}
		rows = append(rows, []string{
			TruncID(o.ID),
			Bold(o.Name),
			building,
			StylePurple.Render(activityNames(o.Activities)),
			strings.Join(phoneNumbers(o.Phones), ", "),
		})
	}
	return RenderTable(headers, rows, "No organizations")
}

func FormatOrganizationDetail(o *domain.OrganizationDetails) string {
	var s strings.Builder
	s.WriteString(Bold(o.Name) + "\n\n")
	s.WriteString(Field("id", o.ID))
	if o.Building != nil {
		s.WriteString(Field("building", o.Building.Name+Dim(" · "+o.Building.Address)))
	}
	phones := phoneNumbers(o.Phones)
	if len(phones) == 0 {
		phones = []string{Dim("--")}
	}
	s.WriteString(Field("phones", strings.Join(phones, ", ")))
	s.WriteString(Field("activity", StylePurple.Render(activityNames(o.Activities))))
	return RenderBox("Organization", strings.TrimRight(s.String(), "\n"))
}

func activityNames(list []*domain.Activity) string {
	if len(list) == 0 {
		return "--"
	}
	names := make([]string, 0, len(list))
	for _, a := range list {
		names = append(names, a.Name)
	}
	return strings.Join(names, ", ")
}

func phoneNumbers(list []domain.PhoneNumber) []string {
	out := make([]string, 0, len(list))
	for _, p := range list {
		out = append(out, p.Number)
	}
	return out
}

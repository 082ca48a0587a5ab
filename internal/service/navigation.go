package service

import "github.com/spec-kit/helpdesk-service/internal/domain"

// NavItem is one entry of the role-scoped navigation.
type NavItem struct {
	Title string `json:"title"`
	Path  string `json:"path"`
}

type navEntry struct {
	item  NavItem
	roles []domain.Role
}

// navEntries mirrors the dashboard sidebar. A nil role set means the
// entry is visible to everyone.
var navEntries = []navEntry{
	{item: NavItem{Title: "Dashboard", Path: "/dashboard"}},
	{item: NavItem{Title: "My Tickets", Path: "/dashboard/tickets"}},
	{item: NavItem{Title: "New Ticket", Path: "/dashboard/tickets/new"}},
	{item: NavItem{Title: "All Tickets", Path: "/dashboard/admin/tickets"}, roles: []domain.Role{domain.RoleAdmin, domain.RoleAgent}},
	{item: NavItem{Title: "Users", Path: "/dashboard/admin/users"}, roles: []domain.Role{domain.RoleAdmin}},
	{item: NavItem{Title: "Register User", Path: "/dashboard/admin/register"}, roles: []domain.Role{domain.RoleAdmin}},
	{item: NavItem{Title: "Reports", Path: "/dashboard/admin/reports"}, roles: []domain.Role{domain.RoleAdmin, domain.RoleAgent}},
	{item: NavItem{Title: "Settings", Path: "/dashboard/admin/settings"}, roles: []domain.Role{domain.RoleAdmin}},
}

// NavigationForRole derives the navigation from the caller's stored
// role, using the same resolution as the route guards rather than a
// second source of truth held by the client.
func NavigationForRole(role domain.Role) []NavItem {
	items := make([]NavItem, 0, len(navEntries))
	for _, entry := range navEntries {
		if entry.roles == nil {
			items = append(items, entry.item)
			continue
		}
		for _, allowed := range entry.roles {
			if allowed == role {
				items = append(items, entry.item)
				break
			}
		}
	}
	return items
}

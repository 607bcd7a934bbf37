package trigger

import "github.com/Hirdyansh9/Orderbook/internal/models"

// ResolveRecipients maps recipient specifiers onto the active users in users.
// "all" short-circuits to every active user; otherwise owners, employees and
// literal user ids are unioned. The result holds each user id once, in the
// order first seen.
func ResolveRecipients(specs []string, users []models.User) []models.User {
	active := make([]models.User, 0, len(users))
	for _, u := range users {
		if u.Active {
			active = append(active, u)
		}
	}

	wantOwner, wantEmployees, wantAll := false, false, false
	ids := make(map[string]bool)
	for _, s := range specs {
		switch s {
		case models.RecipientAll:
			wantAll = true
		case models.RecipientOwner:
			wantOwner = true
		case models.RecipientEmployees:
			wantEmployees = true
		default:
			ids[s] = true
		}
	}

	var picked []models.User
	if wantAll {
		picked = active
	} else {
		if wantOwner {
			picked = append(picked, byRole(active, models.RoleOwner)...)
		}
		if wantEmployees {
			picked = append(picked, byRole(active, models.RoleEmployee)...)
		}
		for _, u := range active {
			if ids[u.ID] {
				picked = append(picked, u)
			}
		}
	}

	return uniqueByID(picked)
}

func byRole(users []models.User, role models.Role) []models.User {
	var out []models.User
	for _, u := range users {
		if u.Role == role {
			out = append(out, u)
		}
	}
	return out
}

func uniqueByID(users []models.User) []models.User {
	seen := make(map[string]bool, len(users))
	out := make([]models.User, 0, len(users))
	for _, u := range users {
		if seen[u.ID] {
			continue
		}
		seen[u.ID] = true
		out = append(out, u)
	}
	return out
}

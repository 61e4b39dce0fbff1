package auth

import (
	"category-api/internal/logger"
	"fmt"

	"github.com/casbin/casbin/v2"
)

// Role names used in policies.
const (
	RoleAnonymous = "anonymous"
	RoleAdmin     = "admin"
)

// DefaultPolicies grants read access to everyone and write access to admins.
var DefaultPolicies = [][]string{
	{RoleAnonymous, "/", "GET"},
	{RoleAnonymous, "/api/navlist", "GET"},
	{RoleAnonymous, "/api/menus", "GET"},
	{RoleAnonymous, "/api/me", "GET"},
	{RoleAnonymous, "/api/subcategories/*", "GET"},
	{RoleAnonymous, "/api/categories", "GET"},
	{RoleAnonymous, "/api/categories/*", "GET"},
	{RoleAnonymous, "/category/*", "GET"},

	{RoleAdmin, "/api/categories", "POST"},
	{RoleAdmin, "/api/categories/*", "POST"},
}

// SeedDefaultPolicies ensures that the application has a baseline set of authorization rules.
// It checks if each default policy exists before adding it, making the operation idempotent
// and safe to run on every application start.
func SeedDefaultPolicies(e casbin.IEnforcer, log logger.Logger) {
	log.Info("Seeding default authorization policies...")

	for _, p := range DefaultPolicies {
		if has, _ := e.HasPolicy(p); !has {
			if _, err := e.AddPolicy(p); err != nil {
				log.Error(err, fmt.Sprintf("Failed to add policy %v", p))
			}
		}
	}

	// Admins can do everything anonymous users can.
	if has, _ := e.HasRoleForUser(RoleAdmin, RoleAnonymous); !has {
		if _, err := e.AddRoleForUser(RoleAdmin, RoleAnonymous); err != nil {
			log.Error(err, "Failed to add role 'admin' -> 'anonymous'")
		}
	}
	log.Info("Policy seeding complete.")
}

// SeedAdmins grants the admin role to each configured subject.
func SeedAdmins(e casbin.IEnforcer, subjects []string, log logger.Logger) {
	for _, subject := range subjects {
		if subject == "" {
			continue
		}
		if _, err := e.AddRoleForUser(subject, RoleAdmin); err != nil {
			log.Error(err, fmt.Sprintf("Failed to grant admin to %s", subject))
		}
	}
}

// EnsureUser makes a logged-in subject inherit the anonymous permissions.
func EnsureUser(e casbin.IEnforcer, subject string) error {
	if has, _ := e.HasRoleForUser(subject, RoleAnonymous); has {
		return nil
	}
	_, err := e.AddRoleForUser(subject, RoleAnonymous)
	return err
}

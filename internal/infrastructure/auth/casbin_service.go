package auth

import (
	"fmt"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	gormadapter "github.com/casbin/gorm-adapter/v3"
	"gorm.io/gorm"
)

// routeModel matches a role subject against route patterns such as
// /api/events/:id and an action regex such as (PUT|DELETE).
const routeModel = `
[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = r.sub == p.sub && keyMatch2(r.obj, p.obj) && regexMatch(r.act, p.act)
`

// Subject names used in policies. Roles are prefixed so they cannot collide
// with the owner pseudo-role.
const (
	SubjectOwner = "role_owner"
)

// RoleSubject returns the casbin subject for a user role
func RoleSubject(role string) string {
	return "role_" + role
}

// DefaultPolicies are seeded into an empty policy store
func DefaultPolicies() [][]string {
	org := RoleSubject("organizer")
	part := RoleSubject("participant")
	return [][]string{
		{org, "/api/auth/logout", "POST"},
		{part, "/api/auth/logout", "POST"},

		{org, "/api/events", "POST"},
		{org, "/api/events/:id", "(PUT|DELETE)"},
		{org, "/api/events/:id/upload-qr", "POST"},
		{org, "/api/events/:id/reconcile", "POST"},

		{part, "/api/registrations", "POST"},
		{org, "/api/registrations/:id", "(PUT|DELETE)"},
		{part, "/api/registrations/:id", "DELETE"},
		{org, "/api/registrations/upload-proof", "POST"},
		{part, "/api/registrations/upload-proof", "POST"},

		{SubjectOwner, "/api/auth/profile/:userId", "(GET|PUT)"},
		{SubjectOwner, "/api/auth/email-change/*", "POST"},
	}
}

type CasbinService struct{ E *casbin.Enforcer }

// NewCasbinService builds the enforcer. With a nil db the policies live only
// in memory; otherwise they are persisted through the gorm adapter.
// An empty modelPath selects the built-in route model.
func NewCasbinService(db *gorm.DB, modelPath string) (*CasbinService, error) {
	m, err := loadModel(modelPath)
	if err != nil {
		return nil, err
	}

	var e *casbin.Enforcer
	if db == nil {
		e, err = casbin.NewEnforcer(m)
	} else {
		adp, adpErr := gormadapter.NewAdapterByDB(db)
		if adpErr != nil {
			return nil, fmt.Errorf("casbin adapter: %w", adpErr)
		}
		e, err = casbin.NewEnforcer(m, adp)
	}
	if err != nil {
		return nil, fmt.Errorf("casbin enforcer: %w", err)
	}
	if db != nil {
		if err := e.LoadPolicy(); err != nil {
			return nil, fmt.Errorf("casbin load policy: %w", err)
		}
	}
	return &CasbinService{E: e}, nil
}

func loadModel(path string) (model.Model, error) {
	if path != "" {
		return model.NewModelFromFile(path)
	}
	return model.NewModelFromString(routeModel)
}

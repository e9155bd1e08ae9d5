package services

import (
	"fmt"

	"github.com/casbin/casbin/v2"

	"github.com/festoofficial/festo/domain"
)

// CasbinEnforcerWrapper wraps the real Casbin enforcer to implement our interface
type CasbinEnforcerWrapper struct {
	enforcer *casbin.Enforcer
}

// NewCasbinEnforcerWrapper creates a wrapper for the real Casbin enforcer
func NewCasbinEnforcerWrapper(enforcer *casbin.Enforcer) domain.CasbinEnforcer {
	return &CasbinEnforcerWrapper{enforcer: enforcer}
}

func (w *CasbinEnforcerWrapper) AddPolicy(params ...interface{}) (bool, error) {
	return w.enforcer.AddPolicy(params...)
}

func (w *CasbinEnforcerWrapper) Enforce(rvals ...interface{}) (bool, error) {
	return w.enforcer.Enforce(rvals...)
}

func (w *CasbinEnforcerWrapper) GetPolicy() ([][]string, error) {
	return w.enforcer.GetPolicy()
}

// SavePolicy is a no-op for an in-memory enforcer
func (w *CasbinEnforcerWrapper) SavePolicy() error {
	if w.enforcer.GetAdapter() == nil {
		return nil
	}
	return w.enforcer.SavePolicy()
}

// PolicyServiceImpl implements domain.PolicyService using Casbin
type PolicyServiceImpl struct {
	enforcer domain.CasbinEnforcer
}

// NewPolicyService creates a new policy service
func NewPolicyService(enforcer *casbin.Enforcer) domain.PolicyService {
	return &PolicyServiceImpl{
		enforcer: NewCasbinEnforcerWrapper(enforcer),
	}
}

// NewPolicyServiceWithEnforcer creates a policy service over any CasbinEnforcer
func NewPolicyServiceWithEnforcer(enforcer domain.CasbinEnforcer) domain.PolicyService {
	return &PolicyServiceImpl{
		enforcer: enforcer,
	}
}

// AddPolicy implements domain.PolicyService
func (p *PolicyServiceImpl) AddPolicy(role, resource, action string) error {
	_, err := p.enforcer.AddPolicy(role, resource, action)
	if err != nil {
		return err
	}
	return p.enforcer.SavePolicy()
}

// CheckPermission implements domain.PolicyService
func (p *PolicyServiceImpl) CheckPermission(role, resource, action string) (bool, error) {
	return p.enforcer.Enforce(role, resource, action)
}

// GetPolicies implements domain.PolicyService
func (p *PolicyServiceImpl) GetPolicies() [][]string {
	policies, _ := p.enforcer.GetPolicy()
	return policies
}

// SeedDefaults installs policies only when the store holds none, so edits
// made to a persisted policy table survive restarts.
func (p *PolicyServiceImpl) SeedDefaults(policies [][]string) (int, error) {
	existing, err := p.enforcer.GetPolicy()
	if err != nil {
		return 0, fmt.Errorf("read policies: %w", err)
	}
	if len(existing) > 0 {
		return 0, nil
	}

	added := 0
	for _, rule := range policies {
		if len(rule) != 3 {
			return added, fmt.Errorf("policy %v: want subject, object, action", rule)
		}
		ok, err := p.enforcer.AddPolicy(rule[0], rule[1], rule[2])
		if err != nil {
			return added, fmt.Errorf("add policy %v: %w", rule, err)
		}
		if ok {
			added++
		}
	}
	if err := p.enforcer.SavePolicy(); err != nil {
		return added, fmt.Errorf("save policies: %w", err)
	}
	return added, nil
}

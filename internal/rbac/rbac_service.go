package rbac

import (
	"context"
	"sort"
	"sync"

	"go-payroll/internal/domain"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	"go.uber.org/zap"
)

type Service interface {
	LoadCompanyPolicy(ctx context.Context, companyID string) error
	Enforce(req domain.EnforceRequest) (bool, error)
	PermissionsForRole(role, companyID string) (domain.RolePermissionsResponse, error)
}

type service struct {
	repo     Repository
	enforcer *casbin.Enforcer
	mu       sync.Mutex
	loaded   map[string]bool
	logger   *zap.Logger
}

// NewEnforcer builds the role model with the baseline grants already loaded.
func NewEnforcer() (*casbin.Enforcer, error) {
	m, err := model.NewModelFromString(modelText)
	if err != nil {
		return nil, err
	}
	e, err := casbin.NewEnforcer(m)
	if err != nil {
		return nil, err
	}

	roles := make([]string, 0, len(defaultGrants))
	for role := range defaultGrants {
		roles = append(roles, role)
	}
	sort.Strings(roles)
	for _, role := range roles {
		for _, g := range defaultGrants[role] {
			for _, action := range g.Actions {
				if _, err := e.AddPolicy(role, anyCompany, g.Resource, action); err != nil {
					return nil, err
				}
			}
		}
	}
	return e, nil
}

// NewService takes a nil repo when only the baseline grants apply.
func NewService(repo Repository, enforcer *casbin.Enforcer, logger ...*zap.Logger) Service {
	l := zap.L().Named("rbac.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("rbac.service")
	}
	return &service{
		repo:     repo,
		enforcer: enforcer,
		loaded:   map[string]bool{},
		logger:   l,
	}
}

func (s *service) LoadCompanyPolicy(ctx context.Context, companyID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.loadCompanyPolicyUnlocked(ctx, companyID)
}

// loadCompanyPolicyUnlocked replaces the company's extra grants; baseline grants stay.
func (s *service) loadCompanyPolicyUnlocked(ctx context.Context, companyID string) error {
	if s.repo == nil {
		s.loaded[companyID] = true
		return nil
	}

	grants, err := s.repo.ListGrants(ctx, companyID)
	if err != nil {
		return err
	}
	if _, err := s.enforcer.RemoveFilteredPolicy(1, companyID); err != nil {
		return err
	}
	for _, g := range grants {
		if _, err := s.enforcer.AddPolicy(g.Role, companyID, g.Resource, g.Action); err != nil {
			return err
		}
	}
	s.loaded[companyID] = true
	s.logger.Debug("rbac company policy loaded",
		zap.String("company_id", companyID),
		zap.Int("grants", len(grants)),
	)
	return nil
}

func (s *service) Enforce(req domain.EnforceRequest) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.loaded[req.CompanyID] {
		if err := s.loadCompanyPolicyUnlocked(context.Background(), req.CompanyID); err != nil {
			return false, err
		}
	}

	allowed, err := s.enforcer.Enforce(req.Role, req.CompanyID, req.Resource, req.Action)
	if err != nil {
		s.logger.Error("rbac enforce failed",
			zap.String("role", req.Role),
			zap.String("company_id", req.CompanyID),
			zap.Error(err),
		)
		return false, err
	}

	s.logger.Debug("rbac enforce result",
		zap.String("role", req.Role),
		zap.String("company_id", req.CompanyID),
		zap.String("resource", req.Resource),
		zap.String("action", req.Action),
		zap.Bool("allowed", allowed),
	)
	return allowed, nil
}

func (s *service) PermissionsForRole(role, companyID string) (domain.RolePermissionsResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.loaded[companyID] {
		if err := s.loadCompanyPolicyUnlocked(context.Background(), companyID); err != nil {
			return domain.RolePermissionsResponse{}, err
		}
	}

	policies, err := s.enforcer.GetFilteredPolicy(0, role)
	if err != nil {
		return domain.RolePermissionsResponse{}, err
	}
	resp := domain.RolePermissionsResponse{Role: role, Permissions: []domain.PermissionResponse{}}
	for _, p := range policies {
		if p[1] != anyCompany && p[1] != companyID {
			continue
		}
		resp.Permissions = append(resp.Permissions, domain.PermissionResponse{Resource: p[2], Action: p[3]})
	}
	sort.Slice(resp.Permissions, func(i, j int) bool {
		a, b := resp.Permissions[i], resp.Permissions[j]
		if a.Resource != b.Resource {
			return a.Resource < b.Resource
		}
		return a.Action < b.Action
	})
	return resp, nil
}

package rbac

import (
	"context"

	"gorm.io/gorm"
)

// RoleGrant is a company specific permission added on top of the baseline grants.
type RoleGrant struct {
	CompanyID string `gorm:"type:uuid;not null;primaryKey"`
	Role      string `gorm:"type:varchar(40);not null;primaryKey"`
	Resource  string `gorm:"type:varchar(60);not null;primaryKey"`
	Action    string `gorm:"type:varchar(40);not null;primaryKey"`
}

func (RoleGrant) TableName() string {
	return "payroll_role_grants"
}

type Repository interface {
	ListGrants(ctx context.Context, companyID string) ([]RoleGrant, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) ListGrants(ctx context.Context, companyID string) ([]RoleGrant, error) {
	var result []RoleGrant
	err := r.db.WithContext(ctx).
		Where("company_id = ?", companyID).
		Order("role, resource, action").
		Find(&result).Error
	return result, err
}

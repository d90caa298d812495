// Package scope derives query predicates from the caller's tenant identity
// and visibility grant. Every read and write against tenant-owned rows goes
// through a Predicate; tenant filtering and visibility filtering are two
// independent terms and both are always applied.
package scope

import (
	"time"

	"github.com/nervio/neuromap/internal/model"
	"gorm.io/gorm"
)

// Grant is the caller's visibility authorization. Personal access is
// granted separately from the session token and carries its own expiry.
type Grant struct {
	UserID    string
	Personal  bool
	ExpiresAt time.Time
}

// CompanyOnly is the default grant for a user without verified personal
// access.
func CompanyOnly(userID string) Grant {
	return Grant{UserID: userID}
}

// CompanyAndPersonal grants access to personal rows until expiry.
func CompanyAndPersonal(userID string, expiresAt time.Time) Grant {
	return Grant{UserID: userID, Personal: true, ExpiresAt: expiresAt}
}

// Expired reports whether a personal grant has lapsed.
func (g Grant) Expired(now time.Time) bool {
	return g.Personal && !g.ExpiresAt.IsZero() && now.After(g.ExpiresAt)
}

// AllowsPersonal reports whether the grant currently admits personal rows.
// The request layer must already honor expiry; this re-check fails closed.
func (g Grant) AllowsPersonal(now time.Time) bool {
	return g.Personal && !g.Expired(now)
}

// Predicate is the resolved access constraint for one request.
type Predicate struct {
	TenantID        string
	IncludePersonal bool
	UserID          string
}

// Access builds the predicate for a tenant and grant.
func Access(tenantID string, grant Grant) Predicate {
	return Predicate{
		TenantID:        tenantID,
		IncludePersonal: grant.AllowsPersonal(time.Now()),
		UserID:          grant.UserID,
	}
}

// Neurons scopes a query to neurons the caller may see. Personal neurons
// are tenant-wide: the personal grant admits them regardless of owner.
func (p Predicate) Neurons() func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		db = db.Where("neurons.tenant_id = ?", p.TenantID)
		if p.IncludePersonal {
			return db.Where("neurons.visibility IN (?)", []string{model.VisibilityCompany, model.VisibilityPersonal})
		}
		return db.Where("neurons.visibility = ?", model.VisibilityCompany)
	}
}

// Synapses scopes a query to synapses the caller may see, using the level
// column.
func (p Predicate) Synapses() func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		db = db.Where("synapses.tenant_id = ?", p.TenantID)
		if p.IncludePersonal {
			return db.Where("synapses.level IN (?)", []string{model.VisibilityCompany, model.VisibilityPersonal})
		}
		return db.Where("synapses.level = ?", model.VisibilityCompany)
	}
}

// Notes scopes a query to notes the caller may see. Personal notes are the
// one user-scoped row type: they are visible only to their author.
func (p Predicate) Notes() func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		db = db.Where("notes.tenant_id = ?", p.TenantID)
		if p.IncludePersonal {
			return db.Where("notes.visibility = ? OR (notes.visibility = ? AND notes.user_id = ?)",
				model.VisibilityCompany, model.VisibilityPersonal, p.UserID)
		}
		return db.Where("notes.visibility = ?", model.VisibilityCompany)
	}
}

// Tenant scopes a query by tenant alone, for rollups that are deliberately
// not visibility-filtered.
func (p Predicate) Tenant(table string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where(table+".tenant_id = ?", p.TenantID)
	}
}

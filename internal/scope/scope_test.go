package scope

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGrantExpiry(t *testing.T) {
	now := time.Now()

	company := CompanyOnly("u1")
	assert.False(t, company.AllowsPersonal(now))
	assert.False(t, company.Expired(now))

	live := CompanyAndPersonal("u1", now.Add(time.Hour))
	assert.True(t, live.AllowsPersonal(now))

	lapsed := CompanyAndPersonal("u1", now.Add(-time.Minute))
	assert.True(t, lapsed.Expired(now))
	assert.False(t, lapsed.AllowsPersonal(now))
}

func TestAccess(t *testing.T) {
	pred := Access("tenant-1", CompanyOnly("u1"))
	assert.Equal(t, "tenant-1", pred.TenantID)
	assert.False(t, pred.IncludePersonal)

	pred = Access("tenant-1", CompanyAndPersonal("u1", time.Now().Add(time.Hour)))
	assert.True(t, pred.IncludePersonal)
	assert.Equal(t, "u1", pred.UserID)

	// an expired grant quietly downgrades to company-only
	pred = Access("tenant-1", CompanyAndPersonal("u1", time.Now().Add(-time.Minute)))
	assert.False(t, pred.IncludePersonal)
}

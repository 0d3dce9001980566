package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/noah-isme/facility-ops-api/internal/dto"
	"github.com/noah-isme/facility-ops-api/internal/models"
)

func setupServiceDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(models.All()...))
	return db
}

func seedTenant(t *testing.T, db *gorm.DB, slug string) models.Tenant {
	t.Helper()
	tenant := models.Tenant{Name: slug, Slug: slug, Status: models.TenantStatusActive}
	require.NoError(t, db.Create(&tenant).Error)
	return tenant
}

func seedUser(t *testing.T, db *gorm.DB, tenantID, role, email string, supervisorID *string) models.User {
	t.Helper()
	user := models.User{
		TenantID:     tenantID,
		Name:         email,
		Email:        email,
		PasswordHash: "not-a-hash",
		Role:         role,
		Status:       models.UserStatusActive,
		SupervisorID: supervisorID,
	}
	require.NoError(t, db.Create(&user).Error)
	return user
}

func actorFor(user models.User) Actor {
	return Actor{ID: user.ID, Role: user.Role, TenantID: user.TenantID}
}

// testClock is a mutable clock for services with an injectable now.
type testClock struct {
	current time.Time
}

func (c *testClock) now() time.Time {
	return c.current
}

func (c *testClock) advance(d time.Duration) {
	c.current = c.current.Add(d)
}

// recordingActivity captures audit entries in memory.
type recordingActivity struct {
	entries []ActivityEntry
}

func (r *recordingActivity) Record(_ context.Context, entry ActivityEntry) (dto.ActivityResponse, error) {
	r.entries = append(r.entries, entry)
	return dto.ActivityResponse{}, nil
}

func (r *recordingActivity) actions() []string {
	actions := make([]string, 0, len(r.entries))
	for _, entry := range r.entries {
		actions = append(actions, entry.Action)
	}
	return actions
}

func newTestValidator() *validator.Validate {
	return validator.New()
}

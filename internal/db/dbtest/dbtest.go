// Package dbtest provides an in-memory database and fixtures for tests.
package dbtest

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Windi-Fikriyansyah/talentlink_be/internal/db"
	"github.com/Windi-Fikriyansyah/talentlink_be/internal/models"
)

// New returns a migrated in-memory SQLite database private to the test.
// SQLite ignores FOR UPDATE; the single connection serializes transactions.
func New(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=on", uuid.NewString())
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         db.NewGormLogger(zap.NewNop(), logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.Migrate(gdb))
	return gdb
}

func CreateUser(t *testing.T, gdb *gorm.DB, name string, role models.Role) models.User {
	t.Helper()
	u := models.User{
		Name:     name,
		Email:    name + "@example.com",
		Password: "x",
		Role:     role,
		IsActive: true,
	}
	require.NoError(t, gdb.Create(&u).Error)
	return u
}

func Actor(u models.User) models.Actor {
	return models.Actor{ID: u.ID, Role: u.Role}
}

func CreateProject(t *testing.T, gdb *gorm.DB, client models.User, budget int64) models.Project {
	t.Helper()
	p := models.Project{
		ClientID:    client.ID,
		Title:       "Landing page",
		Description: "Build a landing page",
		Budget:      decimal.NewFromInt(budget),
		Duration:    "2 weeks",
		Status:      models.ProjectOpen,
	}
	require.NoError(t, gdb.Create(&p).Error)
	return p
}

func CreateProposal(t *testing.T, gdb *gorm.DB, project models.Project, freelancer models.User, rate int64) models.Proposal {
	t.Helper()
	p := models.Proposal{
		ProjectID:    project.ID,
		FreelancerID: freelancer.ID,
		CoverLetter:  "I can do this",
		ProposedRate: decimal.NewFromInt(rate),
		Status:       models.ProposalPending,
	}
	require.NoError(t, gdb.Create(&p).Error)
	return p
}

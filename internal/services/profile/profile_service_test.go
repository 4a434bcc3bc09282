package profile

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Windi-Fikriyansyah/talentlink_be/internal/apperr"
	"github.com/Windi-Fikriyansyah/talentlink_be/internal/db/dbtest"
	"github.com/Windi-Fikriyansyah/talentlink_be/internal/models"
)

func TestUpsertMineCreatesThenUpdates(t *testing.T) {
	gdb := dbtest.New(t)
	svc := NewProfileService(gdb, zap.NewNop())
	ctx := context.Background()
	fl := dbtest.CreateUser(t, gdb, "fl", models.RoleFreelancer)

	_, err := svc.GetForUser(ctx, fl.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	p, err := svc.UpsertMine(ctx, dbtest.Actor(fl), ProfileInput{
		Bio:          " Backend developer ",
		Skills:       []string{"Go", " go", "Postgres"},
		HourlyRate:   decimal.RequireFromString("45.50"),
		PortfolioURL: "https://example.com/fl",
		Availability: "part time",
	})
	require.NoError(t, err)
	assert.Equal(t, "Backend developer", p.Bio)
	assert.JSONEq(t, `["go","postgres"]`, string(p.Skills))
	assert.True(t, p.HourlyRate.Equal(decimal.RequireFromString("45.5")))
	require.NotNil(t, p.User)
	assert.Equal(t, "fl", p.User.Name)
	assert.Empty(t, p.User.Email)

	updated, err := svc.UpsertMine(ctx, dbtest.Actor(fl), ProfileInput{Bio: "Go only", HourlyRate: decimal.NewFromInt(60)})
	require.NoError(t, err)
	assert.Equal(t, p.ID, updated.ID)
	assert.Equal(t, "Go only", updated.Bio)
	assert.Empty(t, updated.PortfolioURL)

	var count int64
	require.NoError(t, gdb.Model(&models.Profile{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestUpsertMineOnlyTouchesCaller(t *testing.T) {
	gdb := dbtest.New(t)
	svc := NewProfileService(gdb, zap.NewNop())
	ctx := context.Background()
	client := dbtest.CreateUser(t, gdb, "client", models.RoleClient)
	fl := dbtest.CreateUser(t, gdb, "fl", models.RoleFreelancer)

	_, err := svc.UpsertMine(ctx, dbtest.Actor(fl), ProfileInput{Bio: "freelancer bio"})
	require.NoError(t, err)
	_, err = svc.UpsertMine(ctx, dbtest.Actor(client), ProfileInput{BusinessName: "Acme", ContactNo: "0812345678"})
	require.NoError(t, err)

	got, err := svc.GetForUser(ctx, fl.ID)
	require.NoError(t, err)
	assert.Equal(t, "freelancer bio", got.Bio)
	assert.Empty(t, got.BusinessName)

	got, err = svc.GetForUser(ctx, client.ID)
	require.NoError(t, err)
	assert.Equal(t, "Acme", got.BusinessName)
}

func TestUpsertMineRejections(t *testing.T) {
	gdb := dbtest.New(t)
	svc := NewProfileService(gdb, zap.NewNop())
	ctx := context.Background()
	fl := dbtest.Actor(dbtest.CreateUser(t, gdb, "fl", models.RoleFreelancer))

	cases := map[string]ProfileInput{
		"negative rate": {HourlyRate: decimal.NewFromInt(-1)},
		"bad url":       {PortfolioURL: "not a url"},
		"ftp url":       {PortfolioURL: "ftp://example.com"},
		"long contact":  {ContactNo: "0123456789012345678901234567890"},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.UpsertMine(ctx, fl, in)
			assert.ErrorIs(t, err, apperr.ErrValidation)
		})
	}

	_, err := svc.UpsertMine(ctx, models.Actor{ID: uuid.New(), Role: models.RoleClient}, ProfileInput{})
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

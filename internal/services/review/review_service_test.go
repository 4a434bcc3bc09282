package review

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Windi-Fikriyansyah/talentlink_be/internal/apperr"
	"github.com/Windi-Fikriyansyah/talentlink_be/internal/db/dbtest"
	"github.com/Windi-Fikriyansyah/talentlink_be/internal/models"
	"github.com/Windi-Fikriyansyah/talentlink_be/internal/services/notification"
	"github.com/Windi-Fikriyansyah/talentlink_be/internal/services/proposal"
)

func acceptedContract(t *testing.T, gdb *gorm.DB, fanout *notification.Fanout) (*models.Contract, models.User, models.User) {
	t.Helper()
	client := dbtest.CreateUser(t, gdb, "client", models.RoleClient)
	fl := dbtest.CreateUser(t, gdb, "fl", models.RoleFreelancer)
	project := dbtest.CreateProject(t, gdb, client, 500)
	p := dbtest.CreateProposal(t, gdb, project, fl, 450)

	c, err := proposal.NewProposalService(gdb, fanout, zap.NewNop()).Accept(context.Background(), p.ID, dbtest.Actor(client))
	require.NoError(t, err)
	return c, client, fl
}

func TestCreateReviewFlow(t *testing.T) {
	gdb := dbtest.New(t)
	notes := notification.NewNotificationService(gdb)
	fanout := notification.NewFanout(notes, nil, zap.NewNop())
	svc := NewReviewService(gdb, fanout, zap.NewNop())
	ctx := context.Background()

	c, client, fl := acceptedContract(t, gdb, fanout)

	_, err := svc.Create(ctx, dbtest.Actor(client), c.ID, CreateInput{Rating: 5})
	assert.ErrorIs(t, err, apperr.ErrInvalidState)

	require.NoError(t, gdb.Model(c).Update("status", models.ContractCompleted).Error)

	_, err = svc.Create(ctx, dbtest.Actor(client), c.ID, CreateInput{Rating: 6})
	assert.ErrorIs(t, err, apperr.ErrValidation)

	stranger := dbtest.CreateUser(t, gdb, "stranger", models.RoleClient)
	_, err = svc.Create(ctx, dbtest.Actor(stranger), c.ID, CreateInput{Rating: 4})
	assert.ErrorIs(t, err, apperr.ErrForbidden)

	_, err = svc.Create(ctx, dbtest.Actor(client), uuid.New(), CreateInput{Rating: 4})
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	r, err := svc.Create(ctx, dbtest.Actor(client), c.ID, CreateInput{Rating: 5, Comment: " great work "})
	require.NoError(t, err)
	assert.Equal(t, fl.ID, r.RevieweeID)
	assert.Equal(t, "great work", r.Comment)

	_, err = svc.Create(ctx, dbtest.Actor(client), c.ID, CreateInput{Rating: 3})
	assert.ErrorIs(t, err, apperr.ErrDuplicateReview)

	_, err = svc.Create(ctx, dbtest.Actor(fl), c.ID, CreateInput{Rating: 4})
	require.NoError(t, err)

	list, err := notes.List(ctx, dbtest.Actor(fl), false, 0)
	require.NoError(t, err)
	kinds := make([]models.NotificationKind, 0, len(list))
	for _, n := range list {
		kinds = append(kinds, n.Kind)
	}
	assert.Contains(t, kinds, models.NotifReviewReceived)
}

func TestListForUserAverages(t *testing.T) {
	gdb := dbtest.New(t)
	svc := NewReviewService(gdb, notification.NewFanout(notification.NewNotificationService(gdb), nil, zap.NewNop()), zap.NewNop())
	ctx := context.Background()

	empty, err := svc.ListForUser(ctx, uuid.New())
	require.NoError(t, err)
	assert.Zero(t, empty.Count)
	assert.Zero(t, empty.Average)

	c, client, fl := acceptedContract(t, gdb, svc.Fanout)
	require.NoError(t, gdb.Exec("PRAGMA foreign_keys = OFF").Error)
	require.NoError(t, gdb.Create(&[]models.Review{
		{ContractID: c.ID, ReviewerID: client.ID, RevieweeID: fl.ID, Rating: 5},
		{ContractID: uuid.New(), ReviewerID: uuid.New(), RevieweeID: fl.ID, Rating: 2},
	}).Error)
	require.NoError(t, gdb.Exec("PRAGMA foreign_keys = ON").Error)

	sum, err := svc.ListForUser(ctx, fl.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), sum.Count)
	assert.InDelta(t, 3.5, sum.Average, 0.001)
}

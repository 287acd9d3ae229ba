package repo_test

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nextai/nextai/internal/model"
	appErr "github.com/nextai/nextai/internal/pkg/errors"
	"github.com/nextai/nextai/internal/pkg/timeutil"
	"github.com/nextai/nextai/internal/repo"
	"github.com/nextai/nextai/test/testutil"
)

func newTestID() string {
	buf := make([]byte, 16)
	_, _ = rand.Read(buf)
	return hex.EncodeToString(buf)
}

func seedUser(t *testing.T, users *repo.UserRepo, email string, credits int) *model.User {
	t.Helper()
	now := timeutil.NowUnix()
	user := &model.User{
		ID:               newTestID(),
		Email:            email,
		Username:         email[:4] + newTestID()[:6],
		PasswordHash:     "x",
		IsVerified:       true,
		RemainingCredits: credits,
		PlanID:           "free",
		Ctime:            now,
		Mtime:            now,
	}
	require.NoError(t, users.Create(context.Background(), user))
	return user
}

func TestDecrementCreditsGuard(t *testing.T) {
	db, cleanup := testutil.OpenTestDB(t)
	defer cleanup()
	ctx := context.Background()

	users := repo.NewUserRepo(db)
	user := seedUser(t, users, "credits@example.com", 2)

	require.NoError(t, users.DecrementCredits(ctx, user.ID, timeutil.NowUnix()))
	require.NoError(t, users.DecrementCredits(ctx, user.ID, timeutil.NowUnix()))

	err := users.DecrementCredits(ctx, user.ID, timeutil.NowUnix())
	require.ErrorIs(t, err, appErr.ErrNeedsUpgrade)

	got, err := users.GetByID(ctx, user.ID)
	require.NoError(t, err)
	require.Equal(t, 0, got.RemainingCredits)
}

func TestRefillCredits(t *testing.T) {
	db, cleanup := testutil.OpenTestDB(t)
	defer cleanup()
	ctx := context.Background()

	users := repo.NewUserRepo(db)
	drained := seedUser(t, users, "drained@example.com", 0)

	refilled, err := users.RefillCredits(ctx, timeutil.NowUnix())
	require.NoError(t, err)
	require.Equal(t, int64(1), refilled)

	got, err := users.GetByID(ctx, drained.ID)
	require.NoError(t, err)
	// the free plan seeds 50 trial credits
	require.Equal(t, 50, got.RemainingCredits)
}

func TestCreateDuplicateEmailConflicts(t *testing.T) {
	db, cleanup := testutil.OpenTestDB(t)
	defer cleanup()

	users := repo.NewUserRepo(db)
	seedUser(t, users, "dup@example.com", 10)

	now := timeutil.NowUnix()
	err := users.Create(context.Background(), &model.User{
		ID:           newTestID(),
		Email:        "dup@example.com",
		Username:     "someoneelse",
		PasswordHash: "x",
		PlanID:       "free",
		Ctime:        now,
		Mtime:        now,
	})
	require.ErrorIs(t, err, appErr.ErrConflict)
}

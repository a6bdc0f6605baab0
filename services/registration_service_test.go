package services

import (
	"context"
	"testing"
	"time"

	"github.com/Dosada05/ff-arena/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type registrationTestEnv struct {
	service     RegistrationService
	users       *fakeUserRepo
	tournaments *fakeTournamentRepo
	regs        *fakeRegistrationRepo
	wallet      *fakeWalletRepo
	notifier    *fakeNotifier
}

func newRegistrationTestEnv(t *testing.T, tournament *models.Tournament, users ...*models.User) *registrationTestEnv {
	t.Helper()
	env := &registrationTestEnv{
		users:       newFakeUserRepo(users...),
		tournaments: newFakeTournamentRepo(tournament),
		regs:        newFakeRegistrationRepo(),
		wallet:      newFakeWalletRepo(),
		notifier:    newFakeNotifier(),
	}
	env.service = NewRegistrationService(
		&fakeTxManager{}, env.regs, env.tournaments, env.users, env.wallet, env.notifier,
	)
	return env
}

func upcomingTournament(entryFee, maxPlayers int) *models.Tournament {
	return &models.Tournament{
		ID:         1,
		Title:      "Friday Night Cup",
		Mode:       models.ModeSolo,
		EntryFee:   entryFee,
		MaxPlayers: maxPlayers,
		StartTime:  time.Now().Add(2 * time.Hour),
		Status:     models.StatusUpcoming,
	}
}

func TestJoin_RequiresGameUID(t *testing.T) {
	env := newRegistrationTestEnv(t, upcomingTournament(50, 10), &models.User{ID: 1, WalletBalance: 100})

	_, err := env.service.Join(context.Background(), 1, 1, "")
	assert.ErrorIs(t, err, ErrGameUIDRequired)
}

func TestJoin_DebitsEntryFeeAndTakesSlot(t *testing.T) {
	env := newRegistrationTestEnv(t, upcomingTournament(50, 10), &models.User{ID: 1, WalletBalance: 75})

	reg, err := env.service.Join(context.Background(), 1, 1, "FF12345")
	require.NoError(t, err)
	assert.Equal(t, "FF12345", reg.GameUID)

	user, err := env.users.GetByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 25, user.WalletBalance)

	tournament, err := env.tournaments.GetByID(context.Background(), nil, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, tournament.CurrentPlayers)

	fees := env.wallet.byType(models.TransactionEntryFee)
	require.Len(t, fees, 1)
	assert.Equal(t, -50, fees[0].Amount)
}

func TestJoin_InsufficientBalance(t *testing.T) {
	env := newRegistrationTestEnv(t, upcomingTournament(75, 10), &models.User{ID: 1, WalletBalance: 50})

	_, err := env.service.Join(context.Background(), 1, 1, "FF12345")
	assert.ErrorIs(t, err, ErrInsufficientBalance)
}

func TestJoin_TournamentFull(t *testing.T) {
	tournament := upcomingTournament(0, 1)
	env := newRegistrationTestEnv(t, tournament,
		&models.User{ID: 1, WalletBalance: 0},
		&models.User{ID: 2, WalletBalance: 0},
	)

	_, err := env.service.Join(context.Background(), 1, 1, "FF1")
	require.NoError(t, err)

	_, err = env.service.Join(context.Background(), 2, 1, "FF2")
	assert.ErrorIs(t, err, ErrTournamentFull)
}

func TestJoin_ClosedForRegistration(t *testing.T) {
	tournament := upcomingTournament(0, 10)
	tournament.Status = models.StatusLive
	env := newRegistrationTestEnv(t, tournament, &models.User{ID: 1})

	_, err := env.service.Join(context.Background(), 1, 1, "FF1")
	assert.ErrorIs(t, err, ErrRegistrationClosed)
}

func TestJoin_Duplicate(t *testing.T) {
	env := newRegistrationTestEnv(t, upcomingTournament(0, 10), &models.User{ID: 1})

	_, err := env.service.Join(context.Background(), 1, 1, "FF1")
	require.NoError(t, err)

	_, err = env.service.Join(context.Background(), 1, 1, "FF1")
	assert.ErrorIs(t, err, ErrAlreadyRegistered)
}

func TestLeave_RefundsEntryFeeAndFreesSlot(t *testing.T) {
	env := newRegistrationTestEnv(t, upcomingTournament(50, 10), &models.User{ID: 1, WalletBalance: 50})

	_, err := env.service.Join(context.Background(), 1, 1, "FF1")
	require.NoError(t, err)

	err = env.service.Leave(context.Background(), 1, 1)
	require.NoError(t, err)

	user, err := env.users.GetByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 50, user.WalletBalance)

	tournament, err := env.tournaments.GetByID(context.Background(), nil, 1)
	require.NoError(t, err)
	assert.Equal(t, 0, tournament.CurrentPlayers)

	refunds := env.wallet.byType(models.TransactionRefund)
	require.Len(t, refunds, 1)
	assert.Equal(t, 50, refunds[0].Amount)
}

func TestLeave_OnlyWhileUpcoming(t *testing.T) {
	env := newRegistrationTestEnv(t, upcomingTournament(0, 10), &models.User{ID: 1})

	_, err := env.service.Join(context.Background(), 1, 1, "FF1")
	require.NoError(t, err)

	require.NoError(t, env.tournaments.UpdateStatus(context.Background(), nil, 1, models.StatusLive))

	err = env.service.Leave(context.Background(), 1, 1)
	assert.ErrorIs(t, err, ErrTournamentNotUpcoming)
}

func TestLeave_NotRegistered(t *testing.T) {
	env := newRegistrationTestEnv(t, upcomingTournament(0, 10), &models.User{ID: 1})

	err := env.service.Leave(context.Background(), 1, 1)
	assert.ErrorIs(t, err, ErrRegistrationNotFound)
}

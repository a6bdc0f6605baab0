package services

import (
	"context"
	"testing"

	"github.com/Dosada05/ff-arena/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type withdrawalTestEnv struct {
	service     WithdrawalService
	users       *fakeUserRepo
	withdrawals *fakeWithdrawalRepo
	wallet      *fakeWalletRepo
	notifier    *fakeNotifier
	email       *fakeEmailSender
}

func newWithdrawalTestEnv(t *testing.T, users ...*models.User) *withdrawalTestEnv {
	t.Helper()
	env := &withdrawalTestEnv{
		users:       newFakeUserRepo(users...),
		withdrawals: newFakeWithdrawalRepo(),
		wallet:      newFakeWalletRepo(),
		notifier:    newFakeNotifier(),
		email:       &fakeEmailSender{},
	}
	env.service = NewWithdrawalService(
		&fakeTxManager{}, env.withdrawals, env.users, env.wallet,
		env.notifier, env.email, testLogger(),
	)
	return env
}

func upiUser(id int, balance int) *models.User {
	upi := "player@upi"
	return &models.User{ID: id, Email: "p@example.com", WalletBalance: balance, UPIID: &upi}
}

func TestWithdrawalCreate_BelowMinimum(t *testing.T) {
	env := newWithdrawalTestEnv(t, upiUser(1, 500))

	_, err := env.service.CreateRequest(context.Background(), 1, MinWithdrawalAmount-1)
	assert.ErrorIs(t, err, ErrWithdrawalTooSmall)
}

func TestWithdrawalCreate_RequiresUPIID(t *testing.T) {
	env := newWithdrawalTestEnv(t, &models.User{ID: 1, Email: "p@example.com", WalletBalance: 500})

	_, err := env.service.CreateRequest(context.Background(), 1, 200)
	assert.ErrorIs(t, err, ErrUPIIDRequired)
}

func TestWithdrawalCreate_DebitsImmediately(t *testing.T) {
	env := newWithdrawalTestEnv(t, upiUser(1, 500))

	req, err := env.service.CreateRequest(context.Background(), 1, 200)
	require.NoError(t, err)
	assert.Equal(t, models.RequestPending, req.Status)
	assert.Equal(t, "player@upi", req.UPIID)

	stored, err := env.users.GetByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 300, stored.WalletBalance, "средства резервируются при создании заявки")

	require.Len(t, env.wallet.transactions, 1)
	ledger := env.wallet.transactions[0]
	assert.Equal(t, models.TransactionWithdrawal, ledger.Type)
	assert.Equal(t, -200, ledger.Amount)

	assert.Len(t, env.notifier.adminEvents, 1)
}

func TestWithdrawalCreate_InsufficientBalance(t *testing.T) {
	env := newWithdrawalTestEnv(t, upiUser(1, 150))

	_, err := env.service.CreateRequest(context.Background(), 1, 200)
	assert.ErrorIs(t, err, ErrInsufficientBalance)

	stored, err := env.users.GetByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 150, stored.WalletBalance)
}

func TestWithdrawalApprove_NoAdditionalBalanceChange(t *testing.T) {
	env := newWithdrawalTestEnv(t, upiUser(1, 500))

	req, err := env.service.CreateRequest(context.Background(), 1, 200)
	require.NoError(t, err)

	approved, err := env.service.Approve(context.Background(), 7, req.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, models.RequestApproved, approved.Status)

	stored, err := env.users.GetByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 300, stored.WalletBalance, "баланс уже был списан при создании")
	assert.Len(t, env.wallet.transactions, 1)
}

func TestWithdrawalReject_RefundsEscrow(t *testing.T) {
	env := newWithdrawalTestEnv(t, upiUser(1, 500))

	req, err := env.service.CreateRequest(context.Background(), 1, 150)
	require.NoError(t, err)

	rejected, err := env.service.Reject(context.Background(), 7, req.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, models.RequestRejected, rejected.Status)

	stored, err := env.users.GetByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 500, stored.WalletBalance, "отклонение возвращает зарезервированные средства")

	refunds := env.wallet.byType(models.TransactionRefund)
	require.Len(t, refunds, 1)
	assert.Equal(t, 150, refunds[0].Amount)
}

func TestWithdrawalReject_SecondProcessFails(t *testing.T) {
	env := newWithdrawalTestEnv(t, upiUser(1, 500))

	req, err := env.service.CreateRequest(context.Background(), 1, 150)
	require.NoError(t, err)

	_, err = env.service.Reject(context.Background(), 7, req.ID, nil)
	require.NoError(t, err)

	_, err = env.service.Reject(context.Background(), 8, req.ID, nil)
	assert.ErrorIs(t, err, ErrRequestAlreadyHandled)

	stored, err := env.users.GetByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 500, stored.WalletBalance, "повторное отклонение не должно возвращать дважды")
}

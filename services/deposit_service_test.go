package services

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/Dosada05/ff-arena/models"
	"github.com/Dosada05/ff-arena/payment"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type depositTestEnv struct {
	service  DepositService
	users    *fakeUserRepo
	deposits *fakeDepositRepo
	wallet   *fakeWalletRepo
	gateway  *fakeGateway
	notifier *fakeNotifier
	email    *fakeEmailSender
}

func newDepositTestEnv(t *testing.T, users ...*models.User) *depositTestEnv {
	t.Helper()
	env := &depositTestEnv{
		users:    newFakeUserRepo(users...),
		deposits: newFakeDepositRepo(),
		wallet:   newFakeWalletRepo(),
		gateway:  &fakeGateway{},
		notifier: newFakeNotifier(),
		email:    &fakeEmailSender{},
	}
	env.service = NewDepositService(
		&fakeTxManager{}, env.deposits, env.users, env.wallet,
		env.gateway, env.notifier, env.email, testLogger(),
	)
	return env
}

func TestDepositCreateRequest_BelowMinimum(t *testing.T) {
	env := newDepositTestEnv(t, &models.User{ID: 1, Email: "p@example.com"})

	_, err := env.service.CreateRequest(context.Background(), 1, CreateDepositInput{
		Amount:           MinDepositAmount - 1,
		UPITransactionID: "TXN123",
	})

	assert.ErrorIs(t, err, ErrDepositTooSmall)
}

func TestDepositCreateRequest_PendingWithoutBalanceChange(t *testing.T) {
	user := &models.User{ID: 1, Email: "p@example.com", WalletBalance: 0}
	env := newDepositTestEnv(t, user)

	req, err := env.service.CreateRequest(context.Background(), 1, CreateDepositInput{
		Amount:           MinDepositAmount,
		UPITransactionID: "TXN123",
	})
	require.NoError(t, err)

	assert.Equal(t, models.RequestPending, req.Status)

	stored, err := env.users.GetByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 0, stored.WalletBalance, "баланс меняется только при одобрении")
	assert.Empty(t, env.wallet.transactions)
	assert.Len(t, env.notifier.adminEvents, 1)
}

func TestDepositCreateRequest_DuplicateReference(t *testing.T) {
	env := newDepositTestEnv(t, &models.User{ID: 1, Email: "p@example.com"})

	input := CreateDepositInput{Amount: 50, UPITransactionID: "TXN123"}
	_, err := env.service.CreateRequest(context.Background(), 1, input)
	require.NoError(t, err)

	_, err = env.service.CreateRequest(context.Background(), 1, input)
	assert.ErrorIs(t, err, ErrDepositDuplicateRef)
}

func TestDepositApprove_CreditsBalanceAndWritesLedger(t *testing.T) {
	user := &models.User{ID: 1, Email: "p@example.com", WalletBalance: 0}
	env := newDepositTestEnv(t, user)

	req, err := env.service.CreateRequest(context.Background(), 1, CreateDepositInput{
		Amount:           200,
		UPITransactionID: "TXN200",
	})
	require.NoError(t, err)

	approved, err := env.service.Approve(context.Background(), 7, req.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, models.RequestApproved, approved.Status)

	stored, err := env.users.GetByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 200, stored.WalletBalance)

	require.Len(t, env.wallet.transactions, 1)
	ledger := env.wallet.transactions[0]
	assert.Equal(t, models.TransactionDeposit, ledger.Type)
	assert.Equal(t, 200, ledger.Amount)

	assert.Len(t, env.notifier.userEvents[1], 1)
	assert.Len(t, env.email.sent, 1)
}

func TestDepositApprove_SecondApproveFails(t *testing.T) {
	env := newDepositTestEnv(t, &models.User{ID: 1, Email: "p@example.com"})

	req, err := env.service.CreateRequest(context.Background(), 1, CreateDepositInput{
		Amount:           100,
		UPITransactionID: "TXN100",
	})
	require.NoError(t, err)

	_, err = env.service.Approve(context.Background(), 7, req.ID, nil)
	require.NoError(t, err)

	_, err = env.service.Approve(context.Background(), 8, req.ID, nil)
	assert.ErrorIs(t, err, ErrRequestAlreadyHandled)

	stored, err := env.users.GetByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 100, stored.WalletBalance, "повторное одобрение не должно зачислять ещё раз")
}

func TestDepositReject_NoBalanceChange(t *testing.T) {
	env := newDepositTestEnv(t, &models.User{ID: 1, Email: "p@example.com"})

	req, err := env.service.CreateRequest(context.Background(), 1, CreateDepositInput{
		Amount:           100,
		UPITransactionID: "TXN100",
	})
	require.NoError(t, err)

	rejected, err := env.service.Reject(context.Background(), 7, req.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, models.RequestRejected, rejected.Status)

	stored, err := env.users.GetByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 0, stored.WalletBalance)
	assert.Empty(t, env.wallet.transactions)
}

func TestInitiateGatewayOrder(t *testing.T) {
	env := newDepositTestEnv(t)

	first := env.service.InitiateGatewayOrder()
	second := env.service.InitiateGatewayOrder()

	assert.NotEmpty(t, first)
	assert.NotEqual(t, first, second)
}

func TestVerifyGatewayPayment_CreditsGatewayAmount(t *testing.T) {
	user := &models.User{ID: 1, Email: "p@example.com"}
	env := newDepositTestEnv(t, user)
	env.gateway.confirmed = &payment.ConfirmedPayment{
		OrderRef:  "ORDER-1",
		Amount:    150,
		BankTxnID: "BANK-1",
	}

	req, err := env.service.VerifyGatewayPayment(context.Background(), 1, "ORDER-1", 0)
	require.NoError(t, err)

	assert.Equal(t, models.RequestApproved, req.Status)
	assert.Equal(t, 150, req.Amount, "сумма берётся из ответа шлюза")

	stored, err := env.users.GetByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 150, stored.WalletBalance)

	require.Len(t, env.wallet.transactions, 1)
	assert.Equal(t, models.TransactionDeposit, env.wallet.transactions[0].Type)
}

func TestVerifyGatewayPayment_AmountMismatch(t *testing.T) {
	env := newDepositTestEnv(t, &models.User{ID: 1, Email: "p@example.com"})
	env.gateway.confirmed = &payment.ConfirmedPayment{OrderRef: "ORDER-1", Amount: 150, BankTxnID: "BANK-1"}

	_, err := env.service.VerifyGatewayPayment(context.Background(), 1, "ORDER-1", 500)
	assert.ErrorIs(t, err, ErrPaymentAmountMismatch)

	stored, err := env.users.GetByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 0, stored.WalletBalance)
}

func TestVerifyGatewayPayment_PendingTransaction(t *testing.T) {
	env := newDepositTestEnv(t, &models.User{ID: 1, Email: "p@example.com"})
	env.gateway.err = payment.ErrTransactionPending

	_, err := env.service.VerifyGatewayPayment(context.Background(), 1, "ORDER-1", 0)
	assert.ErrorIs(t, err, ErrPaymentNotConfirmed)

	stored, err := env.users.GetByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 0, stored.WalletBalance)
}

func TestVerifyGatewayPayment_DuplicateOrderRef(t *testing.T) {
	env := newDepositTestEnv(t, &models.User{ID: 1, Email: "p@example.com"})
	env.gateway.confirmed = &payment.ConfirmedPayment{OrderRef: "ORDER-1", Amount: 150, BankTxnID: "BANK-1"}

	_, err := env.service.VerifyGatewayPayment(context.Background(), 1, "ORDER-1", 0)
	require.NoError(t, err)

	_, err = env.service.VerifyGatewayPayment(context.Background(), 1, "ORDER-1", 0)
	assert.ErrorIs(t, err, ErrDepositDuplicateRef)

	stored, err := env.users.GetByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 150, stored.WalletBalance, "повторная верификация не зачисляет дважды")
}

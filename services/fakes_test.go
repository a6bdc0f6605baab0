package services

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/Dosada05/ff-arena/models"
	"github.com/Dosada05/ff-arena/payment"
	"github.com/Dosada05/ff-arena/realtime"
	"github.com/Dosada05/ff-arena/repositories"
	"github.com/Dosada05/ff-arena/storage"
)

// Общие in-memory фейки для тестов сервисного слоя.

type fakeTxManager struct {
	beginErr error
}

func (m *fakeTxManager) WithinTx(ctx context.Context, fn func(exec repositories.SQLExecutor) error) error {
	if m.beginErr != nil {
		return m.beginErr
	}
	return fn(nil)
}

type fakeUserRepo struct {
	mu     sync.Mutex
	users  map[int]*models.User
	nextID int
}

func newFakeUserRepo(users ...*models.User) *fakeUserRepo {
	r := &fakeUserRepo{users: make(map[int]*models.User), nextID: 1}
	for _, u := range users {
		if u.ID == 0 {
			u.ID = r.nextID
		}
		if u.ID >= r.nextID {
			r.nextID = u.ID + 1
		}
		r.users[u.ID] = u
	}
	return r
}

func (r *fakeUserRepo) Create(ctx context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.Email == user.Email {
			return repositories.ErrUserEmailConflict
		}
		if user.Nickname != nil && existing.Nickname != nil && *existing.Nickname == *user.Nickname {
			return repositories.ErrUserNicknameConflict
		}
	}
	user.ID = r.nextID
	r.nextID++
	user.CreatedAt = time.Now()
	copied := *user
	r.users[user.ID] = &copied
	return nil
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id int) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return nil, repositories.ErrUserNotFound
	}
	copied := *user
	return &copied, nil
}

func (r *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if user.Email == email {
			copied := *user
			return &copied, nil
		}
	}
	return nil, repositories.ErrUserNotFound
}

func (r *fakeUserRepo) Update(ctx context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.users[user.ID]
	if !ok {
		return repositories.ErrUserNotFound
	}
	*stored = *user
	return nil
}

func (r *fakeUserRepo) UpdateUPIID(ctx context.Context, userID int, upiID *string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[userID]
	if !ok {
		return repositories.ErrUserNotFound
	}
	user.UPIID = upiID
	return nil
}

func (r *fakeUserRepo) UpdateAvatarKey(ctx context.Context, userID int, avatarKey *string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[userID]
	if !ok {
		return repositories.ErrUserNotFound
	}
	user.AvatarKey = avatarKey
	return nil
}

func (r *fakeUserRepo) ConfirmEmail(ctx context.Context, userID int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[userID]
	if !ok {
		return repositories.ErrUserNotFound
	}
	user.EmailConfirmed = true
	return nil
}

func (r *fakeUserRepo) UpdatePasswordHash(ctx context.Context, userID int, passwordHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[userID]
	if !ok {
		return repositories.ErrUserNotFound
	}
	user.PasswordHash = passwordHash
	return nil
}

func (r *fakeUserRepo) List(ctx context.Context, filter repositories.ListUsersFilter) ([]models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	users := make([]models.User, 0, len(r.users))
	for _, user := range r.users {
		users = append(users, *user)
	}
	return users, nil
}

func (r *fakeUserRepo) CountAll(ctx context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.users), nil
}

func (r *fakeUserRepo) Leaderboard(ctx context.Context, limit int) ([]models.LeaderboardEntry, error) {
	return nil, nil
}

func (r *fakeUserRepo) CreditBalance(ctx context.Context, exec repositories.SQLExecutor, userID int, amount int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[userID]
	if !ok {
		return repositories.ErrUserNotFound
	}
	user.WalletBalance += amount
	return nil
}

func (r *fakeUserRepo) DebitBalanceIfSufficient(ctx context.Context, exec repositories.SQLExecutor, userID int, amount int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[userID]
	if !ok {
		return repositories.ErrUserNotFound
	}
	if user.WalletBalance < amount {
		return repositories.ErrInsufficientBalance
	}
	user.WalletBalance -= amount
	return nil
}

func (r *fakeUserRepo) AddWinnings(ctx context.Context, exec repositories.SQLExecutor, userID int, prize int, winInc int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[userID]
	if !ok {
		return repositories.ErrUserNotFound
	}
	user.WalletBalance += prize
	user.TotalEarnings += prize
	user.TotalWins += winInc
	return nil
}

type fakeRoleRepo struct {
	mu    sync.Mutex
	roles map[int][]models.UserRole
}

func newFakeRoleRepo() *fakeRoleRepo {
	return &fakeRoleRepo{roles: make(map[int][]models.UserRole)}
}

func (r *fakeRoleRepo) Add(ctx context.Context, userID int, role models.UserRole) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.roles[userID] {
		if existing == role {
			return repositories.ErrRoleAlreadyAssigned
		}
	}
	r.roles[userID] = append(r.roles[userID], role)
	return nil
}

func (r *fakeRoleRepo) Remove(ctx context.Context, userID int, role models.UserRole) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, existing := range r.roles[userID] {
		if existing == role {
			r.roles[userID] = append(r.roles[userID][:i], r.roles[userID][i+1:]...)
			return nil
		}
	}
	return repositories.ErrRoleNotAssigned
}

func (r *fakeRoleRepo) ListByUserID(ctx context.Context, userID int) ([]models.UserRole, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]models.UserRole(nil), r.roles[userID]...), nil
}

func (r *fakeRoleRepo) ListUserIDsByRole(ctx context.Context, role models.UserRole) ([]int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var ids []int
	for userID, roles := range r.roles {
		for _, existing := range roles {
			if existing == role {
				ids = append(ids, userID)
			}
		}
	}
	return ids, nil
}

type fakeWalletRepo struct {
	mu           sync.Mutex
	transactions []models.WalletTransaction
	nextID       int
}

func newFakeWalletRepo() *fakeWalletRepo {
	return &fakeWalletRepo{nextID: 1}
}

func (r *fakeWalletRepo) Create(ctx context.Context, exec repositories.SQLExecutor, txn *models.WalletTransaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	txn.ID = r.nextID
	r.nextID++
	txn.CreatedAt = time.Now()
	r.transactions = append(r.transactions, *txn)
	return nil
}

func (r *fakeWalletRepo) ListByUserID(ctx context.Context, userID int, filter repositories.ListTransactionsFilter) ([]models.WalletTransaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []models.WalletTransaction
	for _, txn := range r.transactions {
		if txn.UserID == userID {
			result = append(result, txn)
		}
	}
	return result, nil
}

func (r *fakeWalletRepo) SumByUserID(ctx context.Context, userID int) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	sum := 0
	for _, txn := range r.transactions {
		if txn.UserID == userID {
			sum += txn.Amount
		}
	}
	return sum, nil
}

func (r *fakeWalletRepo) SumByType(ctx context.Context, txnType models.TransactionType) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	sum := 0
	for _, txn := range r.transactions {
		if txn.Type == txnType {
			sum += txn.Amount
		}
	}
	return sum, nil
}

func (r *fakeWalletRepo) byType(txnType models.TransactionType) []models.WalletTransaction {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []models.WalletTransaction
	for _, txn := range r.transactions {
		if txn.Type == txnType {
			result = append(result, txn)
		}
	}
	return result
}

type fakeDepositRepo struct {
	mu       sync.Mutex
	requests map[int]*models.DepositRequest
	nextID   int
}

func newFakeDepositRepo() *fakeDepositRepo {
	return &fakeDepositRepo{requests: make(map[int]*models.DepositRequest), nextID: 1}
}

func (r *fakeDepositRepo) Create(ctx context.Context, exec repositories.SQLExecutor, req *models.DepositRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.requests {
		if existing.UPITransactionID == req.UPITransactionID {
			return repositories.ErrDepositReferenceConflict
		}
	}
	req.ID = r.nextID
	r.nextID++
	req.CreatedAt = time.Now()
	copied := *req
	r.requests[req.ID] = &copied
	return nil
}

func (r *fakeDepositRepo) GetByID(ctx context.Context, exec repositories.SQLExecutor, id int) (*models.DepositRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	req, ok := r.requests[id]
	if !ok {
		return nil, repositories.ErrDepositNotFound
	}
	copied := *req
	return &copied, nil
}

func (r *fakeDepositRepo) MarkProcessed(ctx context.Context, exec repositories.SQLExecutor, id int, status models.RequestStatus, processedBy int, notes *string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	req, ok := r.requests[id]
	if !ok {
		return repositories.ErrDepositNotFound
	}
	if req.Status != models.RequestPending {
		return repositories.ErrRequestAlreadyProcessed
	}
	now := time.Now()
	req.Status = status
	req.ProcessedBy = &processedBy
	req.ProcessedAt = &now
	req.Notes = notes
	return nil
}

func (r *fakeDepositRepo) ListByUserID(ctx context.Context, userID int, filter repositories.ListRequestsFilter) ([]models.DepositRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []models.DepositRequest
	for _, req := range r.requests {
		if req.UserID == userID {
			result = append(result, *req)
		}
	}
	return result, nil
}

func (r *fakeDepositRepo) List(ctx context.Context, filter repositories.ListRequestsFilter) ([]models.DepositRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []models.DepositRequest
	for _, req := range r.requests {
		result = append(result, *req)
	}
	return result, nil
}

func (r *fakeDepositRepo) CountByStatus(ctx context.Context, status models.RequestStatus) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	count := 0
	for _, req := range r.requests {
		if req.Status == status {
			count++
		}
	}
	return count, nil
}

type fakeWithdrawalRepo struct {
	mu       sync.Mutex
	requests map[int]*models.WithdrawalRequest
	nextID   int
}

func newFakeWithdrawalRepo() *fakeWithdrawalRepo {
	return &fakeWithdrawalRepo{requests: make(map[int]*models.WithdrawalRequest), nextID: 1}
}

func (r *fakeWithdrawalRepo) Create(ctx context.Context, exec repositories.SQLExecutor, req *models.WithdrawalRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	req.ID = r.nextID
	r.nextID++
	req.CreatedAt = time.Now()
	copied := *req
	r.requests[req.ID] = &copied
	return nil
}

func (r *fakeWithdrawalRepo) GetByID(ctx context.Context, exec repositories.SQLExecutor, id int) (*models.WithdrawalRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	req, ok := r.requests[id]
	if !ok {
		return nil, repositories.ErrWithdrawalNotFound
	}
	copied := *req
	return &copied, nil
}

func (r *fakeWithdrawalRepo) MarkProcessed(ctx context.Context, exec repositories.SQLExecutor, id int, status models.RequestStatus, processedBy int, notes *string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	req, ok := r.requests[id]
	if !ok {
		return repositories.ErrWithdrawalNotFound
	}
	if req.Status != models.RequestPending {
		return repositories.ErrRequestAlreadyProcessed
	}
	now := time.Now()
	req.Status = status
	req.ProcessedBy = &processedBy
	req.ProcessedAt = &now
	req.Notes = notes
	return nil
}

func (r *fakeWithdrawalRepo) ListByUserID(ctx context.Context, userID int, filter repositories.ListRequestsFilter) ([]models.WithdrawalRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []models.WithdrawalRequest
	for _, req := range r.requests {
		if req.UserID == userID {
			result = append(result, *req)
		}
	}
	return result, nil
}

func (r *fakeWithdrawalRepo) List(ctx context.Context, filter repositories.ListRequestsFilter) ([]models.WithdrawalRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []models.WithdrawalRequest
	for _, req := range r.requests {
		result = append(result, *req)
	}
	return result, nil
}

func (r *fakeWithdrawalRepo) CountByStatus(ctx context.Context, status models.RequestStatus) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	count := 0
	for _, req := range r.requests {
		if req.Status == status {
			count++
		}
	}
	return count, nil
}

type fakeTournamentRepo struct {
	mu          sync.Mutex
	tournaments map[int]*models.Tournament
	nextID      int
}

func newFakeTournamentRepo(tournaments ...*models.Tournament) *fakeTournamentRepo {
	r := &fakeTournamentRepo{tournaments: make(map[int]*models.Tournament), nextID: 1}
	for _, t := range tournaments {
		if t.ID == 0 {
			t.ID = r.nextID
		}
		if t.ID >= r.nextID {
			r.nextID = t.ID + 1
		}
		r.tournaments[t.ID] = t
	}
	return r
}

func (r *fakeTournamentRepo) Create(ctx context.Context, t *models.Tournament) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t.ID = r.nextID
	r.nextID++
	t.CreatedAt = time.Now()
	r.tournaments[t.ID] = t
	return nil
}

func (r *fakeTournamentRepo) GetByID(ctx context.Context, exec repositories.SQLExecutor, id int) (*models.Tournament, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tournaments[id]
	if !ok {
		return nil, repositories.ErrTournamentNotFound
	}
	copied := *t
	return &copied, nil
}

func (r *fakeTournamentRepo) List(ctx context.Context, filter repositories.ListTournamentsFilter) ([]models.Tournament, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []models.Tournament
	for _, t := range r.tournaments {
		result = append(result, *t)
	}
	return result, nil
}

func (r *fakeTournamentRepo) Update(ctx context.Context, t *models.Tournament) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.tournaments[t.ID]
	if !ok {
		return repositories.ErrTournamentNotFound
	}
	*stored = *t
	return nil
}

func (r *fakeTournamentRepo) UpdateStatus(ctx context.Context, exec repositories.SQLExecutor, id int, status models.TournamentStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tournaments[id]
	if !ok {
		return repositories.ErrTournamentNotFound
	}
	t.Status = status
	return nil
}

func (r *fakeTournamentRepo) SetWinner(ctx context.Context, exec repositories.SQLExecutor, id int, winnerUserID int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tournaments[id]
	if !ok {
		return repositories.ErrTournamentNotFound
	}
	t.WinnerUserID = &winnerUserID
	return nil
}

func (r *fakeTournamentRepo) UpdateRoomCredentials(ctx context.Context, id int, roomID, roomPassword *string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tournaments[id]
	if !ok {
		return repositories.ErrTournamentNotFound
	}
	t.RoomID = roomID
	t.RoomPassword = roomPassword
	return nil
}

func (r *fakeTournamentRepo) UpdateBannerKey(ctx context.Context, id int, bannerKey *string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tournaments[id]
	if !ok {
		return repositories.ErrTournamentNotFound
	}
	t.BannerKey = bannerKey
	return nil
}

func (r *fakeTournamentRepo) IncrementPlayersIfJoinable(ctx context.Context, exec repositories.SQLExecutor, id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tournaments[id]
	if !ok {
		return repositories.ErrTournamentNotFound
	}
	if t.Status != models.StatusUpcoming {
		return repositories.ErrTournamentNotJoinable
	}
	if t.CurrentPlayers >= t.MaxPlayers {
		return repositories.ErrTournamentFull
	}
	t.CurrentPlayers++
	return nil
}

func (r *fakeTournamentRepo) DecrementPlayers(ctx context.Context, exec repositories.SQLExecutor, id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tournaments[id]
	if !ok {
		return repositories.ErrTournamentNotFound
	}
	if t.CurrentPlayers > 0 {
		t.CurrentPlayers--
	}
	return nil
}

func (r *fakeTournamentRepo) ListDueForStart(ctx context.Context, exec repositories.SQLExecutor, currentTime time.Time) ([]*models.Tournament, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var due []*models.Tournament
	for _, t := range r.tournaments {
		if t.Status == models.StatusUpcoming && !t.StartTime.After(currentTime) {
			due = append(due, t)
		}
	}
	return due, nil
}

func (r *fakeTournamentRepo) CountAll(ctx context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.tournaments), nil
}

func (r *fakeTournamentRepo) CountByStatus(ctx context.Context, status models.TournamentStatus) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	count := 0
	for _, t := range r.tournaments {
		if t.Status == status {
			count++
		}
	}
	return count, nil
}

type fakeRegistrationRepo struct {
	mu            sync.Mutex
	registrations map[int]map[int]*models.TournamentRegistration // tournamentID -> userID
	nextID        int
}

func newFakeRegistrationRepo() *fakeRegistrationRepo {
	return &fakeRegistrationRepo{
		registrations: make(map[int]map[int]*models.TournamentRegistration),
		nextID:        1,
	}
}

func (r *fakeRegistrationRepo) Create(ctx context.Context, exec repositories.SQLExecutor, reg *models.TournamentRegistration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	byUser, ok := r.registrations[reg.TournamentID]
	if !ok {
		byUser = make(map[int]*models.TournamentRegistration)
		r.registrations[reg.TournamentID] = byUser
	}
	if _, exists := byUser[reg.UserID]; exists {
		return repositories.ErrAlreadyRegistered
	}
	reg.ID = r.nextID
	r.nextID++
	reg.CreatedAt = time.Now()
	copied := *reg
	byUser[reg.UserID] = &copied
	return nil
}

func (r *fakeRegistrationRepo) Delete(ctx context.Context, exec repositories.SQLExecutor, tournamentID, userID int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	byUser := r.registrations[tournamentID]
	if _, ok := byUser[userID]; !ok {
		return repositories.ErrRegistrationNotFound
	}
	delete(byUser, userID)
	return nil
}

func (r *fakeRegistrationRepo) GetByTournamentAndUser(ctx context.Context, tournamentID, userID int) (*models.TournamentRegistration, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	reg, ok := r.registrations[tournamentID][userID]
	if !ok {
		return nil, repositories.ErrRegistrationNotFound
	}
	copied := *reg
	return &copied, nil
}

func (r *fakeRegistrationRepo) ListByTournament(ctx context.Context, exec repositories.SQLExecutor, tournamentID int) ([]models.TournamentRegistration, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []models.TournamentRegistration
	for _, reg := range r.registrations[tournamentID] {
		result = append(result, *reg)
	}
	return result, nil
}

func (r *fakeRegistrationRepo) ListByUserID(ctx context.Context, userID int) ([]models.TournamentRegistration, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []models.TournamentRegistration
	for _, byUser := range r.registrations {
		if reg, ok := byUser[userID]; ok {
			result = append(result, *reg)
		}
	}
	return result, nil
}

func (r *fakeRegistrationRepo) UpdateKills(ctx context.Context, exec repositories.SQLExecutor, tournamentID, userID, kills int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	reg, ok := r.registrations[tournamentID][userID]
	if !ok {
		return repositories.ErrRegistrationNotFound
	}
	reg.Kills = kills
	return nil
}

type fakeNotifier struct {
	mu          sync.Mutex
	userEvents  map[int][]realtime.Event
	adminEvents []realtime.Event
}

func newFakeNotifier() *fakeNotifier {
	return &fakeNotifier{userEvents: make(map[int][]realtime.Event)}
}

func (n *fakeNotifier) NotifyUser(userID int, event realtime.Event) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.userEvents[userID] = append(n.userEvents[userID], event)
}

func (n *fakeNotifier) NotifyAdmins(event realtime.Event) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.adminEvents = append(n.adminEvents, event)
}

type sentEmail struct {
	To      string
	Subject string
}

type fakeEmailSender struct {
	mu   sync.Mutex
	sent []sentEmail
	err  error
}

func (s *fakeEmailSender) record(to, subject string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, sentEmail{To: to, Subject: subject})
	return nil
}

func (s *fakeEmailSender) SendOTPEmail(to, code string) error {
	return s.record(to, "otp")
}

func (s *fakeEmailSender) SendVerificationEmail(to, verifyURL string) error {
	return s.record(to, "verify")
}

func (s *fakeEmailSender) SendPasswordResetEmail(to, resetURL string) error {
	return s.record(to, "reset")
}

func (s *fakeEmailSender) SendDepositStatusEmail(to string, amount int, approved bool) error {
	return s.record(to, "deposit")
}

func (s *fakeEmailSender) SendWithdrawalStatusEmail(to string, amount int, approved bool) error {
	return s.record(to, "withdrawal")
}

type fakeTokenStore struct {
	mu     sync.Mutex
	values map[string]string
}

func newFakeTokenStore() *fakeTokenStore {
	return &fakeTokenStore{values: make(map[string]string)}
}

func (s *fakeTokenStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return nil
}

func (s *fakeTokenStore) GetAndDelete(ctx context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	value, ok := s.values[key]
	if !ok {
		return "", ErrTokenNotFound
	}
	delete(s.values, key)
	return value, nil
}

func (s *fakeTokenStore) Get(ctx context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	value, ok := s.values[key]
	if !ok {
		return "", ErrTokenNotFound
	}
	return value, nil
}

func (s *fakeTokenStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, key)
	return nil
}

type fakeGateway struct {
	confirmed *payment.ConfirmedPayment
	err       error
}

func (g *fakeGateway) CheckStatus(ctx context.Context, orderRef string) (*payment.ConfirmedPayment, error) {
	if g.err != nil {
		return nil, g.err
	}
	return g.confirmed, nil
}

type fakeUploader struct {
	mu       sync.Mutex
	uploaded []string
	deleted  []string
}

func (u *fakeUploader) Upload(ctx context.Context, key string, contentType string, reader io.Reader) (*storage.UploadResult, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.uploaded = append(u.uploaded, key)
	return &storage.UploadResult{Key: key, Location: "https://cdn.test/" + key}, nil
}

func (u *fakeUploader) Delete(ctx context.Context, key string) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.deleted = append(u.deleted, key)
	return nil
}

func (u *fakeUploader) GetPublicURL(key string) string {
	return fmt.Sprintf("https://cdn.test/%s", key)
}

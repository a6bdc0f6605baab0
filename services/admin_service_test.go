package services

import (
	"context"
	"testing"

	"github.com/Dosada05/ff-arena/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAdminTestEnv(t *testing.T, users ...*models.User) (AdminService, *fakeRoleRepo) {
	t.Helper()
	roleRepo := newFakeRoleRepo()
	service := NewAdminService(
		newFakeUserRepo(users...),
		roleRepo,
		newFakeTournamentRepo(),
		newFakeDepositRepo(),
		newFakeWithdrawalRepo(),
		newFakeWalletRepo(),
	)
	return service, roleRepo
}

func TestAddRole(t *testing.T) {
	service, roleRepo := newAdminTestEnv(t, &models.User{ID: 1})

	require.NoError(t, service.AddRole(context.Background(), 1, models.RoleModerator))

	roles, err := roleRepo.ListByUserID(context.Background(), 1)
	require.NoError(t, err)
	assert.Contains(t, roles, models.RoleModerator)

	err = service.AddRole(context.Background(), 1, models.RoleModerator)
	assert.ErrorIs(t, err, ErrRoleAlreadyAssigned)

	err = service.AddRole(context.Background(), 1, "superuser")
	assert.ErrorIs(t, err, ErrValidationFailed)
}

func TestRemoveRole_CannotRemoveOwnAdmin(t *testing.T) {
	service, roleRepo := newAdminTestEnv(t, &models.User{ID: 1}, &models.User{ID: 2})
	require.NoError(t, roleRepo.Add(context.Background(), 1, models.RoleAdmin))
	require.NoError(t, roleRepo.Add(context.Background(), 2, models.RoleAdmin))

	err := service.RemoveRole(context.Background(), 1, 1, models.RoleAdmin)
	assert.ErrorIs(t, err, ErrCannotRemoveOwnAdmin)

	// Снять admin с другого админа можно.
	require.NoError(t, service.RemoveRole(context.Background(), 1, 2, models.RoleAdmin))

	err = service.RemoveRole(context.Background(), 1, 2, models.RoleAdmin)
	assert.ErrorIs(t, err, ErrNotFound)
}

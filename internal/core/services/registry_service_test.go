package services_test

import (
	"context"
	"testing"

	"github.com/democratia-universalis/duengine/internal/apperrors"
	"github.com/democratia-universalis/duengine/internal/core/domain"
	"github.com/democratia-universalis/duengine/internal/core/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockPlayerStore is a mock type for the PlayerStore interface
type MockPlayerStore struct {
	mock.Mock
}

func (m *MockPlayerStore) SavePlayers(ctx context.Context, snap domain.PlayerSnapshot) error {
	args := m.Called(ctx, snap)
	return args.Error(0)
}

func (m *MockPlayerStore) LoadPlayers(ctx context.Context) (*domain.PlayerSnapshot, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PlayerSnapshot), args.Error(1)
}

func TestRegistryService_FindPlayer(t *testing.T) {
	registry := services.NewRegistryService(nil, testLogger())
	registry.NewPlayer("1001", "Alice")

	p, ok := registry.FindPlayer("1001")
	require.True(t, ok)
	assert.Equal(t, "Alice", p.Username)

	// Username lookup is case-insensitive.
	p, ok = registry.FindPlayer("aLiCe")
	require.True(t, ok)
	assert.Equal(t, "1001", p.PlayerID)

	_, ok = registry.FindPlayer("bob")
	assert.False(t, ok)
}

func TestRegistryService_NewPlayerKeepsExistingState(t *testing.T) {
	registry := services.NewRegistryService(nil, testLogger())
	p := registry.NewPlayer("1001", "alice")
	p.AddRole(domain.Role{Name: "Citizen", TermLength: domain.TermIndefinite})
	require.NoError(t, registry.SetSetting("1001", domain.SettingRemindMe, true))

	again := registry.NewPlayer("1001", "alice_renamed")
	assert.Same(t, p, again)
	assert.Equal(t, "alice_renamed", again.Username)
	assert.True(t, again.HasRole("Citizen"))
	assert.True(t, again.BoolSetting(domain.SettingRemindMe))
}

func TestRegistryService_SetSettingValidation(t *testing.T) {
	registry := services.NewRegistryService(nil, testLogger())
	registry.NewPlayer("1001", "alice")

	err := registry.SetSetting("1001", "no-such-setting", true)
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	err = registry.SetSetting("1001", domain.SettingRemindMe, "yes")
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	err = registry.SetSetting("9999", domain.SettingRemindMe, true)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestRegistryService_PlayersWithRole(t *testing.T) {
	registry := services.NewRegistryService(nil, testLogger())
	registry.NewPlayer("2002", "bob").AddRole(domain.Role{Name: "Senator"})
	registry.NewPlayer("1001", "alice").AddRole(domain.Role{Name: "Senator"})
	registry.NewPlayer("3003", "carol")

	holders := registry.PlayersWithRole("Senator")
	require.Len(t, holders, 2)
	assert.Equal(t, "1001", holders[0].PlayerID)
	assert.Equal(t, "2002", holders[1].PlayerID)
}

func TestRegistryService_Owners(t *testing.T) {
	registry := services.NewRegistryService(nil, testLogger())
	registry.AddOwner("1001")
	assert.True(t, registry.IsOwner("1001"))
	assert.False(t, registry.IsOwner("2002"))

	registry.RemoveOwner("1001")
	assert.False(t, registry.IsOwner("1001"))
}

func TestRegistryService_SnapshotIsDeepCopy(t *testing.T) {
	store := new(MockPlayerStore)
	registry := services.NewRegistryService(store, testLogger())
	p := registry.NewPlayer("1001", "alice")
	p.AddRole(domain.Role{Name: "Citizen", TermLength: domain.TermIndefinite})

	snap := registry.Snapshot()
	p.AddRole(domain.Role{Name: "Senator", TermLength: domain.TermIndefinite})
	require.NoError(t, registry.SetSetting("1001", domain.SettingRemindMe, true))

	copied := snap.Players["1001"]
	assert.Len(t, copied.Roles, 1)
	assert.False(t, copied.BoolSetting(domain.SettingRemindMe))

	store.On("SavePlayers", mock.Anything, mock.AnythingOfType("domain.PlayerSnapshot")).Return(nil).Once()
	require.NoError(t, registry.SaveState(context.Background()))
	store.AssertExpectations(t)
}

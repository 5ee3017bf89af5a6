package service

import (
	"context"
	"testing"

	"gridiron/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestPlayerService_CreatePlayer(t *testing.T) {
	ctx := context.Background()
	m := newServiceMocks()
	m.expectTx(ctx, true)

	m.players.On("Create", ctx, mock.MatchedBy(func(p *models.Player) bool {
		return p.GameID == 401 && p.Team == "KC" && p.Name == "Patrick Mahomes"
	})).Run(func(args mock.Arguments) {
		args.Get(1).(*models.Player).ID = 5
	}).Return(nil)

	player, err := NewPlayerService(m.factory).CreatePlayer(ctx, 401, " KC ", "Patrick Mahomes ")

	require.NoError(t, err)
	assert.Equal(t, int64(5), player.ID)
	m.assertExpectations(t)
}

func TestPlayerService_CreatePlayer_Validation(t *testing.T) {
	m := newServiceMocks()

	_, err := NewPlayerService(m.factory).CreatePlayer(context.Background(), 401, "KC", "  ")

	assert.ErrorIs(t, err, ErrInvalidArgument)
	m.factory.AssertNotCalled(t, "Create")
}

func TestPlayerService_CreatePlayer_Duplicate(t *testing.T) {
	ctx := context.Background()
	m := newServiceMocks()
	m.expectTx(ctx, false)

	m.players.On("Create", ctx, mock.Anything).Return(&DomainError{Kind: ErrConflict, Message: "Player already exists"})

	_, err := NewPlayerService(m.factory).CreatePlayer(ctx, 401, "KC", "Patrick Mahomes")

	assert.ErrorIs(t, err, ErrConflict)
	m.assertExpectations(t)
}

func TestPlayerService_Lookups(t *testing.T) {
	ctx := context.Background()

	t.Run("list by team", func(t *testing.T) {
		m := newServiceMocks()
		m.expectTx(ctx, false)
		m.players.On("GetByGame", ctx, int64(401), "KC").Return([]*models.Player{{ID: 1, Team: "KC"}}, nil)

		players, err := NewPlayerService(m.factory).ListPlayers(ctx, 401, "KC ")

		require.NoError(t, err)
		assert.Len(t, players, 1)
		m.assertExpectations(t)
	})

	t.Run("by name missing", func(t *testing.T) {
		m := newServiceMocks()
		m.expectTx(ctx, false)
		m.players.On("GetByName", ctx, int64(401), "KC", "Nobody").Return(nil, nil)

		_, err := NewPlayerService(m.factory).GetPlayerByName(ctx, 401, "KC", "Nobody")

		assert.ErrorIs(t, err, ErrNotFound)
		m.assertExpectations(t)
	})

	t.Run("by id", func(t *testing.T) {
		m := newServiceMocks()
		m.expectTx(ctx, false)
		m.players.On("GetByID", ctx, int64(3)).Return(&models.Player{ID: 3, Name: "Travis Kelce"}, nil)

		player, err := NewPlayerService(m.factory).GetPlayer(ctx, 3)

		require.NoError(t, err)
		assert.Equal(t, "Travis Kelce", player.Name)
		m.assertExpectations(t)
	})
}

func TestPlayerService_UpdateAndDelete(t *testing.T) {
	ctx := context.Background()

	t.Run("update missing player", func(t *testing.T) {
		m := newServiceMocks()
		m.expectTx(ctx, false)
		m.players.On("Update", ctx, mock.Anything).Return(false, nil)

		_, err := NewPlayerService(m.factory).UpdatePlayer(ctx, 8, "SF", "Brock Purdy")

		assert.ErrorIs(t, err, ErrNotFound)
		m.assertExpectations(t)
	})

	t.Run("update", func(t *testing.T) {
		m := newServiceMocks()
		m.expectTx(ctx, true)
		m.players.On("Update", ctx, mock.MatchedBy(func(p *models.Player) bool {
			return p.ID == 8 && p.Team == "SF" && p.Name == "Brock Purdy"
		})).Return(true, nil)

		player, err := NewPlayerService(m.factory).UpdatePlayer(ctx, 8, "SF", "Brock Purdy")

		require.NoError(t, err)
		assert.Equal(t, "SF", player.Team)
		m.assertExpectations(t)
	})

	t.Run("delete", func(t *testing.T) {
		m := newServiceMocks()
		m.expectTx(ctx, true)
		m.players.On("Delete", ctx, int64(8)).Return(true, nil)

		require.NoError(t, NewPlayerService(m.factory).DeletePlayer(ctx, 8))
		m.assertExpectations(t)
	})

	t.Run("delete missing", func(t *testing.T) {
		m := newServiceMocks()
		m.expectTx(ctx, false)
		m.players.On("Delete", ctx, int64(9)).Return(false, nil)

		assert.ErrorIs(t, NewPlayerService(m.factory).DeletePlayer(ctx, 9), ErrNotFound)
		m.assertExpectations(t)
	})
}

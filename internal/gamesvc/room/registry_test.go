package room

import (
	"fmt"
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tamru/sequence-services/internal/gamesvc/game"
)

func newTestRegistry() *Registry {
	return NewRegistry(rand.New(rand.NewSource(1)))
}

// fillRoom creates a room and joins extra players until total members.
func fillRoom(t *testing.T, reg *Registry, total int) *Room {
	t.Helper()
	r, _ := reg.Create("player-0", "s0")
	for i := 1; i < total; i++ {
		_, _, err := reg.Join(r.Code, fmt.Sprintf("player-%d", i), fmt.Sprintf("s%d", i))
		require.NoError(t, err)
	}
	return r
}

func TestCreateRoom(t *testing.T) {
	reg := newTestRegistry()
	r, p := reg.Create("alice", "s0")

	require.Len(t, r.Code, codeLength)
	for _, c := range r.Code {
		require.Truef(t, strings.ContainsRune(codeAlphabet, c), "unexpected code character %q", c)
	}

	require.True(t, p.IsAdmin)
	require.Equal(t, "red", p.Color)
	require.NotEmpty(t, p.ID)

	got, err := reg.Get(r.Code)
	require.NoError(t, err)
	require.Same(t, r, got)
	require.Equal(t, 1, reg.Count())
}

func TestJoinAssignsColorsInOrder(t *testing.T) {
	reg := newTestRegistry()
	r := fillRoom(t, reg, 4)

	want := []string{"red", "blue", "green", "yellow"}
	for i, p := range r.Players {
		require.Equal(t, want[i], p.Color)
		require.Equal(t, i == 0, p.IsAdmin)
	}
}

func TestJoinErrors(t *testing.T) {
	t.Run("unknown room", func(t *testing.T) {
		reg := newTestRegistry()
		_, _, err := reg.Join("NOSUCH", "bob", "s9")
		require.ErrorIs(t, err, ErrRoomNotFound)
	})

	t.Run("room full", func(t *testing.T) {
		reg := newTestRegistry()
		r := fillRoom(t, reg, MaxPlayers)

		_, _, err := reg.Join(r.Code, "late", "s99")
		require.ErrorIs(t, err, ErrRoomFull)
		require.Len(t, r.Players, MaxPlayers)
	})

	t.Run("game already started", func(t *testing.T) {
		reg := newTestRegistry()
		r := fillRoom(t, reg, 2)
		_, err := reg.Start(r.Code, "s0")
		require.NoError(t, err)

		_, _, err = reg.Join(r.Code, "late", "s99")
		require.ErrorIs(t, err, game.ErrGameAlreadyStarted)
		require.Len(t, r.Players, 2)
	})
}

func TestToggleTeamMode(t *testing.T) {
	t.Run("admin only", func(t *testing.T) {
		reg := newTestRegistry()
		r := fillRoom(t, reg, 4)

		_, err := reg.ToggleTeamMode(r.Code, "s1", true)
		require.ErrorIs(t, err, ErrUnauthorized)
	})

	t.Run("four players make two teams", func(t *testing.T) {
		reg := newTestRegistry()
		r := fillRoom(t, reg, 4)

		_, err := reg.ToggleTeamMode(r.Code, "s0", true)
		require.NoError(t, err)
		require.True(t, r.TeamMode)

		wantTeam := []int{0, 1, 0, 1}
		wantColor := []string{"red", "blue", "green", "yellow"}
		for i, p := range r.Players {
			require.NotNil(t, p.Team)
			require.Equal(t, wantTeam[i], *p.Team)
			require.Equal(t, wantColor[i], p.Color)
		}

		// Disabling restores individual colors in join order.
		_, err = reg.ToggleTeamMode(r.Code, "s0", false)
		require.NoError(t, err)
		for i, p := range r.Players {
			require.Nil(t, p.Team)
			require.Equal(t, colors[i], p.Color)
		}
	})

	t.Run("five players make three teams", func(t *testing.T) {
		reg := newTestRegistry()
		r := fillRoom(t, reg, 5)

		_, err := reg.ToggleTeamMode(r.Code, "s0", true)
		require.NoError(t, err)

		sizes := make(map[int]int)
		for _, p := range r.Players {
			require.NotNil(t, p.Team)
			sizes[*p.Team]++
		}
		require.Len(t, sizes, 3, "odd rosters round the team count up")
		require.Equal(t, 2, sizes[0])
		require.Equal(t, 2, sizes[1])
		require.Equal(t, 1, sizes[2])
	})

	t.Run("seven players cap at three teams", func(t *testing.T) {
		reg := newTestRegistry()
		r := fillRoom(t, reg, 7)

		_, err := reg.ToggleTeamMode(r.Code, "s0", true)
		require.NoError(t, err)

		sizes := make(map[int]int)
		for _, p := range r.Players {
			require.NotNil(t, p.Team)
			sizes[*p.Team]++
		}
		require.Len(t, sizes, MaxTeams)
		require.Equal(t, 3, sizes[0])
		require.Equal(t, 2, sizes[1])
		require.Equal(t, 2, sizes[2])
	})

	t.Run("locked once started", func(t *testing.T) {
		reg := newTestRegistry()
		r := fillRoom(t, reg, 2)
		_, err := reg.Start(r.Code, "s0")
		require.NoError(t, err)

		_, err = reg.ToggleTeamMode(r.Code, "s0", true)
		require.ErrorIs(t, err, game.ErrGameAlreadyStarted)
	})
}

func TestTeamsReassignOnJoinAndLeave(t *testing.T) {
	reg := newTestRegistry()
	r := fillRoom(t, reg, 4)
	_, err := reg.ToggleTeamMode(r.Code, "s0", true)
	require.NoError(t, err)

	_, p5, err := reg.Join(r.Code, "player-4", "s4")
	require.NoError(t, err)
	require.NotNil(t, p5.Team)
	require.Equal(t, 1, *p5.Team, "five players reshuffle into three teams")

	_, err = reg.Leave(r.Code, "s4")
	require.NoError(t, err)
	for _, p := range r.Players {
		require.NotNil(t, p.Team, "remaining players stay teamed up")
	}
}

func TestStart(t *testing.T) {
	t.Run("admin only", func(t *testing.T) {
		reg := newTestRegistry()
		r := fillRoom(t, reg, 2)

		_, err := reg.Start(r.Code, "s1")
		require.ErrorIs(t, err, ErrUnauthorized)
		require.False(t, r.Started)
	})

	t.Run("needs two players", func(t *testing.T) {
		reg := newTestRegistry()
		r, _ := reg.Create("solo", "s0")

		_, err := reg.Start(r.Code, "s0")
		require.ErrorIs(t, err, game.ErrNotEnoughPlayers)
		require.False(t, r.Started)
	})

	t.Run("deals and locks the room", func(t *testing.T) {
		reg := newTestRegistry()
		r := fillRoom(t, reg, 3)

		_, err := reg.Start(r.Code, "s0")
		require.NoError(t, err)
		require.True(t, r.Started)
		require.NotNil(t, r.Game)
		require.Equal(t, game.StateInProgress, r.Game.State())

		_, err = reg.Start(r.Code, "s0")
		require.ErrorIs(t, err, game.ErrGameAlreadyStarted)
	})
}

func TestLeave(t *testing.T) {
	t.Run("admin leaving promotes the next player", func(t *testing.T) {
		reg := newTestRegistry()
		r := fillRoom(t, reg, 3)

		res, err := reg.Leave(r.Code, "s0")
		require.NoError(t, err)
		require.False(t, res.Destroyed)
		require.NotNil(t, res.NewAdmin)
		require.Equal(t, "player-1", res.NewAdmin.Name)
		require.True(t, r.Players[0].IsAdmin)
	})

	t.Run("last player leaving destroys the room", func(t *testing.T) {
		reg := newTestRegistry()
		r, _ := reg.Create("alice", "s0")

		res, err := reg.Leave(r.Code, "s0")
		require.NoError(t, err)
		require.True(t, res.Destroyed)
		require.Nil(t, res.Room)

		_, err = reg.Get(r.Code)
		require.ErrorIs(t, err, ErrRoomNotFound)
		require.Equal(t, 0, reg.Count())
	})

	t.Run("unknown socket", func(t *testing.T) {
		reg := newTestRegistry()
		r := fillRoom(t, reg, 2)

		_, err := reg.Leave(r.Code, "s99")
		require.ErrorIs(t, err, ErrRoomNotFound)
	})

	t.Run("mid-game leave keeps the engine running", func(t *testing.T) {
		reg := newTestRegistry()
		r := fillRoom(t, reg, 3)
		_, err := reg.Start(r.Code, "s0")
		require.NoError(t, err)

		res, err := reg.Leave(r.Code, "s2")
		require.NoError(t, err)
		require.False(t, res.Abandoned)
		require.Equal(t, game.StateInProgress, r.Game.State())
		require.Len(t, r.Game.Seats(), 2)
	})

	t.Run("second to last mid-game leave abandons the game", func(t *testing.T) {
		reg := newTestRegistry()
		r := fillRoom(t, reg, 2)
		_, err := reg.Start(r.Code, "s0")
		require.NoError(t, err)

		res, err := reg.Leave(r.Code, "s1")
		require.NoError(t, err)
		require.True(t, res.Abandoned)
		require.Equal(t, game.StateAborted, r.Game.State())
	})
}

func TestFindBySocket(t *testing.T) {
	reg := newTestRegistry()
	r := fillRoom(t, reg, 2)

	found, p, ok := reg.FindBySocket("s1")
	require.True(t, ok)
	require.Same(t, r, found)
	require.Equal(t, "player-1", p.Name)

	_, _, ok = reg.FindBySocket("nope")
	require.False(t, ok)
}

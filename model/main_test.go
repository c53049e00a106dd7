package model

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/agentsim/simcheck/dto"
)

func TestMain(m *testing.M) {
	if err := InitDB(""); err != nil {
		panic(err)
	}
	code := m.Run()
	_ = CloseDB()
	os.Exit(code)
}

func newTestUser(t *testing.T) *User {
	t.Helper()
	user, err := CreateUser(context.Background(), "user-"+t.Name()+"@example.com", "password123", "", false)
	require.NoError(t, err)
	return user
}

func testSpec(name string) dto.AgentSpec {
	return dto.AgentSpec{
		Name:      name,
		Archetype: "scientist",
		Personality: dto.Personality{
			Extroversion: 3, Optimism: 6, Curiosity: 9, Cooperativeness: 7, Energy: 5,
		},
		Goal:       "Map the signal",
		Expertise:  "Radio astronomy",
		Background: "Twenty years at the array",
	}
}

func TestCreateAdminIfNeed(t *testing.T) {
	ctx := context.Background()
	require.NoError(t, CreateAdminIfNeed("root@example.com", "admin123"))
	require.NoError(t, CreateAdminIfNeed("root@example.com", "other"))

	admin, err := GetUserByEmail(ctx, "ROOT@example.com")
	require.NoError(t, err)
	require.True(t, admin.ValidatePassword("admin123"))
	require.False(t, admin.ValidatePassword("other"))
}

func TestCreateUserDuplicate(t *testing.T) {
	ctx := context.Background()
	user := newTestUser(t)
	require.Equal(t, "user-testcreateuserduplicate", user.Name)

	_, err := CreateUser(ctx, user.Email, "password123", "", false)
	require.ErrorIs(t, err, ErrDuplicate)

	renamed, err := UpdateUserName(ctx, user.ID, "Renamed")
	require.NoError(t, err)
	require.Equal(t, "Renamed", renamed.Name)

	_, err = UpdateUserName(ctx, "missing", "x")
	require.ErrorIs(t, err, ErrNotFound)
	_, err = GetUserByID(ctx, "")
	require.ErrorIs(t, err, ErrNotFound)
}

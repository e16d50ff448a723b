package permissions

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockOracle struct {
	usersWithRolesFunc func(ctx context.Context, tenant string, roleIDs []string) ([]string, error)
	calls              int
}

func (m *mockOracle) HasPermission(ctx context.Context, userID, tenant, resource, level string) (bool, error) {
	return false, nil
}

func (m *mockOracle) UsersWithRoles(ctx context.Context, tenant string, roleIDs []string) ([]string, error) {
	m.calls++
	return m.usersWithRolesFunc(ctx, tenant, roleIDs)
}

func TestUserInRoles(t *testing.T) {
	oracle := &mockOracle{usersWithRolesFunc: func(_ context.Context, tenant string, roleIDs []string) ([]string, error) {
		if tenant == "t1" && len(roleIDs) == 1 && roleIDs[0] == "staff" {
			return []string{"alice", "bob"}, nil
		}
		return nil, nil
	}}

	tests := []struct {
		name    string
		userID  string
		users   []string
		roles   []string
		want    bool
		lookups int
	}{
		{"listed directly", "carol", []string{"carol"}, []string{"staff"}, true, 0},
		{"via role", "bob", nil, []string{"staff"}, true, 1},
		{"not in role", "dave", nil, []string{"staff"}, false, 1},
		{"anonymous", "", []string{""}, []string{"staff"}, false, 0},
		{"no lists", "bob", nil, nil, false, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			oracle.calls = 0
			got, err := UserInRoles(context.Background(), oracle, "t1", tt.userID, tt.users, tt.roles)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.lookups, oracle.calls)
		})
	}
}

func TestUserInRoles_PropagatesError(t *testing.T) {
	boom := errors.New("store down")
	oracle := &mockOracle{usersWithRolesFunc: func(context.Context, string, []string) ([]string, error) {
		return nil, boom
	}}

	_, err := UserInRoles(context.Background(), oracle, "t1", "bob", nil, []string{"staff"})
	assert.ErrorIs(t, err, boom)
}

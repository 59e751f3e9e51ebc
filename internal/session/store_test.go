package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestIdentityRoundTrip(t *testing.T) {
	store := openTestStore(t)

	identity, err := store.Identity(RoleEmployee)
	require.NoError(t, err)
	assert.Empty(t, identity)

	require.NoError(t, store.SetIdentity(RoleEmployee, "e1"))

	identity, err = store.Identity(RoleEmployee)
	require.NoError(t, err)
	assert.Equal(t, "e1", identity)

	// Roles are independent.
	identity, err = store.Identity(RoleAdmin)
	require.NoError(t, err)
	assert.Empty(t, identity)
}

func TestSetIdentityReplaces(t *testing.T) {
	store := openTestStore(t)

	require.NoError(t, store.SetIdentity(RoleUser, "u1"))
	require.NoError(t, store.SetIdentity(RoleUser, "u2"))

	identity, err := store.Identity(RoleUser)
	require.NoError(t, err)
	assert.Equal(t, "u2", identity)
}

func TestClearIdentity(t *testing.T) {
	store := openTestStore(t)

	require.NoError(t, store.SetIdentity(RoleAdmin, "a1"))
	require.NoError(t, store.ClearIdentity(RoleAdmin))

	identity, err := store.Identity(RoleAdmin)
	require.NoError(t, err)
	assert.Empty(t, identity)
}

func TestSettings(t *testing.T) {
	store := openTestStore(t)

	value, err := store.GetSetting("last_task_id")
	require.NoError(t, err)
	assert.Empty(t, value)

	require.NoError(t, store.SetSetting("last_task_id", "t1"))
	require.NoError(t, store.SetSetting("last_task_id", "t2"))

	value, err = store.GetSetting("last_task_id")
	require.NoError(t, err)
	assert.Equal(t, "t2", value)
}

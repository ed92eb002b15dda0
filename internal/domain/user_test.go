package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRole_Valid(t *testing.T) {
	assert.True(t, RoleAdmin.Valid())
	assert.True(t, RoleUser.Valid())
	assert.False(t, Role("member").Valid())
	assert.False(t, Role("").Valid())
}

func TestUser_Identity(t *testing.T) {
	u := &User{Record: Record{ID: "user-1"}, Username: "alice", Role: RoleAdmin, Salt: []byte("s")}

	id := u.Identity()

	assert.Equal(t, &Identity{ID: "user-1", Username: "alice", Role: RoleAdmin}, id)
	assert.True(t, u.IsAdmin())
}

func TestIdentity_NilSafe(t *testing.T) {
	var anon *Identity

	assert.False(t, anon.IsAdmin())
	assert.Equal(t, SystemOwner, anon.Name(SystemOwner))
	assert.Equal(t, "bob", (&Identity{Username: "bob"}).Name(SystemOwner))
}

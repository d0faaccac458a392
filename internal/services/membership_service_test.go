package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Gopher0727/SocialHub/internal/models"
)

func TestCreateGroup(t *testing.T) {
	f := newFixture(t)
	owner := f.createUser(t, "alice", "Alice")

	t.Run("creator becomes owner member", func(t *testing.T) {
		group, err := f.membershipSvc.CreateGroup(owner, &CreateGroupRequest{Name: "book club"})
		require.NoError(t, err)
		assert.Equal(t, owner, group.OwnerID)

		role, err := f.membershipSvc.GetRole(group.ID, owner)
		require.NoError(t, err)
		assert.Equal(t, models.RoleOwner, role)
	})

	t.Run("rejects empty name", func(t *testing.T) {
		_, err := f.membershipSvc.CreateGroup(owner, &CreateGroupRequest{Name: ""})
		assert.ErrorIs(t, err, ErrInvalidInput)
	})
}

func TestAddMember(t *testing.T) {
	f := newFixture(t)
	owner := f.createUser(t, "alice", "Alice")
	bob := f.createUser(t, "bob", "Bob")
	groupID := f.createGroupWith(t, owner)

	t.Run("adds a new member with default role", func(t *testing.T) {
		require.NoError(t, f.membershipSvc.AddMember(groupID, bob, "", owner))

		role, err := f.membershipSvc.GetRole(groupID, bob)
		require.NoError(t, err)
		assert.Equal(t, models.RoleMember, role)
	})

	t.Run("rejects duplicate active member", func(t *testing.T) {
		err := f.membershipSvc.AddMember(groupID, bob, models.RoleMember, owner)
		assert.ErrorIs(t, err, ErrAlreadyMember)
	})

	t.Run("rejects unknown group", func(t *testing.T) {
		err := f.membershipSvc.AddMember(99999, bob, models.RoleMember, owner)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("rejects invalid role", func(t *testing.T) {
		carol := f.createUser(t, "carol", "Carol")
		err := f.membershipSvc.AddMember(groupID, carol, "superuser", owner)
		assert.ErrorIs(t, err, ErrInvalidInput)
	})
}

func TestRemoveMember(t *testing.T) {
	f := newFixture(t)
	owner := f.createUser(t, "alice", "Alice")
	bob := f.createUser(t, "bob", "Bob")
	groupID := f.createGroupWith(t, owner, bob)

	t.Run("removes an active member", func(t *testing.T) {
		require.NoError(t, f.membershipSvc.RemoveMember(groupID, bob))

		_, err := f.membershipSvc.GetRole(groupID, bob)
		assert.ErrorIs(t, err, ErrNotAMember)
	})

	t.Run("idempotent on repeated removal", func(t *testing.T) {
		assert.NoError(t, f.membershipSvc.RemoveMember(groupID, bob))
	})

	t.Run("idempotent on never-member", func(t *testing.T) {
		stranger := f.createUser(t, "dave", "Dave")
		assert.NoError(t, f.membershipSvc.RemoveMember(groupID, stranger))
	})
}

func TestRejoinAfterLeave(t *testing.T) {
	f := newFixture(t)
	owner := f.createUser(t, "alice", "Alice")
	bob := f.createUser(t, "bob", "Bob")
	groupID := f.createGroupWith(t, owner, bob)

	require.NoError(t, f.membershipSvc.RemoveMember(groupID, bob))
	require.NoError(t, f.membershipSvc.AddMember(groupID, bob, models.RoleAdmin, owner))

	role, err := f.membershipSvc.GetRole(groupID, bob)
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, role)

	// 历史记录保留：一条退出记录 + 一条活跃记录
	var count int64
	require.NoError(t, f.db.Model(&models.GroupMember{}).
		Where("group_id = ? AND user_id = ?", groupID, bob).
		Count(&count).Error)
	assert.Equal(t, int64(2), count)
}

func TestGetActiveMembersOrdering(t *testing.T) {
	f := newFixture(t)
	owner := f.createUser(t, "zoe", "Zoe")
	adminB := f.createUser(t, "bob", "Bob")
	adminA := f.createUser(t, "amy", "Amy")
	member := f.createUser(t, "carl", "Carl")

	groupID := f.createGroupWith(t, owner)
	require.NoError(t, f.membershipSvc.AddMember(groupID, adminB, models.RoleAdmin, owner))
	require.NoError(t, f.membershipSvc.AddMember(groupID, adminA, models.RoleAdmin, owner))
	require.NoError(t, f.membershipSvc.AddMember(groupID, member, models.RoleMember, owner))

	members, err := f.membershipSvc.GetActiveMembers(groupID)
	require.NoError(t, err)
	require.Len(t, members, 4)

	// owner > admin > member，同角色按昵称
	assert.Equal(t, owner, members[0].UserID)
	assert.Equal(t, "Amy", members[1].Nickname)
	assert.Equal(t, "Bob", members[2].Nickname)
	assert.Equal(t, member, members[3].UserID)
}

func TestIsActiveMember(t *testing.T) {
	f := newFixture(t)
	owner := f.createUser(t, "alice", "Alice")
	bob := f.createUser(t, "bob", "Bob")
	groupID := f.createGroupWith(t, owner)

	ok, err := f.membershipSvc.IsActiveMember(groupID, owner)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = f.membershipSvc.IsActiveMember(groupID, bob)
	require.NoError(t, err)
	assert.False(t, ok)
}

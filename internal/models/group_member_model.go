package models

import "time"

// 成员角色
const (
	RoleOwner  = "owner"
	RoleAdmin  = "admin"
	RoleMember = "member"
)

// GroupMember 群组成员模型
// 约束：同一 (group_id, user_id) 同时最多只有一条 is_active=true 的记录，
// 退出后重新加入会创建新记录，历史得以保留。
type GroupMember struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	GroupID  uint   `gorm:"not null;index:idx_member_group_user" json:"group_id"`
	UserID   uint   `gorm:"not null;index:idx_member_group_user" json:"user_id"`
	Role     string `gorm:"default:member" json:"role"` // owner, admin, member
	AddedBy  uint   `json:"added_by"`
	IsActive bool   `gorm:"default:true;index" json:"is_active"`

	JoinedAt time.Time  `json:"joined_at"`
	LeftAt   *time.Time `json:"left_at,omitempty"`

	Group *Group `gorm:"foreignKey:GroupID" json:"-"`
	User  *User  `gorm:"foreignKey:UserID" json:"-"`
}

func (GroupMember) TableName() string {
	return "group_members"
}

// RolePriority 用于成员列表排序：owner > admin > member
func RolePriority(role string) int {
	switch role {
	case RoleOwner:
		return 0
	case RoleAdmin:
		return 1
	default:
		return 2
	}
}

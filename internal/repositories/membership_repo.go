package repositories

import (
	"time"

	"gorm.io/gorm"

	"github.com/Gopher0727/SocialHub/internal/models"
)

// MembershipRepository 群组成员仓储
type MembershipRepository struct {
	db *gorm.DB
}

// NewMembershipRepository 创建群组成员仓储实例
func NewMembershipRepository(db *gorm.DB) *MembershipRepository {
	return &MembershipRepository{db: db}
}

// CreateGroup 创建群组
func (r *MembershipRepository) CreateGroup(group *models.Group) error {
	return r.db.Create(group).Error
}

// GetGroupByID 根据ID获取群组
func (r *MembershipRepository) GetGroupByID(id uint) (*models.Group, error) {
	var group models.Group
	if err := r.db.First(&group, id).Error; err != nil {
		return nil, err
	}
	return &group, nil
}

// Create 创建成员记录
func (r *MembershipRepository) Create(member *models.GroupMember) error {
	return r.db.Create(member).Error
}

// GetActive 获取活跃成员记录，不存在时返回 gorm.ErrRecordNotFound
func (r *MembershipRepository) GetActive(groupID, userID uint) (*models.GroupMember, error) {
	var member models.GroupMember
	err := r.db.Where("group_id = ? AND user_id = ? AND is_active = ?", groupID, userID, true).
		First(&member).Error
	if err != nil {
		return nil, err
	}
	return &member, nil
}

// Deactivate 将活跃成员置为不活跃，返回受影响行数
// 已不活跃时影响 0 行，调用方按幂等处理
func (r *MembershipRepository) Deactivate(groupID, userID uint, leftAt time.Time) (int64, error) {
	result := r.db.Model(&models.GroupMember{}).
		Where("group_id = ? AND user_id = ? AND is_active = ?", groupID, userID, true).
		Updates(map[string]any{
			"is_active": false,
			"left_at":   leftAt,
		})
	return result.RowsAffected, result.Error
}

// ListActive 获取群组全部活跃成员
// 排序：owner > admin > member，同角色按用户昵称
func (r *MembershipRepository) ListActive(groupID uint) ([]models.GroupMember, error) {
	var members []models.GroupMember
	err := r.db.
		Joins("JOIN users ON users.id = group_members.user_id").
		Where("group_members.group_id = ? AND group_members.is_active = ?", groupID, true).
		Order("CASE group_members.role WHEN 'owner' THEN 0 WHEN 'admin' THEN 1 ELSE 2 END").
		Order("users.nickname ASC").
		Preload("User").
		Find(&members).Error
	return members, err
}

// ListActiveUserIDs 获取群组活跃成员的用户ID列表（用于投递路由）
func (r *MembershipRepository) ListActiveUserIDs(groupID uint) ([]uint, error) {
	var ids []uint
	err := r.db.Model(&models.GroupMember{}).
		Where("group_id = ? AND is_active = ?", groupID, true).
		Pluck("user_id", &ids).Error
	return ids, err
}

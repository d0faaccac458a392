package services

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/Gopher0727/SocialHub/internal/models"
	"github.com/Gopher0727/SocialHub/internal/repositories"
)

// MembershipService 群组成员服务
type MembershipService struct {
	membershipRepo *repositories.MembershipRepository
}

// NewMembershipService 创建群组成员服务实例
func NewMembershipService(membershipRepo *repositories.MembershipRepository) *MembershipService {
	return &MembershipService{membershipRepo: membershipRepo}
}

// CreateGroupRequest 创建群组请求
type CreateGroupRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

// GroupDTO 群组数据传输对象
type GroupDTO struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	OwnerID     uint   `json:"owner_id"`
	CreatedAt   string `json:"created_at"`
}

// MemberDTO 群组成员数据传输对象
type MemberDTO struct {
	UserID   uint   `json:"user_id"`
	Username string `json:"username"`
	Nickname string `json:"nickname"`
	Role     string `json:"role"`
	JoinedAt string `json:"joined_at"`
}

// CreateGroup 创建群组，创建者自动成为 owner 成员
func (s *MembershipService) CreateGroup(ownerID uint, req *CreateGroupRequest) (*GroupDTO, error) {
	if len(req.Name) < 1 || len(req.Name) > 50 {
		return nil, ErrInvalidInput
	}

	group := &models.Group{
		Name:        req.Name,
		Description: req.Description,
		OwnerID:     ownerID,
	}
	if err := s.membershipRepo.CreateGroup(group); err != nil {
		return nil, err
	}

	member := &models.GroupMember{
		GroupID:  group.ID,
		UserID:   ownerID,
		Role:     models.RoleOwner,
		AddedBy:  ownerID,
		IsActive: true,
		JoinedAt: time.Now(),
	}
	if err := s.membershipRepo.Create(member); err != nil {
		return nil, err
	}

	return &GroupDTO{
		ID:          group.ID,
		Name:        group.Name,
		Description: group.Description,
		OwnerID:     group.OwnerID,
		CreatedAt:   group.CreatedAt.Format("2006-01-02 15:04:05"),
	}, nil
}

// AddMember 添加成员
// 已有活跃成员记录时返回 ErrAlreadyMember；退出过的用户会新建一条记录
func (s *MembershipService) AddMember(groupID, userID uint, role string, addedBy uint) error {
	if _, err := s.membershipRepo.GetGroupByID(groupID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}

	switch role {
	case models.RoleOwner, models.RoleAdmin, models.RoleMember:
	case "":
		role = models.RoleMember
	default:
		return ErrInvalidInput
	}

	if _, err := s.membershipRepo.GetActive(groupID, userID); err == nil {
		return ErrAlreadyMember
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	member := &models.GroupMember{
		GroupID:  groupID,
		UserID:   userID,
		Role:     role,
		AddedBy:  addedBy,
		IsActive: true,
		JoinedAt: time.Now(),
	}
	return s.membershipRepo.Create(member)
}

// RemoveMember 移除成员，幂等：成员不存在或已移除时直接成功
func (s *MembershipService) RemoveMember(groupID, userID uint) error {
	_, err := s.membershipRepo.Deactivate(groupID, userID, time.Now())
	return err
}

// GetActiveMembers 获取活跃成员列表，owner > admin > member，同角色按昵称排序
func (s *MembershipService) GetActiveMembers(groupID uint) ([]MemberDTO, error) {
	members, err := s.membershipRepo.ListActive(groupID)
	if err != nil {
		return nil, err
	}

	dtos := make([]MemberDTO, 0, len(members))
	for _, m := range members {
		dto := MemberDTO{
			UserID:   m.UserID,
			Role:     m.Role,
			JoinedAt: m.JoinedAt.Format("2006-01-02 15:04:05"),
		}
		if m.User != nil {
			dto.Username = m.User.Username
			dto.Nickname = m.User.Nickname
		}
		dtos = append(dtos, dto)
	}
	return dtos, nil
}

// GetRole 获取成员角色，非活跃成员返回 ErrNotAMember
func (s *MembershipService) GetRole(groupID, userID uint) (string, error) {
	member, err := s.membershipRepo.GetActive(groupID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrNotAMember
		}
		return "", err
	}
	return member.Role, nil
}

// IsActiveMember 是否活跃成员
func (s *MembershipService) IsActiveMember(groupID, userID uint) (bool, error) {
	_, err := s.membershipRepo.GetActive(groupID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

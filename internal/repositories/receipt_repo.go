package repositories

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Gopher0727/SocialHub/internal/models"
)

// ReceiptRepository 已读回执仓储
type ReceiptRepository struct {
	db *gorm.DB
}

// NewReceiptRepository 创建已读回执仓储实例
func NewReceiptRepository(db *gorm.DB) *ReceiptRepository {
	return &ReceiptRepository{db: db}
}

// BatchCreate 批量写入回执
// 唯一索引冲突时忽略该行（insert-or-ignore），并发重复标记不会产生重复回执
func (r *ReceiptRepository) BatchCreate(receipts []models.ReadReceipt) error {
	if len(receipts) == 0 {
		return nil
	}
	return r.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&receipts).Error
}

// CountByMessage 某条消息的回执数（"N 人已读"展示）
func (r *ReceiptRepository) CountByMessage(messageID int64) (int64, error) {
	var count int64
	err := r.db.Model(&models.ReadReceipt{}).
		Where("message_id = ?", messageID).
		Count(&count).Error
	return count, err
}

// Exists 某用户是否已回执某条消息
func (r *ReceiptRepository) Exists(messageID int64, userID uint) (bool, error) {
	var count int64
	err := r.db.Model(&models.ReadReceipt{}).
		Where("message_id = ? AND user_id = ?", messageID, userID).
		Count(&count).Error
	return count > 0, err
}

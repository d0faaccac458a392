package models

import "time"

// ReadReceipt 群消息已读回执
// 唯一索引保证每个 (message_id, user_id) 最多一条，存在即表示该用户已读。
type ReadReceipt struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	MessageID int64     `gorm:"not null;uniqueIndex:idx_receipt_msg_user" json:"message_id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_receipt_msg_user" json:"user_id"`
	ReadAt    time.Time `json:"read_at"`
}

func (ReadReceipt) TableName() string {
	return "read_receipts"
}

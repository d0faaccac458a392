package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Gopher0727/SocialHub/internal/services"
)

// EventHandler 接收上游业务事件（点赞、评论、关注等）并触发通知扇出
// 行为人始终取当前登录用户，防止伪造他人事件
type EventHandler struct {
	NotificationService *services.NotificationService
}

func NewEventHandler(notificationService *services.NotificationService) *EventHandler {
	return &EventHandler{
		NotificationService: notificationService,
	}
}

func (h *EventHandler) notifyResult(c *gin.Context, err error) {
	if err != nil {
		if errors.Is(err, services.ErrInvalidInput) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"message": "ok"})
}

// Like 帖子被点赞，同一 (行为人, 帖子) 只产生一条通知
func (h *EventHandler) Like(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "未授权访问"})
		return
	}

	var req struct {
		RecipientID uint `json:"recipient_id" binding:"required"`
		PostID      uint `json:"post_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "请求参数格式错误"})
		return
	}

	h.notifyResult(c, h.NotificationService.NotifyLike(req.RecipientID, userID.(uint), req.PostID))
}

// Comment 帖子被评论，每条评论都通知
func (h *EventHandler) Comment(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "未授权访问"})
		return
	}

	var req struct {
		RecipientID uint `json:"recipient_id" binding:"required"`
		PostID      uint `json:"post_id" binding:"required"`
		CommentID   uint `json:"comment_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "请求参数格式错误"})
		return
	}

	h.notifyResult(c, h.NotificationService.NotifyComment(req.RecipientID, userID.(uint), req.PostID, req.CommentID))
}

// Follow 被关注，同一 (行为人, 被关注人) 只产生一条通知
func (h *EventHandler) Follow(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "未授权访问"})
		return
	}

	var req struct {
		RecipientID uint `json:"recipient_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "请求参数格式错误"})
		return
	}

	h.notifyResult(c, h.NotificationService.NotifyFollow(req.RecipientID, userID.(uint)))
}

// StoryView 动态被浏览
func (h *EventHandler) StoryView(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "未授权访问"})
		return
	}

	var req struct {
		RecipientID uint `json:"recipient_id" binding:"required"`
		StoryID     uint `json:"story_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "请求参数格式错误"})
		return
	}

	h.notifyResult(c, h.NotificationService.NotifyStoryView(req.RecipientID, userID.(uint), req.StoryID))
}

// Mention 在帖子或评论中被提及
func (h *EventHandler) Mention(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "未授权访问"})
		return
	}

	var req struct {
		RecipientID uint  `json:"recipient_id" binding:"required"`
		PostID      uint  `json:"post_id" binding:"required"`
		CommentID   *uint `json:"comment_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "请求参数格式错误"})
		return
	}

	h.notifyResult(c, h.NotificationService.NotifyMention(req.RecipientID, userID.(uint), req.PostID, req.CommentID))
}

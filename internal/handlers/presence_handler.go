package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	redispkg "github.com/Gopher0727/SocialHub/internal/pkg/redis"
)

// PresenceHandler 在线状态查询
// 在线标记由 WebSocket 心跳维护，带 TTL，连接异常断开后自动过期
type PresenceHandler struct {
	rdb *redispkg.Client
}

func NewPresenceHandler(rdb *redispkg.Client) *PresenceHandler {
	return &PresenceHandler{rdb: rdb}
}

// IsOnline 查询某用户是否在线
func (h *PresenceHandler) IsOnline(c *gin.Context) {
	userID, err := strconv.ParseUint(c.Param("user_id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "无效的用户ID"})
		return
	}

	if h.rdb == nil {
		// Redis 不可用时降级为未知，按离线返回
		c.JSON(http.StatusOK, gin.H{"user_id": userID, "online": false})
		return
	}

	online, err := h.rdb.IsUserOnline(c.Request.Context(), uint(userID))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"user_id": userID, "online": online})
}

package middlewares

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	redispkg "github.com/Gopher0727/SocialHub/internal/pkg/redis"
)

// UserMessageRateLimit 单用户发消息限流
// 基于 Redis 固定窗口计数：INCR + 首次设置过期时间。
// Redis 不可用时放行，限流是保护措施不是功能依赖。
func UserMessageRateLimit(rdb *redispkg.Client, limit int, windowSeconds int) gin.HandlerFunc {
	window := time.Duration(windowSeconds) * time.Second

	return func(c *gin.Context) {
		if rdb == nil || limit <= 0 {
			c.Next()
			return
		}

		userID, exists := c.Get("user_id")
		if !exists {
			c.Next()
			return
		}

		key := fmt.Sprintf("ratelimit:msg:%d", userID.(uint))
		ctx := c.Request.Context()

		count, err := rdb.GetClient().Incr(ctx, key).Result()
		if err != nil {
			c.Next()
			return
		}
		if count == 1 {
			rdb.GetClient().Expire(ctx, key, window)
		}

		if count > int64(limit) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "发送太频繁，请稍后再试",
			})
			return
		}

		c.Next()
	}
}

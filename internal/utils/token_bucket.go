package utils

import (
	"sync"
	"time"
)

// TokenBucket 进程内令牌桶，用于全局 QPS 限流
type TokenBucket struct {
	mu       sync.Mutex
	capacity int64 // 桶容量（突发上限）
	tokens   int64 // 当前令牌数
	rate     int64 // 每秒补充令牌数
	lastFill time.Time
}

// NewTokenBucket 创建令牌桶，初始为满
func NewTokenBucket(capacity, rate int64) *TokenBucket {
	return &TokenBucket{
		capacity: capacity,
		tokens:   capacity,
		rate:     rate,
		lastFill: time.Now(),
	}
}

// refill 按流逝时间补充令牌，调用方需持有锁
func (tb *TokenBucket) refill() {
	now := time.Now()
	elapsed := now.Sub(tb.lastFill)
	if elapsed <= 0 {
		return
	}
	added := int64(elapsed.Seconds() * float64(tb.rate))
	if added > 0 {
		tb.tokens = min(tb.tokens+added, tb.capacity)
		tb.lastFill = now
	}
}

// AllowN 尝试取 n 个令牌，不足时立即返回 false
func (tb *TokenBucket) AllowN(n int64) bool {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	tb.refill()
	if tb.tokens >= n {
		tb.tokens -= n
		return true
	}
	return false
}

// WaitN 尝试取 n 个令牌，最多等待 timeout；拿到返回 true
func (tb *TokenBucket) WaitN(n int64, timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for {
		if tb.AllowN(n) {
			return true
		}
		if time.Now().After(deadline) {
			return false
		}
		time.Sleep(5 * time.Millisecond)
	}
}

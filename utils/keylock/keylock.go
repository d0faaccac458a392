package keylock

import (
	"sync"

	"github.com/twmb/murmur3"
)

// KeyLock 按字符串 key 提供互斥锁，内部用 murmur3 把 key 映射到固定数量的分段锁。
// 用于序列化去重敏感的"查重 + 写入"路径：同一去重键上的并发操作串行执行，
// 不同键大概率落在不同分段上互不阻塞。
type KeyLock struct {
	shards []sync.Mutex
}

// New 创建分段锁，shards <= 0 时使用默认 128 段
func New(shards int) *KeyLock {
	if shards <= 0 {
		shards = 128
	}
	return &KeyLock{shards: make([]sync.Mutex, shards)}
}

// Lock 锁住 key 所在的分段
func (l *KeyLock) Lock(key string) {
	l.shards[l.index(key)].Lock()
}

// Unlock 释放 key 所在的分段
func (l *KeyLock) Unlock(key string) {
	l.shards[l.index(key)].Unlock()
}

func (l *KeyLock) index(key string) int {
	return int(murmur3.SeedSum32(0, []byte(key)) % uint32(len(l.shards)))
}

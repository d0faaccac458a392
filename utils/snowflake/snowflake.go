package snowflake

import (
	"errors"
	"sync"
	"time"
)

const (
	// Epoch is the custom epoch (January 1, 2024 00:00:00 UTC), in milliseconds
	Epoch int64 = 1704067200000

	workerIDBits uint8 = 10
	sequenceBits uint8 = 12

	workerIDMask int64 = -1 ^ (-1 << workerIDBits)
	sequenceMask int64 = -1 ^ (-1 << sequenceBits)

	workerIDShift  = sequenceBits
	timestampShift = sequenceBits + workerIDBits
)

var (
	ErrInvalidWorkerID     = errors.New("worker ID exceeds maximum value")
	ErrClockMovedBackwards = errors.New("clock moved backwards")
)

// Node generates unique int64 IDs using the Snowflake layout:
// 41 bits timestamp | 10 bits worker | 12 bits sequence.
// Message and notification IDs are minted from one Node per process.
type Node struct {
	mu sync.Mutex

	workerID      int64
	sequence      int64
	lastTimestamp int64
}

// NewNode creates a generator for the given worker ID (0..1023).
func NewNode(workerID int64) (*Node, error) {
	if workerID < 0 || workerID > workerIDMask {
		return nil, ErrInvalidWorkerID
	}
	return &Node{workerID: workerID}, nil
}

// NextID generates the next unique ID.
func (n *Node) NextID() (int64, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	timestamp := currentTimestamp()
	if timestamp < n.lastTimestamp {
		return 0, ErrClockMovedBackwards
	}

	if timestamp == n.lastTimestamp {
		n.sequence = (n.sequence + 1) & sequenceMask
		// Sequence overflow within a millisecond - wait for the next one
		if n.sequence == 0 {
			timestamp = waitNextMillis(n.lastTimestamp)
		}
	} else {
		n.sequence = 0
	}

	n.lastTimestamp = timestamp

	id := ((timestamp - Epoch) << timestampShift) |
		(n.workerID << workerIDShift) |
		n.sequence
	return id, nil
}

// Timestamp extracts the millisecond timestamp from an ID.
func Timestamp(id int64) int64 {
	return (id >> timestampShift) + Epoch
}

// WorkerID extracts the worker ID from an ID.
func WorkerID(id int64) int64 {
	return (id >> workerIDShift) & workerIDMask
}

// Sequence extracts the sequence from an ID.
func Sequence(id int64) int64 {
	return id & sequenceMask
}

func currentTimestamp() int64 {
	return time.Now().UnixNano() / int64(time.Millisecond)
}

func waitNextMillis(lastTimestamp int64) int64 {
	timestamp := currentTimestamp()
	for timestamp <= lastTimestamp {
		timestamp = currentTimestamp()
	}
	return timestamp
}

package snowflake

import (
	"sync"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func TestProperty_IDUniqueness(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("all generated IDs are unique", prop.ForAll(
		func(count int) bool {
			node, err := NewNode(1)
			if err != nil {
				return false
			}

			ids := make(map[int64]bool)
			for range count {
				id, err := node.NextID()
				if err != nil {
					return false
				}
				if ids[id] {
					return false
				}
				ids[id] = true
			}
			return len(ids) == count
		},
		gen.IntRange(100, 1000),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestProperty_IDUniquenessConcurrent(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("IDs generated concurrently are unique", prop.ForAll(
		func(goroutines int, idsPerGoroutine int) bool {
			node, err := NewNode(1)
			if err != nil {
				return false
			}

			var mu sync.Mutex
			var wg sync.WaitGroup
			seen := make(map[int64]bool)
			ok := true

			for range goroutines {
				wg.Add(1)
				go func() {
					defer wg.Done()
					local := make([]int64, 0, idsPerGoroutine)
					for range idsPerGoroutine {
						id, err := node.NextID()
						if err != nil {
							mu.Lock()
							ok = false
							mu.Unlock()
							return
						}
						local = append(local, id)
					}
					mu.Lock()
					for _, id := range local {
						if seen[id] {
							ok = false
						}
						seen[id] = true
					}
					mu.Unlock()
				}()
			}
			wg.Wait()

			return ok && len(seen) == goroutines*idsPerGoroutine
		},
		gen.IntRange(2, 8),
		gen.IntRange(50, 200),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

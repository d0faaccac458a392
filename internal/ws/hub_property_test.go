package ws

import (
	"fmt"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// 路由表不变量：任意 join/leave 序列后，每个频道的订阅数等于
// 按模型推演出的订阅数，注销后所有频道都不再引用该连接。
func TestProperty_HubRoutingTableConsistency(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("subscriber counts match a reference model", prop.ForAll(
		func(ops []int) bool {
			hub := NewHub(nil)
			clients := make([]*Client, 4)
			for i := range clients {
				clients[i] = newTestClient(uint(i+1), 16)
				hub.Register(clients[i])
			}

			// 参考模型：channel -> client index set
			model := make(map[Channel]map[int]bool)
			for i := range clients {
				ch := UserChannel(uint(i + 1))
				model[ch] = map[int]bool{i: true}
			}

			rooms := []Channel{
				RoomChannel("group_1"),
				RoomChannel("group_2"),
				RoomChannel("group_3"),
			}

			for _, op := range ops {
				ci := op % len(clients)
				ri := (op / len(clients)) % len(rooms)
				room := rooms[ri]

				if (op/16)%2 == 0 {
					hub.Join(clients[ci], room)
					if model[room] == nil {
						model[room] = make(map[int]bool)
					}
					model[room][ci] = true
				} else {
					hub.Leave(clients[ci], room)
					delete(model[room], ci)
				}
			}

			for ch, members := range model {
				if hub.Subscribers(ch) != len(members) {
					return false
				}
			}
			return true
		},
		gen.SliceOf(gen.IntRange(0, 1023)),
	))

	properties.Property("unregister removes the client everywhere", prop.ForAll(
		func(joins []int) bool {
			hub := NewHub(nil)
			client := newTestClient(1, 16)
			other := newTestClient(2, 16)
			hub.Register(client)
			hub.Register(other)

			joined := make([]Channel, 0, len(joins))
			for _, j := range joins {
				room := RoomChannel(fmt.Sprintf("group_%d", j%8))
				hub.Join(client, room)
				hub.Join(other, room)
				joined = append(joined, room)
			}

			hub.Unregister(client)

			if hub.Subscribers(UserChannel(1)) != 0 {
				return false
			}
			for _, room := range joined {
				// 只剩 other 一个订阅者
				if hub.Subscribers(room) != 1 {
					return false
				}
			}
			return hub.ClientCount() == 1
		},
		gen.SliceOf(gen.IntRange(0, 63)),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

package ws

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Gopher0727/SocialHub/internal/models"
	"github.com/Gopher0727/SocialHub/internal/services"
)

func TestHubNotifierRouting(t *testing.T) {
	hub := NewHub(nil)
	notifier := NewHubNotifier(hub)

	alice := newTestClient(1, 8)
	bob := newTestClient(2, 8)
	hub.Register(alice)
	hub.Register(bob)

	t.Run("notification goes to recipient only", func(t *testing.T) {
		notifier.NotificationCreated(&models.Notification{
			ID:          100,
			RecipientID: 2,
			ActorID:     1,
			Type:        models.NotifyLike,
		})

		evt := recvEvent(t, bob)
		assert.Equal(t, EventNotificationNew, evt.Type)
		assert.Empty(t, alice.send)
	})

	t.Run("direct message fans out to both sides", func(t *testing.T) {
		recipient := uint(2)
		notifier.DirectMessageSent(&models.ChatMessage{
			ID:          101,
			SenderID:    1,
			RecipientID: &recipient,
			Content:     "hi",
		})

		sent := recvEvent(t, alice)
		assert.Equal(t, EventMessageSent, sent.Type)

		received := recvEvent(t, bob)
		assert.Equal(t, EventMessageReceive, received.Type)
	})

	t.Run("group message goes to the room", func(t *testing.T) {
		groupID := uint(42)
		room := RoomChannel(services.GroupRoom(groupID))
		hub.Join(bob, room)

		notifier.GroupMessageCreated(&models.ChatMessage{
			ID:       102,
			SenderID: 1,
			GroupID:  &groupID,
			Content:  "hello room",
		})

		evt := recvEvent(t, bob)
		require.Equal(t, EventChatMessageNew, evt.Type)
		assert.Empty(t, alice.send)
	})

	t.Run("group message without group id is dropped", func(t *testing.T) {
		notifier.GroupMessageCreated(&models.ChatMessage{ID: 103, SenderID: 1})
		assert.Empty(t, bob.send)
	})
}

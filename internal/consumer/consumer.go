package consumer

import (
	"context"
	"encoding/json"

	"github.com/IBM/sarama"
	"go.uber.org/zap"

	"github.com/Gopher0727/SocialHub/internal/models"
	"github.com/Gopher0727/SocialHub/internal/services"
	"github.com/Gopher0727/SocialHub/pkg/logger"
)

// GroupMessageConsumer 消费 Kafka 里已落库的群消息并广播到本实例 Hub
// 消息在生产端已经持久化，这里只做投递，失败直接跳过（实时推送本就尽力而为）
type GroupMessageConsumer struct {
	notifier services.Notifier
	log      *logger.Logger
}

func NewGroupMessageConsumer(notifier services.Notifier, log *logger.Logger) *GroupMessageConsumer {
	return &GroupMessageConsumer{
		notifier: notifier,
		log:      log,
	}
}

// Setup is run at the beginning of a new session, before ConsumeClaim
func (c *GroupMessageConsumer) Setup(sarama.ConsumerGroupSession) error {
	return nil
}

// Cleanup is run at the end of a session, once all ConsumeClaim goroutines have exited
func (c *GroupMessageConsumer) Cleanup(sarama.ConsumerGroupSession) error {
	return nil
}

// ConsumeClaim must start a consumer loop of ConsumerGroupClaim's Messages().
func (c *GroupMessageConsumer) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for message := range claim.Messages() {
		var msg models.ChatMessage
		if err := json.Unmarshal(message.Value, &msg); err != nil {
			if c.log != nil {
				c.log.Warn("反序列化群消息失败", zap.Error(err))
			}
			session.MarkMessage(message, "")
			continue
		}

		c.notifier.GroupMessageCreated(&msg)
		session.MarkMessage(message, "")
	}
	return nil
}

// StartConsumer 启动消费组循环
func StartConsumer(brokers []string, groupID string, topic string, consumer *GroupMessageConsumer, log *logger.Logger) error {
	config := sarama.NewConfig()
	config.Consumer.Group.Rebalance.Strategy = sarama.NewBalanceStrategyRoundRobin()
	config.Consumer.Offsets.Initial = sarama.OffsetNewest

	client, err := sarama.NewConsumerGroup(brokers, groupID, config)
	if err != nil {
		return err
	}

	ctx := context.Background()
	go func() {
		for {
			if err := client.Consume(ctx, []string{topic}, consumer); err != nil {
				if log != nil {
					log.Warn("消费者错误", zap.Error(err))
				}
			}
			if ctx.Err() != nil {
				return
			}
		}
	}()
	return nil
}

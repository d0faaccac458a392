package mq

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/IBM/sarama"

	"github.com/Gopher0727/SocialHub/internal/models"
)

// KafkaProducer 群消息生产者
// 群消息落库后发到 Kafka，由消费组广播到各实例的 Hub；
// Kafka 不可用时调用方降级为直接广播本机 Hub。
type KafkaProducer struct {
	producer sarama.SyncProducer
	topic    string
}

func NewKafkaProducer(brokers []string, topic string) (*KafkaProducer, error) {
	config := sarama.NewConfig()
	config.Producer.Return.Successes = true
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Retry.Max = 5

	producer, err := sarama.NewSyncProducer(brokers, config)
	if err != nil {
		return nil, fmt.Errorf("启动 Sarama 生产者失败: %w", err)
	}

	return &KafkaProducer{
		producer: producer,
		topic:    topic,
	}, nil
}

// PublishGroupMessage 发布已落库的群消息
// 以 group_id 作为分区键，保证同群消息进同一分区、消费有序
func (k *KafkaProducer) PublishGroupMessage(msg *models.ChatMessage) error {
	if msg.GroupID == nil {
		return fmt.Errorf("not a group message: %d", msg.ID)
	}

	bytes, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("序列化消息失败: %w", err)
	}

	pm := &sarama.ProducerMessage{
		Topic: k.topic,
		Key:   sarama.StringEncoder(strconv.FormatUint(uint64(*msg.GroupID), 10)),
		Value: sarama.ByteEncoder(bytes),
	}

	if _, _, err := k.producer.SendMessage(pm); err != nil {
		return fmt.Errorf("发送消息到 kafka 失败: %w", err)
	}
	return nil
}

func (k *KafkaProducer) Close() error {
	return k.producer.Close()
}

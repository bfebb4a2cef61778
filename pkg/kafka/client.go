// Package kafka 提供了变更事件流 (change feed) 的生产者与消费者。
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
	"tutor-connect-go/internal/config"
	"tutor-connect-go/pkg/database"
	"tutor-connect-go/pkg/events"
	"tutor-connect-go/pkg/log"

	"github.com/segmentio/kafka-go"
)

// EventProcessor 定义了能够消费变更事件的组件接口。
// 这样可以将 Kafka 消费循环与具体的 pipeline 实现解耦。
type EventProcessor interface {
	Process(ctx context.Context, event events.ChangeEvent) error
}

var producer *kafka.Writer

// InitProducer 初始化 Kafka 生产者。
func InitProducer(cfg config.KafkaConfig) {
	producer = &kafka.Writer{
		Addr:     kafka.TCP(cfg.Brokers),
		Topic:    cfg.Topic,
		Balancer: &kafka.LeastBytes{},
	}
	log.Info("Kafka 生产者初始化成功")
}

// PublishChangeEvent 向变更事件流发送一条事件。
// 写路径对发布失败只记录日志，事件流是最终一致的旁路，不阻塞主流程。
func PublishChangeEvent(event events.ChangeEvent) error {
	if producer == nil {
		return fmt.Errorf("kafka producer not initialized")
	}
	eventBytes, err := json.Marshal(event)
	if err != nil {
		return err
	}

	return producer.WriteMessages(context.Background(),
		kafka.Message{
			Key:   []byte(event.Type),
			Value: eventBytes,
		},
	)
}

// StartConsumer 启动一个 Kafka 消费者来处理变更事件。
func StartConsumer(cfg config.KafkaConfig, processor EventProcessor) {
	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  []string{cfg.Brokers},
		Topic:    cfg.Topic,
		GroupID:  "tutor-connect-go-consumer",
		MinBytes: 10e3, // 10KB
		MaxBytes: 10e6, // 10MB
	})

	log.Infof("Kafka 消费者已启动，正在监听主题 '%s'", cfg.Topic)

	for {
		m, err := r.FetchMessage(context.Background())
		if err != nil {
			log.Error("从 Kafka 读取消息失败", err)
			break
		}

		var event events.ChangeEvent
		if err := json.Unmarshal(m.Value, &event); err != nil {
			log.Errorf("无法解析变更事件: %v, value: %s", err, string(m.Value))
			// 消息格式错误，直接提交，避免阻塞队列
			if err := r.CommitMessages(context.Background(), m); err != nil {
				log.Errorf("提交错误消息失败: %v", err)
			}
			continue
		}

		if err := processor.Process(context.Background(), event); err != nil {
			log.Errorf("处理变更事件失败: type=%s, err=%v", event.Type, err)
			// 使用 Redis 计数失败次数，达到阈值后提交 offset 终止重试
			attemptsKey := fmt.Sprintf("kafka:attempts:%s:%d", event.Type, m.Offset)
			attempts, incErr := database.RDB.Incr(context.Background(), attemptsKey).Result()
			if incErr == nil {
				_ = database.RDB.Expire(context.Background(), attemptsKey, 24*time.Hour).Err()
			}
			if incErr != nil {
				// Redis 异常时保守处理：不提交 offset，让 Kafka 重试
				continue
			}
			if attempts >= 3 {
				log.Errorf("变更事件多次失败(>=3)，提交 offset 终止重试: type=%s", event.Type)
				if err := r.CommitMessages(context.Background(), m); err != nil {
					log.Errorf("提交 Kafka 消息 offset 失败: %v", err)
				}
			}
			// attempts < 3 时，不提交 offset 让 Kafka 自动重试
		} else {
			// 清理失败计数并提交 offset
			_ = database.RDB.Del(context.Background(), fmt.Sprintf("kafka:attempts:%s:%d", event.Type, m.Offset)).Err()
			if err := r.CommitMessages(context.Background(), m); err != nil {
				log.Errorf("提交 Kafka 消息 offset 失败: %v", err)
			}
		}
	}

	if err := r.Close(); err != nil {
		log.Fatalf("关闭 Kafka 消费者失败: %v", err)
	}
}

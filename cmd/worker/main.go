package main

import (
	"context"
	"encoding/json"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sllt/railbot/internal/bot"
	"github.com/sllt/railbot/internal/config"
	"github.com/sllt/railbot/internal/logger"
	"github.com/sllt/railbot/internal/store/rabbitmq"
	"go.uber.org/zap"
)

// The worker bridges a queue-based chat framework: inbound messages arrive
// on one queue, replies go out on another. Deliveries for different
// conversations may be processed concurrently; per-conversation ordering is
// preserved by the session lock inside the engine.

func workerConcurrency() int {
	v := os.Getenv("WORKER_CONCURRENCY")
	if v == "" {
		return 2
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return 2
	}
	if n > 50 {
		return 50
	}
	return n
}

func main() {
	cfg := config.Load()
	log := logger.New(cfg.Env)
	defer func() { _ = log.Sync() }()

	engine, cleanup, err := bot.Build(cfg, log)
	if err != nil {
		log.Fatal("engine setup failed", zap.Error(err))
	}
	defer cleanup()

	pub, err := rabbitmq.NewPublisher(cfg.RabbitURL, cfg.RabbitOutQueue)
	if err != nil {
		log.Fatal("reply publisher setup failed", zap.Error(err))
	}
	defer pub.Close()

	conn, err := amqp.Dial(cfg.RabbitURL)
	if err != nil {
		log.Fatal("rabbit dial failed", zap.Error(err))
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		log.Fatal("rabbit channel failed", zap.Error(err))
	}
	defer ch.Close()

	if _, err := ch.QueueDeclare(cfg.RabbitInQueue, true, false, false, false, nil); err != nil {
		log.Fatal("queue declare failed", zap.Error(err))
	}

	concurrency := workerConcurrency()
	if err := ch.Qos(concurrency, 0, false); err != nil {
		log.Fatal("qos failed", zap.Error(err))
	}

	msgs, err := ch.Consume(cfg.RabbitInQueue, "", false, false, false, false, nil)
	if err != nil {
		log.Fatal("consume failed", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info("worker started",
		zap.String("in_queue", cfg.RabbitInQueue),
		zap.String("out_queue", cfg.RabbitOutQueue),
		zap.Int("concurrency", concurrency))

	jobs := make(chan amqp.Delivery, concurrency*2)

	var wg sync.WaitGroup
	wg.Add(concurrency)
	for i := 0; i < concurrency; i++ {
		go func(workerID int) {
			defer wg.Done()
			for d := range jobs {
				var m rabbitmq.InboundMessage
				if err := json.Unmarshal(d.Body, &m); err != nil || m.ConversationID == "" {
					log.Warn("bad inbound message", zap.Int("worker", workerID), zap.Error(err))
					_ = d.Nack(false, false)
					continue
				}

				if err := handleDelivery(ctx, engine, pub, m); err != nil {
					log.Warn("delivery failed",
						zap.Int("worker", workerID),
						zap.String("conversation", m.ConversationID),
						zap.Error(err))
					_ = d.Nack(false, false)
					continue
				}

				if err := d.Ack(false); err != nil {
					log.Warn("ack failed", zap.Int("worker", workerID), zap.Error(err))
				}
			}
		}(i)
	}

	for {
		select {
		case <-ctx.Done():
			log.Info("worker shutting down")
			close(jobs)
			wg.Wait()
			return

		case d, ok := <-msgs:
			if !ok {
				log.Warn("delivery channel closed")
				time.Sleep(1 * time.Second)
				continue
			}
			jobs <- d
		}
	}
}

func handleDelivery(ctx context.Context, engine *bot.Engine, pub *rabbitmq.Publisher, m rabbitmq.InboundMessage) error {
	hctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	reply, handled := engine.HandleMessage(hctx, m.ConversationID, m.Content)

	return pub.PublishReply(ctx, rabbitmq.ReplyMessage{
		ConversationID: m.ConversationID,
		Reply:          reply.Text,
		IsError:        reply.IsError,
		Handled:        handled,
	})
}

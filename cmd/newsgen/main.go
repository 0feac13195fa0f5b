package main

import (
	"context"
	"math/rand"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/ceast3/thereplacebook/cmd/newsgen/internal/newsgen"
	"github.com/ceast3/thereplacebook/pkg/config"
)

var (
	subjects = []string{"Elon Musk", "Jeff Bezos", "Warren Buffett", "Bernard Arnault", "Larry Ellison"}
	logger   *zap.Logger
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		panic(err)
	}

	logger, err = config.NewLogger(cfg.Logger, cfg.App.Env)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	createTopic(cfg.Kafka.Brokers[0], cfg.Kafka.Topic)

	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Kafka.Brokers...),
		Topic:        cfg.Kafka.Topic,
		Balancer:     &kafka.LeastBytes{},
		BatchSize:    1,
		BatchTimeout: 10 * time.Millisecond,
	}

	ctx, cancel := context.WithCancel(context.Background())
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	r := newsgen.RealRand{Rand: rand.New(rand.NewSource(time.Now().UnixNano()))}
	gen := newsgen.NewGenerator(logger, writer, subjects, 15*time.Second, r, newsgen.RealClock{})

	go gen.Run(ctx)

	<-sigChan
	logger.Info("Shutdown signal received")
	cancel()

	if err := writer.Close(); err != nil {
		logger.Error("Error closing Kafka writer", zap.Error(err))
	} else {
		logger.Info("Kafka writer closed cleanly")
	}
}

func createTopic(brokerAddress, topicName string) {
	conn, err := kafka.Dial("tcp", brokerAddress)
	if err != nil {
		logger.Warn("Failed to dial leader for topic creation", zap.Error(err))
		return
	}
	defer conn.Close()

	controller, err := conn.Controller()
	if err != nil {
		logger.Warn("Failed to connect to controller", zap.Error(err))
		return
	}

	controllerConn, err := kafka.Dial("tcp", net.JoinHostPort(controller.Host, strconv.Itoa(controller.Port)))
	if err != nil {
		logger.Warn("Failed to dial controller", zap.Error(err))
		return
	}
	defer controllerConn.Close()

	topicConfigs := []kafka.TopicConfig{{
		Topic:             topicName,
		NumPartitions:     4,
		ReplicationFactor: 1,
	}}

	if err := controllerConn.CreateTopics(topicConfigs...); err != nil {
		logger.Debug("Topic creation info", zap.Error(err))
	}
}

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/HuaTug/video-comment/cmd/interaction/service"
	"github.com/HuaTug/video-comment/config"
	"github.com/HuaTug/video-comment/pkg/cache"
	"github.com/HuaTug/video-comment/pkg/constants"
	"github.com/HuaTug/video-comment/pkg/mq"
	"github.com/sirupsen/logrus"
)

// The consumer keeps per-video comment counts in redis from the comment
// events published by the API.
func main() {
	config.Init()
	conf := config.ConfigInfo

	client, err := cache.NewClient(conf.Redis.Addr, conf.Redis.Password, conf.Redis.DB)
	if err != nil {
		logrus.Fatalf("Failed to connect to redis: %v", err)
	}
	defer client.Close()
	ccm := cache.NewCommentCacheManager(client, config.Duration(conf.Redis.PageTTL, 10*time.Minute))

	consumer, err := mq.NewConsumer(config.RabbitMqURL())
	if err != nil {
		logrus.Fatalf("Failed to create comment event consumer: %v", err)
	}
	defer consumer.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- consumer.ConsumeCommentEvents(ctx, service.NewCommentEventHandler(ccm))
	}()
	logrus.Infof("%s started, waiting for messages...", constants.ConsumerServiceName)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-sigChan:
		logrus.Info("Shutting down comment event consumer...")
		cancel()
		<-done
	case err := <-done:
		if err != nil {
			logrus.Errorf("Comment event consumer stopped: %v", err)
			return
		}
	}
	logrus.Info("Comment event consumer stopped")
}

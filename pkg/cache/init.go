package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// NewClient creates a redis client and pings it once. A failed ping is
// returned so callers can decide to run without the cache.
func NewClient(addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		logrus.Errorf("redis %s ping failed: %v", addr, err)
		_ = client.Close()
		return nil, err
	}
	logrus.Infof("Connected to redis %s db=%d", addr, db)
	return client, nil
}

package dal

import (
	"context"
	"fmt"
	"time"

	"github.com/HuaTug/video-comment/cmd/interaction/dal/db"
	"github.com/HuaTug/video-comment/cmd/interaction/dal/memory"
	"github.com/HuaTug/video-comment/cmd/interaction/dal/mongodb"
	"github.com/HuaTug/video-comment/config"
	"github.com/HuaTug/video-comment/pkg/cache"
	"github.com/HuaTug/video-comment/pkg/utils"
	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/redis/go-redis/v9"
)

// Init builds the comment gateway selected by storage.driver and, when redis
// is enabled and reachable, wraps it with the page cache. The redis client is
// returned for other users and is nil when redis is off. The returned func
// releases every connection Init opened.
func Init(ctx context.Context) (CommentGateway, *redis.Client, func(), error) {
	timeout := config.Duration(config.ConfigInfo.Storage.Timeout, 10*time.Second)
	closers := make([]func(), 0, 2)
	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	var gateway CommentGateway
	switch driver := config.ConfigInfo.Storage.Driver; driver {
	case "mongo", "":
		client, err := mongodb.Connect(ctx, config.ConfigInfo.Mongo.URI)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("failed to connect to mongo: %w", err)
		}
		closers = append(closers, func() {
			if err := client.Disconnect(context.Background()); err != nil {
				hlog.Errorf("Failed to disconnect mongo: %v", err)
			}
		})
		coll := client.Database(config.ConfigInfo.Mongo.Database).Collection(config.ConfigInfo.Mongo.Collection)
		if err := mongodb.EnsureIndexes(ctx, coll); err != nil {
			hlog.Warnf("Failed to ensure comment indexes: %v", err)
		}
		gateway = mongodb.NewCommentCollection(coll, timeout)
	case "mysql":
		gdb, err := db.Open(utils.GetMysqlDsn())
		if err != nil {
			return nil, nil, nil, fmt.Errorf("failed to open mysql: %w", err)
		}
		closers = append(closers, func() {
			if sqlDB, err := gdb.DB(); err == nil {
				_ = sqlDB.Close()
			}
		})
		gateway = db.NewCommentDB(gdb, timeout)
	case "memory":
		hlog.Warn("Using in-memory comment storage, data is lost on restart")
		gateway = memory.NewCommentStore()
	default:
		return nil, nil, nil, fmt.Errorf("unknown storage driver %q", driver)
	}
	hlog.Infof("Comment gateway ready, driver=%s", config.ConfigInfo.Storage.Driver)

	var rdb *redis.Client
	if config.ConfigInfo.Redis.Enabled {
		client, err := cache.NewClient(config.ConfigInfo.Redis.Addr, config.ConfigInfo.Redis.Password, config.ConfigInfo.Redis.DB)
		if err != nil {
			hlog.Warnf("Comment page cache disabled: %v", err)
		} else {
			rdb = client
			closers = append(closers, func() { _ = client.Close() })
			ttl := config.Duration(config.ConfigInfo.Redis.PageTTL, 10*time.Minute)
			gateway = NewCachedGateway(gateway, cache.NewCommentCacheManager(client, ttl))
		}
	}
	return gateway, rdb, closeAll, nil
}

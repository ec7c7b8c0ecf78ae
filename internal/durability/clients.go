package durability

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"mahjong3p/internal/config"
)

// NewRedisClient connects a shared redis client for the hot store's L2
// tier, grounded on common/database/redis.go's RedisManager (simplified to
// a single non-cluster client; this repo has no ClusterAddrs config knob).
func NewRedisClient(cfg config.RedisConf) (*redis.Client, error) {
	if cfg.Addr == "" {
		return nil, nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	cli := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})
	if err := cli.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("durability: redis ping: %w", err)
	}
	return cli, nil
}

// NewMongoClient connects the cold-store mongo client, grounded on
// common/database/mongo.go's MongoManager.
func NewMongoClient(cfg config.MongoConf) (*mongo.Database, *mongo.Client, error) {
	if cfg.URL == "" {
		return nil, nil, nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	clientOptions := options.Client().ApplyURI(cfg.URL)
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, nil, fmt.Errorf("durability: mongo connect: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		return nil, nil, fmt.Errorf("durability: mongo ping: %w", err)
	}
	return client.Database(cfg.DB), client, nil
}

package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/andy-arrow/vocal-excellence-backend/config"
	"github.com/andy-arrow/vocal-excellence-backend/consumer"
	"github.com/andy-arrow/vocal-excellence-backend/utils"
)

// The reporting mirror: consumes intake events from Kafka and replicates
// them into the Redis cache and the Elasticsearch index.
func main() {
	logger := log.New(os.Stdout, "VOCAL-CONSUMER: ", log.LstdFlags|log.Lshortfile)

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("Failed to load configuration: %v", err)
	}
	if cfg.KafkaBroker == "" {
		logger.Fatalf("KAFKA_BROKER is required for the consumer")
	}

	var cache utils.RedisClient
	if cfg.RedisHost != "" {
		cache, err = utils.NewRedisClient(cfg.RedisHost, cfg.RedisPassword)
		if err != nil {
			logger.Printf("Redis cache disabled: %v", err)
			cache = nil
		} else {
			defer cache.Close()
		}
	}

	var es utils.ElasticsearchClient
	if cfg.ElasticsearchURL != "" {
		es, err = utils.NewElasticsearchClient(cfg.ElasticsearchURL)
		if err != nil {
			logger.Printf("Elasticsearch indexing disabled: %v", err)
			es = nil
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	c := consumer.NewApplicationConsumer(cfg.KafkaBroker, cache, es)
	c.Start(ctx)
	defer c.Stop()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	logger.Println("Shutting down consumer")
	cancel()
}

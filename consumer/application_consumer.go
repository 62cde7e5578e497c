package consumer

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/andy-arrow/vocal-excellence-backend/models"
	"github.com/andy-arrow/vocal-excellence-backend/utils"
)

type ApplicationEvent struct {
	Event string             `json:"event"`
	Data  models.Application `json:"data"`
}

// ApplicationConsumer mirrors intake events into the Redis cache and the
// Elasticsearch reporting index. It never writes to primary storage: rows are
// created by the API before the event is published, so the consumer only
// replicates what already exists.
type ApplicationConsumer struct {
	cache    utils.RedisClient
	es       utils.ElasticsearchClient
	reader   *kafka.Reader
	shutdown chan struct{}
}

func NewApplicationConsumer(broker string, cache utils.RedisClient, es utils.ElasticsearchClient) *ApplicationConsumer {
	return &ApplicationConsumer{
		cache: cache,
		es:    es,
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers: []string{broker},
			Topic:   utils.ApplicationEventsTopic,
			GroupID: "vocal-excellence-reporting",
			MaxWait: 10 * time.Second,
		}),
		shutdown: make(chan struct{}),
	}
}

func (c *ApplicationConsumer) Start(ctx context.Context) {
	log.Println("Starting Kafka consumer...")

	go func() {
		for {
			select {
			case <-c.shutdown:
				return
			default:
				c.processMessages(ctx)
			}
		}
	}()
}

func (c *ApplicationConsumer) Stop() {
	close(c.shutdown)
	if err := c.reader.Close(); err != nil {
		log.Printf("Error closing Kafka reader: %v", err)
	}
}

func (c *ApplicationConsumer) processMessages(ctx context.Context) {
	msg, err := c.reader.ReadMessage(ctx)
	if err != nil {
		if err == context.Canceled {
			return
		}
		log.Printf("Kafka read error: %v (will retry)", err)
		time.Sleep(5 * time.Second)
		return
	}

	var event ApplicationEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		log.Printf("Failed to unmarshal Kafka message: %v", err)
		return
	}

	switch event.Event {
	case "application_received":
		c.handleApplicationReceived(ctx, event.Data)
	case "contact_received", "signup_received":
		// Only applications are mirrored into the reporting index.
	default:
		log.Printf("Unknown event type: %s", event.Event)
	}
}

func (c *ApplicationConsumer) handleApplicationReceived(ctx context.Context, app models.Application) {
	if c.cache != nil {
		if err := utils.CacheApplication(ctx, c.cache, &app); err != nil {
			log.Printf("Failed to cache application %d: %v", app.ID, err)
		}
	}

	if c.es != nil {
		if err := c.es.IndexApplication(ctx, utils.ApplicationsIndex, fmt.Sprintf("%d", app.ID), app); err != nil {
			log.Printf("Failed to index application %d in Elasticsearch: %v", app.ID, err)
		}
	}

	log.Printf("Processed application_received event for application ID %d", app.ID)
}

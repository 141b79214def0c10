// Package consumer projects entity lifecycle events from Kafka into the
// Redis cache and the Elasticsearch index so both stay in step with the
// primary store without coupling the request path to them.
package consumer

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/segmentio/kafka-go"

	"trainertrack/models"
	"trainertrack/utils"
)

const (
	clientsIndex      = "clients"
	measurementsIndex = "measurements"
)

// TrackingEvent is the wire shape of everything published on the
// tracking_events topic. Exactly one of Client/Measurement is set for
// create and update events; delete events carry only the id.
type TrackingEvent struct {
	Event       string              `json:"event"`
	ID          uint                `json:"id"`
	Client      *models.Client      `json:"client,omitempty"`
	Measurement *models.Measurement `json:"measurement,omitempty"`
}

type TrackingConsumer struct {
	cache    utils.RedisClient
	es       utils.ElasticsearchClient
	reader   *kafka.Reader
	shutdown chan struct{}
}

func NewTrackingConsumer(cache utils.RedisClient, es utils.ElasticsearchClient) *TrackingConsumer {
	return &TrackingConsumer{
		cache: cache,
		es:    es,
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers: []string{os.Getenv("KAFKA_BROKER")},
			Topic:   "tracking_events",
			GroupID: "trainertrack-group",
			MaxWait: 10 * time.Second,
		}),
		shutdown: make(chan struct{}),
	}
}

func (c *TrackingConsumer) Start(ctx context.Context) {
	log.Println("Starting Kafka consumer...")

	go func() {
		for {
			select {
			case <-c.shutdown:
				return
			default:
				c.processMessage(ctx)
			}
		}
	}()
}

func (c *TrackingConsumer) Stop() {
	close(c.shutdown)
	if err := c.reader.Close(); err != nil {
		log.Printf("Error closing Kafka reader: %v", err)
	}
}

func (c *TrackingConsumer) processMessage(ctx context.Context) {
	msg, err := c.reader.ReadMessage(ctx)
	if err != nil {
		if err == context.Canceled {
			return
		}
		log.Printf("Kafka read error: %v (will retry)", err)
		time.Sleep(5 * time.Second)
		return
	}

	var event TrackingEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		log.Printf("Failed to unmarshal Kafka message: %v", err)
		return
	}

	c.applyEvent(ctx, event)
}

// applyEvent mutates the cache and the search index to reflect one event.
// Every step is best-effort; a failed projection is logged and the event is
// otherwise dropped.
func (c *TrackingConsumer) applyEvent(ctx context.Context, event TrackingEvent) {
	switch event.Event {
	case "client_created", "client_updated":
		if event.Client == nil {
			log.Printf("Event %q carries no client payload", event.Event)
			return
		}
		c.projectClient(ctx, *event.Client)
	case "client_deleted":
		c.dropClient(ctx, event.ID)
	case "measurement_created", "measurement_updated":
		if event.Measurement == nil {
			log.Printf("Event %q carries no measurement payload", event.Event)
			return
		}
		c.projectMeasurement(ctx, *event.Measurement)
	case "measurement_deleted":
		c.dropMeasurement(ctx, event.ID)
	default:
		log.Printf("Unknown event type: %s", event.Event)
	}
}

func (c *TrackingConsumer) projectClient(ctx context.Context, client models.Client) {
	if c.cache != nil {
		clientJSON, err := json.Marshal(client)
		if err != nil {
			log.Printf("Failed to marshal client to JSON: %v", err)
		} else {
			key := fmt.Sprintf("client:%d", client.ID)
			if err := c.cache.SetToCache(ctx, key, string(clientJSON), 24*time.Hour); err != nil {
				log.Printf("Failed to cache client: %v", err)
			}
		}
	}

	if c.es != nil {
		if err := c.es.IndexDocument(ctx, clientsIndex, fmt.Sprintf("%d", client.ID), client); err != nil {
			log.Printf("Failed to index client in Elasticsearch: %v", err)
		}
	}

	log.Printf("Projected client event for client ID %d", client.ID)
}

func (c *TrackingConsumer) dropClient(ctx context.Context, clientID uint) {
	if c.cache != nil {
		key := fmt.Sprintf("client:%d", clientID)
		if err := c.cache.DeleteFromCache(ctx, key); err != nil {
			log.Printf("Failed to delete client from cache: %v", err)
		}
	}

	if c.es != nil {
		if err := c.es.DeleteDocument(ctx, clientsIndex, fmt.Sprintf("%d", clientID)); err != nil {
			log.Printf("Failed to delete client from Elasticsearch: %v", err)
		}
	}

	log.Printf("Processed client_deleted event for client ID %d", clientID)
}

func (c *TrackingConsumer) projectMeasurement(ctx context.Context, m models.Measurement) {
	if c.es != nil {
		if err := c.es.IndexDocument(ctx, measurementsIndex, fmt.Sprintf("%d", m.ID), m); err != nil {
			log.Printf("Failed to index measurement in Elasticsearch: %v", err)
		}
	}

	log.Printf("Projected measurement event for measurement ID %d", m.ID)
}

func (c *TrackingConsumer) dropMeasurement(ctx context.Context, id uint) {
	if c.es != nil {
		if err := c.es.DeleteDocument(ctx, measurementsIndex, fmt.Sprintf("%d", id)); err != nil {
			log.Printf("Failed to delete measurement from Elasticsearch: %v", err)
		}
	}

	log.Printf("Processed measurement_deleted event for measurement ID %d", id)
}

// Package handlers exposes the HTTP surface of the tracker. Handlers speak
// the editable form representation with the outside world: single-record
// reads and all writes carry forms, and a form that fails validation never
// reaches the repository.
package handlers

import (
	"context"
	"encoding/json"
	"log"
	"strconv"
	"time"

	"trainertrack/utils"
)

// trackingTopic carries every entity lifecycle event the handlers emit.
const trackingTopic = "tracking_events"

func parseUint(s string) (uint, error) {
	id, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}

// publishEvent sends a lifecycle event to Kafka on a detached context so a
// slow broker never holds up the response. Failures are logged, not
// surfaced; the event stream is best-effort.
func publishEvent(producer utils.KafkaProducer, event map[string]interface{}) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	jsonData, err := json.Marshal(event)
	if err != nil {
		log.Printf("Failed to marshal Kafka event: %v", err)
		return
	}

	if err := producer.SendMessage(ctx, trackingTopic, nil, jsonData); err != nil {
		log.Printf("Failed to send Kafka message: %v", err)
	}
}

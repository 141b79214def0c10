package consumer

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"trainertrack/models"
	"trainertrack/utils"
)

type fakeCache struct {
	entries map[string]string
}

var _ utils.RedisClient = (*fakeCache)(nil)

func newFakeCache() *fakeCache {
	return &fakeCache{entries: make(map[string]string)}
}

func (f *fakeCache) GetFromCache(ctx context.Context, key string) (string, error) {
	return f.entries[key], nil
}

func (f *fakeCache) SetToCache(ctx context.Context, key string, value string, expiration time.Duration) error {
	f.entries[key] = value
	return nil
}

func (f *fakeCache) DeleteFromCache(ctx context.Context, key string) error {
	delete(f.entries, key)
	return nil
}

func (f *fakeCache) Close() error { return nil }

type fakeSearchIndex struct {
	docs map[string]map[string]interface{}
}

var _ utils.ElasticsearchClient = (*fakeSearchIndex)(nil)

func newFakeSearchIndex() *fakeSearchIndex {
	return &fakeSearchIndex{docs: make(map[string]map[string]interface{})}
}

func (f *fakeSearchIndex) IndexDocument(ctx context.Context, index string, id string, document interface{}) error {
	raw, err := json.Marshal(document)
	if err != nil {
		return err
	}
	var doc map[string]interface{}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return err
	}
	f.docs[index+"/"+id] = doc
	return nil
}

func (f *fakeSearchIndex) SearchDocuments(ctx context.Context, index string, query map[string]interface{}) ([]map[string]interface{}, error) {
	return nil, nil
}

func (f *fakeSearchIndex) DeleteDocument(ctx context.Context, index string, id string) error {
	delete(f.docs, index+"/"+id)
	return nil
}

func (f *fakeSearchIndex) Close() error { return nil }

func testClient() models.Client {
	c := models.Client{
		FirstName:   "John",
		LastName:    "Doe",
		Email:       "john@doe.com",
		DateOfBirth: "01.01.2000",
	}
	c.ID = 4
	return c
}

func TestApplyClientCreated(t *testing.T) {
	cache := newFakeCache()
	index := newFakeSearchIndex()
	c := &TrackingConsumer{cache: cache, es: index, shutdown: make(chan struct{})}

	client := testClient()
	c.applyEvent(context.Background(), TrackingEvent{Event: "client_created", Client: &client})

	cached, ok := cache.entries["client:4"]
	assert.True(t, ok, "client should be cached")
	var fromCache models.Client
	assert.NoError(t, json.Unmarshal([]byte(cached), &fromCache))
	assert.Equal(t, "john@doe.com", fromCache.Email)

	doc, ok := index.docs["clients/4"]
	assert.True(t, ok, "client should be indexed")
	assert.Equal(t, "John", doc["FirstName"])
}

func TestApplyClientDeleted(t *testing.T) {
	cache := newFakeCache()
	index := newFakeSearchIndex()
	c := &TrackingConsumer{cache: cache, es: index, shutdown: make(chan struct{})}

	client := testClient()
	ctx := context.Background()
	c.applyEvent(ctx, TrackingEvent{Event: "client_created", Client: &client})
	c.applyEvent(ctx, TrackingEvent{Event: "client_deleted", ID: client.ID})

	_, cached := cache.entries["client:4"]
	assert.False(t, cached, "deleted client must leave the cache")
	_, indexed := index.docs["clients/4"]
	assert.False(t, indexed, "deleted client must leave the index")
}

func TestApplyMeasurementEvents(t *testing.T) {
	index := newFakeSearchIndex()
	c := &TrackingConsumer{es: index, shutdown: make(chan struct{})}

	m := models.Measurement{ClientID: 4, Date: "15.06.2024", BodyWeightKg: 79.7}
	m.ID = 9
	ctx := context.Background()

	c.applyEvent(ctx, TrackingEvent{Event: "measurement_created", Measurement: &m})
	doc, ok := index.docs["measurements/9"]
	assert.True(t, ok, "measurement should be indexed")
	assert.Equal(t, 79.7, doc["BodyWeightKg"])

	c.applyEvent(ctx, TrackingEvent{Event: "measurement_deleted", ID: m.ID})
	_, still := index.docs["measurements/9"]
	assert.False(t, still, "deleted measurement must leave the index")
}

func TestApplyEventToleratesBadPayloads(t *testing.T) {
	c := &TrackingConsumer{shutdown: make(chan struct{})}
	ctx := context.Background()

	// Missing payloads and unknown event types are dropped, never panic.
	c.applyEvent(ctx, TrackingEvent{Event: "client_created"})
	c.applyEvent(ctx, TrackingEvent{Event: "measurement_updated"})
	c.applyEvent(ctx, TrackingEvent{Event: "something_else", ID: 1})
}

package events

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []Event
	err    error
}

func (r *recordingPublisher) Publish(_ context.Context, ev Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	return r.err
}

func TestMulti_FansOutAndJoinsErrors(t *testing.T) {
	t.Parallel()

	ok := &recordingPublisher{}
	failing := &recordingPublisher{err: errors.New("broker down")}
	m := Multi{ok, Nop{}, failing}

	err := m.Publish(context.Background(), Event{Type: TypeUserLoggedIn, UserID: "u1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broker down")
	assert.Len(t, ok.events, 1)
	assert.Len(t, failing.events, 1)

	require.NoError(t, Multi{}.Publish(context.Background(), Event{}))
}

func newFakeElasticsearch(t *testing.T, docs chan<- map[string]any) *httptest.Server {
	t.Helper()
	return newFakeElasticsearchWithSearch(t, docs, make(chan map[string]any, 1))
}

func newFakeElasticsearchWithSearch(t *testing.T, docs, searches chan<- map[string]any) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/":
			_, _ = io.WriteString(w, `{"version":{"number":"9.0.0","build_flavor":"default"},"tagline":"You Know, for Search"}`)
		case r.URL.Path == "/auth-audit/_search":
			var q map[string]any
			_ = json.NewDecoder(r.Body).Decode(&q)
			searches <- q
			_, _ = io.WriteString(w, `{"hits":{"total":{"value":2,"relation":"eq"},"hits":[`+
				`{"_source":{"type":"token_revoked","user_id":"u1","at":"2026-03-01T12:00:00Z"}},`+
				`{"_source":{"type":"user_logged_in","user_id":"u1","at":"2026-03-01T11:00:00Z"}}]}}`)
		case strings.HasPrefix(r.URL.Path, "/auth-audit/_doc"):
			var doc map[string]any
			_ = json.NewDecoder(r.Body).Decode(&doc)
			docs <- doc
			w.WriteHeader(http.StatusCreated)
			_, _ = io.WriteString(w, `{"_index":"auth-audit","_id":"1","result":"created"}`)
		default:
			w.WriteHeader(http.StatusNotFound)
			_, _ = io.WriteString(w, `{"error":"not found"}`)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestAuditIndex_Publish(t *testing.T) {
	t.Parallel()

	docs := make(chan map[string]any, 1)
	srv := newFakeElasticsearch(t, docs)

	idx, err := NewAuditIndex(AuditConfig{Addresses: []string{srv.URL}})
	require.NoError(t, err)

	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, idx.Publish(context.Background(), Event{Type: TypeTokenRevoked, UserID: "u1", At: at}))

	doc := <-docs
	assert.Equal(t, TypeTokenRevoked, doc["type"])
	assert.Equal(t, "u1", doc["user_id"])
}

func TestAuditIndex_Search(t *testing.T) {
	t.Parallel()

	searches := make(chan map[string]any, 1)
	srv := newFakeElasticsearchWithSearch(t, make(chan map[string]any, 1), searches)

	idx, err := NewAuditIndex(AuditConfig{Addresses: []string{srv.URL}})
	require.NoError(t, err)

	total, evs, err := idx.Search(context.Background(), AuditQuery{UserID: "u1", From: 10, Size: 5})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	require.Len(t, evs, 2)
	assert.Equal(t, TypeTokenRevoked, evs[0].Type)
	assert.True(t, evs[0].At.After(evs[1].At))

	q := <-searches
	assert.EqualValues(t, 10, q["from"])
	assert.EqualValues(t, 5, q["size"])
	filter := q["query"].(map[string]any)["bool"].(map[string]any)["filter"].([]any)
	require.Len(t, filter, 1)
	assert.Equal(t, map[string]any{"term": map[string]any{"user_id.keyword": "u1"}}, filter[0])
}

func TestAuditIndex_PublishErrorStatus(t *testing.T) {
	t.Parallel()

	docs := make(chan map[string]any, 1)
	srv := newFakeElasticsearch(t, docs)

	idx, err := NewAuditIndex(AuditConfig{Addresses: []string{srv.URL}, Index: "missing"})
	require.NoError(t, err)

	err = idx.Publish(context.Background(), Event{Type: TypeUserRegistered, UserID: "u1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
}

func TestKafkaPublisher_FlushesWithoutBatchDelay(t *testing.T) {
	t.Parallel()

	p := NewKafkaPublisher([]string{"localhost:9092"}, "auth_events")
	t.Cleanup(func() { _ = p.Close() })

	assert.Equal(t, 1, p.w.BatchSize)
	assert.LessOrEqual(t, p.w.BatchTimeout, 10*time.Millisecond)
	assert.Positive(t, p.w.BatchTimeout)
}

func TestKafkaPublisher_Integration(t *testing.T) {
	brokers := os.Getenv("KAFKA_TEST_BROKERS")
	if brokers == "" {
		t.Skip("KAFKA_TEST_BROKERS is required for this test")
	}
	addrs := strings.Split(brokers, ",")
	topic := "auth_events_test_" + uuid.NewString()[:8]

	conn, err := kafka.Dial("tcp", addrs[0])
	require.NoError(t, err)
	require.NoError(t, conn.CreateTopics(kafka.TopicConfig{Topic: topic, NumPartitions: 1, ReplicationFactor: 1}))
	require.NoError(t, conn.Close())

	p := NewKafkaPublisher(addrs, topic)
	t.Cleanup(func() { _ = p.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()
	require.NoError(t, p.Publish(ctx, Event{Type: TypeUserRegistered, UserID: "u1", Username: "alice"}))

	r := kafka.NewReader(kafka.ReaderConfig{Brokers: addrs, Topic: topic, Partition: 0, MinBytes: 1, MaxBytes: 10e6})
	t.Cleanup(func() { _ = r.Close() })

	msg, err := r.ReadMessage(ctx)
	require.NoError(t, err)
	assert.Equal(t, "u1", string(msg.Key))

	var ev Event
	require.NoError(t, json.Unmarshal(msg.Value, &ev))
	assert.Equal(t, TypeUserRegistered, ev.Type)
	assert.Equal(t, "alice", ev.Username)
}

//go:build integration

package integration_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tckafka "github.com/testcontainers/testcontainers-go/modules/kafka"

	"github.com/couchcryptid/weather-dashboard-service/internal/adapter/kafka"
	"github.com/couchcryptid/weather-dashboard-service/internal/config"
	"github.com/couchcryptid/weather-dashboard-service/internal/dashboard"
	"github.com/couchcryptid/weather-dashboard-service/internal/domain"
	"github.com/couchcryptid/weather-dashboard-service/internal/observability"
)

const testTopic = "test-weather-snapshots"

// staticProvider returns the same forecast for every request.
type staticProvider struct {
	forecast domain.Forecast
}

func (p staticProvider) Forecast(_ context.Context, loc domain.Location) (domain.Forecast, error) {
	f := p.forecast
	f.Location = loc
	f.FetchedAt = domain.Now()
	return f, nil
}

func startKafka(ctx context.Context, t *testing.T) string {
	t.Helper()
	container, err := tckafka.Run(ctx, "confluentinc/confluent-local:7.5.0", tckafka.WithClusterID("weather-test"))
	require.NoError(t, err, "start kafka container")
	t.Cleanup(func() {
		if err := testcontainers.TerminateContainer(container); err != nil {
			t.Logf("terminate kafka container: %v", err)
		}
	})

	brokers, err := container.Brokers(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, brokers)
	return brokers[0]
}

func createTopic(t *testing.T, broker, topic string) {
	t.Helper()
	conn, err := kafkago.Dial("tcp", broker)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.CreateTopics(kafkago.TopicConfig{
		Topic:             topic,
		NumPartitions:     1,
		ReplicationFactor: 1,
	}))
}

// TestRefreshPublishesSnapshot runs one dashboard refresh against a real broker
// and reads the published snapshot back.
func TestRefreshPublishesSnapshot(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testTopic)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := &config.Config{KafkaBrokers: []string{broker}, KafkaTopic: testTopic}
	publisher := kafka.NewPublisher(cfg, logger)
	defer publisher.Close()

	loc := domain.Location{
		Name:       "Gqeberha",
		Coordinate: domain.Coordinate{Lat: -33.9611, Lon: 25.6149},
		Timezone:   "Africa/Johannesburg",
		PastDays:   1,
	}
	provider := staticProvider{forecast: domain.Forecast{
		UTCOffsetSeconds: 7200,
		Current:          domain.CurrentConditions{Temperature: 21.4, Humidity: 65},
	}}

	svc := dashboard.New(provider, loc, time.Minute, nil, logger, observability.NewMetricsForTesting())
	svc.AddSink("kafka", publisher)
	require.NoError(t, svc.Refresh(ctx))

	consumer := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers: []string{broker},
		Topic:   testTopic,
		GroupID: fmt.Sprintf("test-consumer-%d", time.Now().UnixNano()),
	})
	defer consumer.Close()

	readCtx, readCancel := context.WithTimeout(ctx, 30*time.Second)
	defer readCancel()
	msg, err := consumer.ReadMessage(readCtx)
	require.NoError(t, err, "read from snapshot topic")

	assert.Equal(t, "-33.9611,25.6149", string(msg.Key))

	var got domain.Forecast
	require.NoError(t, json.Unmarshal(msg.Value, &got))
	assert.Equal(t, "Gqeberha", got.Location.Name)
	assert.InDelta(t, 21.4, got.Current.Temperature, 1e-9)
}

package clickhouse

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"github.com/spf13/viper"
)

// Client writes dispatch results to ClickHouse for later inspection.
type Client struct {
	conn     driver.Conn
	database string
}

// DispatchLog is one row of the dispatch result log.
type DispatchLog struct {
	JobID             string
	Kind              string
	ShopID            int64
	RecipientCount    int32
	PushTargets       int32
	ProviderMessageID string
	Success           bool
	Error             string
	DispatchedAt      time.Time
}

// NewClient connects to ClickHouse. The dispatch log is best-effort, so
// callers may run without a client when the connection fails.
func NewClient() (*Client, error) {
	database := viper.GetString("clickhouse.database")

	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr: []string{fmt.Sprintf(
			"%s:%s",
			os.Getenv("CLICKHOUSE_HOST"),
			viper.GetString("clickhouse.port"),
		)},
		Auth: clickhouse.Auth{
			Database: database,
			Username: os.Getenv("CLICKHOUSE_USER"),
			Password: os.Getenv("CLICKHOUSE_PASSWORD"),
		},
		Compression: &clickhouse.Compression{
			Method: clickhouse.CompressionLZ4,
		},
		DialTimeout: 30 * time.Second,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to ClickHouse: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := conn.Ping(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping ClickHouse: %w", err)
	}

	ddl := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s.dispatch_log (
			job_id String,
			kind String,
			shop_id Int64,
			recipient_count Int32,
			push_targets Int32,
			provider_message_id String,
			success Bool,
			error String,
			dispatched_at DateTime64(3)
		) ENGINE = MergeTree()
		ORDER BY dispatched_at
	`, database)
	if err := conn.Exec(ctx, ddl); err != nil {
		return nil, fmt.Errorf("failed to create dispatch log table: %w", err)
	}

	return &Client{
		conn:     conn,
		database: database,
	}, nil
}

// Close closes the connection for graceful shutdown.
func (c *Client) Close() error {
	return c.conn.Close()
}

// InsertDispatchLog records the outcome of one dispatch attempt.
func (c *Client) InsertDispatchLog(ctx context.Context, row DispatchLog) error {
	query := fmt.Sprintf(`
		INSERT INTO %s.dispatch_log (
			job_id, kind, shop_id, recipient_count, push_targets,
			provider_message_id, success, error, dispatched_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, c.database)

	return c.conn.Exec(ctx, query,
		row.JobID,
		row.Kind,
		row.ShopID,
		row.RecipientCount,
		row.PushTargets,
		row.ProviderMessageID,
		row.Success,
		row.Error,
		row.DispatchedAt,
	)
}

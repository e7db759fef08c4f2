package worker

import (
	"context"
	"errors"
	"sync"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
)

// MockClickHouseConn implements driver.Conn for testing
type MockClickHouseConn struct {
	driver.Conn

	mu       sync.Mutex
	batches  []*MockBatch
	execs    []string
	sendFail bool
}

func (m *MockClickHouseConn) PrepareBatch(ctx context.Context, query string, opts ...driver.PrepareBatchOption) (driver.Batch, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b := &MockBatch{conn: m}
	m.batches = append(m.batches, b)
	return b, nil
}

func (m *MockClickHouseConn) Exec(ctx context.Context, query string, args ...interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.execs = append(m.execs, query)
	return nil
}

// SentRows returns every row of every successfully sent batch
func (m *MockClickHouseConn) SentRows() [][]interface{} {
	m.mu.Lock()
	defer m.mu.Unlock()
	var rows [][]interface{}
	for _, b := range m.batches {
		if b.sent {
			rows = append(rows, b.rows...)
		}
	}
	return rows
}

// MockBatch implements driver.Batch, recording appended rows
type MockBatch struct {
	driver.Batch
	conn *MockClickHouseConn
	rows [][]interface{}
	sent bool
}

func (m *MockBatch) Append(v ...interface{}) error {
	m.rows = append(m.rows, v)
	return nil
}

func (m *MockBatch) Send() error {
	m.conn.mu.Lock()
	defer m.conn.mu.Unlock()
	if m.conn.sendFail {
		return errors.New("clickhouse unavailable")
	}
	m.sent = true
	return nil
}

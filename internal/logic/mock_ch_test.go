package logic

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"github.com/redis/go-redis/v9"
)

// MockConn serves canned rows to every query
type MockConn struct {
	driver.Conn
	Rows      [][]interface{}
	QueryErr  error
	Queries   []string
	QueryArgs [][]interface{}
}

func (m *MockConn) Query(ctx context.Context, query string, args ...interface{}) (driver.Rows, error) {
	m.Queries = append(m.Queries, query)
	m.QueryArgs = append(m.QueryArgs, args)
	if m.QueryErr != nil {
		return nil, m.QueryErr
	}
	return &MockRows{rows: m.Rows}, nil
}

type MockRows struct {
	driver.Rows
	rows     [][]interface{}
	rowIndex int
}

func (m *MockRows) Next() bool {
	m.rowIndex++
	return m.rowIndex <= len(m.rows)
}

func (m *MockRows) Scan(dest ...interface{}) error {
	row := m.rows[m.rowIndex-1]
	for i := range dest {
		assign(dest[i], row[i])
	}
	return nil
}

func (m *MockRows) Close() error {
	return nil
}

func (m *MockRows) Err() error {
	return nil
}

func assign(dest interface{}, val interface{}) {
	// Simple reflection to assign value to pointer
	v := reflect.ValueOf(dest).Elem()
	v.Set(reflect.ValueOf(val))
}

// MockRedis is an in-memory RedisClient
type MockRedis struct {
	mu      sync.Mutex
	data    map[string]string
	Fail    bool
	Gets    int
	Sets    int
	Deletes int
}

func NewMockRedis() *MockRedis {
	return &MockRedis{data: map[string]string{}}
}

var errRedisDown = errors.New("redis: connection refused")

func (m *MockRedis) Get(ctx context.Context, key string) *redis.StringCmd {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Gets++
	if m.Fail {
		return redis.NewStringResult("", errRedisDown)
	}
	v, ok := m.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (m *MockRedis) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Sets++
	if m.Fail {
		return redis.NewStatusResult("", errRedisDown)
	}
	switch v := value.(type) {
	case []byte:
		m.data[key] = string(v)
	case string:
		m.data[key] = v
	}
	return redis.NewStatusResult("OK", nil)
}

func (m *MockRedis) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Deletes++
	if m.Fail {
		return redis.NewIntResult(0, errRedisDown)
	}
	var n int64
	for _, k := range keys {
		if _, ok := m.data[k]; ok {
			delete(m.data, k)
			n++
		}
	}
	return redis.NewIntResult(n, nil)
}

func (m *MockRedis) Has(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.data[key]
	return ok
}

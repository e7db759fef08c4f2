package worker

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"
)

func TestPool_RaceCondition(t *testing.T) {
	ch := &MockClickHouseConn{}
	p := NewPool(PoolConfig{
		WorkerCount:   2,
		QueueSize:     1000,
		BatchSize:     10,
		FlushInterval: 10 * time.Millisecond,
		ClickHouse:    ch,
		Logger:        zap.NewNop(),
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	p.Start(ctx)

	wg := sync.WaitGroup{}
	producers := 10
	rowsPerProducer := 50

	for i := 0; i < producers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < rowsPerProducer; j++ {
				p.Enqueue(graded(fmt.Sprintf("%d-%d", i, j), j%2 == 0))
				if j%10 == 0 {
					time.Sleep(time.Millisecond)
				}
			}
		}(i)
	}

	// Stop concurrently with late producers; shed rows are fine, panics are not
	go func() {
		time.Sleep(5 * time.Millisecond)
		p.Enqueue(graded("late", true))
	}()

	wg.Wait()
	p.Stop()

	if got := len(ch.SentRows()); got != producers*rowsPerProducer && got != producers*rowsPerProducer+1 {
		t.Errorf("exported %d rows, want %d", got, producers*rowsPerProducer)
	}
}

package worker

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/propline/stats-api/internal/models"
)

// MockRefresher records refreshed players and can block or fail on demand.
type MockRefresher struct {
	mu       sync.Mutex
	Players  []int64
	Windows  [][]int
	FailFor  map[int64]bool
	Delay    time.Duration
	block    chan struct{}
	inflight int
	maxSeen  int
}

func NewMockRefresher() *MockRefresher {
	return &MockRefresher{FailFor: make(map[int64]bool)}
}

func (m *MockRefresher) ComputeRollingSplits(ctx context.Context, playerID int64, windows []int) error {
	m.mu.Lock()
	m.inflight++
	if m.inflight > m.maxSeen {
		m.maxSeen = m.inflight
	}
	block := m.block
	m.mu.Unlock()

	if block != nil {
		<-block
	}
	if m.Delay > 0 {
		time.Sleep(m.Delay)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.inflight--
	m.Players = append(m.Players, playerID)
	m.Windows = append(m.Windows, windows)
	if m.FailFor[playerID] {
		return errors.New("refresh failed")
	}
	return nil
}

func (m *MockRefresher) refreshed() []int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]int64(nil), m.Players...)
}

// MockBatchRunner counts batch runs
type MockBatchRunner struct {
	mu   sync.Mutex
	runs int
	ran  chan struct{}
}

func (m *MockBatchRunner) ProcessAllPlayers(ctx context.Context) models.BatchResult {
	m.mu.Lock()
	m.runs++
	m.mu.Unlock()
	if m.ran != nil {
		select {
		case m.ran <- struct{}{}:
		default:
		}
	}
	return models.BatchResult{RunID: "run", Processed: 3, Total: 3}
}

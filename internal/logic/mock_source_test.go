package logic

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/propline/stats-api/internal/models"
)

var errUpstream = errors.New("upstream unavailable")

// mockGameLogs serves canned records and applies the same date pre-filter
// the ClickHouse source pushes down.
type mockGameLogs struct {
	mu        sync.Mutex
	byPlayer  map[int64][]models.GameStatRecord
	season    []models.GameStatRecord
	active    []int64
	failFor   map[int64]bool
	err       error
	calls     int
	lastQuery models.GameLogQuery
}

func newMockGameLogs() *mockGameLogs {
	return &mockGameLogs{
		byPlayer: make(map[int64][]models.GameStatRecord),
		failFor:  make(map[int64]bool),
	}
}

func (m *mockGameLogs) add(records ...models.GameStatRecord) {
	for _, r := range records {
		m.byPlayer[r.PlayerID] = append(m.byPlayer[r.PlayerID], r)
		m.season = append(m.season, r)
	}
}

func (m *mockGameLogs) PlayerGameLog(ctx context.Context, playerID int64, q models.GameLogQuery) ([]models.GameStatRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	m.lastQuery = q
	if m.err != nil {
		return nil, m.err
	}
	if m.failFor[playerID] {
		return nil, errUpstream
	}

	var out []models.GameStatRecord
	for _, r := range m.byPlayer[playerID] {
		if q.Season != 0 && r.Season != q.Season {
			continue
		}
		if !q.From.IsZero() && dateOnly(r.GameDate).Before(dateOnly(q.From)) {
			continue
		}
		if !q.To.IsZero() && dateOnly(r.GameDate).After(dateOnly(q.To)) {
			continue
		}
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].GameDate.After(out[j].GameDate) })
	return out, nil
}

func (m *mockGameLogs) SeasonGameLogs(ctx context.Context, season int) ([]models.GameStatRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	var out []models.GameStatRecord
	for _, r := range m.season {
		if r.Season == season {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *mockGameLogs) ActivePlayers(ctx context.Context, since time.Time) ([]int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.active, nil
}

func (m *mockGameLogs) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

type mockSplitStore struct {
	mu      sync.Mutex
	rows    map[string]models.RollingSplitSnapshot
	writes  int
	failErr error
}

func newMockSplitStore() *mockSplitStore {
	return &mockSplitStore{rows: make(map[string]models.RollingSplitSnapshot)}
}

func (s *mockSplitStore) UpsertSplit(ctx context.Context, snap models.RollingSplitSnapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failErr != nil {
		return s.failErr
	}
	s.writes++
	s.rows[splitRowKey(snap.PlayerID, snap.StatCategory, snap.WindowSize)] = snap
	return nil
}

func (s *mockSplitStore) ListSplits(ctx context.Context, playerID int64) ([]models.RollingSplitSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failErr != nil {
		return nil, s.failErr
	}
	var out []models.RollingSplitSnapshot
	for _, snap := range s.rows {
		if snap.PlayerID == playerID {
			out = append(out, snap)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].StatCategory != out[j].StatCategory {
			return out[i].StatCategory < out[j].StatCategory
		}
		return out[i].WindowSize < out[j].WindowSize
	})
	return out, nil
}

func (s *mockSplitStore) get(playerID int64, stat string, window int) (models.RollingSplitSnapshot, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap, ok := s.rows[splitRowKey(playerID, stat, window)]
	return snap, ok
}

func splitRowKey(playerID int64, stat string, window int) string {
	return fmt.Sprintf("%d/%s/%d", playerID, stat, window)
}

var baseDate = time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)

// pointsGames builds one game per value, most recent first, one day apart.
// Even indexes are home games.
func pointsGames(playerID int64, values ...int) []models.GameStatRecord {
	out := make([]models.GameStatRecord, len(values))
	for i, v := range values {
		out[i] = models.GameStatRecord{
			GameID:         int64(1000 + len(values) - i),
			PlayerID:       playerID,
			Season:         2024,
			GameDate:       baseDate.AddDate(0, 0, -i),
			TeamID:         1,
			OpponentTeamID: int64(10 + i%3),
			IsHome:         i%2 == 0,
			Minutes:        32,
			Points:         v,
		}
	}
	return out
}

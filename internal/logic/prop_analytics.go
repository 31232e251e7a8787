package logic

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/propline/stats-api/internal/models"
)

type propAnalyticsEngine struct {
	source GameLogSource
}

func NewPropAnalyticsEngine(source GameLogSource) PropAnalyticsService {
	return &propAnalyticsEngine{source: source}
}

// AnalyzeProp computes hit rate, average, recent form and venue splits of a
// player's stat against line. A value equal to the line counts as over.
func (e *propAnalyticsEngine) AnalyzeProp(ctx context.Context, playerID int64, category models.StatCategory, line float64, filter models.PropFilter) (*models.PropAnalysisResult, error) {
	outcomes, err := e.GetGameOutcomes(ctx, playerID, category, line, filter)
	if err != nil {
		return nil, err
	}

	result := &models.PropAnalysisResult{
		PlayerID:     playerID,
		StatCategory: category,
		Line:         line,
	}
	if len(outcomes) == 0 {
		result.NoDataAvailable = true
		return result, nil
	}

	all := tallyOutcomes(outcomes)
	result.OverCount = all.over
	result.UnderCount = all.under
	result.TotalGames = all.over + all.under
	overall := all.form()
	result.HitRate = overall.HitRate
	result.Average = overall.Average

	result.RecentForm = models.RecentForm{
		Last5:  tallyOutcomes(firstN(outcomes, 5)).form(),
		Last10: tallyOutcomes(firstN(outcomes, 10)).form(),
		Last20: tallyOutcomes(firstN(outcomes, 20)).form(),
	}

	var home, away []models.GameOutcome
	for _, o := range outcomes {
		if o.IsHome {
			home = append(home, o)
		} else {
			away = append(away, o)
		}
	}
	result.HomeAwayStats = models.HomeAwayStats{
		Home: tallyOutcomes(home).form(),
		Away: tallyOutcomes(away).form(),
	}

	return result, nil
}

// GetGameOutcomes runs the filter pipeline and evaluates every remaining game,
// most recent first.
func (e *propAnalyticsEngine) GetGameOutcomes(ctx context.Context, playerID int64, category models.StatCategory, line float64, filter models.PropFilter) ([]models.GameOutcome, error) {
	records, err := e.filteredGames(ctx, playerID, filter)
	if err != nil {
		return nil, err
	}

	outcomes := make([]models.GameOutcome, 0, len(records))
	for _, r := range records {
		value := StatValue(r, category)
		result := models.ResultUnder
		if value >= line {
			result = models.ResultOver
		}
		outcomes = append(outcomes, models.GameOutcome{
			GameID:         r.GameID,
			GameDate:       r.GameDate,
			Value:          value,
			Line:           line,
			Result:         result,
			OpponentTeamID: r.OpponentTeamID,
			IsHome:         r.IsHome,
			Minutes:        r.Minutes,
		})
	}
	return outcomes, nil
}

func (e *propAnalyticsEngine) filteredGames(ctx context.Context, playerID int64, filter models.PropFilter) ([]models.GameStatRecord, error) {
	for _, id := range filter.ExcludedPlayerIDs {
		if id == playerID {
			return nil, nil
		}
	}

	query := models.GameLogQuery{From: filter.From, To: filter.To}

	var (
		records     []models.GameStatRecord
		withoutGame = make(map[int64]bool)
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log, err := e.source.PlayerGameLog(gctx, playerID, query)
		if err != nil {
			return fmt.Errorf("fetch game log for player %d: %w", playerID, err)
		}
		records = log
		return nil
	})

	// Excluded players are teammates: drop the games they appeared in.
	excluded := make([][]models.GameStatRecord, len(filter.ExcludedPlayerIDs))
	for i, id := range filter.ExcludedPlayerIDs {
		g.Go(func() error {
			log, err := e.source.PlayerGameLog(gctx, id, query)
			if err != nil {
				return fmt.Errorf("fetch game log for excluded player %d: %w", id, err)
			}
			excluded[i] = log
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	for _, log := range excluded {
		for _, r := range log {
			if r.Minutes > 0 {
				withoutGame[r.GameID] = true
			}
		}
	}

	sortMostRecentFirst(records)
	return applyFilter(records, filter, withoutGame), nil
}

// applyFilter applies date range, venue, minutes, opponent and teammate
// exclusion in that order, then truncates to the last N games.
func applyFilter(records []models.GameStatRecord, filter models.PropFilter, skipGames map[int64]bool) []models.GameStatRecord {
	from, to := dateOnly(filter.From), dateOnly(filter.To)

	out := make([]models.GameStatRecord, 0, len(records))
	for _, r := range records {
		day := dateOnly(r.GameDate)
		if !filter.From.IsZero() && day.Before(from) {
			continue
		}
		if !filter.To.IsZero() && day.After(to) {
			continue
		}
		switch filter.Location {
		case models.LocationHome:
			if !r.IsHome {
				continue
			}
		case models.LocationAway:
			if r.IsHome {
				continue
			}
		}
		if r.Minutes < filter.MinMinutes {
			continue
		}
		if filter.OpponentTeamID != 0 && r.OpponentTeamID != filter.OpponentTeamID {
			continue
		}
		if skipGames[r.GameID] {
			continue
		}
		out = append(out, r)
	}

	if filter.LastNGames > 0 && len(out) > filter.LastNGames {
		out = out[:filter.LastNGames]
	}
	return out
}

// CalculateExpectedValue prices a wager at americanOdds given a hit rate in
// percent. Positive odds pay odds per 100 staked, negative odds pay 100 per
// |odds| staked.
func CalculateExpectedValue(hitRate, americanOdds, wager float64) models.ExpectedValue {
	var payout, implied float64
	if americanOdds >= 0 {
		payout = wager * americanOdds / 100
		implied = 100 / (americanOdds + 100)
	} else {
		abs := math.Abs(americanOdds)
		payout = wager * 100 / abs
		implied = abs / (abs + 100)
	}

	p := hitRate / 100
	ev := p*payout - (1-p)*wager

	result := models.ExpectedValue{
		HitRate:            hitRate,
		AmericanOdds:       americanOdds,
		Wager:              wager,
		Payout:             roundTo(payout, 2),
		ExpectedValue:      roundTo(ev, 2),
		ImpliedProbability: roundTo(implied*100, 2),
	}
	if wager > 0 {
		result.ROIPercent = roundTo(ev/wager*100, 2)
	}
	return result
}

// =============================================================================
// helpers
// =============================================================================

type tally struct {
	over  int
	under int
	sum   float64
}

func tallyOutcomes(outcomes []models.GameOutcome) tally {
	var t tally
	for _, o := range outcomes {
		if o.Result == models.ResultOver {
			t.over++
		} else {
			t.under++
		}
		t.sum += o.Value
	}
	return t
}

func (t tally) form() models.WindowForm {
	games := t.over + t.under
	if games == 0 {
		return models.WindowForm{}
	}
	return models.WindowForm{
		Games:   games,
		HitRate: hitRate(t.over, games),
		Average: roundTo(t.sum/float64(games), 1),
	}
}

func hitRate(over, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(over) / float64(total) * 100))
}

func firstN[T any](items []T, n int) []T {
	if len(items) > n {
		return items[:n]
	}
	return items
}

func roundTo(v float64, places int) float64 {
	pow := math.Pow(10, float64(places))
	r := math.Round(v*pow) / pow
	if r == 0 {
		return 0 // no negative zero
	}
	return r
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func dateOnly(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func sortMostRecentFirst(records []models.GameStatRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		if !records[i].GameDate.Equal(records[j].GameDate) {
			return records[i].GameDate.After(records[j].GameDate)
		}
		return records[i].GameID > records[j].GameID
	})
}

// Package insights mines a tracker's completion history for day-of-week,
// difficulty, anchor-task, and mood patterns. Everything here is read-only;
// thin results with InsufficientData set replace errors when the sample is
// too small.
package insights

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/14harshaldhote/trackpro/internal/cache"
	"github.com/14harshaldhote/trackpro/internal/database"
	"github.com/14harshaldhote/trackpro/internal/models"
	"github.com/14harshaldhote/trackpro/internal/services/streak"
	"github.com/14harshaldhote/trackpro/internal/telemetry"
)

// Thresholds are the analysis policy knobs. They are plain data so tests
// and deployments can override individual values; DefaultThresholds gives
// the production policy.
type Thresholds struct {
	WindowDays           int     // trailing history window
	DayGapPoints         float64 // best/worst completion-rate gap worth reporting
	DayMissRatePct       float64 // per-day miss rate worth reporting
	MinSampleSize        int     // minimum facts/instances before any analysis
	MissWeight           float64 // difficulty blend
	AbandonWeight        float64
	CompletionWeight     float64
	AnchorMinStreak      int     // streak length before anchor analysis applies
	AnchorCompletionPct  float64 // template completion within the streak
	MoodHighScore        float64 // sentiment >= this is a high-mood day
	MoodLowScore         float64 // sentiment <= this is a low-mood day
	MoodGapPoints        float64 // bucket completion-rate gap worth reporting
}

// DefaultThresholds is the production analysis policy
func DefaultThresholds() Thresholds {
	return Thresholds{
		WindowDays:          90,
		DayGapPoints:        20,
		DayMissRatePct:      30,
		MinSampleSize:       5,
		MissWeight:          0.6,
		AbandonWeight:       0.3,
		CompletionWeight:    0.1,
		AnchorMinStreak:     7,
		AnchorCompletionPct: 95,
		MoodHighScore:       0.6,
		MoodLowScore:        0.4,
		MoodGapPoints:       15,
	}
}

// StreakCalculator is the slice of the streak engine anchor analysis needs
type StreakCalculator interface {
	Calculate(ctx context.Context, ownerID, trackerID uuid.UUID, asOf time.Time) (*streak.Result, error)
}

// DayStat is one weekday's completion bucket
type DayStat struct {
	Weekday       time.Weekday `json:"weekday"`
	Total         int          `json:"total"`
	Completed     int          `json:"completed"`
	Missed        int          `json:"missed"`
	CompletionPct float64      `json:"completion_pct"`
	MissPct       float64      `json:"miss_pct"`
}

// DayOfWeekResult ranks weekdays by completion rate
type DayOfWeekResult struct {
	InsufficientData bool      `json:"insufficient_data"`
	Days             []DayStat `json:"days,omitempty"`
	BestDay          time.Weekday `json:"best_day"`
	WorstDay         time.Weekday `json:"worst_day"`
	GapPct           float64   `json:"gap_pct"`
	Insights         []string  `json:"insights,omitempty"`
}

// TaskDifficulty scores one template over the window
type TaskDifficulty struct {
	TemplateID      uuid.UUID `json:"template_id"`
	Description     string    `json:"description"`
	Total           int       `json:"total"`
	CompletionPct   float64   `json:"completion_pct"`
	MissPct         float64   `json:"miss_pct"`
	AbandonPct      float64   `json:"abandon_pct"`
	DifficultyScore float64   `json:"difficulty_score"`
}

// DifficultyResult ranks templates hardest first
type DifficultyResult struct {
	InsufficientData bool             `json:"insufficient_data"`
	Tasks            []TaskDifficulty `json:"tasks,omitempty"`
}

// AnchorTask is a template completed in nearly every period of the streak
type AnchorTask struct {
	TemplateID    uuid.UUID `json:"template_id"`
	Description   string    `json:"description"`
	CompletionPct float64   `json:"completion_pct"`
}

// AnchorResult names the templates sustaining the current streak
type AnchorResult struct {
	InsufficientData bool         `json:"insufficient_data"`
	StreakLength     int          `json:"streak_length"`
	Anchors          []AnchorTask `json:"anchors,omitempty"`
}

// MoodResult compares completion rate on high- vs low-sentiment days
type MoodResult struct {
	InsufficientData bool    `json:"insufficient_data"`
	HighMoodDays     int     `json:"high_mood_days"`
	LowMoodDays      int     `json:"low_mood_days"`
	HighMoodPct      float64 `json:"high_mood_pct"`
	LowMoodPct       float64 `json:"low_mood_pct"`
	GapPct           float64 `json:"gap_pct"`
	Insight          string  `json:"insight,omitempty"`
}

// Suggestion is one schedule recommendation
type Suggestion struct {
	Kind   string `json:"kind"` // "relocate" or "reduce_load"
	Detail string `json:"detail"`
}

// ScheduleResult composes day-of-week and difficulty analyses
type ScheduleResult struct {
	InsufficientData bool         `json:"insufficient_data"`
	Suggestions      []Suggestion `json:"suggestions,omitempty"`
}

// Summary bundles every analysis for one tracker
type Summary struct {
	TrackerID  uuid.UUID        `json:"tracker_id"`
	AsOf       time.Time        `json:"as_of"`
	DayOfWeek  *DayOfWeekResult `json:"day_of_week"`
	Difficulty *DifficultyResult `json:"difficulty"`
	Anchors    *AnchorResult    `json:"anchors"`
	Mood       *MoodResult      `json:"mood"`
	Schedule   *ScheduleResult  `json:"schedule"`
}

// Engine runs the analyses over a trailing window of task facts
type Engine struct {
	trackers   database.TrackerStore
	tasks      database.TaskStore
	notes      database.NoteStore
	streaks    StreakCalculator
	cache      cache.Cache
	cacheTTL   time.Duration
	thresholds Thresholds
	logger     *zap.Logger
}

// NewEngine creates an insights engine with the default thresholds
func NewEngine(
	trackers database.TrackerStore,
	tasks database.TaskStore,
	notes database.NoteStore,
	streaks StreakCalculator,
	c cache.Cache,
	cacheTTL time.Duration,
	logger *zap.Logger,
) *Engine {
	return &Engine{
		trackers:   trackers,
		tasks:      tasks,
		notes:      notes,
		streaks:    streaks,
		cache:      c,
		cacheTTL:   cacheTTL,
		thresholds: DefaultThresholds(),
		logger:     logger,
	}
}

// WithThresholds overrides the analysis policy
func (e *Engine) WithThresholds(t Thresholds) *Engine {
	e.thresholds = t
	return e
}

func (e *Engine) window(asOf time.Time) (start, end time.Time) {
	end = models.DateOnly(asOf)
	start = end.AddDate(0, 0, -(e.thresholds.WindowDays - 1))
	return start, end
}

func (e *Engine) loadFacts(ctx context.Context, ownerID, trackerID uuid.UUID, asOf time.Time) ([]models.TaskFact, error) {
	tracker, err := e.trackers.GetOwned(ctx, ownerID, trackerID)
	if err != nil {
		return nil, err
	}
	start, end := e.window(asOf)
	return e.tasks.ListFacts(ctx, tracker.ID, start, end)
}

// AnalyzeDayOfWeekPatterns buckets the window's tasks by weekday and ranks
// completion rates. Below the minimum sample it returns an
// InsufficientData result, never an error.
func (e *Engine) AnalyzeDayOfWeekPatterns(ctx context.Context, ownerID, trackerID uuid.UUID, asOf time.Time) (*DayOfWeekResult, error) {
	ctx, span := telemetry.Tracer().Start(ctx, "insights.AnalyzeDayOfWeekPatterns")
	defer span.End()

	facts, err := e.loadFacts(ctx, ownerID, trackerID, asOf)
	if err != nil {
		return nil, err
	}
	return e.dayOfWeek(facts), nil
}

func (e *Engine) dayOfWeek(facts []models.TaskFact) *DayOfWeekResult {
	if len(facts) < e.thresholds.MinSampleSize {
		return &DayOfWeekResult{InsufficientData: true}
	}

	var buckets [7]DayStat
	for i := range buckets {
		buckets[i].Weekday = time.Weekday(i)
	}
	for _, f := range facts {
		wd := f.TrackingDate.Weekday()
		buckets[wd].Total++
		switch f.Status {
		case models.TaskStatusDone:
			buckets[wd].Completed++
		case models.TaskStatusMissed:
			buckets[wd].Missed++
		}
	}

	res := &DayOfWeekResult{BestDay: -1, WorstDay: -1}
	var bestPct, worstPct float64
	for i := range buckets {
		b := &buckets[i]
		if b.Total == 0 {
			continue
		}
		b.CompletionPct = float64(b.Completed) / float64(b.Total) * 100
		b.MissPct = float64(b.Missed) / float64(b.Total) * 100
		res.Days = append(res.Days, *b)

		if res.BestDay == -1 || b.CompletionPct > bestPct {
			res.BestDay, bestPct = b.Weekday, b.CompletionPct
		}
		if res.WorstDay == -1 || b.CompletionPct < worstPct {
			res.WorstDay, worstPct = b.Weekday, b.CompletionPct
		}
		if b.MissPct > e.thresholds.DayMissRatePct {
			res.Insights = append(res.Insights,
				fmt.Sprintf("%s misses %.0f%% of its tasks", b.Weekday, b.MissPct))
		}
	}

	res.GapPct = bestPct - worstPct
	if res.GapPct > e.thresholds.DayGapPoints {
		res.Insights = append(res.Insights,
			fmt.Sprintf("%s outperforms %s by %.0f points", res.BestDay, res.WorstDay, res.GapPct))
	}
	return res
}

// AnalyzeTaskDifficulty ranks templates by a blended difficulty score.
// Templates with fewer instances than the minimum are left out.
func (e *Engine) AnalyzeTaskDifficulty(ctx context.Context, ownerID, trackerID uuid.UUID, asOf time.Time) (*DifficultyResult, error) {
	ctx, span := telemetry.Tracer().Start(ctx, "insights.AnalyzeTaskDifficulty")
	defer span.End()

	facts, err := e.loadFacts(ctx, ownerID, trackerID, asOf)
	if err != nil {
		return nil, err
	}
	return e.difficulty(facts), nil
}

func (e *Engine) difficulty(facts []models.TaskFact) *DifficultyResult {
	type agg struct {
		description           string
		total, done, missed, abandoned int
	}
	byTemplate := make(map[uuid.UUID]*agg)
	for _, f := range facts {
		a := byTemplate[f.TemplateID]
		if a == nil {
			a = &agg{description: f.Description}
			byTemplate[f.TemplateID] = a
		}
		a.total++
		switch f.Status {
		case models.TaskStatusDone:
			a.done++
		case models.TaskStatusMissed:
			a.missed++
		case models.TaskStatusInProgress:
			a.abandoned++
		}
	}

	res := &DifficultyResult{}
	for id, a := range byTemplate {
		if a.total < e.thresholds.MinSampleSize {
			continue
		}
		d := TaskDifficulty{
			TemplateID:    id,
			Description:   a.description,
			Total:         a.total,
			CompletionPct: float64(a.done) / float64(a.total) * 100,
			MissPct:       float64(a.missed) / float64(a.total) * 100,
			AbandonPct:    float64(a.abandoned) / float64(a.total) * 100,
		}
		d.DifficultyScore = e.thresholds.MissWeight*d.MissPct +
			e.thresholds.AbandonWeight*d.AbandonPct +
			e.thresholds.CompletionWeight*(100-d.CompletionPct)
		res.Tasks = append(res.Tasks, d)
	}
	if len(res.Tasks) == 0 {
		return &DifficultyResult{InsufficientData: true}
	}

	sort.Slice(res.Tasks, func(i, j int) bool {
		if res.Tasks[i].DifficultyScore != res.Tasks[j].DifficultyScore {
			return res.Tasks[i].DifficultyScore > res.Tasks[j].DifficultyScore
		}
		return res.Tasks[i].Description < res.Tasks[j].Description
	})
	return res
}

// FindAnchorTasks identifies the templates completed in nearly every
// period of the tracker's active streak. Trackers below the minimum
// streak length get an InsufficientData result.
func (e *Engine) FindAnchorTasks(ctx context.Context, ownerID, trackerID uuid.UUID, asOf time.Time) (*AnchorResult, error) {
	ctx, span := telemetry.Tracer().Start(ctx, "insights.FindAnchorTasks")
	defer span.End()

	st, err := e.streaks.Calculate(ctx, ownerID, trackerID, asOf)
	if err != nil {
		return nil, err
	}
	if !st.StreakActive || st.CurrentStreak < e.thresholds.AnchorMinStreak {
		return &AnchorResult{InsufficientData: true, StreakLength: st.CurrentStreak}, nil
	}

	facts, err := e.loadFacts(ctx, ownerID, trackerID, asOf)
	if err != nil {
		return nil, err
	}

	inStreak := make(map[uuid.UUID]bool, len(st.RunInstanceIDs))
	for _, id := range st.RunInstanceIDs {
		inStreak[id] = true
	}

	type agg struct {
		description string
		total, done int
	}
	byTemplate := make(map[uuid.UUID]*agg)
	for _, f := range facts {
		if !inStreak[f.InstanceID] {
			continue
		}
		a := byTemplate[f.TemplateID]
		if a == nil {
			a = &agg{description: f.Description}
			byTemplate[f.TemplateID] = a
		}
		a.total++
		if f.Status == models.TaskStatusDone {
			a.done++
		}
	}

	res := &AnchorResult{StreakLength: st.CurrentStreak}
	for id, a := range byTemplate {
		pct := float64(a.done) / float64(a.total) * 100
		if pct >= e.thresholds.AnchorCompletionPct {
			res.Anchors = append(res.Anchors, AnchorTask{
				TemplateID:    id,
				Description:   a.description,
				CompletionPct: pct,
			})
		}
	}
	sort.Slice(res.Anchors, func(i, j int) bool {
		if res.Anchors[i].CompletionPct != res.Anchors[j].CompletionPct {
			return res.Anchors[i].CompletionPct > res.Anchors[j].CompletionPct
		}
		return res.Anchors[i].Description < res.Anchors[j].Description
	})
	return res, nil
}

// AnalyzeMoodCorrelation compares same-day completion rates between high-
// and low-sentiment days. Both buckets must be populated for a result.
func (e *Engine) AnalyzeMoodCorrelation(ctx context.Context, ownerID, trackerID uuid.UUID, asOf time.Time) (*MoodResult, error) {
	ctx, span := telemetry.Tracer().Start(ctx, "insights.AnalyzeMoodCorrelation")
	defer span.End()

	tracker, err := e.trackers.GetOwned(ctx, ownerID, trackerID)
	if err != nil {
		return nil, err
	}
	start, end := e.window(asOf)

	facts, err := e.tasks.ListFacts(ctx, tracker.ID, start, end)
	if err != nil {
		return nil, err
	}
	notes, err := e.notes.ListBetween(ctx, tracker.ID, start, end)
	if err != nil {
		return nil, err
	}
	return e.mood(facts, notes), nil
}

func (e *Engine) mood(facts []models.TaskFact, notes []*models.DayNote) *MoodResult {
	type dayAgg struct{ total, done int }
	byDate := make(map[time.Time]*dayAgg)
	for _, f := range facts {
		d := models.DateOnly(f.TrackingDate)
		a := byDate[d]
		if a == nil {
			a = &dayAgg{}
			byDate[d] = a
		}
		a.total++
		if f.Status == models.TaskStatusDone {
			a.done++
		}
	}

	res := &MoodResult{}
	var highSum, lowSum float64
	for _, n := range notes {
		if n.SentimentScore == nil {
			continue
		}
		a := byDate[models.DateOnly(n.NoteDate)]
		if a == nil || a.total == 0 {
			continue
		}
		pct := float64(a.done) / float64(a.total) * 100
		switch {
		case *n.SentimentScore >= e.thresholds.MoodHighScore:
			res.HighMoodDays++
			highSum += pct
		case *n.SentimentScore <= e.thresholds.MoodLowScore:
			res.LowMoodDays++
			lowSum += pct
		}
	}

	if res.HighMoodDays == 0 || res.LowMoodDays == 0 {
		return &MoodResult{InsufficientData: true, HighMoodDays: res.HighMoodDays, LowMoodDays: res.LowMoodDays}
	}

	res.HighMoodPct = highSum / float64(res.HighMoodDays)
	res.LowMoodPct = lowSum / float64(res.LowMoodDays)
	res.GapPct = res.HighMoodPct - res.LowMoodPct
	if res.GapPct >= e.thresholds.MoodGapPoints {
		res.Insight = fmt.Sprintf("completion runs %.0f points higher on high-mood days", res.GapPct)
	} else if -res.GapPct >= e.thresholds.MoodGapPoints {
		res.Insight = fmt.Sprintf("completion runs %.0f points higher on low-mood days", -res.GapPct)
	}
	return res
}

// SuggestSchedule composes the day-of-week and difficulty analyses:
// relocate the hardest tasks to the best-performing day and flag the
// worst day for load reduction.
func (e *Engine) SuggestSchedule(ctx context.Context, ownerID, trackerID uuid.UUID, asOf time.Time) (*ScheduleResult, error) {
	ctx, span := telemetry.Tracer().Start(ctx, "insights.SuggestSchedule")
	defer span.End()

	facts, err := e.loadFacts(ctx, ownerID, trackerID, asOf)
	if err != nil {
		return nil, err
	}

	days := e.dayOfWeek(facts)
	diff := e.difficulty(facts)
	if days.InsufficientData || diff.InsufficientData {
		return &ScheduleResult{InsufficientData: true}, nil
	}

	res := &ScheduleResult{}
	hardest := diff.Tasks[0]
	if days.GapPct > e.thresholds.DayGapPoints {
		res.Suggestions = append(res.Suggestions, Suggestion{
			Kind: "relocate",
			Detail: fmt.Sprintf("move %q to %s, your strongest day",
				hardest.Description, days.BestDay),
		})
		res.Suggestions = append(res.Suggestions, Suggestion{
			Kind:   "reduce_load",
			Detail: fmt.Sprintf("lighten the load on %s, your weakest day", days.WorstDay),
		})
	}
	return res, nil
}

// Analyze bundles every analysis for the CLI and worker consumers, cached
// under the tracker's insights key.
func (e *Engine) Analyze(ctx context.Context, ownerID, trackerID uuid.UUID, asOf time.Time) (*Summary, error) {
	ctx, span := telemetry.Tracer().Start(ctx, "insights.Analyze")
	defer span.End()
	span.SetAttributes(attribute.String("tracker_id", trackerID.String()))

	if cached, ok, err := e.cache.Get(ctx, cache.InsightsKey(trackerID)); err == nil && ok {
		var s Summary
		if err := json.Unmarshal(cached, &s); err == nil {
			return &s, nil
		}
	} else if err != nil {
		e.logger.Warn("insights_cache_read_failed", zap.Error(err), zap.String("tracker_id", trackerID.String()))
	}

	days, err := e.AnalyzeDayOfWeekPatterns(ctx, ownerID, trackerID, asOf)
	if err != nil {
		return nil, err
	}
	diff, err := e.AnalyzeTaskDifficulty(ctx, ownerID, trackerID, asOf)
	if err != nil {
		return nil, err
	}
	anchors, err := e.FindAnchorTasks(ctx, ownerID, trackerID, asOf)
	if err != nil {
		return nil, err
	}
	mood, err := e.AnalyzeMoodCorrelation(ctx, ownerID, trackerID, asOf)
	if err != nil {
		return nil, err
	}
	schedule, err := e.SuggestSchedule(ctx, ownerID, trackerID, asOf)
	if err != nil {
		return nil, err
	}

	s := &Summary{
		TrackerID:  trackerID,
		AsOf:       models.DateOnly(asOf),
		DayOfWeek:  days,
		Difficulty: diff,
		Anchors:    anchors,
		Mood:       mood,
		Schedule:   schedule,
	}

	if payload, err := json.Marshal(s); err == nil {
		if err := e.cache.Set(ctx, cache.InsightsKey(trackerID), payload, e.cacheTTL); err != nil {
			e.logger.Warn("insights_cache_write_failed", zap.Error(err), zap.String("tracker_id", trackerID.String()))
		}
	}
	return s, nil
}

package insights

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/14harshaldhote/trackpro/internal/cache"
	"github.com/14harshaldhote/trackpro/internal/models"
	"github.com/14harshaldhote/trackpro/internal/services/streak"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

type fakeTrackerStore struct {
	tracker *models.Tracker
}

func (f *fakeTrackerStore) GetOwned(_ context.Context, ownerID, trackerID uuid.UUID) (*models.Tracker, error) {
	if f.tracker == nil || f.tracker.OwnerID != ownerID || f.tracker.ID != trackerID {
		return nil, fmt.Errorf("tracker: %w", models.ErrNotFound)
	}
	return f.tracker, nil
}

func (f *fakeTrackerStore) ListActive(context.Context, uuid.UUID) ([]*models.Tracker, error) {
	return nil, nil
}

type fakeTaskStore struct {
	facts []models.TaskFact
}

func (f *fakeTaskStore) GetOwned(context.Context, uuid.UUID, uuid.UUID) (*models.TaskInstance, error) {
	return nil, models.ErrNotFound
}

func (f *fakeTaskStore) Update(context.Context, *models.TaskInstance) error { return nil }

func (f *fakeTaskStore) CountsByInstance(context.Context, []uuid.UUID) (map[uuid.UUID]models.TaskCounts, error) {
	return nil, nil
}

func (f *fakeTaskStore) ListFacts(_ context.Context, _ uuid.UUID, start, end time.Time) ([]models.TaskFact, error) {
	var out []models.TaskFact
	for _, fact := range f.facts {
		if !fact.TrackingDate.Before(start) && !fact.TrackingDate.After(end) {
			out = append(out, fact)
		}
	}
	return out, nil
}

type fakeNoteStore struct {
	notes []*models.DayNote
}

func (f *fakeNoteStore) ListBetween(_ context.Context, _ uuid.UUID, start, end time.Time) ([]*models.DayNote, error) {
	var out []*models.DayNote
	for _, n := range f.notes {
		if !n.NoteDate.Before(start) && !n.NoteDate.After(end) {
			out = append(out, n)
		}
	}
	return out, nil
}

type fakeStreakCalc struct {
	result *streak.Result
}

func (f *fakeStreakCalc) Calculate(context.Context, uuid.UUID, uuid.UUID, time.Time) (*streak.Result, error) {
	return f.result, nil
}

type fixture struct {
	engine  *Engine
	tracker *models.Tracker
	tasks   *fakeTaskStore
	notes   *fakeNoteStore
	streaks *fakeStreakCalc
}

func newFixture() *fixture {
	tracker := &models.Tracker{
		ID:         uuid.New(),
		OwnerID:    uuid.New(),
		TimeMode:   models.TimeModeDaily,
		GoalPeriod: models.GoalPeriodDaily,
	}
	tasks := &fakeTaskStore{}
	notes := &fakeNoteStore{}
	streaks := &fakeStreakCalc{result: &streak.Result{}}
	engine := NewEngine(
		&fakeTrackerStore{tracker: tracker},
		tasks,
		notes,
		streaks,
		cache.Noop{},
		time.Minute,
		zap.NewNop(),
	)
	return &fixture{engine: engine, tracker: tracker, tasks: tasks, notes: notes, streaks: streaks}
}

func (fx *fixture) addFact(day time.Time, templateID uuid.UUID, desc string, status models.TaskStatus) models.TaskFact {
	f := models.TaskFact{
		TaskID:       uuid.New(),
		TemplateID:   templateID,
		InstanceID:   uuid.New(),
		TrackingDate: day,
		Status:       status,
		Description:  desc,
	}
	fx.tasks.facts = append(fx.tasks.facts, f)
	return f
}

func TestDayOfWeekBestAndWorst(t *testing.T) {
	t.Parallel()

	fx := newFixture()
	tmpl := uuid.New()
	asOf := date(2025, time.June, 30) // a Monday

	// Four weeks: Mondays always complete, Sundays always missed.
	for week := 0; week < 4; week++ {
		monday := asOf.AddDate(0, 0, -7*week)
		sunday := monday.AddDate(0, 0, -1)
		fx.addFact(monday, tmpl, "meditate", models.TaskStatusDone)
		fx.addFact(sunday, tmpl, "meditate", models.TaskStatusMissed)
	}

	res, err := fx.engine.AnalyzeDayOfWeekPatterns(context.Background(), fx.tracker.OwnerID, fx.tracker.ID, asOf)
	if err != nil {
		t.Fatalf("AnalyzeDayOfWeekPatterns: %v", err)
	}

	if res.InsufficientData {
		t.Fatal("eight facts should clear the minimum sample")
	}
	if res.BestDay != time.Monday {
		t.Errorf("BestDay = %s, want Monday", res.BestDay)
	}
	if res.WorstDay != time.Sunday {
		t.Errorf("WorstDay = %s, want Sunday", res.WorstDay)
	}
	if res.GapPct != 100 {
		t.Errorf("GapPct = %v, want 100", res.GapPct)
	}
	if len(res.Insights) == 0 {
		t.Error("a 100-point gap must emit an insight")
	}
}

func TestDayOfWeekInsufficientData(t *testing.T) {
	t.Parallel()

	fx := newFixture()
	fx.addFact(date(2025, time.June, 30), uuid.New(), "meditate", models.TaskStatusDone)

	res, err := fx.engine.AnalyzeDayOfWeekPatterns(context.Background(), fx.tracker.OwnerID, fx.tracker.ID, date(2025, time.June, 30))
	if err != nil {
		t.Fatalf("AnalyzeDayOfWeekPatterns: %v", err)
	}
	if !res.InsufficientData {
		t.Error("one fact must yield InsufficientData, not an analysis")
	}
}

func TestTaskDifficultyRanking(t *testing.T) {
	t.Parallel()

	fx := newFixture()
	asOf := date(2025, time.June, 30)
	easy := uuid.New()
	hard := uuid.New()
	sparse := uuid.New()

	for i := 0; i < 10; i++ {
		day := asOf.AddDate(0, 0, -i)
		fx.addFact(day, easy, "stretch", models.TaskStatusDone)
		status := models.TaskStatusMissed
		if i%2 == 0 {
			status = models.TaskStatusInProgress
		}
		fx.addFact(day, hard, "run 10k", status)
	}
	// Below the minimum instance count; must be excluded from the ranking.
	fx.addFact(asOf, sparse, "new habit", models.TaskStatusMissed)

	res, err := fx.engine.AnalyzeTaskDifficulty(context.Background(), fx.tracker.OwnerID, fx.tracker.ID, asOf)
	if err != nil {
		t.Fatalf("AnalyzeTaskDifficulty: %v", err)
	}

	if len(res.Tasks) != 2 {
		t.Fatalf("ranked %d templates, want 2 (sparse template excluded)", len(res.Tasks))
	}
	if res.Tasks[0].TemplateID != hard {
		t.Errorf("hardest template first, got %q", res.Tasks[0].Description)
	}

	// hard: 50% missed, 50% abandoned, 0% complete.
	want := 0.6*50 + 0.3*50 + 0.1*100
	if res.Tasks[0].DifficultyScore != want {
		t.Errorf("DifficultyScore = %v, want %v", res.Tasks[0].DifficultyScore, want)
	}
	// easy: all complete.
	if res.Tasks[1].DifficultyScore != 0 {
		t.Errorf("fully completed template should score 0, got %v", res.Tasks[1].DifficultyScore)
	}
}

func TestFindAnchorTasks(t *testing.T) {
	t.Parallel()

	fx := newFixture()
	asOf := date(2025, time.June, 30)
	anchor := uuid.New()
	flaky := uuid.New()

	var runIDs []uuid.UUID
	for i := 0; i < 10; i++ {
		day := asOf.AddDate(0, 0, -i)
		instID := uuid.New()
		runIDs = append(runIDs, instID)

		flakyStatus := models.TaskStatusDone
		if i < 3 {
			flakyStatus = models.TaskStatusMissed // 70% completion, below the bar
		}
		fx.tasks.facts = append(fx.tasks.facts,
			models.TaskFact{TaskID: uuid.New(), TemplateID: anchor, InstanceID: instID,
				TrackingDate: day, Status: models.TaskStatusDone, Description: "morning pages"},
			models.TaskFact{TaskID: uuid.New(), TemplateID: flaky, InstanceID: instID,
				TrackingDate: day, Status: flakyStatus, Description: "cold shower"},
		)
	}
	fx.streaks.result = &streak.Result{
		CurrentStreak:  10,
		LongestStreak:  10,
		StreakActive:   true,
		RunInstanceIDs: runIDs,
	}

	res, err := fx.engine.FindAnchorTasks(context.Background(), fx.tracker.OwnerID, fx.tracker.ID, asOf)
	if err != nil {
		t.Fatalf("FindAnchorTasks: %v", err)
	}

	if res.InsufficientData {
		t.Fatal("a 10-day streak qualifies for anchor analysis")
	}
	if len(res.Anchors) != 1 || res.Anchors[0].TemplateID != anchor {
		t.Fatalf("anchors = %+v, want exactly the fully-completed template", res.Anchors)
	}
	if res.Anchors[0].CompletionPct != 100 {
		t.Errorf("anchor CompletionPct = %v, want 100", res.Anchors[0].CompletionPct)
	}
}

func TestFindAnchorTasksShortStreak(t *testing.T) {
	t.Parallel()

	fx := newFixture()
	fx.streaks.result = &streak.Result{CurrentStreak: 5, StreakActive: true}

	res, err := fx.engine.FindAnchorTasks(context.Background(), fx.tracker.OwnerID, fx.tracker.ID, date(2025, time.June, 30))
	if err != nil {
		t.Fatalf("FindAnchorTasks: %v", err)
	}
	if !res.InsufficientData {
		t.Error("a 5-day streak is below the anchor minimum")
	}
	if res.StreakLength != 5 {
		t.Errorf("StreakLength = %d, want 5", res.StreakLength)
	}
}

func TestMoodCorrelation(t *testing.T) {
	t.Parallel()

	fx := newFixture()
	asOf := date(2025, time.June, 30)
	tmpl := uuid.New()
	high := 0.8
	low := 0.2

	// High-mood days: everything done. Low-mood days: half done.
	for i := 0; i < 3; i++ {
		day := asOf.AddDate(0, 0, -i)
		fx.addFact(day, tmpl, "journal", models.TaskStatusDone)
		fx.addFact(day, tmpl, "exercise", models.TaskStatusDone)
		fx.notes.notes = append(fx.notes.notes, &models.DayNote{
			ID: uuid.New(), TrackerID: fx.tracker.ID, NoteDate: day, SentimentScore: &high,
		})
	}
	for i := 3; i < 6; i++ {
		day := asOf.AddDate(0, 0, -i)
		fx.addFact(day, tmpl, "journal", models.TaskStatusDone)
		fx.addFact(day, tmpl, "exercise", models.TaskStatusMissed)
		fx.notes.notes = append(fx.notes.notes, &models.DayNote{
			ID: uuid.New(), TrackerID: fx.tracker.ID, NoteDate: day, SentimentScore: &low,
		})
	}

	res, err := fx.engine.AnalyzeMoodCorrelation(context.Background(), fx.tracker.OwnerID, fx.tracker.ID, asOf)
	if err != nil {
		t.Fatalf("AnalyzeMoodCorrelation: %v", err)
	}

	if res.InsufficientData {
		t.Fatal("both buckets populated; analysis must run")
	}
	if res.HighMoodPct != 100 || res.LowMoodPct != 50 {
		t.Errorf("bucket rates = %v/%v, want 100/50", res.HighMoodPct, res.LowMoodPct)
	}
	if res.GapPct != 50 || res.Insight == "" {
		t.Errorf("gap = %v insight = %q, want a 50-point gap with an insight", res.GapPct, res.Insight)
	}
}

func TestMoodCorrelationOneBucketEmpty(t *testing.T) {
	t.Parallel()

	fx := newFixture()
	asOf := date(2025, time.June, 30)
	high := 0.9
	fx.addFact(asOf, uuid.New(), "journal", models.TaskStatusDone)
	fx.notes.notes = append(fx.notes.notes, &models.DayNote{
		ID: uuid.New(), TrackerID: fx.tracker.ID, NoteDate: asOf, SentimentScore: &high,
	})

	res, err := fx.engine.AnalyzeMoodCorrelation(context.Background(), fx.tracker.OwnerID, fx.tracker.ID, asOf)
	if err != nil {
		t.Fatalf("AnalyzeMoodCorrelation: %v", err)
	}
	if !res.InsufficientData {
		t.Error("no low-mood days recorded; result must be InsufficientData")
	}
}

func TestSuggestSchedule(t *testing.T) {
	t.Parallel()

	fx := newFixture()
	asOf := date(2025, time.June, 30) // a Monday
	hard := uuid.New()
	easy := uuid.New()

	for week := 0; week < 6; week++ {
		monday := asOf.AddDate(0, 0, -7*week)
		sunday := monday.AddDate(0, 0, -1)
		fx.addFact(monday, easy, "stretch", models.TaskStatusDone)
		fx.addFact(sunday, hard, "run 10k", models.TaskStatusMissed)
	}

	res, err := fx.engine.SuggestSchedule(context.Background(), fx.tracker.OwnerID, fx.tracker.ID, asOf)
	if err != nil {
		t.Fatalf("SuggestSchedule: %v", err)
	}

	if res.InsufficientData {
		t.Fatal("six weeks of data should be enough to suggest")
	}
	if len(res.Suggestions) != 2 {
		t.Fatalf("got %d suggestions, want relocate + reduce_load", len(res.Suggestions))
	}
	if res.Suggestions[0].Kind != "relocate" || res.Suggestions[1].Kind != "reduce_load" {
		t.Errorf("suggestion kinds = %s/%s", res.Suggestions[0].Kind, res.Suggestions[1].Kind)
	}
}

func TestAnalyzeBundlesEverything(t *testing.T) {
	t.Parallel()

	fx := newFixture()
	asOf := date(2025, time.June, 30)

	s, err := fx.engine.Analyze(context.Background(), fx.tracker.OwnerID, fx.tracker.ID, asOf)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if s.DayOfWeek == nil || s.Difficulty == nil || s.Anchors == nil || s.Mood == nil || s.Schedule == nil {
		t.Fatal("summary must populate every analysis")
	}
	if !s.DayOfWeek.InsufficientData {
		t.Error("an empty tracker should report insufficient data everywhere")
	}
}

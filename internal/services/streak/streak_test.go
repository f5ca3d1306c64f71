package streak

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/14harshaldhote/trackpro/internal/models"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// day describes one synthetic daily instance: done of total tasks
type day struct {
	date  time.Time
	done  int
	total int
}

type fixture struct {
	engine    *Engine
	ownerID   uuid.UUID
	trackerID uuid.UUID
}

type fakeTrackerStore struct {
	ownerID   uuid.UUID
	trackerID uuid.UUID
}

func (f *fakeTrackerStore) GetOwned(_ context.Context, ownerID, trackerID uuid.UUID) (*models.Tracker, error) {
	if ownerID != f.ownerID || trackerID != f.trackerID {
		return nil, fmt.Errorf("tracker: %w", models.ErrNotFound)
	}
	return &models.Tracker{ID: trackerID, OwnerID: ownerID, TimeMode: models.TimeModeDaily, GoalPeriod: models.GoalPeriodDaily}, nil
}

func (f *fakeTrackerStore) ListActive(context.Context, uuid.UUID) ([]*models.Tracker, error) {
	return nil, nil
}

type fakeInstanceStore struct {
	instances []*models.TrackerInstance // newest first
}

func (f *fakeInstanceStore) GetByPeriod(context.Context, uuid.UUID, time.Time, time.Time) (*models.TrackerInstance, error) {
	return nil, models.ErrNotFound
}

func (f *fakeInstanceStore) GetByID(context.Context, uuid.UUID) (*models.TrackerInstance, error) {
	return nil, models.ErrNotFound
}

func (f *fakeInstanceStore) ListUpTo(_ context.Context, _ uuid.UUID, until time.Time, _ int) ([]*models.TrackerInstance, error) {
	var out []*models.TrackerInstance
	for _, inst := range f.instances {
		if !inst.TrackingDate.After(until) {
			out = append(out, inst)
		}
	}
	return out, nil
}

func (f *fakeInstanceStore) CreateWithTasks(context.Context, *models.TrackerInstance, []*models.TaskInstance) error {
	return nil
}

type fakeTaskStore struct {
	counts map[uuid.UUID]models.TaskCounts
}

func (f *fakeTaskStore) GetOwned(context.Context, uuid.UUID, uuid.UUID) (*models.TaskInstance, error) {
	return nil, models.ErrNotFound
}

func (f *fakeTaskStore) Update(context.Context, *models.TaskInstance) error { return nil }

func (f *fakeTaskStore) CountsByInstance(_ context.Context, ids []uuid.UUID) (map[uuid.UUID]models.TaskCounts, error) {
	out := make(map[uuid.UUID]models.TaskCounts)
	for _, id := range ids {
		if c, ok := f.counts[id]; ok && c.Total > 0 {
			out[id] = c
		}
	}
	return out, nil
}

func (f *fakeTaskStore) ListFacts(context.Context, uuid.UUID, time.Time, time.Time) ([]models.TaskFact, error) {
	return nil, nil
}

type fakePrefStore struct {
	threshold float64
}

func (f *fakePrefStore) Get(_ context.Context, ownerID uuid.UUID) (*models.UserPreferences, error) {
	p := models.DefaultPreferences(ownerID)
	if f.threshold > 0 {
		p.StreakThresholdPct = f.threshold
	}
	return p, nil
}

func newFixture(days []day, threshold float64) *fixture {
	ownerID := uuid.New()
	trackerID := uuid.New()

	instances := &fakeInstanceStore{}
	tasks := &fakeTaskStore{counts: make(map[uuid.UUID]models.TaskCounts)}

	// Present newest first, as the repository would.
	for i := len(days) - 1; i >= 0; i-- {
		d := days[i]
		inst := &models.TrackerInstance{
			ID:           uuid.New(),
			TrackerID:    trackerID,
			TrackingDate: d.date,
			PeriodStart:  d.date,
			PeriodEnd:    d.date,
			Status:       models.InstanceStatusOpen,
		}
		instances.instances = append(instances.instances, inst)
		tasks.counts[inst.ID] = models.TaskCounts{Total: d.total, Done: d.done}
	}

	engine := NewEngine(
		&fakeTrackerStore{ownerID: ownerID, trackerID: trackerID},
		instances,
		tasks,
		&fakePrefStore{threshold: threshold},
		zap.NewNop(),
	)
	return &fixture{engine: engine, ownerID: ownerID, trackerID: trackerID}
}

// fullRun builds n consecutive fully-completed daily instances ending on end
func fullRun(end time.Time, n int) []day {
	var days []day
	for i := n - 1; i >= 0; i-- {
		days = append(days, day{date: end.AddDate(0, 0, -i), done: 3, total: 3})
	}
	return days
}

func TestCalculateSevenDayStreak(t *testing.T) {
	t.Parallel()

	today := date(2025, time.March, 15)
	fx := newFixture(fullRun(today, 7), 80)

	res, err := fx.engine.Calculate(context.Background(), fx.ownerID, fx.trackerID, today)
	if err != nil {
		t.Fatalf("Calculate: %v", err)
	}

	if res.CurrentStreak != 7 || res.LongestStreak != 7 || !res.StreakActive {
		t.Errorf("got current=%d longest=%d active=%v, want 7/7/true",
			res.CurrentStreak, res.LongestStreak, res.StreakActive)
	}
	if res.LastCompletedDate == nil || !res.LastCompletedDate.Equal(today) {
		t.Errorf("LastCompletedDate = %v, want %s", res.LastCompletedDate, today.Format(time.DateOnly))
	}
	if len(res.RunInstanceIDs) != 7 {
		t.Errorf("RunInstanceIDs = %d entries, want 7", len(res.RunInstanceIDs))
	}
}

func TestCalculateNoInstances(t *testing.T) {
	t.Parallel()

	today := date(2025, time.March, 15)
	fx := newFixture(nil, 80)

	res, err := fx.engine.Calculate(context.Background(), fx.ownerID, fx.trackerID, today)
	if err != nil {
		t.Fatalf("Calculate: %v", err)
	}
	if res.CurrentStreak != 0 || res.LongestStreak != 0 || res.StreakActive || res.LastCompletedDate != nil {
		t.Errorf("empty history should yield all zeros, got %+v", res)
	}
}

func TestCalculateSingleInstanceToday(t *testing.T) {
	t.Parallel()

	today := date(2025, time.March, 15)
	fx := newFixture([]day{{date: today, done: 1, total: 1}}, 80)

	res, err := fx.engine.Calculate(context.Background(), fx.ownerID, fx.trackerID, today)
	if err != nil {
		t.Fatalf("Calculate: %v", err)
	}
	if res.CurrentStreak != 1 || !res.StreakActive {
		t.Errorf("got current=%d active=%v, want 1/true", res.CurrentStreak, res.StreakActive)
	}
}

func TestZeroTaskInstanceDoesNotBreakStreak(t *testing.T) {
	t.Parallel()

	today := date(2025, time.March, 15)
	days := fullRun(today, 7)
	// Day 4 of the run loses its tasks entirely; the run must survive.
	days[3].done = 0
	days[3].total = 0

	fx := newFixture(days, 80)
	res, err := fx.engine.Calculate(context.Background(), fx.ownerID, fx.trackerID, today)
	if err != nil {
		t.Fatalf("Calculate: %v", err)
	}

	// The zero-task day neither extends nor breaks the run: six counted
	// days, one unbroken streak.
	if res.CurrentStreak != 6 || res.LongestStreak != 6 || !res.StreakActive {
		t.Errorf("got current=%d longest=%d active=%v, want 6/6/true",
			res.CurrentStreak, res.LongestStreak, res.StreakActive)
	}
	if len(res.RunInstanceIDs) != 6 {
		t.Errorf("RunInstanceIDs = %d entries, want 6", len(res.RunInstanceIDs))
	}
}

func TestEmptyDayGapBreaksStreak(t *testing.T) {
	t.Parallel()

	today := date(2025, time.March, 15)
	days := fullRun(today.AddDate(0, 0, -4), 5) // run ends four days ago
	// A single zero-task instance today does not bridge a three-day hole.
	days = append(days, day{date: today, done: 0, total: 0})

	fx := newFixture(days, 80)
	res, err := fx.engine.Calculate(context.Background(), fx.ownerID, fx.trackerID, today)
	if err != nil {
		t.Fatalf("Calculate: %v", err)
	}
	if res.StreakActive || res.CurrentStreak != 0 {
		t.Errorf("got current=%d active=%v, want 0/false", res.CurrentStreak, res.StreakActive)
	}
	if res.LongestStreak != 5 {
		t.Errorf("longest = %d, want 5", res.LongestStreak)
	}
}

func TestBelowThresholdResetsCurrentKeepsLongest(t *testing.T) {
	t.Parallel()

	today := date(2025, time.March, 15)
	days := fullRun(today.AddDate(0, 0, -1), 6) // six perfect days ending yesterday
	days = append(days, day{date: today, done: 1, total: 3})

	fx := newFixture(days, 80)
	res, err := fx.engine.Calculate(context.Background(), fx.ownerID, fx.trackerID, today)
	if err != nil {
		t.Fatalf("Calculate: %v", err)
	}

	if res.CurrentStreak != 0 {
		t.Errorf("current = %d, want 0 after today's below-threshold instance", res.CurrentStreak)
	}
	if res.LongestStreak != 6 {
		t.Errorf("longest = %d, want prior run length 6", res.LongestStreak)
	}
	if res.StreakActive {
		t.Error("streak must not be active after a failed period today")
	}
}

func TestRunEndingYesterdayIsStillActive(t *testing.T) {
	t.Parallel()

	today := date(2025, time.March, 15)
	fx := newFixture(fullRun(today.AddDate(0, 0, -1), 5), 80)

	res, err := fx.engine.Calculate(context.Background(), fx.ownerID, fx.trackerID, today)
	if err != nil {
		t.Fatalf("Calculate: %v", err)
	}
	if !res.StreakActive || res.CurrentStreak != 5 {
		t.Errorf("got current=%d active=%v, want 5/true (today not yet logged)", res.CurrentStreak, res.StreakActive)
	}
}

func TestStaleRunIsInactive(t *testing.T) {
	t.Parallel()

	today := date(2025, time.March, 15)
	fx := newFixture(fullRun(today.AddDate(0, 0, -3), 8), 80)

	res, err := fx.engine.Calculate(context.Background(), fx.ownerID, fx.trackerID, today)
	if err != nil {
		t.Fatalf("Calculate: %v", err)
	}
	if res.StreakActive {
		t.Error("a run ending three days ago must be inactive")
	}
	if res.CurrentStreak != 0 {
		t.Errorf("current = %d, want 0 for a broken streak", res.CurrentStreak)
	}
	if res.LongestStreak != 8 {
		t.Errorf("longest = %d, want 8", res.LongestStreak)
	}
}

func TestGapSplitsRuns(t *testing.T) {
	t.Parallel()

	today := date(2025, time.March, 15)
	days := fullRun(today.AddDate(0, 0, -6), 9) // long run further back
	days = append(days, fullRun(today, 3)...)   // short recent run after a gap

	fx := newFixture(days, 80)
	res, err := fx.engine.Calculate(context.Background(), fx.ownerID, fx.trackerID, today)
	if err != nil {
		t.Fatalf("Calculate: %v", err)
	}

	if res.CurrentStreak != 3 || !res.StreakActive {
		t.Errorf("got current=%d active=%v, want 3/true", res.CurrentStreak, res.StreakActive)
	}
	if res.LongestStreak != 9 {
		t.Errorf("longest = %d, want 9 from the earlier run", res.LongestStreak)
	}
}

func TestThresholdFromPreferences(t *testing.T) {
	t.Parallel()

	today := date(2025, time.March, 15)
	days := []day{
		{date: today.AddDate(0, 0, -1), done: 1, total: 2}, // 50%
		{date: today, done: 1, total: 2},                   // 50%
	}

	strict := newFixture(days, 80)
	res, err := strict.engine.Calculate(context.Background(), strict.ownerID, strict.trackerID, today)
	if err != nil {
		t.Fatalf("Calculate: %v", err)
	}
	if res.CurrentStreak != 0 {
		t.Errorf("at threshold 80, current = %d, want 0", res.CurrentStreak)
	}

	lenient := newFixture(days, 50)
	res, err = lenient.engine.Calculate(context.Background(), lenient.ownerID, lenient.trackerID, today)
	if err != nil {
		t.Fatalf("Calculate: %v", err)
	}
	if res.CurrentStreak != 2 {
		t.Errorf("at threshold 50, current = %d, want 2", res.CurrentStreak)
	}
}

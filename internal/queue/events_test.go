package queue

import (
	"testing"

	"github.com/google/uuid"
)

func TestCrossedStreakMilestones(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		prev int
		cur  int
		want []int
	}{
		{"no movement", 5, 5, nil},
		{"crossing seven", 6, 7, []int{7}},
		{"already past seven", 7, 8, nil},
		{"jumping two thresholds", 10, 35, []int{14, 30}},
		{"streak broken", 20, 0, nil},
		{"fresh run to one hundred", 0, 100, []int{7, 14, 30, 100}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := CrossedStreakMilestones(tt.prev, tt.cur)
			if len(got) != len(tt.want) {
				t.Fatalf("CrossedStreakMilestones(%d, %d) = %v, want %v", tt.prev, tt.cur, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("CrossedStreakMilestones(%d, %d) = %v, want %v", tt.prev, tt.cur, got, tt.want)
				}
			}
		})
	}
}

func TestCrossedGoalMilestones(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		prev float64
		cur  float64
		want []float64
	}{
		{"below half", 10, 40, nil},
		{"crossing half", 40, 55, []float64{50}},
		{"crossing both", 0, 100, []float64{50, 100}},
		{"exactly on the threshold counts", 49, 50, []float64{50}},
		{"progress dropped", 80, 20, nil},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := CrossedGoalMilestones(tt.prev, tt.cur)
			if len(got) != len(tt.want) {
				t.Fatalf("CrossedGoalMilestones(%v, %v) = %v, want %v", tt.prev, tt.cur, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("CrossedGoalMilestones(%v, %v) = %v, want %v", tt.prev, tt.cur, got, tt.want)
				}
			}
		})
	}
}

func TestJobRetry(t *testing.T) {
	t.Parallel()

	job := NewJob(JobTypeProvisionTracker, uuid.New(), nil)
	if job.MaxRetries != 3 {
		t.Fatalf("MaxRetries = %d, want 3", job.MaxRetries)
	}

	for i := 0; i < 3; i++ {
		if !job.CanRetry() {
			t.Fatalf("CanRetry() = false after %d retries", i)
		}
		job.IncrementRetry()
	}

	if job.CanRetry() {
		t.Error("CanRetry() = true after exhausting retries")
	}
}

package database

import (
	"context"
	"fmt"
)

// schema is applied idempotently at startup. The unique constraint on
// tracker_instances is the authoritative defense against double
// provisioning; the provisioner's retry path depends on it.
const schema = `
CREATE TABLE IF NOT EXISTS trackers (
    id           UUID PRIMARY KEY,
    owner_id     UUID NOT NULL,
    name         TEXT NOT NULL,
    time_mode    TEXT NOT NULL DEFAULT 'daily',
    goal_target  DOUBLE PRECISION,
    goal_period  TEXT NOT NULL DEFAULT 'daily',
    created_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
    deleted_at   TIMESTAMPTZ
);

CREATE INDEX IF NOT EXISTS idx_trackers_owner ON trackers(owner_id) WHERE deleted_at IS NULL;

CREATE TABLE IF NOT EXISTS task_templates (
    id              UUID PRIMARY KEY,
    tracker_id      UUID NOT NULL REFERENCES trackers(id),
    description     TEXT NOT NULL,
    category        TEXT NOT NULL DEFAULT '',
    points          DOUBLE PRECISION NOT NULL DEFAULT 0 CHECK (points >= 0),
    is_recurring    BOOLEAN NOT NULL DEFAULT true,
    include_in_goal BOOLEAN NOT NULL DEFAULT true,
    time_of_day     TEXT NOT NULL DEFAULT 'any',
    created_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
    deleted_at      TIMESTAMPTZ
);

CREATE INDEX IF NOT EXISTS idx_templates_tracker ON task_templates(tracker_id) WHERE deleted_at IS NULL;

CREATE TABLE IF NOT EXISTS tracker_instances (
    id            UUID PRIMARY KEY,
    tracker_id    UUID NOT NULL REFERENCES trackers(id),
    tracking_date DATE NOT NULL,
    period_start  DATE NOT NULL,
    period_end    DATE NOT NULL,
    status        TEXT NOT NULL DEFAULT 'open',
    created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
    CONSTRAINT uniq_tracker_period UNIQUE (tracker_id, period_start, period_end)
);

CREATE INDEX IF NOT EXISTS idx_instances_tracker_date ON tracker_instances(tracker_id, tracking_date DESC);

CREATE TABLE IF NOT EXISTS task_instances (
    id           UUID PRIMARY KEY,
    instance_id  UUID NOT NULL REFERENCES tracker_instances(id),
    template_id  UUID NOT NULL REFERENCES task_templates(id),
    status       TEXT NOT NULL DEFAULT 'TODO',
    completed_at TIMESTAMPTZ,
    created_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at   TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_tasks_instance ON task_instances(instance_id);
CREATE INDEX IF NOT EXISTS idx_tasks_template ON task_instances(template_id);

CREATE TABLE IF NOT EXISTS day_notes (
    id              UUID PRIMARY KEY,
    tracker_id      UUID NOT NULL REFERENCES trackers(id),
    note_date       DATE NOT NULL,
    content         TEXT NOT NULL DEFAULT '',
    sentiment_score DOUBLE PRECISION CHECK (sentiment_score BETWEEN -1 AND 1),
    created_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
    deleted_at      TIMESTAMPTZ
);

CREATE INDEX IF NOT EXISTS idx_notes_tracker_date ON day_notes(tracker_id, note_date);

CREATE TABLE IF NOT EXISTS user_preferences (
    owner_id             UUID PRIMARY KEY,
    timezone             TEXT NOT NULL DEFAULT 'UTC',
    streak_threshold_pct DOUBLE PRECISION NOT NULL DEFAULT 80,
    week_start_day       INTEGER NOT NULL DEFAULT 0 CHECK (week_start_day BETWEEN 0 AND 6),
    updated_at           TIMESTAMPTZ NOT NULL DEFAULT now()
);
`

// EnsureSchema creates the tables and indexes if they do not exist
func (db *DB) EnsureSchema(ctx context.Context) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}

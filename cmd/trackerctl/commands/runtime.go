package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/14harshaldhote/trackpro/internal/cache"
	"github.com/14harshaldhote/trackpro/internal/config"
	"github.com/14harshaldhote/trackpro/internal/database"
	"github.com/14harshaldhote/trackpro/internal/logger"
	"github.com/14harshaldhote/trackpro/internal/services/insights"
	"github.com/14harshaldhote/trackpro/internal/services/points"
	"github.com/14harshaldhote/trackpro/internal/services/provision"
	"github.com/14harshaldhote/trackpro/internal/services/streak"
)

// runtime wires the repositories and engines a command needs
type runtime struct {
	cfg    *config.Config
	db     *database.DB
	cache  cache.Cache
	logger *zap.Logger

	trackers  *database.TrackerRepository
	templates *database.TemplateRepository
	instances *database.InstanceRepository
	tasks     *database.TaskRepository
	notes     *database.NoteRepository
	prefs     *database.PreferenceRepository

	provisioner *provision.Service
	streaks     *streak.Engine
	points      *points.Engine
	insights    *insights.Engine
}

func newRuntime() (*runtime, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	zapLogger, err := logger.NewDevelopmentLogger(false)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	db, err := database.New(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	var cacheClient cache.Cache = cache.Noop{}
	if cfg.RedisURL != "" {
		redisCache, err := cache.NewRedisCache(cfg.RedisURL)
		if err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		cacheClient = redisCache
	}

	rt := &runtime{
		cfg:       cfg,
		db:        db,
		cache:     cacheClient,
		logger:    zapLogger,
		trackers:  database.NewTrackerRepository(db),
		templates: database.NewTemplateRepository(db),
		instances: database.NewInstanceRepository(db),
		tasks:     database.NewTaskRepository(db),
		notes:     database.NewNoteRepository(db),
		prefs:     database.NewPreferenceRepository(db),
	}

	rt.provisioner = provision.NewService(rt.trackers, rt.templates, rt.instances, rt.prefs, cacheClient, zapLogger)
	rt.streaks = streak.NewEngine(rt.trackers, rt.instances, rt.tasks, rt.prefs, zapLogger)
	rt.points = points.NewEngine(rt.trackers, rt.tasks, rt.prefs, cacheClient, cfg.CacheTTL, zapLogger)
	rt.insights = insights.NewEngine(rt.trackers, rt.tasks, rt.notes, rt.streaks, cacheClient, cfg.CacheTTL, zapLogger)

	return rt, nil
}

func (rt *runtime) close() {
	if err := rt.cache.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to close cache: %v\n", err)
	}
	if err := rt.db.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to close database: %v\n", err)
	}
	_ = logger.Sync(rt.logger)
}

func parseIDs(ownerArg, trackerArg string) (ownerID, trackerID uuid.UUID, err error) {
	ownerID, err = uuid.Parse(ownerArg)
	if err != nil {
		return ownerID, trackerID, fmt.Errorf("invalid owner id %q: %w", ownerArg, err)
	}
	trackerID, err = uuid.Parse(trackerArg)
	if err != nil {
		return ownerID, trackerID, fmt.Errorf("invalid tracker id %q: %w", trackerArg, err)
	}
	return ownerID, trackerID, nil
}

func parseDateFlag(value string) (time.Time, error) {
	if value == "" {
		return time.Now().UTC(), nil
	}
	t, err := time.Parse(time.DateOnly, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (want YYYY-MM-DD): %w", value, err)
	}
	return t, nil
}

func printJSON(v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to render result: %w", err)
	}
	fmt.Println(string(out))
	return nil
}

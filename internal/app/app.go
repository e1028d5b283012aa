package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/dori/leadboard/internal/board"
	"github.com/dori/leadboard/internal/config"
	"github.com/dori/leadboard/internal/db"
	"github.com/dori/leadboard/internal/model"
	"github.com/dori/leadboard/internal/notify"
)

// historyStore is implemented by both the plain DB and the Redis cache
type historyStore interface {
	Store
	History(ctx context.Context, key string, limit int) ([]db.Revision, error)
	Restore(ctx context.Context, key string, revision int64) (model.Document, int64, error)
}

// App holds the application state and dependencies
type App struct {
	Config    *config.Config
	DB        *db.DB
	Store     Store
	Service   *board.Service
	Autosaver *Autosaver
	Notifier  *notify.Notifier
	Log       logrus.FieldLogger
	DataDir   string

	history  historyStore
	redis    *redis.Client
	lockFile *flock.Flock
}

// New opens the store, loads (or seeds) the document and wires the service
// to the autosaver and notifier
func New(cfg *config.Config, log logrus.FieldLogger) (*App, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
		cfg.DBPath = filepath.Join(cfg.DataDir, "leadboard.db")
	}
	if log == nil {
		l := logrus.New()
		l.SetLevel(logrus.PanicLevel)
		log = l
	}

	policy, err := board.ParseIndexPolicy(cfg.IndexPolicy)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	app := &App{
		Config:   cfg,
		DataDir:  cfg.DataDir,
		Notifier: notify.NewNotifier(),
		Log:      log,
	}
	app.Notifier.SetEnabled(cfg.Notifications)

	// Acquire lock to ensure single instance
	if err := app.acquireLock(); err != nil {
		return nil, err
	}

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		app.releaseLock()
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	database.SetHistoryLimit(cfg.HistoryLimit)
	app.DB = database
	app.history = database

	if cfg.Redis.URL != "" {
		opts, err := redis.ParseURL(cfg.Redis.URL)
		if err != nil {
			app.Close()
			return nil, fmt.Errorf("failed to parse redis url: %w", err)
		}
		app.redis = redis.NewClient(opts)
		app.history = db.NewCache(database, app.redis, cfg.Redis.TTL, log)
	}
	app.Store = app.history

	doc, err := app.loadOrSeed(context.Background())
	if err != nil {
		app.Close()
		return nil, err
	}

	app.Autosaver = NewAutosaver(app.Store, cfg.DocumentKey, log)
	app.Autosaver.OnError(func(err error) {
		if nerr := app.Notifier.SendSaveFailed(err); nerr != nil {
			log.WithError(nerr).Debug("notification failed")
		}
	})

	app.Service = board.NewService(doc,
		board.WithIndexPolicy(policy),
		board.WithLogger(log),
		board.OnChange(app.Autosaver.Push),
		board.OnLead(app.announceLead),
	)

	return app, nil
}

func (a *App) loadOrSeed(ctx context.Context) (model.Document, error) {
	key := a.Config.DocumentKey
	doc, err := a.Store.Load(ctx, key)
	if err != nil {
		return model.Document{}, fmt.Errorf("failed to load document: %w", err)
	}
	if doc != nil {
		if err := board.CheckReferences(*doc); err != nil {
			return model.Document{}, fmt.Errorf("failed to load document: invalid document: %w", err)
		}
		return *doc, nil
	}

	seed := board.Seed(time.Now())
	if _, err := a.Store.Save(ctx, key, seed); err != nil {
		return model.Document{}, fmt.Errorf("failed to save seed document: %w", err)
	}
	a.Log.WithField("key", key).Info("seeded new document")
	return seed, nil
}

// announceLead runs outside the service lock, so it may query the service.
// notify-send can be slow; it gets its own goroutine.
func (a *App) announceLead(t model.Task) {
	column := ""
	if c, ok := a.Service.Column(t.ColumnID); ok {
		column = c.Title
	}
	go func() {
		if err := a.Notifier.SendNewLead(t.Title, column); err != nil {
			a.Log.WithError(err).Debug("notification failed")
		}
	}()
}

// History lists saved revisions of the document, newest first
func (a *App) History(ctx context.Context, limit int) ([]db.Revision, error) {
	return a.history.History(ctx, a.Config.DocumentKey, limit)
}

// Restore makes an old revision current in the store and in memory
func (a *App) Restore(ctx context.Context, revision int64) (int64, error) {
	// Pending snapshots would overwrite the restored revision
	if err := a.Autosaver.Flush(ctx); err != nil {
		a.Log.WithError(err).Warn("saving before restore failed")
	}
	doc, rev, err := a.history.Restore(ctx, a.Config.DocumentKey, revision)
	if err != nil {
		return 0, err
	}
	a.Service.Reset(doc)
	return rev, nil
}

// Import replaces the whole document; the autosaver persists it. Order
// drift is normalized, broken references are rejected.
func (a *App) Import(doc model.Document) error {
	if err := board.CheckReferences(doc); err != nil {
		return fmt.Errorf("invalid document: %w", err)
	}
	if err := board.CheckOrder(doc); err != nil {
		a.Log.WithError(err).Warn("normalizing imported document")
	}
	a.Service.Replace(doc)
	return nil
}

// acquireLock acquires an exclusive file lock to prevent multiple instances
func (a *App) acquireLock() error {
	lockPath := filepath.Join(a.DataDir, "leadboard.lock")
	a.lockFile = flock.New(lockPath)

	locked, err := a.lockFile.TryLock()
	if err != nil {
		return fmt.Errorf("failed to acquire lock: %w", err)
	}

	if !locked {
		return fmt.Errorf("another instance of leadboard is already running")
	}

	return nil
}

// releaseLock releases the file lock
func (a *App) releaseLock() {
	if a.lockFile != nil {
		a.lockFile.Unlock()
	}
}

// Close saves pending changes and cleans up application resources
func (a *App) Close() error {
	var errs []error

	if a.Autosaver != nil {
		if err := a.Autosaver.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to save document: %w", err))
		}
	}

	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close redis: %w", err))
		}
	}

	if a.DB != nil {
		if err := a.DB.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close database: %w", err))
		}
	}

	a.releaseLock()

	if len(errs) > 0 {
		return errs[0]
	}
	return nil
}

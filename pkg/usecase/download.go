package usecase

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/scormpack/pkg/domain/interfaces"
	"github.com/m-mizutani/scormpack/pkg/domain/model"
	"github.com/m-mizutani/scormpack/pkg/domain/types"
)

// ErrSessionRunning is returned by StartSession while a session is active.
var ErrSessionRunning = goerr.New("download already in progress")

// config holds internal download usecase configuration
type config struct {
	workDir       string
	keepTemp      bool
	resourceDelay time.Duration
	courseDelay   time.Duration
	now           func() time.Time
}

// Option is a functional option for download usecase configuration
type Option func(*config)

// WithWorkDir sets the directory holding session folders and archives.
func WithWorkDir(dir string) Option {
	return func(c *config) {
		c.workDir = dir
	}
}

// WithKeepTemp keeps session temp folders after packaging, for debugging.
func WithKeepTemp(keep bool) Option {
	return func(c *config) {
		c.keepTemp = keep
	}
}

// WithDelays sets the politeness delays between resources and courses.
func WithDelays(resource, course time.Duration) Option {
	return func(c *config) {
		c.resourceDelay = resource
		c.courseDelay = course
	}
}

// WithClock overrides the time source (used in tests).
func WithClock(now func() time.Time) Option {
	return func(c *config) {
		c.now = now
	}
}

type downloadUseCase struct {
	client   interfaces.ContentClient
	notifier interfaces.Notifier
	hub      *progressHub
	cfg      config

	mu      sync.Mutex
	current *model.Session
	archive string
}

// NewDownload creates the download session usecase.
func NewDownload(client interfaces.ContentClient, notifier interfaces.Notifier, opts ...Option) interfaces.DownloadUseCase {
	cfg := config{
		workDir:       ".",
		resourceDelay: 500 * time.Millisecond,
		courseDelay:   2 * time.Second,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	return &downloadUseCase{
		client:   client,
		notifier: notifier,
		hub:      newProgressHub(),
		cfg:      cfg,
	}
}

// StartSession validates the request and launches the background worker.
// Only one session runs at a time.
func (uc *downloadUseCase) StartSession(ctx context.Context, doIDs []types.DOID) (*model.Session, error) {
	if len(doIDs) == 0 {
		return nil, goerr.New("no DO IDs provided")
	}

	uc.mu.Lock()
	defer uc.mu.Unlock()

	if uc.current != nil && !uc.current.Snapshot().Complete {
		return nil, goerr.Wrap(ErrSessionRunning, "cannot start session",
			goerr.V("current", uc.current.ID()))
	}

	session := model.NewSession(doIDs, uc.cfg.now())
	uc.current = session
	uc.dispatch(ctx, session)
	return session, nil
}

// Status returns the current session snapshot, or a zero snapshot before the
// first session.
func (uc *downloadUseCase) Status() model.Snapshot {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	if uc.current == nil {
		return model.Snapshot{Errors: []string{}}
	}
	return uc.current.Snapshot()
}

// ArchivePath returns the latest archive path if it exists on disk.
func (uc *downloadUseCase) ArchivePath() string {
	uc.mu.Lock()
	path := uc.archive
	uc.mu.Unlock()

	if path == "" {
		return ""
	}
	if _, err := os.Stat(path); err != nil {
		return ""
	}
	return path
}

// Subscribe registers a progress event subscriber.
func (uc *downloadUseCase) Subscribe() (<-chan model.ProgressEvent, func()) {
	return uc.hub.Subscribe()
}

// setArchive records the produced archive on both the usecase and session.
func (uc *downloadUseCase) setArchive(session *model.Session, archive *model.Archive) {
	uc.mu.Lock()
	uc.archive = archive.Path
	uc.mu.Unlock()
	session.SetArchive(archive)
}

// publish records the activity on the session and broadcasts a progress
// event carrying the fresh snapshot.
func (uc *downloadUseCase) publish(session *model.Session, msg string) {
	session.SetActivity(msg)
	uc.hub.Publish(model.ProgressEvent{
		Message: msg,
		Status:  session.Snapshot(),
	})
}

// publishDone broadcasts the terminal event that closes progress streams.
func (uc *downloadUseCase) publishDone(session *model.Session) {
	uc.hub.Publish(model.ProgressEvent{
		Message: "DONE",
		Status:  session.Snapshot(),
		Done:    true,
	})
}

// sleep waits for d unless the context is cancelled first.
func sleep(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}

func failureReason(err error) string {
	return fmt.Sprintf("%v", err)
}

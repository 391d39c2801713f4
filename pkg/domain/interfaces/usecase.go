package interfaces

import (
	"context"

	"github.com/m-mizutani/scormpack/pkg/domain/model"
	"github.com/m-mizutani/scormpack/pkg/domain/types"
)

// DownloadUseCase defines the session lifecycle operations exposed to the
// HTTP controller.
type DownloadUseCase interface {
	// StartSession starts a new background download session. It returns an
	// error when another session is still running or no IDs are given.
	StartSession(ctx context.Context, doIDs []types.DOID) (*model.Session, error)

	// Status returns the current session snapshot. Before any session has
	// started it returns a zero-value snapshot.
	Status() model.Snapshot

	// ArchivePath returns the path of the latest produced archive, or an
	// empty string when none exists.
	ArchivePath() string

	// Subscribe registers a progress event subscriber and returns the event
	// channel plus an unsubscribe function.
	Subscribe() (<-chan model.ProgressEvent, func())
}

// Notifier delivers a completion summary after a session reaches a terminal
// state. Notification failures must never affect the session outcome.
type Notifier interface {
	NotifySessionComplete(ctx context.Context, snap model.Snapshot) error
}

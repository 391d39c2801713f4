package model

import (
	"sync"
	"time"

	"github.com/m-mizutani/scormpack/pkg/domain/types"
)

// SessionState represents the lifecycle state of a download session
type SessionState string

const (
	StatePending   SessionState = "pending"
	StateRunning   SessionState = "running"
	StateCompleted SessionState = "completed"
	StateFailed    SessionState = "failed"
)

// Terminal reports whether the state is final. There are no backward
// transitions out of a terminal state.
func (s SessionState) Terminal() bool {
	return s == StateCompleted || s == StateFailed
}

// Session tracks one user-initiated batch download and its counters.
// The download worker is the only writer; readers take snapshots.
type Session struct {
	mu sync.RWMutex

	id        types.SessionID
	doIDs     []types.DOID
	state     SessionState
	createdAt time.Time

	currentActivity string
	completed       int
	failed          int
	scormFound      int
	filesDownloaded int
	errors          []string

	archive *Archive
}

// NewSession creates a session in pending state. The session ID is derived
// from the creation timestamp, matching the archive naming scheme.
func NewSession(doIDs []types.DOID, now time.Time) *Session {
	return &Session{
		id:        types.SessionID(now.Format("20060102_150405")),
		doIDs:     doIDs,
		state:     StatePending,
		createdAt: now,
	}
}

// ID returns the session identifier.
func (s *Session) ID() types.SessionID {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.id
}

// DOIDs returns the requested course identifiers.
func (s *Session) DOIDs() []types.DOID {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]types.DOID, len(s.doIDs))
	copy(ids, s.doIDs)
	return ids
}

// Start transitions pending -> running.
func (s *Session) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StatePending {
		s.state = StateRunning
	}
}

// Complete transitions to the completed state. A session with per-item
// failures still completes; the snapshot's failed count and error list
// distinguish a completed-with-errors run from a clean one.
func (s *Session) Complete() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.state.Terminal() {
		s.state = StateCompleted
		s.currentActivity = ""
	}
}

// Fail transitions to the failed state. Reserved for fatal errors such as
// workspace setup or archive creation failures.
func (s *Session) Fail(reason string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.state.Terminal() {
		s.state = StateFailed
		s.currentActivity = ""
		if reason != "" {
			s.errors = append(s.errors, reason)
		}
	}
}

// SetActivity records the current worker activity for the UI.
func (s *Session) SetActivity(activity string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.state.Terminal() {
		s.currentActivity = activity
	}
}

// RecordCourse records a terminal outcome for one course. Counters never
// exceed the total course count.
func (s *Session) RecordCourse(item *CourseItem) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.completed+s.failed >= len(s.doIDs) {
		return
	}
	if item.Failed() {
		s.failed++
		s.errors = append(s.errors, item.ErrorText())
	} else {
		s.completed++
	}
	for _, m := range item.Modules {
		if m.Err != "" {
			s.errors = append(s.errors, m.Err)
		}
	}
}

// AddSCORMFound increments the count of SCORM resources discovered.
func (s *Session) AddSCORMFound() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scormFound++
}

// AddFileDownloaded increments the count of files written to disk.
func (s *Session) AddFileDownloaded() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filesDownloaded++
}

// SetArchive records the produced archive.
func (s *Session) SetArchive(a *Archive) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.archive = a
}

// Archive returns the produced archive, or nil before packaging.
func (s *Session) Archive() *Archive {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.archive
}

// Snapshot returns a point-in-time copy of the session status for the UI.
func (s *Session) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := Snapshot{
		SessionID:       s.id.String(),
		State:           s.state,
		IsRunning:       s.state == StateRunning,
		Complete:        s.state.Terminal(),
		CurrentActivity: s.currentActivity,
		TotalCourses:    len(s.doIDs),
		Completed:       s.completed,
		Failed:          s.failed,
		SCORMFound:      s.scormFound,
		FilesDownloaded: s.filesDownloaded,
		Errors:          append([]string(nil), s.errors...),
	}
	if s.archive != nil {
		snap.ArchiveName = s.archive.Name()
	}
	return snap
}

// Snapshot is the JSON status shape served by /api/status and embedded in
// progress events.
type Snapshot struct {
	SessionID       string       `json:"session_id"`
	State           SessionState `json:"state"`
	IsRunning       bool         `json:"is_running"`
	Complete        bool         `json:"download_complete"`
	CurrentActivity string       `json:"current_activity"`
	TotalCourses    int          `json:"total_courses"`
	Completed       int          `json:"courses_completed"`
	Failed          int          `json:"courses_failed"`
	SCORMFound      int          `json:"scorm_files_found"`
	FilesDownloaded int          `json:"scorm_files_downloaded"`
	Errors          []string     `json:"errors"`
	ArchiveName     string       `json:"zip_filename,omitempty"`
}

package model

import (
	"path/filepath"
	"time"
)

// Archive is the zip file produced for a session. Only the latest archive is
// retained on disk; a new session deletes its predecessor before packaging.
type Archive struct {
	Path      string
	CreatedAt time.Time
	Files     int
	Size      int64
}

// Name returns the archive file name (scorm_downloads_<session>.zip).
func (a *Archive) Name() string {
	return filepath.Base(a.Path)
}

package model

import (
	"fmt"

	"github.com/m-mizutani/scormpack/pkg/domain/types"
)

// CourseItem is the per-course processing record within a session.
type CourseItem struct {
	DOID    types.DOID
	Name    string
	Modules []ModuleItem
	Err     string
}

// ModuleItem is one child resource of a course. Only SCORM resources are
// downloaded; non-SCORM resources are recorded as skipped.
type ModuleItem struct {
	DOID       types.DOID
	Name       string
	Downloaded bool
	Skipped    bool
	Err        string
}

// Failed reports whether the course reached a failure outcome: either the
// course itself could not be resolved, or every discovered SCORM module
// failed to download.
func (c *CourseItem) Failed() bool {
	if c.Err != "" {
		return true
	}
	scorm := 0
	failed := 0
	for _, m := range c.Modules {
		if m.Skipped {
			continue
		}
		scorm++
		if m.Err != "" {
			failed++
		}
	}
	return scorm > 0 && failed == scorm
}

// ErrorText returns a summary line for the session error list.
func (c *CourseItem) ErrorText() string {
	if c.Err != "" {
		return fmt.Sprintf("course %s: %s", c.DOID, c.Err)
	}
	return fmt.Sprintf("course %s: all SCORM downloads failed", c.DOID)
}

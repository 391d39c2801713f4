package usecase

import (
	"path/filepath"
	"regexp"

	"github.com/m-mizutani/scormpack/pkg/domain/types"
)

// Name components are truncated before the identifier suffix is appended so
// the full path stays well under OS path-length limits. The suffix keeps
// paths collision-free even when truncated names collide.
const (
	maxNameLen        = 30
	courseNameLen     = 20
	moduleNameLen     = 25
	courseIDSuffixLen = 15
	moduleIDSuffixLen = 10
)

var (
	invalidChars  = regexp.MustCompile(`[<>:"/\\|?*]`)
	parenthesized = regexp.MustCompile(`\s*\([^)]*\)\s*`)
	whitespace    = regexp.MustCompile(`\s+`)
	underscores   = regexp.MustCompile(`_+`)
)

// sanitizeName strips filesystem-hostile characters from a display name,
// collapses parenthesized chunks and whitespace to underscores, and bounds
// the result to maxNameLen runes.
func sanitizeName(name string) string {
	name = invalidChars.ReplaceAllString(name, "_")
	name = parenthesized.ReplaceAllString(name, "_")
	name = whitespace.ReplaceAllString(name, "_")
	name = underscores.ReplaceAllString(name, "_")
	name = trimUnderscores(name)

	runes := []rune(name)
	if len(runes) > maxNameLen {
		return string(runes[:maxNameLen-3]) + "..."
	}
	return name
}

func trimUnderscores(s string) string {
	start, end := 0, len(s)
	for start < end && s[start] == '_' {
		start++
	}
	for end > start && s[end-1] == '_' {
		end--
	}
	return s[start:end]
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) > n {
		return string(runes[:n])
	}
	return s
}

// courseFolderName builds the folder name for a course: truncated display
// name plus an identifier suffix.
func courseFolderName(name string, doID types.DOID) string {
	return truncate(sanitizeName(name), courseNameLen) + "_" + doID.Suffix(courseIDSuffixLen)
}

// moduleFolderName builds the folder name for a SCORM module.
func moduleFolderName(name string, doID types.DOID) string {
	return truncate(sanitizeName(name), moduleNameLen) + "_" + doID.Suffix(moduleIDSuffixLen)
}

// modulePaths returns the module folder and the SCORM archive path inside
// the course folder. SCORM artifacts are always zip archives.
func modulePaths(courseDir, name string, doID types.DOID) (dir, file string) {
	base := moduleFolderName(name, doID)
	dir = filepath.Join(courseDir, base)
	file = filepath.Join(dir, base+".zip")
	return dir, file
}

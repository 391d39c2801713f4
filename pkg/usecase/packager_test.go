package usecase

import (
	"archive/zip"
	"os"
	"path/filepath"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/m-mizutani/scormpack/pkg/domain/types"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	gt.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	gt.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestCreateArchive(t *testing.T) {
	workDir := t.TempDir()
	id := types.SessionID("20260826_103000")
	sessionDir := filepath.Join(workDir, sessionDirName(id))

	writeFile(t, filepath.Join(sessionDir, "Course_A_123", "Module_1_456", "Module_1_456.zip"), "scorm-a")
	writeFile(t, filepath.Join(sessionDir, "Course_B_789", "Module_2_012", "Module_2_012.zip"), "scorm-b")

	archive, err := createArchive(workDir, sessionDir, id)
	gt.NoError(t, err)
	gt.Value(t, archive.Name()).Equal("scorm_downloads_20260826_103000.zip")
	gt.Number(t, archive.Files).Equal(2)
	gt.Number(t, archive.Size).Greater(int64(0))

	r, err := zip.OpenReader(archive.Path)
	gt.NoError(t, err)
	defer r.Close()

	var names []string
	for _, f := range r.File {
		names = append(names, f.Name)
	}
	gt.Array(t, names).Has("scorm_session_20260826_103000/Course_A_123/Module_1_456/Module_1_456.zip")
	gt.Array(t, names).Has("scorm_session_20260826_103000/Course_B_789/Module_2_012/Module_2_012.zip")
}

func TestCreateArchive_EmptySession(t *testing.T) {
	workDir := t.TempDir()
	id := types.SessionID("20260826_110000")
	sessionDir := filepath.Join(workDir, sessionDirName(id))
	gt.NoError(t, os.MkdirAll(sessionDir, 0755))

	// An all-failed session still produces a downloadable (empty) archive.
	archive, err := createArchive(workDir, sessionDir, id)
	gt.NoError(t, err)
	gt.Number(t, archive.Files).Equal(0)

	_, err = os.Stat(archive.Path)
	gt.NoError(t, err)
}

func TestRemoveOldArchives(t *testing.T) {
	workDir := t.TempDir()
	writeFile(t, filepath.Join(workDir, "scorm_downloads_20260101_000000.zip"), "old")
	writeFile(t, filepath.Join(workDir, "scorm_downloads_20260102_000000.zip"), "older")
	writeFile(t, filepath.Join(workDir, "unrelated.zip"), "keep")

	removed, err := removeOldArchives(workDir)
	gt.NoError(t, err)
	gt.Number(t, len(removed)).Equal(2)

	matches, err := filepath.Glob(filepath.Join(workDir, "scorm_downloads_*.zip"))
	gt.NoError(t, err)
	gt.Number(t, len(matches)).Equal(0)

	_, err = os.Stat(filepath.Join(workDir, "unrelated.zip"))
	gt.NoError(t, err)
}

func TestRemoveSessionFolders(t *testing.T) {
	workDir := t.TempDir()
	keep := types.SessionID("20260826_120000")

	gt.NoError(t, os.MkdirAll(filepath.Join(workDir, sessionDirName(keep)), 0755))
	gt.NoError(t, os.MkdirAll(filepath.Join(workDir, "scorm_session_20260101_000000"), 0755))
	gt.NoError(t, os.MkdirAll(filepath.Join(workDir, "keepme"), 0755))

	gt.NoError(t, removeSessionFolders(workDir, keep))

	_, err := os.Stat(filepath.Join(workDir, sessionDirName(keep)))
	gt.NoError(t, err)
	_, err = os.Stat(filepath.Join(workDir, "scorm_session_20260101_000000"))
	gt.True(t, os.IsNotExist(err))
	_, err = os.Stat(filepath.Join(workDir, "keepme"))
	gt.NoError(t, err)
}

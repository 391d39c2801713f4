package usecase

import (
	"archive/zip"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/scormpack/pkg/domain/model"
	"github.com/m-mizutani/scormpack/pkg/domain/types"
)

const (
	archivePrefix    = "scorm_downloads_"
	sessionDirPrefix = "scorm_session_"
)

// archiveName returns the archive file name for a session.
func archiveName(id types.SessionID) string {
	return archivePrefix + id.String() + ".zip"
}

// removeOldArchives deletes prior session archives so exactly one archive
// exists on disk after packaging.
func removeOldArchives(workDir string) ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(workDir, archivePrefix+"*.zip"))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list old archives", goerr.V("dir", workDir))
	}

	var removed []string
	for _, path := range matches {
		if err := os.Remove(path); err != nil {
			return removed, goerr.Wrap(err, "failed to remove old archive", goerr.V("path", path))
		}
		removed = append(removed, filepath.Base(path))
	}
	return removed, nil
}

// createArchive compresses the session folder into a single zip under
// workDir. Entry paths are relative to workDir so the session folder is the
// archive's top-level directory. An archive is produced even when the
// session folder is empty, so an all-failed session still yields a
// downloadable (near-empty) result.
func createArchive(workDir, sessionDir string, id types.SessionID) (*model.Archive, error) {
	archivePath := filepath.Join(workDir, archiveName(id))

	out, err := os.Create(archivePath)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create archive file", goerr.V("path", archivePath))
	}
	defer out.Close()

	zw := zip.NewWriter(out)

	fileCount := 0
	var totalSize int64
	walkErr := filepath.WalkDir(sessionDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		rel, err := filepath.Rel(workDir, path)
		if err != nil {
			return goerr.Wrap(err, "failed to resolve archive entry path", goerr.V("path", path))
		}

		info, err := d.Info()
		if err != nil {
			return goerr.Wrap(err, "failed to stat archive entry", goerr.V("path", path))
		}

		header, err := zip.FileInfoHeader(info)
		if err != nil {
			return goerr.Wrap(err, "failed to build zip header", goerr.V("path", path))
		}
		header.Name = filepath.ToSlash(rel)
		header.Method = zip.Deflate

		w, err := zw.CreateHeader(header)
		if err != nil {
			return goerr.Wrap(err, "failed to create zip entry", goerr.V("name", header.Name))
		}

		f, err := os.Open(path)
		if err != nil {
			return goerr.Wrap(err, "failed to open archive entry", goerr.V("path", path))
		}
		defer f.Close()

		n, err := io.Copy(w, f)
		if err != nil {
			return goerr.Wrap(err, "failed to write zip entry", goerr.V("name", header.Name))
		}
		fileCount++
		totalSize += n
		return nil
	})
	if walkErr != nil {
		zw.Close()
		return nil, goerr.Wrap(walkErr, "failed to archive session folder", goerr.V("dir", sessionDir))
	}

	if err := zw.Close(); err != nil {
		return nil, goerr.Wrap(err, "failed to finalize archive", goerr.V("path", archivePath))
	}

	return &model.Archive{
		Path:      archivePath,
		CreatedAt: time.Now(),
		Files:     fileCount,
		Size:      totalSize,
	}, nil
}

// sessionDirName returns the temp folder name for a session.
func sessionDirName(id types.SessionID) string {
	return sessionDirPrefix + id.String()
}

// removeSessionFolders deletes leftover session temp folders from earlier
// runs, keeping the named one.
func removeSessionFolders(workDir string, keep types.SessionID) error {
	entries, err := os.ReadDir(workDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return goerr.Wrap(err, "failed to list work dir", goerr.V("dir", workDir))
	}

	for _, e := range entries {
		if !e.IsDir() || !strings.HasPrefix(e.Name(), sessionDirPrefix) {
			continue
		}
		if e.Name() == sessionDirName(keep) {
			continue
		}
		if err := os.RemoveAll(filepath.Join(workDir, e.Name())); err != nil {
			return goerr.Wrap(err, "failed to remove session folder", goerr.V("name", e.Name()))
		}
	}
	return nil
}

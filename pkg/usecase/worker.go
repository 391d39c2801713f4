package usecase

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime/debug"

	"github.com/getsentry/sentry-go"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/scormpack/pkg/domain/model"
	"github.com/m-mizutani/scormpack/pkg/domain/types"
)

// dispatch launches the session worker on a fresh background context that
// preserves the request logger. The request context is not propagated: the
// session must outlive the HTTP request that started it. A panic marks the
// session failed instead of crashing the server.
func (uc *downloadUseCase) dispatch(ctx context.Context, session *model.Session) {
	runCtx := ctxlog.With(context.Background(), ctxlog.From(ctx))

	go func() {
		defer func() {
			if r := recover(); r != nil {
				stack := debug.Stack()
				ctxlog.From(runCtx).Error("panic in download worker",
					"recover", r,
					"stack", string(stack))
				session.Fail(fmt.Sprintf("internal error: %v", r))
				uc.publishDone(session)
			}
		}()

		uc.run(runCtx, session)
	}()
}

// run executes one session end to end: cleanup, sequential course
// processing, packaging, notification.
func (uc *downloadUseCase) run(ctx context.Context, session *model.Session) {
	logger := ctxlog.From(ctx)
	session.Start()

	doIDs := session.DOIDs()
	logger.Info("Download session started",
		"session_id", session.ID(),
		"total_courses", len(doIDs),
	)

	sessionDir := filepath.Join(uc.cfg.workDir, sessionDirName(session.ID()))
	if err := uc.prepareWorkspace(ctx, session, sessionDir); err != nil {
		uc.fatal(ctx, session, err)
		return
	}

	for i, doID := range doIDs {
		uc.publish(session, fmt.Sprintf("Processing course %d/%d: %s", i+1, len(doIDs), doID))

		item := uc.processCourse(ctx, session, sessionDir, doID)
		session.RecordCourse(item)

		if item.Failed() {
			logger.Warn("Course failed", "do_id", doID, "error", item.ErrorText())
		}
		if i < len(doIDs)-1 {
			sleep(ctx, uc.cfg.courseDelay)
		}
	}

	uc.publish(session, "Creating archive")
	archive, err := createArchive(uc.cfg.workDir, sessionDir, session.ID())
	if err != nil {
		uc.fatal(ctx, session, err)
		return
	}
	uc.setArchive(session, archive)

	if !uc.cfg.keepTemp {
		if err := os.RemoveAll(sessionDir); err != nil {
			// The archive already exists; a leftover temp folder is not fatal.
			logger.Warn("Failed to remove session folder", "dir", sessionDir, "error", err)
		}
	}

	session.Complete()
	snap := session.Snapshot()
	logger.Info("Download session completed",
		"session_id", session.ID(),
		"completed", snap.Completed,
		"failed", snap.Failed,
		"files_downloaded", snap.FilesDownloaded,
		"archive", archive.Name(),
	)
	uc.publishDone(session)

	if err := uc.notifier.NotifySessionComplete(ctx, snap); err != nil {
		logger.Warn("Completion notification failed", "error", err)
	}
}

// prepareWorkspace removes the previous archive and stale session folders,
// then creates the new session folder.
func (uc *downloadUseCase) prepareWorkspace(ctx context.Context, session *model.Session, sessionDir string) error {
	logger := ctxlog.From(ctx)
	uc.publish(session, "Cleaning up old files")

	removed, err := removeOldArchives(uc.cfg.workDir)
	if err != nil {
		return err
	}
	for _, name := range removed {
		logger.Info("Removed old archive", "name", name)
	}
	if err := removeSessionFolders(uc.cfg.workDir, session.ID()); err != nil {
		return err
	}

	if err := os.MkdirAll(sessionDir, 0755); err != nil {
		return goerr.Wrap(err, "failed to create session folder", goerr.V("dir", sessionDir))
	}
	return nil
}

// processCourse resolves one course and downloads its SCORM modules.
// Failures are captured on the returned item; they never abort the session.
func (uc *downloadUseCase) processCourse(ctx context.Context, session *model.Session, sessionDir string, doID types.DOID) *model.CourseItem {
	item := &model.CourseItem{DOID: doID}

	content, err := uc.client.GetContent(ctx, doID)
	if err != nil {
		item.Err = failureReason(err)
		return item
	}
	item.Name = content.Name

	courseDir := filepath.Join(sessionDir, courseFolderName(content.Name, doID))
	if err := os.MkdirAll(courseDir, 0755); err != nil {
		item.Err = failureReason(goerr.Wrap(err, "failed to create course folder"))
		return item
	}

	for i, childID := range content.ChildNodes {
		uc.publish(session, fmt.Sprintf("Course %s: checking resource %d/%d", doID, i+1, len(content.ChildNodes)))

		module := uc.processResource(ctx, session, courseDir, childID)
		item.Modules = append(item.Modules, module)

		if i < len(content.ChildNodes)-1 {
			sleep(ctx, uc.cfg.resourceDelay)
		}
	}
	return item
}

// processResource downloads one child resource when it is SCORM content.
func (uc *downloadUseCase) processResource(ctx context.Context, session *model.Session, courseDir string, doID types.DOID) model.ModuleItem {
	module := model.ModuleItem{DOID: doID}

	content, err := uc.client.GetContent(ctx, doID)
	if err != nil {
		module.Err = fmt.Sprintf("resource %s: %v", doID, err)
		return module
	}
	module.Name = content.Name

	if !content.IsSCORM() {
		module.Skipped = true
		return module
	}
	session.AddSCORMFound()

	if content.ArtifactURL == "" {
		module.Err = fmt.Sprintf("resource %s: no artifact URL", doID)
		return module
	}

	_, destPath := modulePaths(courseDir, content.Name, doID)
	uc.publish(session, fmt.Sprintf("Downloading %s", filepath.Base(destPath)))

	if err := uc.client.DownloadArtifact(ctx, content.ArtifactURL, destPath); err != nil {
		module.Err = fmt.Sprintf("resource %s: %v", doID, err)
		return module
	}

	module.Downloaded = true
	session.AddFileDownloaded()
	return module
}

// fatal marks the session failed and reports the error. Fatal errors cover
// workspace setup and archive creation, not per-item download failures.
func (uc *downloadUseCase) fatal(ctx context.Context, session *model.Session, err error) {
	ctxlog.From(ctx).Error("Download session failed",
		"session_id", session.ID(),
		"error", err,
	)
	sentry.CaptureException(err)

	session.Fail(failureReason(err))
	uc.publishDone(session)

	if nerr := uc.notifier.NotifySessionComplete(ctx, session.Snapshot()); nerr != nil {
		ctxlog.From(ctx).Warn("Completion notification failed", "error", nerr)
	}
}

package interfaces

//go:generate moq -out mocks/platform_mock.go -pkg mocks . ContentClient

import (
	"context"

	"github.com/m-mizutani/scormpack/pkg/domain/model"
	"github.com/m-mizutani/scormpack/pkg/domain/types"
)

// ContentClient defines operations against the remote content platform.
type ContentClient interface {
	// GetContent fetches content metadata for a DO ID. Transient failures
	// are retried internally; a returned error is permanent.
	GetContent(ctx context.Context, doID types.DOID) (*model.Content, error)

	// DownloadArtifact streams the artifact at url to destPath, creating
	// parent directories as needed. Transient failures are retried
	// internally with exponential backoff.
	DownloadArtifact(ctx context.Context, url, destPath string) error
}

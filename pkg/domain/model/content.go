package model

import "github.com/m-mizutani/scormpack/pkg/domain/types"

// MimeTypeSCORM marks downloadable SCORM archive content on the platform.
// All other mime types are skipped.
const MimeTypeSCORM = "application/vnd.ekstep.html-archive"

// Content is the platform content payload returned by the read API.
type Content struct {
	Identifier  types.DOID   `json:"identifier"`
	Name        string       `json:"name"`
	MimeType    string       `json:"mimeType"`
	ArtifactURL string       `json:"artifactUrl"`
	ChildNodes  []types.DOID `json:"childNodes"`
}

// IsSCORM reports whether the content's declared media type marks it as a
// downloadable SCORM archive.
func (c *Content) IsSCORM() bool {
	return c.MimeType == MimeTypeSCORM
}

package models

import (
	"fmt"
	"time"
)

// ArtifactRepresentation distinguishes the rasterized image produced by the
// primary engine from the interactive markup fallback.
type ArtifactRepresentation string

const (
	RepresentationPrimary  ArtifactRepresentation = "primary"
	RepresentationFallback ArtifactRepresentation = "fallback"
)

// ExportedArtifact records one persisted chart. Exactly one artifact exists
// per (course, chart kind) at any time; repeated exports overwrite.
type ExportedArtifact struct {
	CourseID       string                 `json:"course_id"`
	ChartKind      ChartKind              `json:"chart_kind"`
	Representation ArtifactRepresentation `json:"representation"`
	StoragePath    string                 `json:"storage_path"`
	ByteSize       int64                  `json:"byte_size"`
	ExportedAt     time.Time              `json:"exported_at"`
}

// ArtifactKey builds the deterministic storage key (without extension) for a
// course/chart pair. Both representations share the key and differ only in
// extension, which is what lets an export replace its stale counterpart.
func ArtifactKey(courseID string, kind ChartKind) string {
	return fmt.Sprintf("charts/course_%s_%s", courseID, kind)
}

// ArtifactPath appends the representation's extension to the key.
func ArtifactPath(courseID string, kind ChartKind, rep ArtifactRepresentation) string {
	ext := ".png"
	if rep == RepresentationFallback {
		ext = ".html"
	}
	return ArtifactKey(courseID, kind) + ext
}

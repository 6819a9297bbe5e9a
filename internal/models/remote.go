package models

import "time"

// Repository describes a GitHub repository as reported by the metadata gateway.
type Repository struct {
	Owner         string
	Name          string
	DefaultBranch string
	Description   string
	Topics        []string
	Stars         int
	HTMLURL       string
	PushedAt      time.Time
}

// ReleaseAsset is a downloadable file attached to a release.
type ReleaseAsset struct {
	ID          int64
	Name        string
	DownloadURL string
	ContentType string
	Size        int64
}

// Release describes a published GitHub release.
type Release struct {
	Tag         string
	Name        string
	Body        string
	HTMLURL     string
	Prerelease  bool
	PublishedAt time.Time
	Assets      []ReleaseAsset
}

// RepositorySnapshot is the combined remote state used to populate a plugin.
// It is never persisted.
type RepositorySnapshot struct {
	Repository
	LatestRelease *Release
	LatestCommit  string
	Readme        string
}

package store

import (
	"time"

	ci "github.com/Protryon/lib-rs-mirror-sub000"
)

// CrateVersionData is the input to Writer.IndexLatest: everything the
// Ingestion Pipeline (C6) has computed for one package's latest version.
type CrateVersionData struct {
	Origin ci.Origin
	Name   string // capitalised display name

	Manifest         ci.Manifest
	Readme           *ci.README
	Languages        ci.LanguageLines
	CompressedSize   int64
	DecompressedSize int64
	LibraryPath      string
	HasBuildScript   bool
	HasCodeOfConduct bool
	RequiresNightly  bool
	Yanked           bool

	Keywords   []ci.KeywordEdge
	Categories []ci.CategoryEdge

	RepoURL  string // "" clears the association
	Warnings []ci.Warning
}

// RepoCrateMapping is one (path, package name) pair discovered while
// scanning a monorepo checkout.
type RepoCrateMapping struct {
	Path string
	Name string
}

// RepoChangeKind distinguishes a pure deprecation from a replacement.
type RepoChangeKind string

const (
	RepoChangeReplaced RepoChangeKind = "replaced"
	RepoChangeRemoved  RepoChangeKind = "removed"
)

// RepoChange is one mined change-history record.
type RepoChange struct {
	Kind        RepoChangeKind
	CrateName   string
	Replacement string // empty for RepoChangeRemoved
	Weight      float64
}

// CrateOwner is one ownership record.
type CrateOwner struct {
	GithubUserID int64
	InvitedBy    *int64
	InvitedAt    *time.Time
}

// Derived holds what RichCrateVersionData returns beside the raw manifest:
// the packed source attributes and warnings stored by IndexLatest, plus
// InferredKeywords, InferredCategories and PathInRepo. IndexLatest never
// writes those three fields, so they come back empty, and PathInRepo is not
// looked up through repo_crates.
type Derived struct {
	InferredKeywords   []string
	InferredCategories []string
	PathInRepo         string
	CompressedSize     int64
	DecompressedSize   int64
	LibraryPath        string
	HasBuildScript     bool
	HasCodeOfConduct   bool
	RequiresNightly    bool
	Languages          ci.LanguageLines
	Readme             *ci.README
	Warnings           []ci.Warning
}

// KeywordStat is one entry of TopKeywordsInCategory's result.
type KeywordStat struct {
	Keyword string
	Weight  float64
}

// ReplacementCandidate is one entry of ReplacementCrates' result.
type ReplacementCandidate struct {
	Name   string
	Weight float64
}

// SitemapEntry is one entry of SitemapCrates' result.
type SitemapEntry struct {
	Origin     ci.Origin
	Rank       float64
	LastUpdate time.Time
}

// MinSitemapRank is the rank floor below which a crate is omitted from the
// sitemap.
const MinSitemapRank = 0.2

// ReplacementWeightThreshold is the minimum summed change-weight for a
// replacement candidate to be surfaced.
const ReplacementWeightThreshold = 20.0

// ReindexBatchLimit bounds CratesToReindex.
const ReindexBatchLimit = 1000

// NextUpdateInterval is how far into the future IndexLatest advances
// next_update.
const NextUpdateInterval = 31 * 24 * time.Hour

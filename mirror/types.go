package mirror

import ci "github.com/Protryon/lib-rs-mirror-sub000"

// Dep is one dependency entry as declared in the upstream mirror's raw
// per-version record.
type Dep struct {
	Name            string       `json:"name"`
	Req             string       `json:"req"`
	Features        []string     `json:"features"`
	Optional        bool         `json:"optional"`
	DefaultFeatures bool         `json:"default_features"`
	Target          string       `json:"target"`
	Kind            ci.DepKind   `json:"kind"`
}

// Record is one line of a per-crate mirror file: exactly the upstream
// index's wire shape, parsed as-is (not yet a ci.Manifest — that requires
// combining this with tarball-derived data during ingestion).
type Record struct {
	Name     string              `json:"name"`
	Vers     string              `json:"vers"`
	Deps     []Dep               `json:"deps"`
	Features map[string][]string `json:"features"`
	Yanked   bool                `json:"yanked"`
	Cksum    ci.Digest           `json:"cksum"`
}

// Entry is the in-memory per-crate view: every published version, oldest
// first, as they appeared in the mirror file.
type Entry struct {
	Name     string // original-case name as last seen in the mirror
	Versions []Record
}

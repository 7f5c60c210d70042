package crateindex

// Manifest is a package's self-declared metadata, parsed out of its
// tarball.
type Manifest struct {
	Name          string `json:"name"`
	Version       string `json:"version"`
	Description   string `json:"description,omitempty"`
	Homepage      string `json:"homepage,omitempty"`
	Documentation string `json:"documentation,omitempty"`
	Repository    string `json:"repository,omitempty"`
	License       string `json:"license,omitempty"`
	// Keywords is author-declared, free text, bounded to 5 entries by the
	// upstream registry's own validation; this module doesn't re-enforce
	// the bound, it just never sees more than 5 in well-formed manifests.
	Keywords []string `json:"keywords,omitempty"`
	// Categories is author-declared and may contain invalid slugs; the
	// ingestion pipeline is responsible for validating against the
	// taxonomy and demoting invalid entries to keywords.
	Categories []string `json:"categories,omitempty"`
	// Links is the native library name for a -sys style package, used to
	// derive the `has:is_sys` pseudo-keyword.
	Links            string `json:"links,omitempty"`
	HasBuildScript   bool   `json:"has_build_script,omitempty"`
	HasCodeOfConduct bool   `json:"has_code_of_conduct,omitempty"`
	IsProcMacro      bool   `json:"is_proc_macro,omitempty"`
	HasBin           bool   `json:"has_bin,omitempty"`
	RequiresNightly  bool   `json:"requires_nightly,omitempty"`

	Features Features `json:"features,omitempty"`

	Runtime []Dependency `json:"dependencies,omitempty"`
	Build   []Dependency `json:"build_dependencies,omitempty"`
	Dev     []Dependency `json:"dev_dependencies,omitempty"`
}

// DepKind distinguishes the table a Dependency entry was declared in.
type DepKind string

const (
	KindNormal DepKind = "normal"
	KindBuild  DepKind = "build"
	KindDev    DepKind = "dev"
)

// Dependency is one entry in a manifest's dependency table.
type Dependency struct {
	Name            string   `json:"name"`
	Req             string   `json:"req"`
	Kind            DepKind  `json:"kind"`
	DefaultFeatures bool     `json:"default_features"`
	Features        []string `json:"features,omitempty"`
	Optional        bool     `json:"optional"`
	Target          string   `json:"target,omitempty"`
}

// Features is a manifest's feature table: a feature name maps to the list of
// descriptors it enables.
type Features map[string][]FeatureRef

// FeatureRef is the parsed form of one feature descriptor. Parsing happens
// once at manifest-load time (see ParseFeatureRef), not on every query, per
// the "dynamic feature descriptors" design note.
//
// Grammar:
//
//	name           -> FeatureRef{Feature: name}
//	dep:name       -> FeatureRef{Dep: name, Implicit: true}
//	dep/feat       -> FeatureRef{Dep: dep, Feature: feat}
//	dep?/feat      -> FeatureRef{Dep: dep, Feature: feat, Weak: true}
type FeatureRef struct {
	Dep      string
	Feature  string
	Weak     bool
	Implicit bool
}

// README is the crate's readme, recovered either from the tarball, the repo
// checkout, or the upstream registry API (in that preference order).
type README struct {
	Markup  string `json:"markup"` // e.g. "markdown", "rst", "text"
	Text    string `json:"text"`
	BaseURL string `json:"base_url,omitempty"`
}

// LanguageLines is a language -> line-count breakdown of a tarball's source
// files.
type LanguageLines map[string]int

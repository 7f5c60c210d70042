package ingest

import (
	"bytes"
	"regexp"

	"github.com/BurntSushi/toml"

	ci "github.com/Protryon/lib-rs-mirror-sub000"
)

// cargoToml is the TOML-facing shape of a manifest, grounded on the pack's
// own Cargo.toml extractor (github.com/lfreleng-actions/build-metadata-action's
// rust extractor): decode the handful of fields the ingestion pipeline
// actually needs rather than the whole Cargo manifest grammar.
type cargoToml struct {
	Package struct {
		Name        string   `toml:"name"`
		Version     string   `toml:"version"`
		Description string   `toml:"description"`
		Homepage    string   `toml:"homepage"`
		Repository  string   `toml:"repository"`
		License     string   `toml:"license"`
		Keywords    []string `toml:"keywords"`
		Categories  []string `toml:"categories"`
		Links       string   `toml:"links"`
		Build       string   `toml:"build"`
	} `toml:"package"`
	Lib struct {
		ProcMacro bool `toml:"proc-macro"`
	} `toml:"lib"`
	Bin               []map[string]any        `toml:"bin"`
	Dependencies      map[string]rawDependency `toml:"dependencies"`
	DevDependencies   map[string]rawDependency `toml:"dev-dependencies"`
	BuildDependencies map[string]rawDependency `toml:"build-dependencies"`
	Features          map[string][]string      `toml:"features"`
}

// rawDependency decodes either `name = "1.0"` or the detailed table form:
// its UnmarshalTOML method takes a bare string as the version and reads the
// fields below from a table.
type rawDependency struct {
	Version         string   `toml:"version"`
	Optional        bool     `toml:"optional"`
	DefaultFeatures *bool    `toml:"default-features"`
	Features        []string `toml:"features"`
	Target          string   `toml:"target"`
}

func (d *rawDependency) UnmarshalTOML(v any) error {
	switch t := v.(type) {
	case string:
		d.Version = t
	case map[string]any:
		if s, ok := t["version"].(string); ok {
			d.Version = s
		}
		if b, ok := t["optional"].(bool); ok {
			d.Optional = b
		}
		if b, ok := t["default-features"].(bool); ok {
			d.DefaultFeatures = &b
		}
		if tgt, ok := t["target"].(string); ok {
			d.Target = tgt
		}
		if fs, ok := t["features"].([]any); ok {
			for _, f := range fs {
				if s, ok := f.(string); ok {
					d.Features = append(d.Features, s)
				}
			}
		}
	}
	return nil
}

// ParseManifest decodes raw Cargo.toml bytes into the module's manifest
// domain type. Per this module's corrupt-data policy, a parse failure
// yields a ci.ErrCorrupt error; the caller persists the closest
// approximation (the mirror's own Record fields) rather than aborting the
// whole ingestion run.
func ParseManifest(raw []byte) (ci.Manifest, error) {
	var c cargoToml
	if _, err := toml.NewDecoder(bytes.NewReader(raw)).Decode(&c); err != nil {
		return ci.Manifest{}, &ci.Error{Kind: ci.ErrCorrupt, Op: "ParseManifest", Message: "Cargo.toml did not parse", Inner: err}
	}

	m := ci.Manifest{
		Name:            c.Package.Name,
		Version:         c.Package.Version,
		Description:     c.Package.Description,
		Homepage:        c.Package.Homepage,
		Repository:      c.Package.Repository,
		License:         c.Package.License,
		Keywords:        c.Package.Keywords,
		Categories:      c.Package.Categories,
		Links:           c.Package.Links,
		HasBuildScript:  c.Package.Build != "",
		IsProcMacro:     c.Lib.ProcMacro,
		HasBin:          len(c.Bin) > 0 || hasSrcBin(raw),
		RequiresNightly: requiresNightlyPattern.Match(raw),
	}
	m.Features = make(ci.Features, len(c.Features))
	for name, descs := range c.Features {
		refs := make([]ci.FeatureRef, 0, len(descs))
		for _, d := range descs {
			refs = append(refs, ci.ParseFeatureRef(d))
		}
		m.Features[name] = refs
	}

	convert := func(in map[string]rawDependency, kind ci.DepKind) []ci.Dependency {
		out := make([]ci.Dependency, 0, len(in))
		for name, d := range in {
			defaultFeatures := true
			if d.DefaultFeatures != nil {
				defaultFeatures = *d.DefaultFeatures
			}
			out = append(out, ci.Dependency{
				Name:            name,
				Req:             d.Version,
				Kind:            kind,
				DefaultFeatures: defaultFeatures,
				Features:        d.Features,
				Optional:        d.Optional,
				Target:          d.Target,
			})
		}
		return out
	}
	m.Runtime = convert(c.Dependencies, ci.KindNormal)
	m.Build = convert(c.BuildDependencies, ci.KindBuild)
	m.Dev = convert(c.DevDependencies, ci.KindDev)

	return m, nil
}

// requiresNightlyPattern flags manifests that gate on nightly-only cargo
// features (the nightly-toolchain flag), detected the same
// approximate way the pack's metadata extractors sniff language-specific
// markers rather than fully evaluating cfg() expressions.
var requiresNightlyPattern = regexp.MustCompile(`cargo-features\s*=|#!\[feature\(`)

func hasSrcBin(raw []byte) bool {
	return bytes.Contains(raw, []byte("src/main.rs")) || bytes.Contains(raw, []byte("[[bin]]"))
}

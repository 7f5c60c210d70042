// Package crateindex holds the data model shared by every component of the
// registry index: package identity, manifests, keywords, categories, and the
// version-source data derived from a tarball.
package crateindex

import (
	"fmt"
	"strings"
)

// Host identifies which VCS host a GitRepo origin lives on.
type Host string

const (
	GitHub Host = "github"
	GitLab Host = "gitlab"
)

// Origin is a tagged value identifying a package's source. Two origins are
// equal iff all fields are equal.
//
// The zero value is not a valid Origin; use [RegistryName] or [NewGitRepo].
type Origin struct {
	// Name is set for a RegistryName origin: a lowercase package name.
	Name string
	// Host, Owner, Repo, and Package are set for a GitRepo origin.
	Host    Host
	Owner   string
	Repo    string
	Package string
}

// RegistryName builds an Origin for a package published under the primary
// registry. name must already be lowercased ASCII [a-z0-9_-].
func RegistryName(name string) Origin {
	return Origin{Name: name}
}

// NewGitRepo builds an Origin for a package that lives only in a VCS
// monorepo.
func NewGitRepo(host Host, owner, repo, pkg string) Origin {
	return Origin{Host: host, Owner: owner, Repo: repo, Package: pkg}
}

// IsRegistry reports whether o is a RegistryName origin.
func (o Origin) IsRegistry() bool {
	return o.Name != "" && o.Host == ""
}

// String renders the canonical primary-key form of the Origin.
//
// Registry origins render as the bare name; GitRepo origins render as
// "host:owner/repo#package".
func (o Origin) String() string {
	if o.IsRegistry() {
		return o.Name
	}
	return fmt.Sprintf("%s:%s/%s#%s", o.Host, o.Owner, o.Repo, o.Package)
}

// ParseOrigin is the inverse of [Origin.String]; it's used to recover an
// Origin from the Relational Index's primary-key column.
func ParseOrigin(s string) (Origin, error) {
	host, rest, ok := strings.Cut(s, ":")
	if !ok {
		return RegistryName(s), nil
	}
	switch Host(host) {
	case GitHub, GitLab:
	default:
		return RegistryName(s), nil
	}
	ownerRepo, pkg, ok := strings.Cut(rest, "#")
	if !ok {
		return Origin{}, fmt.Errorf("crateindex: malformed origin %q: missing package", s)
	}
	owner, repo, ok := strings.Cut(ownerRepo, "/")
	if !ok {
		return Origin{}, fmt.Errorf("crateindex: malformed origin %q: missing owner/repo", s)
	}
	return NewGitRepo(Host(host), owner, repo, pkg), nil
}

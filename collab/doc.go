/*
Package collab declares the external collaborator contracts this service
depends on but does not implement: tarball and README
fetchers, a VCS checkout abstraction, and VCS host metadata. Production
wiring lives outside this module (an HTTP client hitting the real registry
API, a local git binary, a GitHub/GitLab API client); tests use the fakes in
collab/collabtest.

Grounded on claircore's pattern of declaring narrow collaborator
interfaces at the package that consumes them and providing a mock alongside
(e.g. indexer.Fetcher / indexer.FetchArena in internal/indexer, with
go.uber.org/mock-generated fakes committed next to the interface). Here the
interfaces are collected in one package since several components (mirror,
ingest) share them.
*/
package collab

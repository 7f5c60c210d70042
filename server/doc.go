// Package server is the Page Cache & Request Coordinator: an HTTP server
// that turns page-builder renders into cached, ETag'd responses, refreshes
// stale entries in the background under a bounded semaphore, and watches
// its own liveness.
//
// Grounded on cmd/libindexhttp's "parse config, build dependencies, build an
// http.Server, ListenAndServe" main-function shape, generalized: this
// package owns the http.Handler construction (chi router) and the
// liveness/reload machinery the single-binary teacher entrypoints don't
// need, leaving main() in cmd/registryindexd to just wire concrete
// collaborators and call server.New.
package server

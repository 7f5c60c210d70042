/*
Package mirror implements the Registry Mirror: an immutable,
in-memory view of the upstream index, reloaded on a ticker and swapped
behind an atomic pointer so in-flight readers never observe a torn update.

Grounded on claircore's libvuln/updates.Manager (libvuln/updates/manager.go):
same Start/Run split (Start loops a ticker calling Run; Run is safe to call
standalone), same "construct the next generation, then swap" shape. The
vulnerability-database reload there becomes a registry-index reload here.
*/
package mirror

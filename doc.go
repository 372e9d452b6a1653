// Package collagery is the backend for a photo-collage publishing site.
//
// All durable state (collage records and their images) lives in a remote
// media CDN reached over HTTP; there is no database. The package implements
// the two pieces with actual logic in them:
//
//   - TokenService: issues and verifies signed, expiring admin bearer tokens
//   - Resolver: maps a slug to the single authoritative stored record,
//     tolerating the CDN's duplicate-key and edge-cache quirks
//
// # Record resolution
//
// One logical record may be physically stored under two keys, the canonical
// extensionless "<folder>/<slug>/data" and a legacy "<folder>/<slug>/data.json",
// each with its own version history. ChooseObject picks the authoritative
// copy (extensionless first, then highest version) and the Resolver always
// fetches through a version-qualified URL so stale edge caches are never
// trusted. Every mutation writes back to the canonical key, so duplicate
// sets self-heal over time.
//
// # Example Usage
//
//	resolver := collagery.NewResolver(store, "collages")
//	col, err := resolver.Get(ctx, "summer-2025")
//
// See the http package for the REST surface and the mediastore package for
// the CDN client implementing MediaStore.
package collagery

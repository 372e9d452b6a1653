// Package http provides the REST surface of the collagery backend.
//
// Seven operations are exposed, all JSON except the archive export:
//
//	POST /login            issue an admin token on password match
//	GET  /posts            list collages (optional bearer + showHidden query)
//	GET  /post?slug=       fetch one collage
//	POST /posts            create a collage (admin)
//	POST /posts/delete     delete a collage and its assets (admin)
//	POST /posts/visibility toggle a collage's visibility (admin)
//	GET  /export?slug=     download a collage as a zip archive
//
// Handlers are stateless and depend only on the Library and Tokens
// interfaces; error taxonomy mapping to status codes happens here and
// nowhere else. Every error body has the shape {"error": "<message>"}.
package http

// Package uploadapi serves the two upload endpoints used during a token
// launch and provides a client for them.
//
//	POST /api/upload-image     multipart form with a "file" field
//	POST /api/upload-metadata  JSON metadata document
//
// Both proxy to Pinata and answer {"uri": "<gateway uri>"} or
// {"error": "<message>"}. Responses are brotli compressed for clients that
// accept it.
package uploadapi

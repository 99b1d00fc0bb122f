// Package launch runs a complete token launch: pin the image, pin the
// metadata document that points at it, then create the token with the
// metadata URI.
package launch

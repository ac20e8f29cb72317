// Package canvas derives the canvas component of a visitor fingerprint.
//
// DrawScene paints a fixed scene onto any Surface, Hash samples the encoded
// result into an eight character base-36 token and Renderer ties both to an
// identity.Store so the value stays stable for the lifetime of the install.
// Raster is a fogleman/gg implementation of Surface for environments without
// a browser canvas.
package canvas

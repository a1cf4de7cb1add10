// Package mediatypes defines the asset type classification shared across
// the pipeline, along with extension and MIME type lookup tables.
package mediatypes

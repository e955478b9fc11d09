// Package model defines the data structures shared by the instrumentation pipeline.
package model

import (
	"path/filepath"
	"strings"
)

// Path represents a file system path.
type Path string

// String returns the path as a plain string.
func (p Path) String() string {
	return string(p)
}

// Slash returns the path with forward slashes, the form stored in the
// structure document regardless of platform.
func (p Path) Slash() Path {
	return Path(filepath.ToSlash(string(p)))
}

// Ext returns the lower-cased file extension including the dot.
func (p Path) Ext() string {
	return strings.ToLower(filepath.Ext(string(p)))
}

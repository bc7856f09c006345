package formimport

import (
	"io/fs"

	"github.com/goliatone/go-formimport/pkg/remote"
)

// NewHTTPDirectory constructs a directory backed by the remote service API.
func NewHTTPDirectory(options remote.HTTPOptions) (*remote.HTTPDirectory, error) {
	return remote.NewHTTPDirectory(options)
}

// NewFileDirectory constructs a directory reading form records from fsys.
func NewFileDirectory(fsys fs.FS) *remote.FileDirectory {
	return remote.NewFileDirectory(fsys)
}

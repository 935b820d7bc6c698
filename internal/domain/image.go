package domain

import "io"

// ImageFile is one image submitted for upload.
type ImageFile struct {
	Filename string
	Content  io.Reader
}

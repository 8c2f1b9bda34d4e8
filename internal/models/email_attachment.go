package models

import (
	"io"
	"time"
)

// AttachmentFile describes a blob in the attachments directory.
type AttachmentFile struct {
	StoredName  string
	DisplayName string
	ContentType string
	Size        int64
	ModTime     time.Time
}

// Upload is an incoming attachment before it is written to the attachments directory.
type Upload struct {
	Filename string
	Content  io.Reader
}

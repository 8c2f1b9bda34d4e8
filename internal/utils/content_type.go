package utils

import (
	"path/filepath"
	"strings"
)

const DefaultContentType = "application/octet-stream"

var contentTypesByExtension = map[string]string{
	"pdf":  "application/pdf",
	"png":  "image/png",
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
	"gif":  "image/gif",
	"txt":  "text/plain",
	"csv":  "text/csv",
	"doc":  "application/msword",
	"docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	"xlsx": "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	"pptx": "application/vnd.openxmlformats-officedocument.presentationml.presentation",
}

// ContentTypeForExtension maps a file extension (with or without the dot, any case)
// to its MIME type.
func ContentTypeForExtension(ext string) string {
	ext = strings.ToLower(strings.TrimPrefix(ext, "."))
	if contentType, ok := contentTypesByExtension[ext]; ok {
		return contentType
	}
	return DefaultContentType
}

func ContentTypeForFilename(filename string) string {
	return ContentTypeForExtension(FileExtension(filename))
}

// FileExtension returns the lowercased text after the last dot, or "" if there is none.
func FileExtension(filename string) string {
	ext := filepath.Ext(filename)
	if ext == "" {
		return ""
	}
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

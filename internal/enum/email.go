package enum

import "strings"

type Folder string

const (
	FolderInbox  Folder = "inbox"
	FolderSent   Folder = "sent"
	FolderDrafts Folder = "drafts"
	FolderTrash  Folder = "trash"
)

var validFolders = []Folder{FolderInbox, FolderSent, FolderDrafts, FolderTrash}

func (f Folder) String() string {
	return string(f)
}

func (f Folder) IsValid() bool {
	for _, v := range validFolders {
		if f == v {
			return true
		}
	}
	return false
}

func ValidFolderNames() string {
	names := make([]string, 0, len(validFolders))
	for _, f := range validFolders {
		names = append(names, f.String())
	}
	return strings.Join(names, ", ")
}

type EmailEventType string

const (
	EmailEventCreated EmailEventType = "email_created"
	EmailEventUpdated EmailEventType = "email_updated"
	EmailEventDeleted EmailEventType = "email_deleted"
	EmailEventSent    EmailEventType = "email_sent"
)

func (t EmailEventType) String() string {
	return string(t)
}

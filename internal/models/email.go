package models

import (
	"time"

	"github.com/customeros/maildesk/internal/enum"
)

// Email is a single mailbox record as persisted in the data file.
type Email struct {
	ID          string      `json:"id"`
	From        string      `json:"from"`
	To          string      `json:"to"`
	Subject     string      `json:"subject"`
	Body        string      `json:"body"`
	Folder      enum.Folder `json:"folder"`
	Date        time.Time   `json:"date"`
	Starred     bool        `json:"starred"`
	Read        bool        `json:"read"`
	Attachments []string    `json:"attachments"`
}

// EmailPatch carries the only fields that may change after creation.
type EmailPatch struct {
	Folder  *enum.Folder `json:"folder,omitempty"`
	Starred *bool        `json:"starred,omitempty"`
	Read    *bool        `json:"read,omitempty"`
}

func (p EmailPatch) IsEmpty() bool {
	return p.Folder == nil && p.Starred == nil && p.Read == nil
}

// Normalize fills defaults for fields older records may omit.
func (e *Email) Normalize() {
	if e.Folder == "" {
		e.Folder = enum.FolderInbox
	}
	if e.Attachments == nil {
		e.Attachments = []string{}
	}
}

// Clone returns a copy that shares no slices with e.
func (e Email) Clone() Email {
	c := e
	if e.Attachments != nil {
		c.Attachments = make([]string, len(e.Attachments))
		copy(c.Attachments, e.Attachments)
	}
	return c
}

// Emails is the ordered collection held in the data file.
type Emails []Email

func (es Emails) IndexOf(id string) int {
	for i := range es {
		if es[i].ID == id {
			return i
		}
	}
	return -1
}

// FindByID returns a pointer into the collection, or nil.
func (es Emails) FindByID(id string) *Email {
	if i := es.IndexOf(id); i >= 0 {
		return &es[i]
	}
	return nil
}

func (es Emails) FilterByIDs(ids []string) Emails {
	set := idSet(ids)
	out := Emails{}
	for _, e := range es {
		if _, ok := set[e.ID]; ok {
			out = append(out, e)
		}
	}
	return out
}

func (es Emails) FilterByFolder(folder enum.Folder) Emails {
	out := Emails{}
	for _, e := range es {
		if e.Folder == folder {
			out = append(out, e)
		}
	}
	return out
}

// RemoveByIDs splits the collection into the records kept and the records removed,
// preserving order in both.
func (es Emails) RemoveByIDs(ids []string) (kept Emails, removed Emails) {
	set := idSet(ids)
	kept, removed = Emails{}, Emails{}
	for _, e := range es {
		if _, ok := set[e.ID]; ok {
			removed = append(removed, e)
			continue
		}
		kept = append(kept, e)
	}
	return kept, removed
}

// ApplyPatch sets the patched fields on the record at index i and reports whether
// anything changed.
func (es Emails) ApplyPatch(i int, patch EmailPatch) bool {
	e := &es[i]
	changed := false
	if patch.Folder != nil && e.Folder != *patch.Folder {
		e.Folder = *patch.Folder
		changed = true
	}
	if patch.Starred != nil && e.Starred != *patch.Starred {
		e.Starred = *patch.Starred
		changed = true
	}
	if patch.Read != nil && e.Read != *patch.Read {
		e.Read = *patch.Read
		changed = true
	}
	return changed
}

// ToggleStarred flips the starred flag and returns the new value.
func (es Emails) ToggleStarred(id string) (starred bool, found bool) {
	e := es.FindByID(id)
	if e == nil {
		return false, false
	}
	e.Starred = !e.Starred
	return e.Starred, true
}

// MarkRead marks the unread records among ids as read and returns how many changed.
func (es Emails) MarkRead(ids []string) int {
	set := idSet(ids)
	count := 0
	for i := range es {
		if _, ok := set[es[i].ID]; ok && !es[i].Read {
			es[i].Read = true
			count++
		}
	}
	return count
}

// MoveTo moves records among ids that are not already in folder and returns how many moved.
func (es Emails) MoveTo(ids []string, folder enum.Folder) int {
	set := idSet(ids)
	count := 0
	for i := range es {
		if _, ok := set[es[i].ID]; ok && es[i].Folder != folder {
			es[i].Folder = folder
			count++
		}
	}
	return count
}

// ReferencedAttachments returns every attachment name referenced by any record.
func (es Emails) ReferencedAttachments() map[string]struct{} {
	refs := make(map[string]struct{})
	for _, e := range es {
		for _, a := range e.Attachments {
			refs[a] = struct{}{}
		}
	}
	return refs
}

func (es Emails) AttachmentNames() []string {
	var names []string
	for _, e := range es {
		names = append(names, e.Attachments...)
	}
	return names
}

func idSet(ids []string) map[string]struct{} {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

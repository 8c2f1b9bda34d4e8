package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/customeros/maildesk/internal/enum"
)

func sampleEmails() Emails {
	return Emails{
		{ID: "id1", Folder: enum.FolderInbox, Read: true, Attachments: []string{"a_1.pdf"}},
		{ID: "id2", Folder: enum.FolderInbox},
		{ID: "id3", Folder: enum.FolderSent, Starred: true, Attachments: []string{"b_2.png", "c_3.txt"}},
	}
}

func TestEmails_FindByID(t *testing.T) {
	emails := sampleEmails()

	found := emails.FindByID("id2")
	require.NotNil(t, found)
	found.Read = true
	assert.True(t, emails[1].Read, "FindByID must point into the collection")

	assert.Nil(t, emails.FindByID("missing"))
	assert.Equal(t, 2, emails.IndexOf("id3"))
	assert.Equal(t, -1, emails.IndexOf("missing"))
}

func TestEmails_RemoveByIDs(t *testing.T) {
	kept, removed := sampleEmails().RemoveByIDs([]string{"id3", "id1", "nope"})

	require.Len(t, kept, 1)
	assert.Equal(t, "id2", kept[0].ID)
	require.Len(t, removed, 2)
	assert.Equal(t, "id1", removed[0].ID)
	assert.Equal(t, "id3", removed[1].ID)
	assert.Equal(t, []string{"a_1.pdf", "b_2.png", "c_3.txt"}, removed.AttachmentNames())
}

func TestEmails_ApplyPatch(t *testing.T) {
	emails := sampleEmails()
	trash := enum.FolderTrash
	starred := true

	assert.True(t, emails.ApplyPatch(0, EmailPatch{Folder: &trash, Starred: &starred}))
	assert.Equal(t, enum.FolderTrash, emails[0].Folder)
	assert.True(t, emails[0].Starred)

	assert.False(t, emails.ApplyPatch(0, EmailPatch{Folder: &trash}))
	assert.True(t, EmailPatch{}.IsEmpty())
}

func TestEmails_ToggleStarred(t *testing.T) {
	emails := sampleEmails()

	starred, found := emails.ToggleStarred("id3")
	assert.True(t, found)
	assert.False(t, starred)

	starred, _ = emails.ToggleStarred("id3")
	assert.True(t, starred)

	_, found = emails.ToggleStarred("missing")
	assert.False(t, found)
}

func TestEmails_MarkRead(t *testing.T) {
	emails := sampleEmails()

	assert.Equal(t, 1, emails.MarkRead([]string{"id1", "id2"}))
	assert.True(t, emails[0].Read)
	assert.True(t, emails[1].Read)
	assert.False(t, emails[2].Read)
}

func TestEmails_MoveTo(t *testing.T) {
	emails := sampleEmails()

	assert.Equal(t, 0, emails.MoveTo([]string{"id1", "id2"}, enum.FolderInbox))
	assert.Equal(t, 2, emails.MoveTo([]string{"id1", "id3"}, enum.FolderTrash))
	assert.Equal(t, 2, len(emails.FilterByFolder(enum.FolderTrash)))
	assert.Equal(t, 0, emails.MoveTo([]string{"id1", "id3"}, enum.FolderTrash))
}

func TestEmails_ReferencedAttachments(t *testing.T) {
	refs := sampleEmails().ReferencedAttachments()
	assert.Len(t, refs, 3)
	assert.Contains(t, refs, "b_2.png")
}

func TestEmail_Clone(t *testing.T) {
	original := Email{ID: "x", Attachments: []string{"a"}}
	clone := original.Clone()
	clone.Attachments[0] = "b"
	assert.Equal(t, "a", original.Attachments[0])
}

func TestEmail_Normalize(t *testing.T) {
	email := Email{ID: "x"}
	email.Normalize()
	assert.Equal(t, enum.FolderInbox, email.Folder)
	assert.NotNil(t, email.Attachments)
	assert.Empty(t, email.Attachments)

	kept := Email{ID: "y", Folder: enum.FolderSent, Attachments: []string{"a.pdf"}}
	kept.Normalize()
	assert.Equal(t, enum.FolderSent, kept.Folder)
	assert.Equal(t, []string{"a.pdf"}, kept.Attachments)
}

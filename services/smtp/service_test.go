package smtp

import (
	"bytes"
	"context"
	"net"
	"testing"

	"github.com/jhillyerd/enmime"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/customeros/maildesk/config"
	"github.com/customeros/maildesk/interfaces"
	er "github.com/customeros/maildesk/internal/errors"
)

func TestBuildMessage(t *testing.T) {
	message := &interfaces.OutgoingMessage{
		From:    "Desk <desk@example.com>",
		To:      "bob@example.org",
		Subject: "Quarterly report",
		Body:    "See attached.",
		Attachments: []interfaces.OutgoingAttachment{
			{Filename: "report.pdf", ContentType: "application/pdf", Content: []byte("%PDF-1.4")},
			{Filename: "notes.txt", Content: []byte("hello")},
		},
	}

	buffer, err := BuildMessage(message)
	require.NoError(t, err)

	envelope, err := enmime.ReadEnvelope(bytes.NewReader(buffer.Bytes()))
	require.NoError(t, err)

	assert.Equal(t, "Quarterly report", envelope.GetHeader("Subject"))
	assert.Contains(t, envelope.GetHeader("From"), "desk@example.com")
	assert.Contains(t, envelope.GetHeader("To"), "bob@example.org")
	assert.Contains(t, envelope.GetHeader("Message-Id"), "@example.com>")
	assert.Equal(t, "See attached.", envelope.Text)

	require.Len(t, envelope.Attachments, 2)
	assert.Equal(t, "report.pdf", envelope.Attachments[0].FileName)
	assert.Equal(t, "application/pdf", envelope.Attachments[0].ContentType)
	assert.Equal(t, []byte("%PDF-1.4"), envelope.Attachments[0].Content)
	assert.Equal(t, "notes.txt", envelope.Attachments[1].FileName)
	assert.Equal(t, "text/plain", envelope.Attachments[1].ContentType)
}

func TestBuildMessage_InvalidAddress(t *testing.T) {
	_, err := BuildMessage(&interfaces.OutgoingMessage{From: "not an address", To: "bob@example.org"})
	assert.Error(t, err)
}

func TestSend_NoServerConfigured(t *testing.T) {
	client := NewSMTPClient(&config.SMTPConfig{DefaultSender: "desk@example.com"})

	err := client.Send(context.Background(), &interfaces.OutgoingMessage{
		From: "desk@example.com", To: "bob@example.org", Subject: "s", Body: "b",
	})

	assert.ErrorIs(t, err, er.ErrTransport)
	assert.Equal(t, "desk@example.com", client.DefaultSender())
}

func TestSend_ConnectionRefused(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := listener.Addr().(*net.TCPAddr).Port
	require.NoError(t, listener.Close())

	client := NewSMTPClient(&config.SMTPConfig{Server: "127.0.0.1", Port: port})
	err = client.Send(context.Background(), &interfaces.OutgoingMessage{
		From: "desk@example.com", To: "bob@example.org", Subject: "s", Body: "b",
	})

	assert.ErrorIs(t, err, er.ErrTransport)
}

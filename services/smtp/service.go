package smtp

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/mail"
	"net/smtp"
	"time"

	"github.com/jhillyerd/enmime"
	"github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"

	"github.com/customeros/maildesk/config"
	"github.com/customeros/maildesk/interfaces"
	er "github.com/customeros/maildesk/internal/errors"
	"github.com/customeros/maildesk/internal/tracing"
	"github.com/customeros/maildesk/internal/utils"
)

const (
	dialTimeout     = 30 * time.Second
	implicitTLSPort = 465
)

type SMTPClient struct {
	cfg *config.SMTPConfig
}

func NewSMTPClient(cfg *config.SMTPConfig) *SMTPClient {
	return &SMTPClient{
		cfg: cfg,
	}
}

func (s *SMTPClient) DefaultSender() string {
	return s.cfg.DefaultSender
}

func (s *SMTPClient) Send(ctx context.Context, message *interfaces.OutgoingMessage) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "SMTPClient.Send")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)

	if s.cfg.Server == "" {
		err := errors.Wrap(er.ErrTransport, "MAIL_SERVER is not configured")
		tracing.TraceErr(span, err)
		return err
	}

	from, err := parseAddress(message.From)
	if err != nil {
		tracing.TraceErr(span, err)
		return errors.Wrapf(er.ErrTransport, "invalid sender %q: %v", message.From, err)
	}
	to, err := parseAddress(message.To)
	if err != nil {
		tracing.TraceErr(span, err)
		return errors.Wrapf(er.ErrTransport, "invalid recipient %q: %v", message.To, err)
	}

	buffer, err := BuildMessage(message)
	if err != nil {
		tracing.TraceErr(span, err)
		return errors.Wrapf(er.ErrTransport, "build message: %v", err)
	}

	if err = s.sendToServer(ctx, from.Address, []string{to.Address}, buffer); err != nil {
		tracing.TraceErr(span, err)
		return errors.Wrap(er.ErrTransport, err.Error())
	}

	return nil
}

// BuildMessage renders message as a MIME document with a plain text body and one
// part per attachment.
func BuildMessage(message *interfaces.OutgoingMessage) (*bytes.Buffer, error) {
	from, err := parseAddress(message.From)
	if err != nil {
		return nil, err
	}
	to, err := parseAddress(message.To)
	if err != nil {
		return nil, err
	}

	builder := enmime.Builder().
		From(from.Name, from.Address).
		To(to.Name, to.Address).
		Subject(message.Subject).
		Date(utils.Now()).
		Header("Message-ID", utils.GenerateMessageID(utils.ExtractDomainFromEmail(from.Address))).
		Text([]byte(message.Body))

	for _, attachment := range message.Attachments {
		contentType := attachment.ContentType
		if contentType == "" {
			contentType = utils.ContentTypeForFilename(attachment.Filename)
		}
		builder = builder.AddAttachment(attachment.Content, contentType, attachment.Filename)
	}

	root, err := builder.Build()
	if err != nil {
		return nil, err
	}

	buffer := &bytes.Buffer{}
	if err = root.Encode(buffer); err != nil {
		return nil, err
	}
	return buffer, nil
}

// sendToServer sends the prepared email to the SMTP server
func (s *SMTPClient) sendToServer(ctx context.Context, from string, recipients []string, buffer *bytes.Buffer) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "SMTPClient.sendToServer")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	span.LogKV("smtp_server", s.cfg.Server, "smtp_port", s.cfg.Port, "use_tls", s.cfg.UseTLS)

	addr := fmt.Sprintf("%s:%d", s.cfg.Server, s.cfg.Port)

	var conn net.Conn
	var err error
	dialer := &net.Dialer{Timeout: dialTimeout}
	if s.cfg.Port == implicitTLSPort {
		tlsDialer := &tls.Dialer{NetDialer: dialer, Config: &tls.Config{ServerName: s.cfg.Server}}
		conn, err = tlsDialer.DialContext(ctx, "tcp", addr)
	} else {
		conn, err = dialer.DialContext(ctx, "tcp", addr)
	}
	if err != nil {
		err = fmt.Errorf("failed to connect to SMTP server: %w", err)
		tracing.TraceErr(span, err)
		return err
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	client, err := smtp.NewClient(conn, s.cfg.Server)
	if err != nil {
		err = fmt.Errorf("failed to create SMTP client: %w", err)
		tracing.TraceErr(span, err)
		return err
	}
	defer client.Close()

	if s.cfg.UseTLS && s.cfg.Port != implicitTLSPort {
		if err = client.StartTLS(&tls.Config{ServerName: s.cfg.Server}); err != nil {
			err = fmt.Errorf("failed to start TLS: %w", err)
			tracing.TraceErr(span, err)
			return err
		}
	}

	// Authenticate after TLS is established
	if s.cfg.Username != "" {
		auth := smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Server)
		if err = client.Auth(auth); err != nil {
			err = fmt.Errorf("SMTP authentication failed: %w", err)
			tracing.TraceErr(span, err)
			return err
		}
	}

	if err = client.Mail(from); err != nil {
		err = fmt.Errorf("SMTP MAIL command failed: %w", err)
		tracing.TraceErr(span, err)
		return err
	}

	for _, recipient := range recipients {
		if err = client.Rcpt(recipient); err != nil {
			err = fmt.Errorf("SMTP RCPT command failed for %s: %w", recipient, err)
			tracing.TraceErr(span, err)
			return err
		}
	}

	dataWriter, err := client.Data()
	if err != nil {
		err = fmt.Errorf("SMTP DATA command failed: %w", err)
		tracing.TraceErr(span, err)
		return err
	}

	if _, err = dataWriter.Write(buffer.Bytes()); err != nil {
		err = fmt.Errorf("failed to write email data: %w", err)
		tracing.TraceErr(span, err)
		return err
	}

	if err = dataWriter.Close(); err != nil {
		err = fmt.Errorf("failed to close data writer: %w", err)
		tracing.TraceErr(span, err)
		return err
	}

	return client.Quit()
}

func parseAddress(raw string) (*mail.Address, error) {
	addr, err := mail.ParseAddress(raw)
	if err != nil {
		return nil, err
	}
	return addr, nil
}

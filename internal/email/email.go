// Package email sends report PDFs over SMTP.
package email

import (
	"bytes"
	"fmt"
	"io"
	"log"

	"gopkg.in/gomail.v2"
)

// Options holds the SMTP relay settings. Empty Host disables sending.
type Options struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

type Sender struct {
	opts Options
}

// New builds a Sender, or nil when SMTP is not configured. A nil *Sender is
// safe to call; SendPDF returns an error the handler can surface.
func New(opts Options) *Sender {
	if opts.Host == "" {
		log.Println("[Email] no SMTP host configured, email disabled")
		return nil
	}
	return &Sender{opts: opts}
}

// SendPDF mails a rendered report as an attachment.
func (s *Sender) SendPDF(to, subject, body, filename string, pdfData []byte) error {
	if s == nil {
		return fmt.Errorf("email is not configured")
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.opts.From)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)
	m.Attach(filename, gomail.SetCopyFunc(func(w io.Writer) error {
		_, err := io.Copy(w, bytes.NewReader(pdfData))
		return err
	}))

	d := gomail.NewDialer(s.opts.Host, s.opts.Port, s.opts.Username, s.opts.Password)
	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email to %s: %w", to, err)
	}

	log.Printf("[Email] sent %s to %s", filename, to)
	return nil
}

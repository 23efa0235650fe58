// Package mailer hands submission notifications to a local sendmail
// compatible command.
package mailer

import (
	"bytes"
	"context"
	"fmt"
	"mime"
	"os/exec"
	"strings"
	"time"
)

const (
	DefaultCommand = "/usr/sbin/sendmail"
	DefaultTimeout = 30 * time.Second
)

type Notification struct {
	SubmissionID uint
	Name         string
	Email        string
	Excerpt      string
	SiteURL      string
	SiteTitle    string
}

// DisplayName returns the submitter name or "Anonymous".
func (n Notification) DisplayName() string {
	if s := strings.TrimSpace(n.Name); s != "" {
		return s
	}
	return "Anonymous"
}

// Sendmail pipes an RFC 822 message to Command with "-t" so recipients are
// taken from the headers.
type Sendmail struct {
	To      string
	From    string
	Command string
	Timeout time.Duration
}

// Notify sends n. It does nothing when no recipient is configured.
func (s *Sendmail) Notify(ctx context.Context, n Notification) error {
	if s == nil || strings.TrimSpace(s.To) == "" {
		return nil
	}

	command := s.Command
	if command == "" {
		command = DefaultCommand
	}
	timeout := s.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, command, "-t")
	cmd.Stdin = bytes.NewReader(s.BuildMessage(n))
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return fmt.Errorf("sendmail timed out after %s", timeout)
		}
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return fmt.Errorf("sendmail failed: %w: %s", err, msg)
		}
		return fmt.Errorf("sendmail failed: %w", err)
	}
	return nil
}

// BuildMessage renders the notification as a plain text mail.
func (s *Sendmail) BuildMessage(n Notification) []byte {
	from := s.From
	if from == "" {
		from = s.To
	}
	name := headerSafe(n.DisplayName())

	var b bytes.Buffer
	fmt.Fprintf(&b, "From: %s\r\n", headerSafe(from))
	fmt.Fprintf(&b, "To: %s\r\n", headerSafe(s.To))
	fmt.Fprintf(&b, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", "New submission from "+name))
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=utf-8\r\n")
	b.WriteString("\r\n")

	b.WriteString("New submission received.\r\n\r\n")
	fmt.Fprintf(&b, "From: %s\r\n", name)
	if n.Email != "" {
		fmt.Fprintf(&b, "Email: %s\r\n", headerSafe(n.Email))
	}
	if n.Excerpt != "" {
		fmt.Fprintf(&b, "\r\n%s\r\n", excerpt(n.Excerpt, 280))
	}
	b.WriteString("\r\n")
	if n.SiteURL != "" {
		fmt.Fprintf(&b, "Site: %s\r\n", n.SiteURL)
	}
	fmt.Fprintf(&b, "Review: memorial submissions show %d\r\n", n.SubmissionID)
	fmt.Fprintf(&b, "Publish: memorial submissions accept %d\r\n", n.SubmissionID)
	return b.Bytes()
}

func headerSafe(s string) string {
	return strings.NewReplacer("\r", " ", "\n", " ").Replace(strings.TrimSpace(s))
}

func excerpt(s string, max int) string {
	s = strings.TrimSpace(s)
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return strings.TrimSpace(string(r[:max])) + "..."
}

package notify

import (
	"context"
	"fmt"
	"net"
	"net/smtp"
	"strconv"
	"strings"
)

const (
	PlaceholderServer    = "mail.example.com"
	PlaceholderRecipient = "admin@example.com"
)

// Policy decides whether reviewer mail is sent at all.
type Policy struct {
	Server     string
	Recipients []string
}

// Suppressed reports whether the configuration still holds placeholders or
// is missing a server or recipients.
func (p Policy) Suppressed() bool {
	switch {
	case p.Server == "" || p.Server == PlaceholderServer:
		return true
	case len(p.Recipients) == 0:
		return true
	case len(p.Recipients) == 1 && p.Recipients[0] == PlaceholderRecipient:
		return true
	}
	return false
}

// Documents returns the stored text of a submission.
type Documents interface {
	Document(ctx context.Context, id int64) ([]byte, error)
}

type SendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

type Mailer struct {
	Policy   Policy
	Port     int
	Username string
	Password string
	Title    string
	Docs     Documents

	send SendFunc
}

func NewMailer(p Policy, port int, username, password, title string, docs Documents) *Mailer {
	return &Mailer{Policy: p, Port: port, Username: username, Password: password, Title: title, Docs: docs, send: smtp.SendMail}
}

func Subject(title string, id int64) string {
	return fmt.Sprintf("%s Quiz Submission %d", title, id)
}

// Notify mails the stored submission document to the reviewers, with the
// quiz taker as sender. It is a no-op when the policy suppresses mail.
func (m *Mailer) Notify(ctx context.Context, id int64, sender string) error {
	if m.Policy.Suppressed() {
		return nil
	}
	body, err := m.Docs.Document(ctx, id)
	if err != nil {
		return fmt.Errorf("read submission %d: %w", id, err)
	}
	msg := buildMessage(sender, m.Policy.Recipients, Subject(m.Title, id), body)

	var auth smtp.Auth
	if m.Username != "" {
		auth = smtp.PlainAuth("", m.Username, m.Password, m.Policy.Server)
	}
	port := m.Port
	if port == 0 {
		port = 25
	}
	addr := net.JoinHostPort(m.Policy.Server, strconv.Itoa(port))
	return m.send(addr, auth, sender, m.Policy.Recipients, msg)
}

func buildMessage(from string, to []string, subject string, body []byte) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", strings.Join(to, ", "))
	fmt.Fprintf(&b, "Subject: %s\r\n", subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=utf-8\r\n\r\n")
	b.WriteString(strings.ReplaceAll(string(body), "\n", "\r\n"))
	return []byte(b.String())
}

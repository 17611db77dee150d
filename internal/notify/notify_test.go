package notify

import (
	"context"
	"errors"
	"net/smtp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPolicySuppressed(t *testing.T) {
	tests := []struct {
		name   string
		policy Policy
		want   bool
	}{
		{"placeholder server", Policy{Server: "mail.example.com", Recipients: []string{"r@corp.test"}}, true},
		{"no server", Policy{Recipients: []string{"r@corp.test"}}, true},
		{"no recipients", Policy{Server: "smtp.corp.test"}, true},
		{"placeholder recipient", Policy{Server: "smtp.corp.test", Recipients: []string{"admin@example.com"}}, true},
		{"placeholder among real", Policy{Server: "smtp.corp.test", Recipients: []string{"admin@example.com", "r@corp.test"}}, false},
		{"configured", Policy{Server: "smtp.corp.test", Recipients: []string{"r@corp.test"}}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.policy.Suppressed())
		})
	}
}

type docs map[int64]string

func (d docs) Document(_ context.Context, id int64) ([]byte, error) {
	s, ok := d[id]
	if !ok {
		return nil, errors.New("missing")
	}
	return []byte(s), nil
}

type capture struct {
	calls int
	addr  string
	from  string
	to    []string
	msg   string
}

func (c *capture) send(addr string, _ smtp.Auth, from string, to []string, msg []byte) error {
	c.calls++
	c.addr, c.from, c.to, c.msg = addr, from, to, string(msg)
	return nil
}

func TestMailerNotify(t *testing.T) {
	c := &capture{}
	m := NewMailer(Policy{Server: "smtp.corp.test", Recipients: []string{"a@corp.test", "b@corp.test"}},
		587, "", "", "Safety", docs{7: "score: 90\npass: true\n"})
	m.send = c.send

	require.NoError(t, m.Notify(context.Background(), 7, "taker@corp.test"))
	assert.Equal(t, 1, c.calls)
	assert.Equal(t, "smtp.corp.test:587", c.addr)
	assert.Equal(t, "taker@corp.test", c.from)
	assert.Equal(t, []string{"a@corp.test", "b@corp.test"}, c.to)
	assert.Contains(t, c.msg, "Subject: Safety Quiz Submission 7\r\n")
	assert.True(t, strings.HasSuffix(c.msg, "score: 90\r\npass: true\r\n"))

	assert.Error(t, m.Notify(context.Background(), 8, "taker@corp.test"))
}

func TestMailerSuppressed(t *testing.T) {
	c := &capture{}
	m := NewMailer(Policy{Server: PlaceholderServer, Recipients: []string{"a@corp.test"}}, 25, "", "", "T", docs{})
	m.send = c.send

	require.NoError(t, m.Notify(context.Background(), 1, "taker@corp.test"))
	assert.Zero(t, c.calls)
}

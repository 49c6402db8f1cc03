// Package mailer provides a small API for sending email with attachments over SMTP.
package mailer

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/wneessen/go-mail"
)

const (
	TLSMandatory     = "mandatory"
	TLSOpportunistic = "opportunistic"
	TLSNone          = "none"

	defaultTimeout = 30 * time.Second
)

type Operations interface {
	Send(ctx context.Context, m *Message) error
}

type Message struct {
	From        string
	To          []string
	Subject     string
	Body        string
	Attachments []*Attachment
}

type Attachment struct {
	FileName    string
	ContentType string
	Data        []byte
}

type Options struct {
	Host      string
	Port      int
	Username  string
	Password  string
	TLSPolicy string
	// SSL enables implicit TLS, usually on port 465.
	SSL     bool
	Timeout time.Duration
}

type Client struct {
	host    string
	options []mail.Option
}

var _ Operations = &Client{}

func (c *Client) Send(ctx context.Context, m *Message) error {
	msg, err := Build(m)
	if err != nil {
		return err
	}

	client, err := mail.NewClient(c.host, c.options...)
	if err != nil {
		return fmt.Errorf("creating smtp client: %w", err)
	}

	err = client.DialAndSendWithContext(ctx, msg)
	if err != nil {
		return fmt.Errorf("sending message: %w", err)
	}

	return nil
}

// Build turns a message into a MIME message, attachments are added in order.
func Build(m *Message) (*mail.Msg, error) {
	msg := mail.NewMsg()

	err := msg.From(m.From)
	if err != nil {
		return nil, fmt.Errorf("setting sender %q: %w", m.From, err)
	}

	err = msg.To(m.To...)
	if err != nil {
		return nil, fmt.Errorf("setting recipients %v: %w", m.To, err)
	}

	msg.Subject(m.Subject)
	msg.SetDate()
	msg.SetBodyString(mail.TypeTextPlain, m.Body)

	for _, a := range m.Attachments {
		var opts []mail.FileOption
		if a.ContentType != "" {
			opts = append(opts, mail.WithFileContentType(mail.ContentType(a.ContentType)))
		}

		err = msg.AttachReader(a.FileName, bytes.NewReader(a.Data), opts...)
		if err != nil {
			return nil, fmt.Errorf("attaching %s: %w", a.FileName, err)
		}
	}

	return msg, nil
}

func ParseTLSPolicy(policy string) (mail.TLSPolicy, error) {
	switch strings.ToLower(policy) {
	case "", TLSMandatory:
		return mail.TLSMandatory, nil
	case TLSOpportunistic:
		return mail.TLSOpportunistic, nil
	case TLSNone:
		return mail.NoTLS, nil
	default:
		return mail.NoTLS, fmt.Errorf("unknown tls policy %q", policy)
	}
}

// New returns a client that always authenticates, a missing username or
// password is an error.
func New(opts Options) (*Client, error) {
	if opts.Username == "" || opts.Password == "" {
		return nil, fmt.Errorf("smtp username and password are required")
	}

	policy, err := ParseTLSPolicy(opts.TLSPolicy)
	if err != nil {
		return nil, err
	}

	timeout := opts.Timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}

	options := []mail.Option{
		mail.WithPort(opts.Port),
		mail.WithTLSPolicy(policy),
		mail.WithTimeout(timeout),
	}

	if opts.SSL {
		options = append(options, mail.WithSSL())
	}

	options = append(options,
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(opts.Username),
		mail.WithPassword(opts.Password),
	)

	return &Client{
		host:    opts.Host,
		options: options,
	}, nil
}

package smtp

import (
	"context"
	"fmt"
	"time"

	"github.com/JMURv/auth-service/internal/config"
	"github.com/opentracing/opentracing-go"
	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

const reuseSubject = "Security alert: all sessions were terminated"

const reuseBody = `<p>Hello,</p>
<p>A refresh token belonging to your account was presented again after it had already been used
(at %s from IP address %s). This usually means the token was copied from one of your devices.</p>
<p>As a precaution every session of the affected login has been terminated. Please sign in again
and consider changing your password.</p>`

type EmailServer struct {
	enabled bool
	server  string
	port    int
	user    string
	pass    string
}

func New(conf config.Config) *EmailServer {
	return &EmailServer{
		enabled: conf.Email.Enabled,
		server:  conf.Email.Server,
		port:    conf.Email.Port,
		user:    conf.Email.User,
		pass:    conf.Email.Pass,
	}
}

func (s *EmailServer) GetMessageBase(subject, toEmail string) *gomail.Message {
	m := gomail.NewMessage()
	m.SetHeader("From", s.user)
	m.SetHeader("To", toEmail)
	m.SetHeader("Subject", subject)
	return m
}

func (s *EmailServer) Send(m *gomail.Message) error {
	d := gomail.NewDialer(s.server, s.port, s.user, s.pass)
	if err := d.DialAndSend(m); err != nil {
		zap.L().Error(
			"Failed to send an email",
			zap.Error(err),
		)
		return err
	}
	return nil
}

// SendReuseAlert tells the account owner that a token family was revoked.
func (s *EmailServer) SendReuseAlert(ctx context.Context, toEmail, ip string, at time.Time) error {
	const op = "smtp.SendReuseAlert"
	span, _ := opentracing.StartSpanFromContext(ctx, op)
	defer span.Finish()

	if !s.enabled {
		zap.L().Debug("email disabled, skipping reuse alert", zap.String("op", op))
		return nil
	}

	m := s.GetMessageBase(reuseSubject, toEmail)
	m.SetBody("text/html", fmt.Sprintf(reuseBody, at.UTC().Format(time.RFC1123), ip))
	return s.SendContext(ctx, m)
}

// SendContext gives up waiting for the dialer once ctx is done.
func (s *EmailServer) SendContext(ctx context.Context, m *gomail.Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.Send(m)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		zap.L().Warn("email send abandoned", zap.Error(ctx.Err()))
		return ctx.Err()
	}
}

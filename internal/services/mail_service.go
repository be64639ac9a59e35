package services

import (
	"bytes"
	"crypto/tls"
	"fmt"
	htmltemplate "html/template"
	"mime"
	"net"
	"net/smtp"
	"net/url"
	"strings"
	texttemplate "text/template"
	"time"
)

type IMailService interface {
	SendMailToNotifyUser(
		to, subject, body, ctaText, ctaURL string,
	) error
	SendMailToResetPassword(email, token string) error
}

type SMTPConfig struct {
	Host       string
	Port       int
	Username   string
	Password   string
	From       string
	FromName   string
	UseSSL     bool // implicit TLS (465) instead of STARTTLS (587)
	RequireTLS bool

	AppName    string
	AppBaseURL string
}

type smtpMailService struct {
	cfg     SMTPConfig
	htmlTpl *htmltemplate.Template
	textTpl *texttemplate.Template

	// deliver hands a fully built message to the transport.
	deliver func(to string, msg []byte) error
}

func NewSMTPMailService(cfg SMTPConfig) IMailService {
	s := &smtpMailService{
		cfg:     cfg,
		htmlTpl: htmltemplate.Must(htmltemplate.New("html").Parse(baseHTMLTemplate)),
		textTpl: texttemplate.Must(texttemplate.New("text").Parse(plainTextTemplate)),
	}
	s.deliver = s.sendSMTP
	return s
}

func (s *smtpMailService) SendMailToNotifyUser(
	to, subject, body, ctaText, ctaURL string,
) error {
	html, text, err := s.renderEmail(EmailData{
		Title:     subject,
		Intro:     body,
		ButtonURL: ctaURL,
		ButtonTxt: ctaText,
		AppName:   s.cfg.AppName,
		Year:      time.Now().Year(),
	})
	if err != nil {
		return err
	}
	return s.deliver(to, s.buildMessage(to, subject, html, text))
}

func (s *smtpMailService) SendMailToResetPassword(to, token string) error {
	link := fmt.Sprintf("%s/reset-password?token=%s&email=%s",
		strings.TrimRight(s.cfg.AppBaseURL, "/"), url.QueryEscape(token), url.QueryEscape(to))

	return s.SendMailToNotifyUser(
		to,
		"Reset your password",
		"We received a request to reset your password. Use the button below to choose a new one. If you did not ask for this, you can ignore this email.",
		"Reset Password",
		link,
	)
}

type EmailData struct {
	Title     string
	Intro     string
	ButtonURL string
	ButtonTxt string
	AppName   string
	Year      int
}

const baseHTMLTemplate = `<!doctype html>
<html>
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width,initial-scale=1">
  <title>{{.Title}}</title>
  <style>
    body { margin: 0; padding: 0; background: #f7f3ec; color: #3b3329; font-family: Georgia, "Times New Roman", serif; }
    .wrapper { width: 100%; padding: 32px 12px; box-sizing: border-box; }
    .card { max-width: 560px; margin: 0 auto; background: #ffffff; border-radius: 10px; border: 1px solid #eadfcd; }
    .header { padding: 24px 28px; border-bottom: 1px solid #f0e6d6; font-size: 20px; letter-spacing: 1px; color: #8a6d3b; }
    .body { padding: 28px; }
    h1 { margin: 0 0 14px; font-size: 24px; font-weight: normal; }
    p { margin: 0 0 18px; line-height: 1.6; white-space: pre-line; }
    .btn { display: inline-block; padding: 12px 26px; background: #8a6d3b; color: #ffffff !important; text-decoration: none; border-radius: 6px; }
    .fallback { font-size: 12px; color: #8b8175; word-break: break-all; }
    .footer { padding: 16px 28px; font-size: 12px; color: #8b8175; text-align: center; border-top: 1px solid #f0e6d6; }
  </style>
</head>
<body>
  <div class="wrapper">
    <div class="card">
      <div class="header">{{.AppName}}</div>
      <div class="body">
        <h1>{{.Title}}</h1>
        <p>{{.Intro}}</p>
        {{if .ButtonURL}}
          <p><a class="btn" href="{{.ButtonURL}}">{{.ButtonTxt}}</a></p>
          <p class="fallback">If the button does not work, open this link: <a href="{{.ButtonURL}}">{{.ButtonURL}}</a></p>
        {{end}}
      </div>
      <div class="footer">&copy; {{.Year}} {{.AppName}}</div>
    </div>
  </div>
</body>
</html>`

const plainTextTemplate = `{{.Title}}

{{.Intro}}
{{if .ButtonURL}}
{{.ButtonTxt}}: {{.ButtonURL}}
{{end}}
-- {{.AppName}} {{.Year}}
`

func (s *smtpMailService) renderEmail(data EmailData) (html string, text string, err error) {
	var hb, tb bytes.Buffer

	if err = s.htmlTpl.Execute(&hb, data); err != nil {
		return "", "", err
	}
	if err = s.textTpl.Execute(&tb, data); err != nil {
		return "", "", err
	}
	return hb.String(), tb.String(), nil
}

func (s *smtpMailService) buildMessage(to, subject, htmlBody, textBody string) []byte {
	boundary := fmt.Sprintf("alt_%d", time.Now().UnixNano())

	var msg bytes.Buffer
	write := func(format string, a ...any) { _, _ = fmt.Fprintf(&msg, format, a...) }

	write("From: %s\r\n", s.formatFromHeader())
	write("To: %s\r\n", to)
	write("Subject: %s\r\n", mime.QEncoding.Encode("utf-8", subject))
	write("Date: %s\r\n", time.Now().Format(time.RFC1123Z))
	write("MIME-Version: 1.0\r\n")
	write("Content-Type: multipart/alternative; boundary=%q\r\n", boundary)
	write("\r\n")

	write("--%s\r\n", boundary)
	write("Content-Type: text/plain; charset=UTF-8\r\n")
	write("Content-Transfer-Encoding: 8bit\r\n\r\n")
	write("%s\r\n\r\n", textBody)

	write("--%s\r\n", boundary)
	write("Content-Type: text/html; charset=UTF-8\r\n")
	write("Content-Transfer-Encoding: 8bit\r\n\r\n")
	write("%s\r\n\r\n", htmlBody)

	write("--%s--\r\n", boundary)
	return msg.Bytes()
}

func (s *smtpMailService) sendSMTP(to string, msg []byte) error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	tlsCfg := &tls.Config{ServerName: s.cfg.Host, MinVersion: tls.VersionTLS12}

	var conn net.Conn
	var err error
	if s.cfg.UseSSL {
		conn, err = tls.DialWithDialer(&net.Dialer{Timeout: 10 * time.Second}, "tcp", addr, tlsCfg)
	} else {
		conn, err = (&net.Dialer{Timeout: 10 * time.Second}).Dial("tcp", addr)
	}
	if err != nil {
		return err
	}
	defer conn.Close()

	c, err := smtp.NewClient(conn, s.cfg.Host)
	if err != nil {
		return err
	}
	defer c.Quit()

	if !s.cfg.UseSSL {
		if ok, _ := c.Extension("STARTTLS"); ok {
			if err = c.StartTLS(tlsCfg); err != nil {
				return err
			}
		} else if s.cfg.RequireTLS {
			return fmt.Errorf("server does not support STARTTLS and RequireTLS=true")
		}
	}

	if s.cfg.Username != "" {
		if err = c.Auth(smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)); err != nil {
			return err
		}
	}
	if err = c.Mail(s.cfg.From); err != nil {
		return err
	}
	if err = c.Rcpt(to); err != nil {
		return err
	}
	w, err := c.Data()
	if err != nil {
		return err
	}
	if _, err = w.Write(msg); err != nil {
		return err
	}
	return w.Close()
}

func (s *smtpMailService) formatFromHeader() string {
	name := strings.TrimSpace(s.cfg.FromName)
	if name == "" {
		return s.cfg.From
	}
	return fmt.Sprintf("%s <%s>", mime.BEncoding.Encode("utf-8", name), s.cfg.From)
}

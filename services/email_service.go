package services

import (
	"fmt"

	"github.com/Dosada05/ff-arena/config"
	"gopkg.in/gomail.v2"
)

// EmailSender абстрагирует SMTP для тестов.
type EmailSender interface {
	SendOTPEmail(to, code string) error
	SendVerificationEmail(to, verifyURL string) error
	SendPasswordResetEmail(to, resetURL string) error
	SendDepositStatusEmail(to string, amount int, approved bool) error
	SendWithdrawalStatusEmail(to string, amount int, approved bool) error
}

type EmailService struct {
	cfg *config.Config
}

func NewEmailService(cfg *config.Config) *EmailService {
	return &EmailService{cfg: cfg}
}

func (s *EmailService) send(to, subject, htmlBody string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.cfg.SMTPFrom)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", htmlBody)

	d := gomail.NewDialer(s.cfg.SMTPHost, s.cfg.SMTPPort, s.cfg.SMTPUser, s.cfg.SMTPPass)
	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email to %s: %w", to, err)
	}
	return nil
}

func (s *EmailService) SendOTPEmail(to, code string) error {
	body := fmt.Sprintf(`
		<h2>Подтверждение почты FF Arena</h2>
		<p>Ваш код подтверждения:</p>
		<h1 style="letter-spacing: 5px;">%s</h1>
		<p>Код действует 10 минут. Если вы не запрашивали его, просто проигнорируйте письмо.</p>
	`, code)
	return s.send(to, "Ваш код подтверждения FF Arena", body)
}

func (s *EmailService) SendVerificationEmail(to, verifyURL string) error {
	body := fmt.Sprintf(`
		<h2>Подтверждение почты FF Arena</h2>
		<p>Чтобы подтвердить адрес, перейдите по ссылке:</p>
		<p><a href="%s">%s</a></p>
		<p>Ссылка действует 24 часа.</p>
	`, verifyURL, verifyURL)
	return s.send(to, "Подтвердите вашу почту", body)
}

func (s *EmailService) SendPasswordResetEmail(to, resetURL string) error {
	body := fmt.Sprintf(`
		<h2>Сброс пароля FF Arena</h2>
		<p>Чтобы задать новый пароль, перейдите по ссылке:</p>
		<p><a href="%s">%s</a></p>
		<p>Ссылка действует 1 час. Если вы не запрашивали сброс, проигнорируйте письмо.</p>
	`, resetURL, resetURL)
	return s.send(to, "Сброс пароля", body)
}

func (s *EmailService) SendDepositStatusEmail(to string, amount int, approved bool) error {
	if approved {
		return s.send(to, "Пополнение зачислено",
			fmt.Sprintf("<p>Ваше пополнение на ₹%d одобрено и зачислено на баланс.</p>", amount))
	}
	return s.send(to, "Пополнение отклонено",
		fmt.Sprintf("<p>Ваша заявка на пополнение ₹%d отклонена. Свяжитесь с поддержкой, если это ошибка.</p>", amount))
}

func (s *EmailService) SendWithdrawalStatusEmail(to string, amount int, approved bool) error {
	if approved {
		return s.send(to, "Вывод средств выполнен",
			fmt.Sprintf("<p>Ваш вывод ₹%d одобрен и отправлен на ваш UPI.</p>", amount))
	}
	return s.send(to, "Вывод средств отклонён",
		fmt.Sprintf("<p>Заявка на вывод ₹%d отклонена, средства возвращены на баланс.</p>", amount))
}

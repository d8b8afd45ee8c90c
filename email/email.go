package email

import (
	"fmt"
	"mime"
	"net/smtp"
	"strings"
	"sync"

	"versare/common"
	"versare/config"
	"versare/models"
)

type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// EmailService avisa a equipe sobre novos leads. Sem SMTP_HOST ou sem
// destinatário os avisos são ignorados.
type EmailService struct {
	cfg  config.SMTPConfig
	send sendFunc
	wg   sync.WaitGroup
}

func NewEmailService(cfg config.SMTPConfig) *EmailService {
	return &EmailService{cfg: cfg, send: smtp.SendMail}
}

func (e *EmailService) Enabled() bool {
	return e.cfg.Host != "" && e.cfg.NotifyTo != ""
}

func (e *EmailService) NotifyContact(contact models.Contact) {
	subject := "Novo contato pelo site - " + contact.Name
	body := fmt.Sprintf(`Um novo contato foi enviado pelo site.

Nome: %s
Email: %s
Telefone: %s

Mensagem:
%s
`, contact.Name, contact.Email, contact.Phone, contact.Message)

	if contact.PropertyID != nil {
		body += fmt.Sprintf("\nImóvel: #%d\n", *contact.PropertyID)
	}

	e.dispatch(subject, body)
}

func (e *EmailService) NotifyWhatsapp(message models.WhatsappMessage) {
	subject := fmt.Sprintf("Interesse via WhatsApp - %s (%s)", message.PropertyCode, message.Name)
	body := fmt.Sprintf(`Um visitante clicou para conversar pelo WhatsApp.

Nome: %s
Telefone: %s

Mensagem:
%s

Imóvel: %s - %s
Tipo: %s
Preço: R$ %.2f
`, message.Name, message.Phone, message.Message,
		message.PropertyCode, message.PropertyTitle, message.PropertyType, message.PropertyPrice)

	e.dispatch(subject, body)
}

// dispatch envia em segundo plano para não segurar a resposta da API.
func (e *EmailService) dispatch(subject, body string) {
	if !e.Enabled() {
		return
	}

	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		if err := e.Send(e.cfg.NotifyTo, subject, body); err != nil {
			common.Logger.WithError(err).WithField("subject", subject).Error("Erro ao enviar email de aviso")
		}
	}()
}

// Wait bloqueia até os envios pendentes terminarem.
func (e *EmailService) Wait() {
	e.wg.Wait()
}

// headerValue junta as linhas num valor só e codifica em RFC 2047 quando
// há caracteres fora do ASCII.
func headerValue(s string) string {
	return mime.QEncoding.Encode("utf-8", strings.Join(strings.Fields(s), " "))
}

func (e *EmailService) Send(to, subject, body string) error {
	message := fmt.Sprintf("From: %s\r\n"+
		"To: %s\r\n"+
		"Subject: %s\r\n"+
		"MIME-Version: 1.0\r\n"+
		"Content-Type: text/plain; charset=UTF-8\r\n"+
		"\r\n"+
		"%s\r\n", headerValue(e.cfg.From), headerValue(to), headerValue(subject), strings.ReplaceAll(body, "\n", "\r\n"))

	var auth smtp.Auth
	if e.cfg.User != "" {
		auth = smtp.PlainAuth("", e.cfg.User, e.cfg.Password, e.cfg.Host)
	}
	addr := fmt.Sprintf("%s:%s", e.cfg.Host, e.cfg.Port)

	if err := e.send(addr, auth, e.cfg.From, []string{to}, []byte(message)); err != nil {
		return fmt.Errorf("erro ao enviar email: %v", err)
	}
	return nil
}

package services

import (
	"fmt"
	"log"

	"github.com/suriyap/repair-system-api/config"
	"github.com/suriyap/repair-system-api/models"
	"gopkg.in/gomail.v2"
)

// EmailService sends notification emails over SMTP. When SMTP credentials
// are not configured, sends are skipped silently.
type EmailService struct {
	host        string
	port        int
	user        string
	pass        string
	frontendURL string
}

// NewEmailService creates an email service from the application configuration
func NewEmailService(cfg *config.Config) *EmailService {
	return &EmailService{
		host:        cfg.SMTPHost,
		port:        cfg.SMTPPort,
		user:        cfg.SMTPUser,
		pass:        cfg.SMTPPass,
		frontendURL: cfg.FrontendURL,
	}
}

// send delivers one HTML email. Errors are logged, not returned: email is a
// best-effort channel.
func (s *EmailService) send(to, subject, html string) {
	if s.user == "" {
		log.Println("Email not configured, skipping...")
		return
	}

	m := gomail.NewMessage()
	m.SetHeader("From", fmt.Sprintf("Repair System <%s>", s.user))
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", html)

	d := gomail.NewDialer(s.host, s.port, s.user, s.pass)
	if err := d.DialAndSend(m); err != nil {
		log.Printf("Email error: %v", err)
		return
	}
	log.Printf("Email sent to %s", to)
}

// SendStatusChange emails the requester about a status transition
func (s *EmailService) SendStatusChange(to string, repair *models.RepairRequest, newStatus models.Status) {
	subject := fmt.Sprintf("[Repair] Status update %s", repair.RequestNo)
	html := fmt.Sprintf(`
		<div style="font-family: sans-serif; max-width: 600px; margin: 0 auto;">
			<h3>Repair request status update</h3>
			<table style="width: 100%%; border-collapse: collapse;">
				<tr><td style="padding: 8px;"><strong>Request:</strong></td><td>%s</td></tr>
				<tr><td style="padding: 8px;"><strong>Title:</strong></td><td>%s</td></tr>
				<tr><td style="padding: 8px;"><strong>Status:</strong></td><td>%s</td></tr>
				<tr><td style="padding: 8px;"><strong>Location:</strong></td><td>%s</td></tr>
			</table>
			<p><a href="%s/repairs/%d">View details</a></p>
		</div>`,
		repair.RequestNo, repair.Title, newStatus.Label(), repair.Location, s.frontendURL, repair.ID)

	s.send(to, subject, html)
}

// SendAssignment emails a technician about a newly assigned job
func (s *EmailService) SendAssignment(to string, repair *models.RepairRequest) {
	subject := fmt.Sprintf("[Repair] New job: %s", repair.RequestNo)
	html := fmt.Sprintf(`
		<div style="font-family: sans-serif; max-width: 600px; margin: 0 auto;">
			<h3>%s</h3>
			<p><strong>Request:</strong> %s</p>
			<p><strong>Location:</strong> %s</p>
			<p><strong>Priority:</strong> %s</p>
			<p><a href="%s/repairs/%d">View job details</a></p>
		</div>`,
		repair.Title, repair.RequestNo, repair.Location, repair.Priority, s.frontendURL, repair.ID)

	s.send(to, subject, html)
}

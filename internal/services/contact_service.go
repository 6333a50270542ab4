package services

import (
	"fmt"
	"strings"

	"github.com/tripora/server/internal/mailer"
	"github.com/tripora/server/internal/models"
)

type ContactService struct {
	mail    mailer.Mailer
	inbox   string
	details ContactInfo
}

type ContactFormInput struct {
	Name      string `json:"name"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Subject   string `json:"subject"`
	Message   string `json:"message"`
}

type ContactInfo struct {
	Email         string            `json:"email"`
	Phone         string            `json:"phone"`
	Address       map[string]string `json:"address"`
	BusinessHours map[string]string `json:"businessHours"`
}

func NewContactService(mail mailer.Mailer, inbox string) *ContactService {
	return &ContactService{
		mail:  mail,
		inbox: inbox,
		details: ContactInfo{
			Email: inbox,
			Phone: "+91 98765 43210",
			Address: map[string]string{
				"line1":   "Tripora Tours & Travels",
				"city":    "Jaipur",
				"state":   "Rajasthan",
				"country": "India",
			},
			BusinessHours: map[string]string{
				"weekdays": "9:00 AM - 7:00 PM",
				"weekends": "10:00 AM - 6:00 PM",
			},
		},
	}
}

// SubmitForm validates and relays a contact form message. Delivery failure is
// surfaced to the caller; there is nothing to roll back.
func (cs *ContactService) SubmitForm(in ContactFormInput) error {
	fullName := strings.TrimSpace(in.Name)
	if fullName == "" {
		fullName = strings.TrimSpace(strings.TrimSpace(in.FirstName) + " " + strings.TrimSpace(in.LastName))
	}
	if fullName == "" || in.Email == "" || in.Subject == "" || in.Message == "" {
		return fmt.Errorf("%w: name, email, subject and message are required", models.ErrValidation)
	}
	if err := models.Validate.Var(in.Email, "email"); err != nil {
		return fmt.Errorf("%w: please provide a valid email address", models.ErrValidation)
	}
	if len(in.Message) < 10 {
		return fmt.Errorf("%w: message must be at least 10 characters long", models.ErrValidation)
	}
	if len(in.Message) > 1000 {
		return fmt.Errorf("%w: message must be less than 1000 characters", models.ErrValidation)
	}

	body := fmt.Sprintf("From: %s <%s>\nPhone: %s\n\n%s\n", fullName, in.Email, in.Phone, in.Message)
	if err := cs.mail.Send([]string{cs.inbox}, "Contact form: "+in.Subject, body); err != nil {
		return fmt.Errorf("failed to deliver contact message: %w", err)
	}
	return nil
}

func (cs *ContactService) Info() ContactInfo {
	return cs.details
}

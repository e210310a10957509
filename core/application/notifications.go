package application

import (
	"net/mail"

	"github.com/risingacademy/backend/core"
)

type notificationData struct {
	FirstName string
	Program   string
	Approved  bool
}

func (svc *Service) applicant(app Application) []mail.Address {
	return []mail.Address{{Name: app.FullName(), Address: app.Email}}
}

func (svc *Service) sendReceivedMail(app Application) {
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:           svc.applicant(app),
		Subject:      "We received your application",
		TemplateName: "application_received",
		TemplateData: notificationData{
			FirstName: app.FirstName,
			Program:   app.Type.Program(),
		},
	})
}

func (svc *Service) sendDecisionMail(app Application) {
	subject := "Your application was not accepted"
	if app.Status == StatusApproved {
		subject = "Your application was approved"
	}
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:           svc.applicant(app),
		Subject:      subject,
		TemplateName: "application_decision",
		TemplateData: notificationData{
			FirstName: app.FirstName,
			Program:   app.Type.Program(),
			Approved:  app.Status == StatusApproved,
		},
	})
}

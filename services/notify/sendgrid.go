package notifsvc

import (
	"fmt"
	"net/http"
	"net/mail"

	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/dev-Vortex51/iitms/core"
)

var (
	host     = "https://api.sendgrid.com"
	endpoint = "/v3/mail/send"
)

// sendgridService delivers attendance events by email. Events without a
// recipient go to the placement office inbox.
type sendgridService struct {
	key        string
	from       *sgmail.Email
	inbox      mail.Address
	subjPrefix string
	logger     core.Logger
}

var _ core.NotificationService = (*sendgridService)(nil)

func NewSendgridService(conf *core.Config, logger core.Logger) *sendgridService {
	return &sendgridService{
		key:        conf.SendgridApiKey,
		from:       sgmail.NewEmail(conf.DefaultFromEmail.Name, conf.DefaultFromEmail.Address),
		inbox:      conf.PlacementInbox,
		subjPrefix: "[" + conf.AppName + "] ",
		logger:     logger,
	}
}

func (svc sendgridService) Notify(events ...core.Event) {
	for _, event := range events {
		event := event
		go svc.send(event)
	}
}

func (svc sendgridService) prepare(event core.Event) *sgmail.SGMailV3 {
	to := event.Recipient
	if !event.HasRecipient() {
		to = svc.inbox
	}

	p := sgmail.NewPersonalization()
	p.Subject = svc.subjPrefix + event.Subject
	p.AddTos(sgmail.NewEmail(to.Name, to.Address))

	m := sgmail.NewV3Mail()
	m.SetFrom(svc.from)
	m.AddPersonalizations(p)
	m.AddContent(sgmail.NewContent("text/plain", event.Body))
	return m
}

func (svc sendgridService) send(event core.Event) {
	req := sendgrid.GetRequest(svc.key, endpoint, host)
	req.Method = http.MethodPost
	req.Body = sgmail.GetRequestBody(svc.prepare(event))

	res, err := sendgrid.API(req)
	if err != nil {
		svc.logger.Error(fmt.Sprintf("sending %s notification: %v", event.Name, err), err)
	} else if res.StatusCode >= http.StatusBadRequest {
		svc.logger.Error(fmt.Sprintf("sending %s notification - status: %d - Body: %s", event.Name, res.StatusCode, res.Body))
	}
	// todo: retries ??
}

package notifsvc

import (
	"fmt"
	"log"
	"net/mail"
	"strings"
	"time"

	"github.com/dev-Vortex51/iitms/core"
)

// consoleService prints events to the standard logger. Used in DEV.
type consoleService struct {
	from       mail.Address
	inbox      mail.Address
	subjPrefix string
}

var _ core.NotificationService = (*consoleService)(nil)

func NewConsoleService(conf *core.Config) core.NotificationService {
	return &consoleService{
		from:       conf.DefaultFromEmail,
		inbox:      conf.PlacementInbox,
		subjPrefix: "[" + conf.AppName + "] ",
	}
}

func (svc consoleService) Notify(events ...core.Event) {
	for _, event := range events {
		event := event
		go svc.print(event)
	}
}

func (svc consoleService) print(event core.Event) {
	to := event.Recipient
	if !event.HasRecipient() {
		to = svc.inbox
	}

	body := new(strings.Builder)
	_, _ = fmt.Fprintf(body, "From: %s\r\n", svc.from.String())
	_, _ = fmt.Fprintf(body, "Date: %s\r\n", time.Now().Format(time.RFC1123Z))
	_, _ = fmt.Fprintf(body, "Subject: %s\r\n", svc.subjPrefix+event.Subject)
	_, _ = fmt.Fprintf(body, "To: %s\r\n", to.String())
	_, _ = fmt.Fprintf(body, "Event: %s (student=%s record=%s)\r\n", event.Name, event.StudentID, event.RecordID)
	_, _ = fmt.Fprintf(body, "\r\n%s\r\n", event.Body)
	log.Println(body.String())
}

package notifsvc

import (
	"sync"

	"github.com/dev-Vortex51/iitms/core"
)

// dummyService records events without delivering them. Runs synchronously so
// tests can assert on SentEvents right after the triggering call.
type dummyService struct {
	mutex      sync.Mutex
	SentEvents []core.Event
}

var _ core.NotificationService = (*dummyService)(nil)

func NewDummyService() *dummyService {
	return &dummyService{SentEvents: make([]core.Event, 0)}
}

func (svc *dummyService) Notify(events ...core.Event) {
	svc.mutex.Lock()
	defer svc.mutex.Unlock()
	svc.SentEvents = append(svc.SentEvents, events...)
}

// Reset clears the recorded events between test cases.
func (svc *dummyService) Reset() {
	svc.mutex.Lock()
	defer svc.mutex.Unlock()
	svc.SentEvents = svc.SentEvents[:0]
}

// Events returns a snapshot of everything recorded so far.
func (svc *dummyService) Events() []core.Event {
	svc.mutex.Lock()
	defer svc.mutex.Unlock()
	out := make([]core.Event, len(svc.SentEvents))
	copy(out, svc.SentEvents)
	return out
}

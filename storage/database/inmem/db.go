package inmemdb

import (
	"sync"

	"github.com/dev-Vortex51/iitms/core/attendance"
	"github.com/dev-Vortex51/iitms/core/student"
)

type (
	recordTable struct {
		mutex sync.RWMutex
		table map[string]*attendance.Record // by record ID
		byDay map[string]string             // studentID|day -> record ID
	}

	directoryTable struct {
		mutex       sync.RWMutex
		students    map[string]student.Profile
		supervisors map[string]student.Supervisor
	}

	// DB is an in-memory stand-in for the real store, used in tests and the
	// DEV sandbox.
	DB struct {
		records   *recordTable
		directory *directoryTable
	}
)

func Open() (*DB, error) {
	return &DB{
		records: &recordTable{
			table: make(map[string]*attendance.Record),
			byDay: make(map[string]string),
		},
		directory: &directoryTable{
			students:    make(map[string]student.Profile),
			supervisors: make(map[string]student.Supervisor),
		},
	}, nil
}

package tests

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	. "github.com/dev-Vortex51/iitms/apps/api/echo"
	"github.com/dev-Vortex51/iitms/core"
	"github.com/dev-Vortex51/iitms/core/attendance"
	"github.com/dev-Vortex51/iitms/core/student"
	notifsvc "github.com/dev-Vortex51/iitms/services/notify"
	inmemdb "github.com/dev-Vortex51/iitms/storage/database/inmem"
)

var (
	app       Server
	attRepo   attendance.Repository
	directory interface {
		student.Directory
		SetStudent(student.Profile)
		SetSupervisor(student.Supervisor)
	}

	errMissingToken = httpErr{Error: "missing or malformed jwt"}
	errForbidden    = httpErr{Error: "permission denied"}
)

func TestMain(m *testing.M) {
	conf := &core.Config{
		TestMode:  true,
		Env:       "TEST",
		AppName:   "IITMS",
		SecretKey: "secret",
		Server: core.ServerConfig{
			JWTExpirationDelta: 10 * time.Minute,
		},
	}

	// set up DB & repos
	db, err := inmemdb.Open()
	if err != nil {
		fmt.Printf("inmemdb.Open(): %v", err)
		os.Exit(1)
	}
	attRepo = inmemdb.NewAttendanceRepository(db)
	directory = inmemdb.NewDirectory(db)

	// set up services
	attSvc := attendance.NewService(attRepo, directory, notifsvc.NewDummyService())

	validate := validator.New()
	translator := newTranslator()
	core.InitValidators(validate, translator)
	attendance.InitValidators(validate, translator)

	// set up server
	app = NewServer(ServerDeps{
		Conf:          conf,
		Logger:        testLogger{},
		AttendanceSvc: attSvc,
		Validate:      validate,
		Translator:    translator,
	})

	os.Exit(m.Run())
}

func newTranslator() ut.Translator {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	return translator
}

// testLogger satisfies core.Logger without reporting anywhere.
type testLogger struct{}

func (testLogger) Debug(msg string, args ...interface{}) {}
func (testLogger) Info(msg string, args ...interface{})  {}
func (testLogger) Warn(msg string, args ...interface{})  {}
func (testLogger) Error(msg string, args ...interface{}) {}
func (testLogger) Fatal(msg string, args ...interface{}) { log.Fatal(msg) }

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
	extra    interface{}
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	return newAuthRequest(method, path, "", data...)
}

func getToken(t *testing.T, actor core.Actor, isStudent, isSupervisor, isAdmin bool) string {
	claims := GetActorClaims(actor, isStudent, isSupervisor, isAdmin)
	token, err := GenerateToken(claims)
	if err != nil {
		t.Fatalf("getToken(): %v", err)
	}
	return token
}

func studentToken(t *testing.T, id string) string {
	return getToken(t, core.Actor{ID: id}, true, false, false)
}

func supervisorToken(t *testing.T, id string) string {
	return getToken(t, core.Actor{ID: id}, false, true, false)
}

func adminToken(t *testing.T, id string) string {
	return getToken(t, core.Actor{ID: id}, false, false, true)
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj(): %v", err)
	}
	return data
}

func unmarshalRecord(t *testing.T, data []byte) attendance.Record {
	var rec attendance.Record
	if err := json.Unmarshal(data, &rec); err != nil {
		t.Fatalf("unmarshalRecord(): %v", err)
	}
	return rec
}

func checkCode(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v; body %s", rec.Code, tt.wantCode, rec.Body.String())
	}
}

func checkCodeAndError(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder, want httpErr) {
	checkCode(t, tt, rec)
	var got httpErr
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("unmarshal error body: %v", err)
	}
	if got != want {
		t.Errorf("failed! error = %v; want %v", got, want)
	}
}

func setNow(t *testing.T, now time.Time) {
	attendance.NowFunc = func() time.Time { return now }
	t.Cleanup(func() { attendance.NowFunc = time.Now })
}

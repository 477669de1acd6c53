package api

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/luminaed/atrium/internal/domain"
	"github.com/luminaed/atrium/internal/mail"
	"github.com/luminaed/atrium/internal/pkg/distlock"
	"github.com/luminaed/atrium/internal/service/dispatch"
	"github.com/luminaed/atrium/internal/service/reconcile"
)

// In-memory reconcile repositories.

type testPeople struct {
	byID    map[int64]*domain.Person
	byEmail map[string]*domain.Person
}

func newTestPeople() *testPeople {
	return &testPeople{byID: map[int64]*domain.Person{}, byEmail: map[string]*domain.Person{}}
}

func (p *testPeople) GetByID(_ context.Context, id int64) (*domain.Person, error) {
	if v, ok := p.byID[id]; ok {
		cp := *v
		return &cp, nil
	}
	return nil, reconcile.ErrNotFound
}

func (p *testPeople) GetByEmail(_ context.Context, email string) (*domain.Person, error) {
	if v, ok := p.byEmail[email]; ok {
		cp := *v
		return &cp, nil
	}
	return nil, reconcile.ErrNotFound
}

func (p *testPeople) UpdateByID(_ context.Context, v *domain.Person) error {
	cp := *v
	p.byID[cp.ID] = &cp
	p.byEmail[cp.Email] = &cp
	return nil
}

func (p *testPeople) UpdateByEmail(_ context.Context, email string, v *domain.Person) error {
	if old, ok := p.byEmail[email]; ok {
		delete(p.byID, old.ID)
	}
	cp := *v
	p.byID[cp.ID] = &cp
	p.byEmail[email] = &cp
	return nil
}

func (p *testPeople) Insert(_ context.Context, v *domain.Person) error {
	cp := *v
	p.byID[cp.ID] = &cp
	if cp.Email != "" {
		p.byEmail[cp.Email] = &cp
	}
	return nil
}

type testOrgs struct{}

func (testOrgs) UpsertDistrict(context.Context, domain.District) error { return nil }
func (testOrgs) UpsertSchool(context.Context, domain.School) error     { return nil }

// In-memory dispatch repositories.

type testCampaigns struct {
	statuses map[string]domain.CampaignStatus
}

func (c *testCampaigns) Upsert(_ context.Context, camp *domain.Campaign) error {
	c.statuses[camp.ID] = camp.Status
	return nil
}

func (c *testCampaigns) UpdateStatus(_ context.Context, id string, s domain.CampaignStatus) error {
	c.statuses[id] = s
	return nil
}

type testRecipients struct {
	rows []*domain.Recipient
}

func (r *testRecipients) UpsertPending(_ context.Context, rec *domain.Recipient) error {
	cp := *rec
	r.rows = append(r.rows, &cp)
	return nil
}

func (r *testRecipients) MarkSent(_ context.Context, id string, at time.Time) error {
	for _, rec := range r.rows {
		if rec.ID == id {
			rec.Status = domain.RecipientSent
			rec.SentAt = &at
		}
	}
	return nil
}

func (r *testRecipients) MarkFailed(_ context.Context, id, errMsg string) error {
	for _, rec := range r.rows {
		if rec.ID == id {
			rec.Status = domain.RecipientFailed
			rec.ErrorMessage = errMsg
		}
	}
	return nil
}

func (r *testRecipients) CountByStatus(_ context.Context, campaignID string) (domain.RecipientStatusCounts, error) {
	var c domain.RecipientStatusCounts
	for _, rec := range r.rows {
		if rec.CampaignID != campaignID {
			continue
		}
		c.Total++
		switch rec.Status {
		case domain.RecipientPending:
			c.Pending++
		case domain.RecipientSent:
			c.Sent++
		case domain.RecipientFailed:
			c.Failed++
		}
	}
	return c, nil
}

type testLock struct{ allow bool }

func (l testLock) Acquire(context.Context) (bool, error) { return l.allow, nil }
func (l testLock) Release(context.Context) error         { return nil }

type noopSleeper struct{}

func (noopSleeper) Sleep(context.Context, time.Duration) {}

type testSender struct {
	respond func(mail.Message) error
	sent    []mail.Message
}

func (s *testSender) Send(_ context.Context, msg mail.Message) error {
	s.sent = append(s.sent, msg)
	if s.respond != nil {
		return s.respond(msg)
	}
	return nil
}

type testInvitees struct {
	invitees []domain.Invitee
}

func (t *testInvitees) ListInvitees(context.Context, string) ([]domain.Invitee, error) {
	return t.invitees, nil
}

type env struct {
	router    http.Handler
	people    *testPeople
	sender    *testSender
	lockAllow bool
}

func newEnv(t *testing.T) *env {
	t.Helper()
	e := &env{people: newTestPeople(), sender: &testSender{}, lockAllow: true}
	dispatcher := dispatch.NewService(
		&testCampaigns{statuses: map[string]domain.CampaignStatus{}},
		&testRecipients{},
		e.sender,
		noopSleeper{},
		func(string) distlock.Lock { return testLock{allow: e.lockAllow} },
		"outreach@luminaed.org",
	)
	e.router = NewRouter(Handlers{
		Reports:   NewReportsHandler(reconcile.NewService(e.people, testOrgs{})),
		Campaigns: NewCampaignHandler(dispatcher),
		Meetings: NewMeetingHandler(&testInvitees{invitees: []domain.Invitee{
			{ID: 3, MeetingID: "m-1", EmailAddress: "inv@x.com", FirstName: "Ines", Status: domain.InviteeConfirmed},
			{ID: 4, MeetingID: "m-1", Status: domain.InviteeConfirmed},
			{ID: 5, MeetingID: "m-1", EmailAddress: "declined@x.com", Status: domain.InviteeDeclined},
			{ID: 6, MeetingID: "m-1", EmailAddress: "pending@x.com", Status: domain.InviteeInvited},
			{ID: 7, MeetingID: "m-1", EmailAddress: "attended@x.com", Status: domain.InviteeParticipated},
		}}),
	}, []string{"http://localhost:5173"})
	return e
}

func (e *env) do(t *testing.T, method, path, contentType string, body []byte) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decoding %q: %v", rec.Body.String(), err)
	}
	return out
}

func TestHealth(t *testing.T) {
	e := newEnv(t)
	rec := e.do(t, http.MethodGet, "/health", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
}

func TestUploadJSONRows(t *testing.T) {
	e := newEnv(t)
	body := []byte(`{"rows":[
		{"id":5,"first_name":"Ada","last_name":"Lovelace","email":"ada@school.edu","district_id":"7","school_id":12},
		{"id":"6","last_name":"Byron","email":"byron@school.edu"}
	]}`)
	rec := e.do(t, http.MethodPost, "/api/reports/upload", "application/json", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
	out := decodeBody(t, rec)
	summary := out["summary"].(map[string]any)
	if summary["received"].(float64) != 2 || summary["added"].(float64) != 2 {
		t.Errorf("summary: %v", summary)
	}
	// First name defaulted from the email local part.
	if e.people.byID[6] == nil || e.people.byID[6].FirstName != "byron" {
		t.Errorf("person 6: %+v", e.people.byID[6])
	}
}

func TestUploadRowsMissing(t *testing.T) {
	e := newEnv(t)
	for _, body := range []string{`{}`, `{"rows":"nope"}`, `{"rows":null}`} {
		rec := e.do(t, http.MethodPost, "/api/reports/upload", "application/json", []byte(body))
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s: status %d", body, rec.Code)
			continue
		}
		if out := decodeBody(t, rec); out["error"] != "No rows provided" {
			t.Errorf("%s: %v", body, out)
		}
	}
}

func multipartCSV(t *testing.T, csv string) (string, []byte) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", "report.csv")
	if err != nil {
		t.Fatal(err)
	}
	fw.Write([]byte(csv))
	mw.Close()
	return mw.FormDataContentType(), buf.Bytes()
}

const fullCSVHeader = "first_name,last_name,id,date_of_birth,email,role_profile," +
	"race_ethnicity,state_work,district_name,district_id,school_name,school_id," +
	"sy2024_25_participation_limits,content_area,sy2024_25_course,sy2024_25_grade_level"

func TestUploadFile(t *testing.T) {
	e := newEnv(t)
	ct, body := multipartCSV(t, fullCSVHeader+"\n"+
		"Ada,Lovelace,5,1990-01-01,ada@school.edu,Teacher,,OH,Franklin County,7,Franklin High,12,,Math,,\n")
	rec := e.do(t, http.MethodPost, "/api/reports/upload/file", ct, body)
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
	if e.people.byID[5] == nil {
		t.Error("person 5 not reconciled")
	}
}

func TestUploadFileMissingHeaderFailsFast(t *testing.T) {
	e := newEnv(t)
	header := strings.Replace(fullCSVHeader, "district_id,", "", 1)
	ct, body := multipartCSV(t, header+"\nAda,Lovelace,5,,ada@school.edu,,,,,,,,,,\n")
	rec := e.do(t, http.MethodPost, "/api/reports/upload/file", ct, body)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
	out := decodeBody(t, rec)
	details := out["details"].(map[string]any)
	missing := details["missing_headers"].([]any)
	if len(missing) != 1 || missing[0] != "district_id" {
		t.Errorf("missing headers: %v", missing)
	}
	if len(e.people.byID) != 0 {
		t.Error("rows processed despite header failure")
	}
}

func TestSendEmailPartial(t *testing.T) {
	e := newEnv(t)
	body := []byte(`{
		"campaign": {"id":"camp-1","subject":"Hello","body":"Hi {first_name}","footer":"Bye"},
		"settings": {"replyTo":"team@luminaed.org"},
		"recipients": [
			{"id":"1","email":"one@x.com","first_name":"One"},
			{"id":"2","email":"broken"},
			{"id":"3","email":"three@x.com","first_name":"Three"}
		]
	}`)
	rec := e.do(t, http.MethodPost, "/api/send-email", "application/json", body)
	if rec.Code != http.StatusMultiStatus {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
	out := decodeBody(t, rec)
	if out["status"] != "partial_success" || out["campaignId"] != "camp-1" {
		t.Errorf("body: %v", out)
	}
	summary := out["summary"].(map[string]any)
	if summary["total"].(float64) != 3 || summary["successful"].(float64) != 2 || summary["failed"].(float64) != 1 {
		t.Errorf("summary: %v", summary)
	}
	failures := out["failures"].([]any)
	if len(failures) != 1 {
		t.Fatalf("failures: %v", failures)
	}
}

func TestSendEmailSuccess(t *testing.T) {
	e := newEnv(t)
	body := []byte(`{
		"campaign": {"id":"camp-2","subject":"Hello","body":"Hi","footer":""},
		"recipients": [{"id":"1","email":"one@x.com"}]
	}`)
	rec := e.do(t, http.MethodPost, "/api/send-email", "application/json", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
	if out := decodeBody(t, rec); out["status"] != "success" {
		t.Errorf("body: %v", out)
	}
	if len(e.sender.sent) != 1 {
		t.Errorf("%d sends", len(e.sender.sent))
	}
}

func TestSendEmailLocked(t *testing.T) {
	e := newEnv(t)
	e.lockAllow = false
	body := []byte(`{
		"campaign": {"id":"camp-3","subject":"s","body":"b"},
		"recipients": [{"id":"1","email":"one@x.com"}]
	}`)
	rec := e.do(t, http.MethodPost, "/api/send-email", "application/json", body)
	if rec.Code != http.StatusConflict {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
}

func TestMeetingRecipients(t *testing.T) {
	e := newEnv(t)
	rec := e.do(t, http.MethodGet, "/api/meetings/m-1/recipients", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
	out := decodeBody(t, rec)
	recipients := out["recipients"].([]any)
	// Invitees without an email address, and DECLINED or still-INVITED
	// people, are filtered out; only CONFIRMED and PARTICIPATED remain.
	if len(recipients) != 2 {
		t.Fatalf("recipients: %v", recipients)
	}
	first := recipients[0].(map[string]any)
	if first["id"] != "meeting_3" || first["isManual"] != true {
		t.Errorf("recipient: %v", first)
	}
	second := recipients[1].(map[string]any)
	if second["id"] != "meeting_7" || second["email"] != "attended@x.com" {
		t.Errorf("recipient: %v", second)
	}
	for _, r := range recipients {
		email := r.(map[string]any)["email"]
		if email == "declined@x.com" || email == "pending@x.com" {
			t.Errorf("non-attending invitee on send list: %v", email)
		}
	}
}

func TestExportErrorsCSV(t *testing.T) {
	e := newEnv(t)
	body := []byte(`{"rows":[{"id":5,"first_name":"Ada","email":"ada@school.edu","district_id":7}]}`)
	rec := e.do(t, http.MethodPost, "/api/reports/errors/export", "application/json", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Errorf("content type %q", ct)
	}
	lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("csv: %q", rec.Body.String())
	}
	if !strings.HasPrefix(lines[0], "first_name,last_name,id") {
		t.Errorf("header: %q", lines[0])
	}
	if !strings.Contains(lines[1], "ada@school.edu") {
		t.Errorf("row: %q", lines[1])
	}
}

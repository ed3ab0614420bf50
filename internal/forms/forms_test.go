package forms

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"scrumboard/internal/apperr"
	"scrumboard/internal/models"
)

func postContext(values url.Values) *gin.Context {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	c.Request = req
	return c
}

func fieldErrors(t *testing.T, err error) map[string]string {
	t.Helper()
	var ve *apperr.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected validation error, got %v", err)
	}
	return ve.Fields
}

func TestLoginFormMessages(t *testing.T) {
	var f LoginForm
	fields := fieldErrors(t, Bind(postContext(url.Values{"email": {"not-an-email"}}), &f))
	if fields["email"] != "Invalid email format" {
		t.Fatalf("email message = %q", fields["email"])
	}
	if fields["password"] != "Password is required" {
		t.Fatalf("password message = %q", fields["password"])
	}

	f = LoginForm{}
	if err := Bind(postContext(url.Values{"email": {"ann@example.com"}, "password": {"x"}}), &f); err != nil {
		t.Fatalf("valid login: %v", err)
	}
	if f.Email != "ann@example.com" {
		t.Fatalf("email not bound: %+v", f)
	}
}

func TestSignupPasswordLength(t *testing.T) {
	var f SignupForm
	fields := fieldErrors(t, Bind(postContext(url.Values{"name": {"Ann"}, "email": {"ann@example.com"}, "password": {"12345"}}), &f))
	if len(fields) != 1 || fields["password"] != "Password must be at least 6 characters" {
		t.Fatalf("unexpected fields: %+v", fields)
	}
}

func TestUserFormRules(t *testing.T) {
	var f UserForm
	fields := fieldErrors(t, Bind(postContext(url.Values{
		"name": {"Al"}, "email": {"al@example.com"}, "password": {"secret1"}, "role": {"owner"},
	}), &f))
	if fields["name"] != "Too short" || fields["role"] == "" {
		t.Fatalf("unexpected fields: %+v", fields)
	}

	f = UserForm{}
	err := Bind(postContext(url.Values{
		"name": {"Alice"}, "email": {"alice@example.com"}, "password": {"secret1"}, "role": {"admin"},
	}), &f)
	if err != nil || f.ParsedRole() != models.RoleAdmin {
		t.Fatalf("valid user form: %v %+v", err, f)
	}
}

func TestScrumFormNormalisesAssignee(t *testing.T) {
	f := NewScrumForm()
	err := Bind(postContext(url.Values{
		"scrumName": {"Sprint 1"}, "taskTitle": {"Fix bug"}, "taskDescription": {"crash"},
		"taskStatus": {"To Do"}, "taskAssignedTo": {"3"},
	}), f)
	if err != nil {
		t.Fatalf("bind: %v", err)
	}
	if f.Assignee != models.UserID(3) {
		t.Fatalf("assignee = %v", f.Assignee)
	}

	f = NewScrumForm()
	fields := fieldErrors(t, Bind(postContext(url.Values{
		"scrumName": {"Sprint 1"}, "taskTitle": {"Fix bug"}, "taskDescription": {"crash"},
		"taskStatus": {"Blocked"}, "taskAssignedTo": {"abc"},
	}), f))
	if fields["taskStatus"] == "" || fields["taskAssignedTo"] != "Assigning a user is required" {
		t.Fatalf("unexpected fields: %+v", fields)
	}
}

func TestStatusForm(t *testing.T) {
	var f StatusForm
	if err := Bind(postContext(url.Values{"status": {"In Progress"}}), &f); err != nil {
		t.Fatalf("bind: %v", err)
	}
	if f.ParsedStatus() != models.StatusInProgress {
		t.Fatalf("status = %q", f.Status)
	}

	f = StatusForm{}
	fields := fieldErrors(t, Bind(postContext(url.Values{}), &f))
	if fields["status"] != "Status is required" {
		t.Fatalf("unexpected fields: %+v", fields)
	}
}

func TestBlankTextIsRejected(t *testing.T) {
	f := NewScrumForm()
	fields := fieldErrors(t, Bind(postContext(url.Values{
		"scrumName":       {"   "},
		"taskTitle":       {"\t"},
		"taskDescription": {"  "},
		"taskStatus":      {"To Do"},
		"taskAssignedTo":  {"3"},
	}), f))
	want := map[string]string{
		"scrumName":       "Scrum name is required",
		"taskTitle":       "Task title is required",
		"taskDescription": "Task description is required",
	}
	for field, msg := range want {
		if fields[field] != msg {
			t.Fatalf("%s message = %q, want %q", field, fields[field], msg)
		}
	}

	var s SignupForm
	fields = fieldErrors(t, Bind(postContext(url.Values{"name": {"  "}, "email": {"ann@example.com"}, "password": {"secret1"}}), &s))
	if fields["name"] != "Name is required" {
		t.Fatalf("signup name message = %q", fields["name"])
	}

	var u UserForm
	fields = fieldErrors(t, Bind(postContext(url.Values{"name": {"    "}, "email": {"ann@example.com"}, "password": {"secret1"}, "role": {"employee"}}), &u))
	if fields["name"] != "Required" {
		t.Fatalf("user name message = %q", fields["name"])
	}
}

func TestFieldsListsRenderedNames(t *testing.T) {
	got := Fields(NewScrumForm())
	for _, name := range []string{"scrumName", "taskTitle", "taskDescription", "taskStatus", "taskAssignedTo"} {
		if _, ok := got[name]; !ok {
			t.Fatalf("missing %s in %v", name, got)
		}
	}
	if _, ok := got["name"]; ok {
		t.Fatalf("store field leaked into form fields: %v", got)
	}
}

func TestRegisterInstallsRules(t *testing.T) {
	register()
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		t.Fatalf("unexpected engine %T", binding.Validator.Engine())
	}
	if err := v.Var("   ", "notblank"); err == nil {
		t.Fatalf("blank value passed notblank")
	}
	if err := v.Var("Sprint 1", "notblank"); err != nil {
		t.Fatalf("notblank: %v", err)
	}
	if err := v.Var("Done", "taskstatus"); err != nil {
		t.Fatalf("taskstatus: %v", err)
	}
	if err := v.Var("Blocked", "taskstatus"); err == nil {
		t.Fatalf("unknown status passed taskstatus")
	}
}

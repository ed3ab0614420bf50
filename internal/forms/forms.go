// Package forms binds and validates the board's HTML forms before anything
// is sent to the store.
package forms

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"scrumboard/internal/apperr"
	"scrumboard/internal/models"
)

// Former is a bindable form. Messages maps "field.tag" to the text shown
// next to the field when that validation tag fails.
type Former interface {
	Messages() map[string]string
}

// normalizer is implemented by forms that convert raw values after binding.
type normalizer interface {
	normalize(ve *apperr.ValidationError)
}

var registerOnce sync.Once

// register installs the tag-name func and the custom rules on gin's
// validator. The forms cannot validate without them, so failure panics.
func register() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			panic(fmt.Sprintf("forms: unexpected validator engine %T", binding.Validator.Engine()))
		}
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			if name := strings.Split(f.Tag.Get("form"), ",")[0]; name != "" && name != "-" {
				return name
			}
			if name := strings.Split(f.Tag.Get("json"), ",")[0]; name != "" && name != "-" {
				return name
			}
			return f.Name
		})
		rules := map[string]validator.Func{
			"taskstatus": func(fl validator.FieldLevel) bool {
				return models.Status(fl.Field().String()).Valid()
			},
			"notblank": func(fl validator.FieldLevel) bool {
				return strings.TrimSpace(fl.Field().String()) != ""
			},
		}
		for tag, fn := range rules {
			if err := v.RegisterValidation(tag, fn); err != nil {
				panic(fmt.Sprintf("forms: register %s: %v", tag, err))
			}
		}
	})
}

// Fields returns the names of the fields f renders, as used for the keys
// of its ValidationError.
func Fields(f Former) map[string]struct{} {
	out := map[string]struct{}{}
	for key := range f.Messages() {
		name, _, _ := strings.Cut(key, ".")
		out[name] = struct{}{}
	}
	return out
}

// Bind fills f from the request and returns an *apperr.ValidationError
// holding one message per failed field.
func Bind(c *gin.Context, f Former) error {
	register()

	ve := apperr.NewValidationError()
	if err := c.ShouldBind(f); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			ve.Set("form", "The form could not be read.")
			return ve
		}
		msgs := f.Messages()
		for _, fe := range fieldErrs {
			ve.Set(fe.Field(), message(msgs, fe))
		}
	}
	if n, ok := f.(normalizer); ok {
		n.normalize(ve)
	}
	if ve.Empty() {
		return nil
	}
	return ve
}

func message(msgs map[string]string, fe validator.FieldError) string {
	if m, ok := msgs[fe.Field()+"."+fe.Tag()]; ok {
		return m
	}
	if m, ok := msgs[fe.Field()]; ok {
		return m
	}
	return "Invalid value"
}

// LoginForm collects credentials.
type LoginForm struct {
	Email    string `form:"email" binding:"required,email"`
	Password string `form:"password" binding:"required"`
}

func (LoginForm) Messages() map[string]string {
	return map[string]string{
		"email.required":    "Email is required",
		"email.email":       "Invalid email format",
		"password.required": "Password is required",
	}
}

// SignupForm registers a new employee.
type SignupForm struct {
	Name     string `form:"name" binding:"required,notblank"`
	Email    string `form:"email" binding:"required,email"`
	Password string `form:"password" binding:"required,min=6"`
}

func (SignupForm) Messages() map[string]string {
	return map[string]string{
		"name.required":     "Name is required",
		"name.notblank":     "Name is required",
		"email.required":    "Email is required",
		"email.email":       "Invalid email format",
		"password.required": "Password is required",
		"password.min":      "Password must be at least 6 characters",
	}
}

// UserForm is the admin "add user" form.
type UserForm struct {
	Name     string `form:"name" binding:"required,notblank,min=3"`
	Email    string `form:"email" binding:"required,email"`
	Password string `form:"password" binding:"required,min=6"`
	Role     string `form:"role" binding:"required,oneof=employee admin"`
}

func (UserForm) Messages() map[string]string {
	return map[string]string{
		"name.required":     "Required",
		"name.notblank":     "Required",
		"name.min":          "Too short",
		"email.required":    "Required",
		"email.email":       "Invalid email",
		"password.required": "Required",
		"password.min":      "Must be 6 characters or more",
		"role.required":     "Required",
		"role.oneof":        "Role must be employee or admin",
	}
}

// ParsedRole returns the validated role.
func (f UserForm) ParsedRole() models.Role {
	return models.Role(f.Role)
}

// ScrumForm creates a scrum together with its first task.
type ScrumForm struct {
	ScrumName       string `form:"scrumName" binding:"required,notblank"`
	TaskTitle       string `form:"taskTitle" binding:"required,notblank"`
	TaskDescription string `form:"taskDescription" binding:"required,notblank"`
	TaskStatus      string `form:"taskStatus" binding:"required,taskstatus"`
	TaskAssignedTo  string `form:"taskAssignedTo" binding:"required"`

	// Assignee is TaskAssignedTo in canonical form, set by Bind.
	Assignee models.UserID `form:"-"`
}

// NewScrumForm returns the form with its initial values.
func NewScrumForm() *ScrumForm {
	return &ScrumForm{TaskStatus: string(models.StatusToDo)}
}

func (*ScrumForm) Messages() map[string]string {
	return map[string]string{
		"scrumName.required":       "Scrum name is required",
		"scrumName.notblank":       "Scrum name is required",
		"taskTitle.required":       "Task title is required",
		"taskTitle.notblank":       "Task title is required",
		"taskDescription.required": "Task description is required",
		"taskDescription.notblank": "Task description is required",
		"taskStatus.required":      "Task status is required",
		"taskStatus.taskstatus":    "Task status must be To Do, In Progress or Done",
		"taskAssignedTo.required":  "Assigning a user is required",
	}
}

func (f *ScrumForm) normalize(ve *apperr.ValidationError) {
	if f.TaskAssignedTo == "" {
		return
	}
	id, err := models.ParseUserID(f.TaskAssignedTo)
	if err != nil {
		ve.Set("taskAssignedTo", "Assigning a user is required")
		return
	}
	f.Assignee = id
}

// StatusForm moves a task to another column. Revision is the history
// length the page was rendered with; 0 means unknown.
type StatusForm struct {
	Status   string `form:"status" binding:"required,taskstatus"`
	Revision int    `form:"revision" binding:"omitempty,min=1"`
}

func (StatusForm) Messages() map[string]string {
	return map[string]string{
		"status.required":   "Status is required",
		"status.taskstatus": "Status must be To Do, In Progress or Done",
		"revision":          "Reload the page and try again",
	}
}

// ParsedStatus returns the validated status.
func (f StatusForm) ParsedStatus() models.Status {
	return models.Status(f.Status)
}

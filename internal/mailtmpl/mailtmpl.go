// Package mailtmpl renders the portal's notification emails from embedded templates.
package mailtmpl

import (
	"bytes"
	"embed"
	"fmt"
	htmltemplate "html/template"
	"strings"
	texttemplate "text/template"
	"time"
)

//go:embed templates/*
var templateFS embed.FS

const (
	defaultStaffProgram   = "General NJROTC"
	defaultStudentProgram = "General NJROTC Program"

	actionSafety      = "Review within 24 hours and take appropriate action."
	actionImprovement = "Discuss in next staff meeting for consideration."
	actionDefault     = "Acknowledge receipt to cadet and provide timeline for review."
)

// Signup is the data behind both signup emails.
type Signup struct {
	FullName    string
	SchoolID    string
	Grade       string
	Email       string
	Program     string
	SubmittedAt time.Time
}

// Suggestion is the data behind the suggestion-box email.
type Suggestion struct {
	FullName    string
	SchoolID    string
	Grade       string
	Type        string
	Text        string
	SubmittedAt time.Time
}

// Rendered is a subject plus both bodies.
type Rendered struct {
	Subject string
	HTML    string
	Text    string
}

// Renderer executes the embedded templates. Dates are shown in loc.
type Renderer struct {
	html *htmltemplate.Template
	text *texttemplate.Template
	loc  *time.Location
}

// New parses the embedded templates.
func New(loc *time.Location) (*Renderer, error) {
	if loc == nil {
		loc = time.UTC
	}

	html, err := htmltemplate.New("html").Funcs(htmltemplate.FuncMap{"nl2br": nl2br}).
		ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse html templates: %w", err)
	}
	text, err := texttemplate.New("text").ParseFS(templateFS, "templates/*.txt")
	if err != nil {
		return nil, fmt.Errorf("parse text templates: %w", err)
	}

	return &Renderer{html: html, text: text, loc: loc}, nil
}

type signupView struct {
	Signup
	StaffProgram   string
	StudentProgram string
	DefaultProgram bool
	Dates
}

type suggestionView struct {
	Suggestion
	HighPriority bool
	Action       string
	Dates
}

// Dates holds a submission time pre-formatted in the layouts the emails use.
type Dates struct {
	LongDateTime  string
	ShortDateTime string
	PlainDateTime string
	LongDate      string
	PlainDate     string
}

func (r *Renderer) datesFor(t time.Time) Dates {
	t = t.In(r.loc)
	return Dates{
		LongDateTime:  t.Format("Monday, January 2, 2006 at 03:04 PM"),
		ShortDateTime: t.Format("Jan 2, 03:04 PM"),
		PlainDateTime: t.Format("1/2/2006, 3:04:05 PM"),
		LongDate:      t.Format("Monday, January 2, 2006"),
		PlainDate:     t.Format("1/2/2006"),
	}
}

func (r *Renderer) signupView(s Signup) signupView {
	v := signupView{
		Signup:         s,
		StaffProgram:   s.Program,
		StudentProgram: s.Program,
		Dates:          r.datesFor(s.SubmittedAt),
	}
	if s.Program == "" {
		v.StaffProgram = defaultStaffProgram
		v.StudentProgram = defaultStudentProgram
		v.DefaultProgram = true
	}
	return v
}

// SignupStaff renders the notice sent to NJROTC staff.
func (r *Renderer) SignupStaff(s Signup) (Rendered, error) {
	return r.render("signup_staff", "📋 NJROTC Program Signup: "+s.FullName, r.signupView(s))
}

// SignupStudent renders the confirmation sent to the cadet.
func (r *Renderer) SignupStudent(s Signup) (Rendered, error) {
	return r.render("signup_student", "✅ NJROTC Signup Confirmation - Welcome Cadet!", r.signupView(s))
}

// SuggestionStaff renders the suggestion-box email.
func (r *Renderer) SuggestionStaff(s Suggestion) (Rendered, error) {
	v := suggestionView{
		Suggestion:   s,
		HighPriority: IsHighPriority(s.Type),
		Action:       RecommendedAction(s.Type),
		Dates:        r.datesFor(s.SubmittedAt),
	}
	subject := fmt.Sprintf("💡 NJROTC Suggestion: %s - From %s", s.Type, s.FullName)
	return r.render("suggestion_staff", subject, v)
}

func (r *Renderer) render(name, subject string, data any) (Rendered, error) {
	var html, text bytes.Buffer
	if err := r.html.ExecuteTemplate(&html, name+".html", data); err != nil {
		return Rendered{}, fmt.Errorf("render %s.html: %w", name, err)
	}
	if err := r.text.ExecuteTemplate(&text, name+".txt", data); err != nil {
		return Rendered{}, fmt.Errorf("render %s.txt: %w", name, err)
	}
	return Rendered{Subject: subject, HTML: html.String(), Text: text.String()}, nil
}

// IsHighPriority flags any suggestion category mentioning safety.
func IsHighPriority(suggestionType string) bool {
	return strings.Contains(strings.ToLower(suggestionType), "safety")
}

// RecommendedAction is the staff follow-up line for a suggestion category.
func RecommendedAction(suggestionType string) string {
	switch suggestionType {
	case "Safety Concern":
		return actionSafety
	case "School Improvement":
		return actionImprovement
	default:
		return actionDefault
	}
}

// nl2br escapes s and turns its newlines into <br> tags.
func nl2br(s string) htmltemplate.HTML {
	escaped := htmltemplate.HTMLEscapeString(s)
	return htmltemplate.HTML(strings.ReplaceAll(escaped, "\n", "<br>"))
}

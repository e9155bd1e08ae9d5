package notifications

import (
	"bytes"
	"fmt"
	htmltemplate "html/template"
	"math"
	texttemplate "text/template"
	"time"
)

const (
	signupSubject      = "Festo - Your OTP for Signup"
	emailChangeSubject = "Festo - OTP to confirm %s email"
)

var signupHTML = htmltemplate.Must(htmltemplate.New("signup").Parse(`
<h2>Welcome to Festo!</h2>
<p>Your One-Time Password (OTP) is:</p>
<h1 style="color: #6366f1; font-size: 32px; letter-spacing: 5px;">{{.Code}}</h1>
<p>This OTP will expire in {{.Minutes}} minutes.</p>
<p>If you didn't request this, please ignore this email.</p>
<hr>
<p style="color: #666; font-size: 12px;">&copy; {{.Year}} Festo - College Event Management Platform</p>
`))

var emailChangeHTML = htmltemplate.Must(htmltemplate.New("email-change").Parse(`
<h2>Confirm Your Email Change</h2>
<p>Use this One-Time Password (OTP) to verify your {{.Label}} email:</p>
<h1 style="color: #6366f1; font-size: 32px; letter-spacing: 5px;">{{.Code}}</h1>
<p>This OTP will expire in {{.Minutes}} minutes.</p>
<p>If you didn't request this, please ignore this email.</p>
<hr>
<p style="color: #666; font-size: 12px;">&copy; {{.Year}} Festo - College Event Management Platform</p>
`))

var otpText = texttemplate.Must(texttemplate.New("otp-text").Parse(
	"Your OTP is {{.Code}}. It expires in {{.Minutes}} minutes."))

type otpView struct {
	Code    string
	Label   string
	Minutes int
	Year    int
}

func newOTPView(code, label string, ttl time.Duration, now time.Time) otpView {
	return otpView{
		Code:    code,
		Label:   label,
		Minutes: int(math.Ceil(ttl.Minutes())),
		Year:    now.Year(),
	}
}

func renderSignup(to string, v otpView) (Message, error) {
	return render(to, signupSubject, signupHTML, v)
}

func renderEmailChange(to string, v otpView) (Message, error) {
	return render(to, fmt.Sprintf(emailChangeSubject, v.Label), emailChangeHTML, v)
}

func render(to, subject string, html *htmltemplate.Template, v otpView) (Message, error) {
	var h, t bytes.Buffer
	if err := html.Execute(&h, v); err != nil {
		return Message{}, fmt.Errorf("render %s: %w", html.Name(), err)
	}
	if err := otpText.Execute(&t, v); err != nil {
		return Message{}, fmt.Errorf("render text: %w", err)
	}
	return Message{To: to, Subject: subject, HTML: h.String(), Text: t.String()}, nil
}

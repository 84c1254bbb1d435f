package email

import "html/template"

var (
	verificationTmpl = template.Must(template.New("verification").Parse(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; color: #333; max-width: 600px; margin: 0 auto; padding: 20px;">
  <h1 style="color: #1f2937;">Verify your email</h1>
  <p>Thanks for signing up to Swinggity! Your verification code is:</p>
  <p style="font-size: 32px; font-weight: bold; letter-spacing: 5px; color: #111827;">{{.Code}}</p>
  <p>Enter this code on the verification page to complete your registration.</p>
  <p>This code will expire in 24 hours for security reasons.</p>
  <p>If you didn't create an account with us, please ignore this email.</p>
</body>
</html>`))

	welcomeTmpl = template.Must(template.New("welcome").Parse(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; color: #333; max-width: 600px; margin: 0 auto; padding: 20px;">
  <h1 style="color: #1f2937;">Welcome to Swinggity, {{.Name}}!</h1>
  <p>Your email is verified and your account is ready.</p>
  <p>See you on the dance floor.</p>
</body>
</html>`))

	resetTmpl = template.Must(template.New("reset").Parse(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; color: #333; max-width: 600px; margin: 0 auto; padding: 20px;">
  <h1 style="color: #1f2937;">Reset your password</h1>
  <p>We received a request to reset your password. Click the button below to choose a new one:</p>
  <p><a href="{{.URL}}" style="background-color: #111827; color: white; padding: 12px 20px; text-decoration: none; border-radius: 5px;">Reset Password</a></p>
  <p>This link will expire in 1 hour for security reasons.</p>
  <p>If you didn't request a password reset, please ignore this email.</p>
</body>
</html>`))

	resetSuccessTmpl = template.Must(template.New("reset_success").Parse(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; color: #333; max-width: 600px; margin: 0 auto; padding: 20px;">
  <h1 style="color: #1f2937;">Password reset successful</h1>
  <p>Your password has been changed.</p>
  <p>If you did not make this change, please contact support immediately.</p>
</body>
</html>`))
)

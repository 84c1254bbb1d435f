package handler

const (
	errServer             = "Server error"
	errInvalidBody        = "Invalid request body"
	errSignupRejected     = "Unable to create an account with these details"
	errInvalidCredentials = "Invalid credentials"
	errInvalidCode        = "Invalid or expired verification code"
	errInvalidResetToken  = "Invalid or expired reset token"
	errUserNotFound       = "User not found"
)

const (
	msgSignup         = "User created successfully"
	msgVerified       = "Email verified successfully"
	msgLogin          = "Logged in successfully"
	msgLogout         = "Logged out successfully"
	msgForgotPassword = "If an account exists for that email, a password reset link has been sent"
	msgResetPassword  = "Password reset successful"
)

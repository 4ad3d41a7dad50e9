package notify

import "fmt"

// Message is a rendered email ready for dispatch.
type Message struct {
	Subject string
	Body    string
}

// ConfirmationMessage renders the email asking a registrant to confirm their
// address. The link lands on the confirmation page, which redeems the token.
func ConfirmationMessage(username, baseURL, token string) Message {
	link := fmt.Sprintf("%s/confirm?token=%s", baseURL, token)
	return Message{
		Subject: "Confirm your registration",
		Body: fmt.Sprintf(
			"Hi %s,\n\n"+
				"Thanks for registering. Please confirm your email address by opening the link below:\n\n"+
				"%s\n\n"+
				"The link is valid for 24 hours. If it expires, you can request a new one from the registration page.\n\n"+
				"If you did not register, you can ignore this email.\n",
			username, link),
	}
}

// ResendMessage renders the follow-up confirmation email with a fresh token.
func ResendMessage(username, baseURL, token string) Message {
	link := fmt.Sprintf("%s/confirm?token=%s", baseURL, token)
	return Message{
		Subject: "Your new confirmation link",
		Body: fmt.Sprintf(
			"Hi %s,\n\n"+
				"Here is your new confirmation link:\n\n"+
				"%s\n\n"+
				"The link is valid for 24 hours.\n",
			username, link),
	}
}

// ApprovalMessage renders the welcome email sent once an admin approves the
// registration and the account is live.
func ApprovalMessage(username string, baseURL string) Message {
	return Message{
		Subject: "Your registration has been approved",
		Body: fmt.Sprintf(
			"Hi %s,\n\n"+
				"An administrator has approved your registration. Your account is ready:\n\n"+
				"%s\n\n"+
				"Welcome to the club!\n",
			username, baseURL),
	}
}

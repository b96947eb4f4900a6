package services

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/comitanigiacomo/goalmate-engine/internal/core/domain"
)

func frontendLink(base, path, token string) string {
	return strings.TrimRight(base, "/") + path + "?token=" + url.QueryEscape(token)
}

func verificationEmail(user *domain.User, link string) domain.Email {
	return domain.Email{
		Kind:      domain.EmailKindVerification,
		ToName:    user.Username,
		ToAddress: user.Email,
		Subject:   "Verify your GoalMate account",
		PlainText: fmt.Sprintf(
			"Hi %s,\n\nplease confirm your email address by opening the link below:\n\n%s\n\nIf you did not sign up for GoalMate you can ignore this message.\n",
			user.Username, link,
		),
		HTML: fmt.Sprintf(
			`<p>Hi %s,</p><p>please confirm your email address:</p><p><a href="%s">Verify email</a></p><p>If you did not sign up for GoalMate you can ignore this message.</p>`,
			user.Username, link,
		),
	}
}

func passwordResetEmail(user *domain.User, link string) domain.Email {
	return domain.Email{
		Kind:      domain.EmailKindPasswordReset,
		ToName:    user.Username,
		ToAddress: user.Email,
		Subject:   "Reset your GoalMate password",
		PlainText: fmt.Sprintf(
			"Hi %s,\n\nuse the link below to choose a new password. It expires in one hour.\n\n%s\n\nIf you did not ask for a reset, no action is needed.\n",
			user.Username, link,
		),
		HTML: fmt.Sprintf(
			`<p>Hi %s,</p><p>use the link below to choose a new password. It expires in one hour.</p><p><a href="%s">Reset password</a></p><p>If you did not ask for a reset, no action is needed.</p>`,
			user.Username, link,
		),
	}
}

package services

import (
	"context"
	"fmt"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	sesv2 "github.com/aws/aws-sdk-go-v2/service/sesv2"
	sestypes "github.com/aws/aws-sdk-go-v2/service/sesv2/types"
)

// sesAPI is the slice of the SESv2 client the service uses
type sesAPI interface {
	SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

// EmailService handles email sending via AWS SES (SESv2 API)
type EmailService struct {
	sesClient sesAPI
	fromEmail string
	replyTo   string
}

// NewEmailService creates a new email service instance using AWS SDK (role-based)
func NewEmailService(cfg aws.Config, fromEmail, replyTo string) *EmailService {
	if cfg.Region == "" {
		cfg.Region = os.Getenv("SES_AWS_REGION")
		if cfg.Region == "" {
			cfg.Region = "eu-central-1"
		}
	}
	return &EmailService{
		sesClient: sesv2.NewFromConfig(cfg),
		fromEmail: fromEmail,
		replyTo:   replyTo,
	}
}

// SendEmail sends one HTML email
func (e *EmailService) SendEmail(ctx context.Context, toEmail, subject, htmlBody string) error {
	if toEmail == "" {
		return fmt.Errorf("missing recipient address")
	}
	input := &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(e.fromEmail),
		Destination:      &sestypes.Destination{ToAddresses: []string{toEmail}},
		Content: &sestypes.EmailContent{
			Simple: &sestypes.Message{
				Subject: &sestypes.Content{Data: aws.String(subject)},
				Body:    &sestypes.Body{Html: &sestypes.Content{Data: aws.String(htmlBody)}},
			},
		},
	}
	if e.replyTo != "" {
		input.ReplyToAddresses = []string{e.replyTo}
	}
	if _, err := e.sesClient.SendEmail(ctx, input); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

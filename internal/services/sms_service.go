package services

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"
)

type snsAPI interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// SmsService handles sending SMS messages via AWS SNS.
type SmsService struct {
	client snsAPI
}

// NewSmsService creates a new SMS service client.
func NewSmsService(cfg aws.Config) *SmsService {
	return &SmsService{client: sns.NewFromConfig(cfg)}
}

// SendSMS publishes a transactional SMS.
// The phone number must be in E.164 format (e.g., +12065550100).
func (s *SmsService) SendSMS(ctx context.Context, phoneNumber, message string) error {
	input := &sns.PublishInput{
		Message:     aws.String(message),
		PhoneNumber: aws.String(phoneNumber),
		MessageAttributes: map[string]types.MessageAttributeValue{
			"AWS.SNS.SMS.SMSType": {
				DataType:    aws.String("String"),
				StringValue: aws.String("Transactional"),
			},
		},
	}
	if _, err := s.client.Publish(ctx, input); err != nil {
		return fmt.Errorf("failed to send sms: %w", err)
	}
	return nil
}

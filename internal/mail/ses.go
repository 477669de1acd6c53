package mail

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
)

// SESClient sends through AWS SES v2. Used when the deployment prefers AWS
// infrastructure over Resend.
type SESClient struct {
	client *sesv2.Client
}

// NewSESClient creates an SES v2 sender with static credentials, or the
// default credential chain when accessKey is empty.
func NewSESClient(ctx context.Context, region, accessKey, secretKey string) (*SESClient, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(region),
	}
	if accessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(accessKey, secretKey, ""),
		))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}
	return &SESClient{client: sesv2.NewFromConfig(awsCfg)}, nil
}

// Send delivers one message. SES throttling errors are surfaced as a
// *ProviderError with status 429 so the dispatcher's retry policy applies.
func (c *SESClient) Send(ctx context.Context, msg Message) error {
	input := &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(msg.From),
		Destination: &types.Destination{
			ToAddresses: []string{msg.To},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: aws.String(msg.Subject)},
				Body: &types.Body{
					Html: &types.Content{Data: aws.String(msg.HTML)},
				},
			},
		},
	}
	if msg.ReplyTo != "" {
		input.ReplyToAddresses = []string{msg.ReplyTo}
	}

	_, err := c.client.SendEmail(ctx, input)
	if err == nil {
		return nil
	}

	var throttled *types.TooManyRequestsException
	if errors.As(err, &throttled) {
		return &ProviderError{StatusCode: 429, Message: err.Error()}
	}
	var rejected *types.MessageRejected
	if errors.As(err, &rejected) {
		return &ProviderError{StatusCode: 400, Message: err.Error()}
	}
	return &ProviderError{StatusCode: 500, Message: err.Error()}
}

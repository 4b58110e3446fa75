package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"

	pkglogger "github.com/mkessaci/digimart/pkg/logger"
)

// EmailService defines the outbound email capability. Callers only see
// success or failure; delivery details stay behind this interface.
type EmailService interface {
	SendVerificationEmail(ctx context.Context, email, token string) error
	SendPasswordResetEmail(ctx context.Context, email, token string) error
}

// AWSSESEmailService sends emails using AWS SES
type AWSSESEmailService struct {
	sesClient   *ses.Client
	fromAddress string
	baseURL     string
	logger      *slog.Logger
}

// NewAWSSESEmailService creates a new AWS SES email service
func NewAWSSESEmailService(region, fromAddress, baseURL string, logger *slog.Logger) (*AWSSESEmailService, error) {
	cfg, err := awsconfig.LoadDefaultConfig(context.Background(), awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return &AWSSESEmailService{
		sesClient:   ses.NewFromConfig(cfg),
		fromAddress: fromAddress,
		baseURL:     baseURL,
		logger:      logger,
	}, nil
}

// SendVerificationEmail sends the registration confirmation link.
func (s *AWSSESEmailService) SendVerificationEmail(ctx context.Context, email, token string) error {
	confirmLink := fmt.Sprintf("%s/auth/verify-email?token=%s", s.baseURL, token)

	htmlBody := fmt.Sprintf(`
<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
    <h2 style="color: #333;">Welcome to Digimart!</h2>
    <p>Thank you for registering. Please verify your email address to complete your registration.</p>
    <p style="margin: 30px 0;">
        <a href="%s" style="background-color: #6366f1; color: white; padding: 12px 24px; text-decoration: none; border-radius: 6px; display: inline-block;">
            Verify Email Address
        </a>
    </p>
    <p>Or copy and paste this link in your browser:<br><code>%s</code></p>
    <p style="color: #666; font-size: 14px;">
        If you didn't create an account, you can safely ignore this email.
    </p>
    <p style="color: #666; font-size: 14px;">
        This link will expire in 24 hours.
    </p>
</div>
`, confirmLink, confirmLink)

	return s.send(ctx, email, "Verify your email address", htmlBody)
}

// SendPasswordResetEmail sends the password reset link.
func (s *AWSSESEmailService) SendPasswordResetEmail(ctx context.Context, email, token string) error {
	resetLink := fmt.Sprintf("%s/auth/new-password?token=%s", s.baseURL, token)

	htmlBody := fmt.Sprintf(`
<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
    <h2 style="color: #333;">Reset your password</h2>
    <p>Click <a href="%s">here</a> to reset your password.</p>
    <p>Or copy and paste this link in your browser:<br><code>%s</code></p>
    <p style="color: #666; font-size: 14px;">
        This link will expire in 1 hour. If you didn't request a password reset, you can safely ignore this email.
    </p>
</div>
`, resetLink, resetLink)

	return s.send(ctx, email, "Reset your password", htmlBody)
}

func (s *AWSSESEmailService) send(ctx context.Context, email, subject, htmlBody string) error {
	input := &ses.SendEmailInput{
		Source: aws.String(s.fromAddress),
		Destination: &types.Destination{
			ToAddresses: []string{email},
		},
		Message: &types.Message{
			Subject: &types.Content{
				Data: aws.String(subject),
			},
			Body: &types.Body{
				Html: &types.Content{
					Data: aws.String(htmlBody),
				},
			},
		},
	}

	result, err := s.sesClient.SendEmail(ctx, input)
	if err != nil {
		s.logger.Error("failed to send email via SES",
			slog.String("email", pkglogger.SanitizedEmail(email)),
			slog.String("subject", subject),
			slog.Any("error", err))
		return fmt.Errorf("failed to send email: %w", err)
	}

	s.logger.Info("email sent",
		slog.String("email", pkglogger.SanitizedEmail(email)),
		slog.String("subject", subject),
		slog.String("message_id", *result.MessageId))

	return nil
}

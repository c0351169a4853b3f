package email

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/curiohub/curiohub/internal/logger"
	"go.uber.org/zap"
)

// Sender delivers transactional mail.
type Sender interface {
	SendPasswordResetEmail(ctx context.Context, toEmail, resetToken string) error
}

// sesAPI is the slice of the SES client used here.
type sesAPI interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

// SESSender sends mail through AWS SES.
type SESSender struct {
	client    sesAPI
	fromEmail string
	fromName  string
	baseURL   string
}

// NewSESSender loads AWS credentials from the default chain.
func NewSESSender(region, fromEmail, fromName, baseURL string) (*SESSender, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return &SESSender{
		client:    ses.NewFromConfig(cfg),
		fromEmail: fromEmail,
		fromName:  fromName,
		baseURL:   baseURL,
	}, nil
}

// ResetURL is the web page a reset mail links to.
func ResetURL(baseURL, token string) string {
	return fmt.Sprintf("%s/reset-password?token=%s", baseURL, url.QueryEscape(token))
}

func (e *SESSender) SendPasswordResetEmail(ctx context.Context, toEmail, resetToken string) error {
	resetURL := ResetURL(e.baseURL, resetToken)

	from := e.fromEmail
	if e.fromName != "" {
		from = fmt.Sprintf("%s <%s>", e.fromName, e.fromEmail)
	}

	input := &ses.SendEmailInput{
		Source:      aws.String(from),
		Destination: &types.Destination{ToAddresses: []string{toEmail}},
		Message: &types.Message{
			Subject: &types.Content{
				Data:    aws.String("Reset your CurioHub password"),
				Charset: aws.String("UTF-8"),
			},
			Body: &types.Body{
				Html: &types.Content{
					Data:    aws.String(resetHTML(resetURL)),
					Charset: aws.String("UTF-8"),
				},
				Text: &types.Content{
					Data:    aws.String(resetText(resetURL)),
					Charset: aws.String("UTF-8"),
				},
			},
		},
	}

	if _, err := e.client.SendEmail(ctx, input); err != nil {
		return fmt.Errorf("failed to send password reset email: %w", err)
	}
	return nil
}

func resetHTML(resetURL string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<body style="font-family: sans-serif; line-height: 1.6; color: #222;">
  <h1>Reset your password</h1>
  <p>Someone asked to reset the password for your CurioHub account.</p>
  <p><a href="%s">Choose a new password</a>. The link expires in one hour.</p>
  <p>If this wasn't you, ignore this message.</p>
</body>
</html>`, resetURL)
}

func resetText(resetURL string) string {
	return fmt.Sprintf(`Reset your CurioHub password

Someone asked to reset the password for your CurioHub account.
Open this link within one hour to choose a new one:

%s

If this wasn't you, ignore this message.
`, resetURL)
}

// LogSender writes reset links to the log instead of mailing them. Used
// when SES is not configured.
type LogSender struct {
	baseURL string
}

func NewLogSender(baseURL string) *LogSender {
	return &LogSender{baseURL: baseURL}
}

func (l *LogSender) SendPasswordResetEmail(ctx context.Context, toEmail, resetToken string) error {
	logger.Log.Info("Password reset link (mail disabled)",
		zap.String("to", toEmail),
		zap.String("url", ResetURL(l.baseURL, resetToken)),
	)
	return nil
}

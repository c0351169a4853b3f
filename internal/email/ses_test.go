package email

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/curiohub/curiohub/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type fakeSES struct {
	input *ses.SendEmailInput
	err   error
}

func (f *fakeSES) SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
	f.input = params
	return &ses.SendEmailOutput{MessageId: aws.String("m-1")}, f.err
}

func TestSESSenderBuildsMessage(t *testing.T) {
	fake := &fakeSES{}
	sender := &SESSender{client: fake, fromEmail: "noreply@curiohub.test", fromName: "CurioHub", baseURL: "https://curiohub.test"}

	require.NoError(t, sender.SendPasswordResetEmail(context.Background(), "jane@example.com", "tok en"))

	require.NotNil(t, fake.input)
	assert.Equal(t, "CurioHub <noreply@curiohub.test>", aws.ToString(fake.input.Source))
	assert.Equal(t, []string{"jane@example.com"}, fake.input.Destination.ToAddresses)
	assert.Contains(t, aws.ToString(fake.input.Message.Body.Text.Data), "https://curiohub.test/reset-password?token=tok+en")
	assert.Contains(t, aws.ToString(fake.input.Message.Body.Html.Data), "reset-password?token=tok+en")
}

func TestSESSenderWrapsError(t *testing.T) {
	boom := errors.New("throttled")
	sender := &SESSender{client: &fakeSES{err: boom}, fromEmail: "noreply@curiohub.test"}

	err := sender.SendPasswordResetEmail(context.Background(), "jane@example.com", "t")
	assert.ErrorIs(t, err, boom)
}

func TestLogSender(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	restore := logger.Replace(zap.New(core))
	defer restore()

	require.NoError(t, NewLogSender("http://localhost:3000").SendPasswordResetEmail(context.Background(), "jane@example.com", "abc"))

	entries := logs.FilterMessage("Password reset link (mail disabled)").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "http://localhost:3000/reset-password?token=abc", entries[0].ContextMap()["url"])
}

package ses

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medchron/internal/domain"
)

type fakeSES struct {
	input *sesv2.SendEmailInput
	err   error
}

func (f *fakeSES) SendEmail(_ context.Context, params *sesv2.SendEmailInput, _ ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error) {
	f.input = params
	return &sesv2.SendEmailOutput{}, f.err
}

func TestNotifyRunFinished_Completed(t *testing.T) {
	fake := &fakeSES{}
	n := newNotifier(fake, "noreply@medchron.local", "Medical Chronology", "paralegal@example.com")

	run := &domain.Run{
		ID:           uuid.New(),
		Label:        "Flores",
		Status:       domain.RunStatusCompleted,
		EntryCount:   42,
		FindingCount: 3,
		ArtifactURL:  "https://example.com/chronology.txt",
	}
	require.NoError(t, n.NotifyRunFinished(context.Background(), run))

	require.NotNil(t, fake.input)
	assert.Equal(t, "Medical Chronology <noreply@medchron.local>", *fake.input.FromEmailAddress)
	assert.Equal(t, []string{"paralegal@example.com"}, fake.input.Destination.ToAddresses)
	assert.Equal(t, "Medical chronology ready: Flores", *fake.input.Content.Simple.Subject.Data)
	text := *fake.input.Content.Simple.Body.Text.Data
	assert.Contains(t, text, "Entries: 42")
	assert.Contains(t, text, "Download: https://example.com/chronology.txt")
}

func TestNotifyRunFinished_FailedRun(t *testing.T) {
	fake := &fakeSES{}
	n := newNotifier(fake, "a@b.c", "MC", "x@y.z")

	run := &domain.Run{ID: uuid.New(), Status: domain.RunStatusFailed, Error: "no readable source documents"}
	require.NoError(t, n.NotifyRunFinished(context.Background(), run))

	assert.Contains(t, *fake.input.Content.Simple.Subject.Data, "failed")
	assert.Contains(t, *fake.input.Content.Simple.Body.Text.Data, "no readable source documents")
}

func TestNotifyRunFinished_SendError(t *testing.T) {
	n := newNotifier(&fakeSES{err: errors.New("throttled")}, "a@b.c", "MC", "x@y.z")

	err := n.NotifyRunFinished(context.Background(), &domain.Run{ID: uuid.New()})

	assert.ErrorContains(t, err, "SES SendEmail")
}

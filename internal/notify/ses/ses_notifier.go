package ses

import (
	"context"
	"fmt"
	"html"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"

	"medchron/internal/domain"
	"medchron/internal/port"
)

// emailAPI is the subset of the SES v2 client used here.
type emailAPI interface {
	SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

type sesNotifier struct {
	client      emailAPI
	fromAddress string
	fromName    string
	toAddress   string
}

// NewSESNotifier creates a new SES-backed Notifier that mails toAddress.
func NewSESNotifier(ctx context.Context, region, fromAddress, fromName, toAddress string) (port.Notifier, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("loading AWS config for SES: %w", err)
	}
	return newNotifier(sesv2.NewFromConfig(cfg), fromAddress, fromName, toAddress), nil
}

func newNotifier(client emailAPI, fromAddress, fromName, toAddress string) *sesNotifier {
	return &sesNotifier{
		client:      client,
		fromAddress: fromAddress,
		fromName:    fromName,
		toAddress:   toAddress,
	}
}

func (s *sesNotifier) NotifyRunFinished(ctx context.Context, run *domain.Run) error {
	subject, textBody := buildMessage(run)
	htmlBody := buildHTML(run, textBody)

	from := fmt.Sprintf("%s <%s>", s.fromName, s.fromAddress)

	_, err := s.client.SendEmail(ctx, &sesv2.SendEmailInput{
		FromEmailAddress: &from,
		Destination: &types.Destination{
			ToAddresses: []string{s.toAddress},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: &subject},
				Body: &types.Body{
					Html: &types.Content{Data: &htmlBody},
					Text: &types.Content{Data: &textBody},
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("SES SendEmail: %w", err)
	}
	return nil
}

func buildMessage(run *domain.Run) (subject, body string) {
	name := run.Label
	if name == "" {
		name = run.ID.String()
	}
	if run.Status == domain.RunStatusFailed {
		subject = fmt.Sprintf("Medical chronology failed: %s", name)
		body = fmt.Sprintf("The chronology run %s for %s failed.\n\nError: %s\n", run.ID, run.InputDir, run.Error)
		return subject, body
	}
	subject = fmt.Sprintf("Medical chronology ready: %s", name)
	body = fmt.Sprintf("The chronology run %s for %s completed.\n\nDocuments: %d\nBatches: %d\nEntries: %d\nVerification findings: %d\n",
		run.ID, run.InputDir, run.DocumentCount, run.BatchCount, run.EntryCount, run.FindingCount)
	if run.ArtifactURL != "" {
		body += fmt.Sprintf("\nDownload: %s\n", run.ArtifactURL)
	}
	return subject, body
}

func buildHTML(run *domain.Run, text string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"></head>
<body style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px;">
  <h2 style="color: #333;">Chronology run %s</h2>
  <pre style="white-space: pre-wrap; color: #333;">%s</pre>
</body>
</html>`, html.EscapeString(string(run.Status)), html.EscapeString(text))
}

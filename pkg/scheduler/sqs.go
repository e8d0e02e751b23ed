package scheduler

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
)

// MaxDelay is the longest delivery delay SQS supports. Messages for later
// deadlines arrive early and are re-scheduled by the consumer.
const MaxDelay = 15 * time.Minute

// SQSAPI is the subset of the SQS client used by the scheduler.
type SQSAPI interface {
	SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
}

// SQSScheduler implements the Scheduler interface using AWS SQS.
type SQSScheduler struct {
	Client   SQSAPI
	QueueURL string
	now      func() time.Time
}

// NewSQSScheduler creates a new SQSScheduler.
func NewSQSScheduler(client SQSAPI, queueURL string) *SQSScheduler {
	return &SQSScheduler{
		Client:   client,
		QueueURL: queueURL,
		now:      time.Now,
	}
}

// Make sure we conform to the interface
var _ Scheduler = (*SQSScheduler)(nil)

// DelayUntil returns the SQS delay for a deadline, clamped to [0, MaxDelay].
func DelayUntil(now, releaseAt time.Time) time.Duration {
	d := releaseAt.Sub(now)
	if d < 0 {
		return 0
	}
	if d > MaxDelay {
		return MaxDelay
	}
	return d
}

// ScheduleAutoRelease sends the release request to the queue with as much delay as SQS allows.
func (s *SQSScheduler) ScheduleAutoRelease(ctx context.Context, escrowID string, releaseAt time.Time) error {
	body, err := json.Marshal(AutoReleaseMessage{EscrowID: escrowID, ReleaseAt: releaseAt.UTC()})
	if err != nil {
		return fmt.Errorf("failed to marshal auto-release message for SQS: %w", err)
	}

	delay := DelayUntil(s.now(), releaseAt)
	_, err = s.Client.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:     aws.String(s.QueueURL),
		MessageBody:  aws.String(string(body)),
		DelaySeconds: int32(delay / time.Second),
	})
	if err != nil {
		return fmt.Errorf("failed to send message to SQS: %w", err)
	}

	return nil
}

package scheduler

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/chris/escrow-marketplace/pkg/scheduler/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2025, 5, 2, 9, 30, 0, 0, time.UTC)

func TestDelayUntil(t *testing.T) {
	assert.Equal(t, time.Duration(0), DelayUntil(t0, t0.Add(-time.Hour)))
	assert.Equal(t, 5*time.Minute, DelayUntil(t0, t0.Add(5*time.Minute)))
	assert.Equal(t, MaxDelay, DelayUntil(t0, t0.Add(72*time.Hour)))
}

func TestSQSScheduler_ScheduleAutoRelease(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		client := new(mocks.SQSAPI)
		s := NewSQSScheduler(client, "https://sqs.example/queue")
		s.now = func() time.Time { return t0 }

		client.On("SendMessage", mock.Anything, mock.MatchedBy(func(in *sqs.SendMessageInput) bool {
			var msg AutoReleaseMessage
			if err := json.Unmarshal([]byte(*in.MessageBody), &msg); err != nil {
				return false
			}
			return msg.EscrowID == "esc-1" && in.DelaySeconds == 900 && *in.QueueUrl == "https://sqs.example/queue"
		})).Return(&sqs.SendMessageOutput{}, nil).Once()

		err := s.ScheduleAutoRelease(context.Background(), "esc-1", t0.Add(72*time.Hour))

		require.NoError(t, err)
		client.AssertExpectations(t)
	})

	t.Run("Send Fails", func(t *testing.T) {
		client := new(mocks.SQSAPI)
		s := NewSQSScheduler(client, "q")

		client.On("SendMessage", mock.Anything, mock.Anything).Return(nil, errors.New("throttled")).Once()

		err := s.ScheduleAutoRelease(context.Background(), "esc-1", t0)

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to send message to SQS")
		client.AssertExpectations(t)
	})
}

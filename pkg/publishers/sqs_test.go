package publishers

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/upgraded-notifs/notifs/internal/domain"
	"github.com/upgraded-notifs/notifs/internal/logger"
)

type fakeSQSClient struct {
	input *sqs.SendMessageInput
	err   error
}

func (f *fakeSQSClient) SendMessage(_ context.Context, params *sqs.SendMessageInput, _ ...func(*sqs.Options)) (*sqs.SendMessageOutput, error) {
	f.input = params
	if f.err != nil {
		return nil, f.err
	}
	return &sqs.SendMessageOutput{MessageId: aws.String("m-1")}, nil
}

func TestSQSPublisherSendsEvent(t *testing.T) {
	client := &fakeSQSClient{}
	pub := &sqsPublisher{id: "queue", queueURL: "https://sqs/q", client: client, log: logger.NopLogger{}}

	err := pub.Publish(context.Background(), NewEvent("offentlig", "offentlig.ai", domain.Listing{ID: "offentlig:h1"}))
	if err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if got := aws.ToString(client.input.QueueUrl); got != "https://sqs/q" {
		t.Fatalf("QueueUrl = %s", got)
	}
	if attr := client.input.MessageAttributes["source_id"]; aws.ToString(attr.StringValue) != "offentlig" {
		t.Fatalf("source_id attribute wrong: %#v", attr)
	}
	if !strings.Contains(aws.ToString(client.input.MessageBody), `"id":"offentlig:h1"`) {
		t.Fatalf("body missing listing id: %s", aws.ToString(client.input.MessageBody))
	}
}

func TestSQSPublisherError(t *testing.T) {
	pub := &sqsPublisher{id: "queue", queueURL: "q", client: &fakeSQSClient{err: errors.New("throttled")}, log: logger.NopLogger{}}
	if err := pub.Publish(context.Background(), Event{}); err == nil {
		t.Fatal("expected error")
	}
}

package sqs

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
)

// PublisherAPI defines the SQS operations used by Publisher.
type PublisherAPI interface {
	SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
}

// Publisher handles publishing inventory events to AWS SQS.
type Publisher struct {
	client   PublisherAPI
	queueURL string
}

// NewPublisher creates a new SQS Publisher with the given client and queue URL.
func NewPublisher(client PublisherAPI, queueURL string) *Publisher {
	return &Publisher{
		client:   client,
		queueURL: queueURL,
	}
}

// InventoryEventMessage is the wire format of an inventory event. Stock and
// the reorder parameters let consumers derive restock alerts without a
// database round trip.
type InventoryEventMessage struct {
	Action          string `json:"action"`
	ProductID       int64  `json:"product_id"`
	SKU             string `json:"sku"`
	Name            string `json:"name"`
	Stock           int64  `json:"stock"`
	ReorderPoint    *int64 `json:"reorder_point,omitempty"`
	ReorderQuantity *int64 `json:"reorder_quantity,omitempty"`
	LeadTimeDays    *int64 `json:"lead_time_days,omitempty"`
}

// PublishInventoryEvent publishes an inventory event message to the SQS queue.
func (p *Publisher) PublishInventoryEvent(ctx context.Context, msg InventoryEventMessage) error {
	messageBody, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	_, err = p.client.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:    aws.String(p.queueURL),
		MessageBody: aws.String(string(messageBody)),
	})
	if err != nil {
		return fmt.Errorf("failed to send message to SQS: %w", err)
	}

	return nil
}

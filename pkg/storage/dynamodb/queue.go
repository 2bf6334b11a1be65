package dynamodb

import (
	"context"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/cockroachdb/errors"
	"github.com/nrhodes/burstqueue/pkg/models"
	"github.com/nrhodes/burstqueue/pkg/storage"
)

// A DynamoDB table can't hand out a real SQS-style opaque id and still let
// the Bridge track an exact read_ct, so intake_queue and intake_dlq are each
// a table of their own, keyed by a monotonically increasing msg_id minted
// from a sentinel counter row. Visibility leasing is a sparse GSI on a
// constant partition, the same "single hot partition, range on the thing
// you actually want to sort by" shape the teacher uses for its
// reconciliation query.
const (
	visibilityIndex = "vis-index"
	resourceIndex   = "resource-index"
	poolIndex       = "pool-index"

	counterMsgID   = -1
	visMarkerValue = "V"

	readPageSize = 25
)

// queueTable is the shared implementation behind QueueTable and DLQTable.
// Both intake_queue and intake_dlq are ordinary tables of this shape; only
// the extra DLQ enrichment fields differ.
type queueTable struct {
	Client DynamoDBAPI
	Table  string
}

// QueueTable implements storage.Queue over a single DynamoDB table.
type QueueTable struct {
	queueTable
}

// DLQTable implements storage.DLQ over a single DynamoDB table.
type DLQTable struct {
	queueTable
}

// NewQueue wraps an existing table as an intake queue.
func NewQueue(client DynamoDBAPI, table string) *QueueTable {
	return &QueueTable{queueTable{Client: client, Table: table}}
}

// NewDLQ wraps an existing table as a dead-letter queue.
func NewDLQ(client DynamoDBAPI, table string) *DLQTable {
	return &DLQTable{queueTable{Client: client, Table: table}}
}

func (q *queueTable) nextMsgID(ctx context.Context) (int64, error) {
	out, err := q.Client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(q.Table),
		Key: map[string]types.AttributeValue{
			"msg_id": &types.AttributeValueMemberN{Value: itoa(counterMsgID)},
		},
		UpdateExpression: aws.String("ADD counter_value :one"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":one": &types.AttributeValueMemberN{Value: "1"},
		},
		ReturnValues: types.ReturnValueUpdatedNew,
	})
	if err != nil {
		return 0, errors.Wrap(err, "increment msg_id counter")
	}
	var counter struct {
		CounterValue int64 `dynamodbav:"counter_value"`
	}
	if err := attributevalue.UnmarshalMap(out.Attributes, &counter); err != nil {
		return 0, errors.Wrap(err, "unmarshal msg_id counter")
	}
	return counter.CounterValue, nil
}

// Send appends payload as a QUEUED, immediately-visible message.
func (q *queueTable) Send(ctx context.Context, payload models.IntakePayload) (int64, error) {
	msgID, err := q.nextMsgID(ctx)
	if err != nil {
		return 0, err
	}

	now := time.Now().UTC()
	envelope := models.Envelope{
		MsgId:      msgID,
		Payload:    payload,
		ReadCt:     0,
		EnqueuedAt: now,
		VisibleAt:  now,
	}
	item, err := attributevalue.MarshalMap(envelope)
	if err != nil {
		return 0, errors.Wrap(err, "marshal envelope")
	}
	item["vis_marker"] = &types.AttributeValueMemberS{Value: visMarkerValue}
	item["visible_at_idx"] = &types.AttributeValueMemberS{Value: now.Format(time.RFC3339Nano)}
	item["resource_id"] = &types.AttributeValueMemberS{Value: payload.ResourceId}
	item["pool_id"] = &types.AttributeValueMemberS{Value: payload.PoolId}

	_, err = q.Client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(q.Table),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(msg_id)"),
	})
	if err != nil {
		return 0, errors.Wrap(err, "send message")
	}
	return msgID, nil
}

// Read leases up to maxCount visible messages, extending each one's
// visibility deadline and incrementing read_ct, skipping any candidate
// another reader wins the lease race on rather than retrying it. Pages
// through the visibility index, the same "query a page, try each
// candidate, move to the next page on exhaustion" shape ClaimOne uses,
// so a maxCount above one page still gets filled under contention.
func (q *queueTable) Read(ctx context.Context, visibilityTimeout time.Duration, maxCount int) ([]models.Envelope, error) {
	now := time.Now().UTC()
	leased := make([]models.Envelope, 0, maxCount)
	var exclusiveStart map[string]types.AttributeValue

	for page := 0; page < claimMaxPages && len(leased) < maxCount; page++ {
		out, err := q.Client.Query(ctx, &dynamodb.QueryInput{
			TableName:              aws.String(q.Table),
			IndexName:              aws.String(visibilityIndex),
			KeyConditionExpression: aws.String("vis_marker = :v AND visible_at_idx <= :now"),
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":v":   &types.AttributeValueMemberS{Value: visMarkerValue},
				":now": &types.AttributeValueMemberS{Value: now.Format(time.RFC3339Nano)},
			},
			Limit:             aws.Int32(int32(readPageSize)),
			ExclusiveStartKey: exclusiveStart,
		})
		if err != nil {
			return nil, errors.Wrap(err, "query visible messages")
		}

		for _, item := range out.Items {
			if len(leased) >= maxCount {
				break
			}

			var envelope models.Envelope
			if err := attributevalue.UnmarshalMap(item, &envelope); err != nil {
				return nil, errors.Wrap(err, "unmarshal candidate message")
			}

			newVisible := now.Add(visibilityTimeout)
			_, err := q.Client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
				TableName: aws.String(q.Table),
				Key: map[string]types.AttributeValue{
					"msg_id": &types.AttributeValueMemberN{Value: itoa(envelope.MsgId)},
				},
				UpdateExpression:    aws.String("SET visible_at = :newvis, visible_at_idx = :newvisidx, read_ct = read_ct + :one"),
				ConditionExpression: aws.String("visible_at_idx = :oldvisidx"),
				ExpressionAttributeValues: map[string]types.AttributeValue{
					":newvis":    &types.AttributeValueMemberS{Value: newVisible.Format(time.RFC3339Nano)},
					":newvisidx": &types.AttributeValueMemberS{Value: newVisible.Format(time.RFC3339Nano)},
					":oldvisidx": &types.AttributeValueMemberS{Value: envelope.VisibleAt.Format(time.RFC3339Nano)},
					":one":       &types.AttributeValueMemberN{Value: "1"},
				},
			})
			if err != nil {
				var condFailed *types.ConditionalCheckFailedException
				if errors.As(err, &condFailed) {
					continue
				}
				return nil, errors.Wrapf(err, "lease message %d", envelope.MsgId)
			}

			envelope.VisibleAt = newVisible
			envelope.ReadCt++
			leased = append(leased, envelope)
		}

		if out.LastEvaluatedKey == nil {
			break
		}
		exclusiveStart = out.LastEvaluatedKey
	}
	return leased, nil
}

// Delete removes messages by id.
func (q *queueTable) Delete(ctx context.Context, msgIDs []int64) error {
	for _, id := range msgIDs {
		_, err := q.Client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
			TableName: aws.String(q.Table),
			Key: map[string]types.AttributeValue{
				"msg_id": &types.AttributeValueMemberN{Value: itoa(id)},
			},
		})
		if err != nil {
			return errors.Wrapf(err, "delete message %d", id)
		}
	}
	return nil
}

// Exists reports whether any live message carries resourceID.
func (q *queueTable) Exists(ctx context.Context, resourceID string) (bool, error) {
	out, err := q.Client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(q.Table),
		IndexName:              aws.String(resourceIndex),
		KeyConditionExpression: aws.String("resource_id = :r"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":r": &types.AttributeValueMemberS{Value: resourceID},
		},
		Limit: aws.Int32(1),
	})
	if err != nil {
		return false, errors.Wrapf(err, "query resource_id %s", resourceID)
	}
	return len(out.Items) > 0, nil
}

// List returns messages for poolID, or messages from all pools when poolID
// is empty. It reads a single Query or Scan page; later pages are not
// fetched.
func (q *queueTable) List(ctx context.Context, poolID string) ([]models.Envelope, error) {
	var items []map[string]types.AttributeValue

	if poolID == "" {
		out, err := q.Client.Scan(ctx, &dynamodb.ScanInput{TableName: aws.String(q.Table)})
		if err != nil {
			return nil, errors.Wrap(err, "scan queue")
		}
		items = out.Items
	} else {
		out, err := q.Client.Query(ctx, &dynamodb.QueryInput{
			TableName:              aws.String(q.Table),
			IndexName:              aws.String(poolIndex),
			KeyConditionExpression: aws.String("pool_id = :p"),
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":p": &types.AttributeValueMemberS{Value: poolID},
			},
		})
		if err != nil {
			return nil, errors.Wrapf(err, "query queue for pool %s", poolID)
		}
		items = out.Items
	}

	envelopes := make([]models.Envelope, 0, len(items))
	for _, item := range items {
		if _, isCounter := item["counter_value"]; isCounter {
			continue
		}
		var envelope models.Envelope
		if err := attributevalue.UnmarshalMap(item, &envelope); err != nil {
			return nil, errors.Wrap(err, "unmarshal listed message")
		}
		envelopes = append(envelopes, envelope)
	}
	return envelopes, nil
}

// Enqueue appends an already-enriched DLQ message.
func (d *DLQTable) Enqueue(ctx context.Context, msg models.DLQMessage) (int64, error) {
	msgID, err := d.nextMsgID(ctx)
	if err != nil {
		return 0, err
	}
	msg.MsgId = msgID
	if msg.RoutedToDLQAt.IsZero() {
		msg.RoutedToDLQAt = time.Now().UTC()
	}
	if msg.VisibleAt.IsZero() {
		msg.VisibleAt = msg.RoutedToDLQAt
	}

	item, err := attributevalue.MarshalMap(msg)
	if err != nil {
		return 0, errors.Wrap(err, "marshal dlq message")
	}
	item["vis_marker"] = &types.AttributeValueMemberS{Value: visMarkerValue}
	item["visible_at_idx"] = &types.AttributeValueMemberS{Value: msg.VisibleAt.Format(time.RFC3339Nano)}
	item["resource_id"] = &types.AttributeValueMemberS{Value: msg.Payload.ResourceId}
	item["pool_id"] = &types.AttributeValueMemberS{Value: msg.Payload.PoolId}

	_, err = d.Client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(d.Table),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(msg_id)"),
	})
	if err != nil {
		return 0, errors.Wrap(err, "enqueue dlq message")
	}
	return msgID, nil
}

func itoa(n int64) string {
	return strconv.FormatInt(n, 10)
}

var _ storage.Queue = (*QueueTable)(nil)
var _ storage.DLQ = (*DLQTable)(nil)

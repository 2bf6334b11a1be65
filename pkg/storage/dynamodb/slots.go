package dynamodb

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/nrhodes/burstqueue/pkg/models"
	"github.com/nrhodes/burstqueue/pkg/storage"
)

// Index names for the slots table. availableIndex is the sparse index
// partitioned on avail_pool_id: avail_pool_id mirrors pool_id only while a
// slot is AVAILABLE, so a query against it never has to skip a RESERVED or
// CONSUMED row.
const (
	availableIndex = "pool-available-index"
	reservedIndex  = "status-locked_at-index"

	claimPageSize = 10
	claimMaxPages = 20
)

// CreateSlots inserts n AVAILABLE rows into pool_id.
func (s *Store) CreateSlots(ctx context.Context, poolID string, n int) ([]string, error) {
	ids := make([]string, 0, n)
	for i := 0; i < n; i++ {
		slot := models.Slot{
			Id:     uuid.New().String(),
			PoolId: poolID,
			Status: models.Available,
		}
		item, err := attributevalue.MarshalMap(slot)
		if err != nil {
			return nil, errors.Wrap(err, "marshal slot")
		}
		item["avail_pool_id"] = &types.AttributeValueMemberS{Value: poolID}

		_, err = s.Client.PutItem(ctx, &dynamodb.PutItemInput{
			TableName:           aws.String(s.SlotsTable),
			Item:                item,
			ConditionExpression: aws.String("attribute_not_exists(id)"),
		})
		if err != nil {
			return nil, errors.Wrapf(err, "create slot in pool %s", poolID)
		}
		ids = append(ids, slot.Id)
	}
	return ids, nil
}

// ClaimOne is the contention primitive: query the sparse AVAILABLE index
// for candidates in pool_id and try a conditional reserve on each in turn,
// skipping — never retrying — any candidate another caller won the race on.
func (s *Store) ClaimOne(ctx context.Context, poolID, userID string) (string, error) {
	var exclusiveStart map[string]types.AttributeValue

	for page := 0; page < claimMaxPages; page++ {
		out, err := s.Client.Query(ctx, &dynamodb.QueryInput{
			TableName:              aws.String(s.SlotsTable),
			IndexName:              aws.String(availableIndex),
			KeyConditionExpression: aws.String("avail_pool_id = :p"),
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":p": &types.AttributeValueMemberS{Value: poolID},
			},
			Limit:             aws.Int32(claimPageSize),
			ExclusiveStartKey: exclusiveStart,
		})
		if err != nil {
			return "", errors.Wrapf(err, "query available slots in pool %s", poolID)
		}

		for _, item := range out.Items {
			var slot models.Slot
			if err := attributevalue.UnmarshalMap(item, &slot); err != nil {
				return "", errors.Wrap(err, "unmarshal candidate slot")
			}

			slotID, claimed, err := s.tryReserve(ctx, slot.Id, userID)
			if err != nil {
				return "", err
			}
			if claimed {
				return slotID, nil
			}
			// Lost the race on this candidate; move to the next one
			// without retrying it.
		}

		if out.LastEvaluatedKey == nil {
			break
		}
		exclusiveStart = out.LastEvaluatedKey
	}

	return "", nil
}

func (s *Store) tryReserve(ctx context.Context, slotID, userID string) (string, bool, error) {
	now := time.Now().UTC()
	_, err := s.Client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(s.SlotsTable),
		Key: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: slotID},
		},
		UpdateExpression:    aws.String("SET #status = :reserved, locked_by = :user, locked_at = :now REMOVE avail_pool_id"),
		ConditionExpression: aws.String("#status = :available"),
		ExpressionAttributeNames: map[string]string{
			"#status": "status",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":reserved": &types.AttributeValueMemberS{Value: string(models.Reserved)},
			":available": &types.AttributeValueMemberS{Value: string(models.Available)},
			":user":     &types.AttributeValueMemberS{Value: userID},
			":now":      &types.AttributeValueMemberS{Value: now.Format(time.RFC3339Nano)},
		},
	})
	if err != nil {
		var condFailed *types.ConditionalCheckFailedException
		if errors.As(err, &condFailed) {
			return "", false, nil
		}
		return "", false, errors.Wrapf(err, "reserve slot %s", slotID)
	}
	return slotID, true, nil
}

// MarkConsumed conditionally transitions slotID from RESERVED to CONSUMED.
func (s *Store) MarkConsumed(ctx context.Context, slotID string) error {
	_, err := s.Client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(s.SlotsTable),
		Key: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: slotID},
		},
		UpdateExpression:    aws.String("SET #status = :consumed"),
		ConditionExpression: aws.String("#status = :reserved"),
		ExpressionAttributeNames: map[string]string{
			"#status": "status",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":consumed": &types.AttributeValueMemberS{Value: string(models.Consumed)},
			":reserved": &types.AttributeValueMemberS{Value: string(models.Reserved)},
		},
	})
	if err != nil {
		var condFailed *types.ConditionalCheckFailedException
		if errors.As(err, &condFailed) {
			// Already consumed, reaped, or never reserved: not our error
			// to raise, per spec.md §4.4(f).
			return nil
		}
		return errors.Wrapf(err, "mark slot %s consumed", slotID)
	}
	return nil
}

// ListStaleReserved returns every RESERVED slot whose locked_at predates
// now-threshold. Grounded on the teacher's stuckTransactionGSI query.
func (s *Store) ListStaleReserved(ctx context.Context, threshold time.Duration) ([]models.Slot, error) {
	cutoff := time.Now().UTC().Add(-threshold).Format(time.RFC3339Nano)

	var slots []models.Slot
	var exclusiveStart map[string]types.AttributeValue
	for {
		out, err := s.Client.Query(ctx, &dynamodb.QueryInput{
			TableName:              aws.String(s.SlotsTable),
			IndexName:              aws.String(reservedIndex),
			KeyConditionExpression: aws.String("#status = :reserved"),
			FilterExpression:       aws.String("locked_at < :cutoff"),
			ExpressionAttributeNames: map[string]string{
				"#status": "status",
			},
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":reserved": &types.AttributeValueMemberS{Value: string(models.Reserved)},
				":cutoff":   &types.AttributeValueMemberS{Value: cutoff},
			},
			ExclusiveStartKey: exclusiveStart,
		})
		if err != nil {
			return nil, errors.Wrap(err, "query stale reserved slots")
		}

		var page []models.Slot
		if err := attributevalue.UnmarshalListOfMaps(out.Items, &page); err != nil {
			return nil, errors.Wrap(err, "unmarshal stale reserved slots")
		}
		slots = append(slots, page...)

		if out.LastEvaluatedKey == nil {
			break
		}
		exclusiveStart = out.LastEvaluatedKey
	}
	return slots, nil
}

// ReleaseIfOrphan conditionally moves a RESERVED slot back to AVAILABLE,
// clearing its lock fields and restoring it to the sparse AVAILABLE index.
func (s *Store) ReleaseIfOrphan(ctx context.Context, slotID string) (bool, error) {
	_, err := s.Client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(s.SlotsTable),
		Key: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: slotID},
		},
		UpdateExpression:    aws.String("SET #status = :available, avail_pool_id = pool_id REMOVE locked_by, locked_at"),
		ConditionExpression: aws.String("#status = :reserved"),
		ExpressionAttributeNames: map[string]string{
			"#status": "status",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":available": &types.AttributeValueMemberS{Value: string(models.Available)},
			":reserved":  &types.AttributeValueMemberS{Value: string(models.Reserved)},
		},
	})
	if err != nil {
		var condFailed *types.ConditionalCheckFailedException
		if errors.As(err, &condFailed) {
			return false, nil
		}
		return false, errors.Wrapf(err, "release orphan slot %s", slotID)
	}
	return true, nil
}

var _ storage.SlotStore = (*Store)(nil)

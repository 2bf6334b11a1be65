package dynamodb

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/cockroachdb/errors"
	"github.com/nrhodes/burstqueue/pkg/models"
	"github.com/nrhodes/burstqueue/pkg/storage"
)

// Get returns the config row for poolID.
func (s *Store) Get(ctx context.Context, poolID string) (models.PoolConfig, error) {
	out, err := s.Client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.ConfigTable),
		Key: map[string]types.AttributeValue{
			"pool_id": &types.AttributeValueMemberS{Value: poolID},
		},
	})
	if err != nil {
		return models.PoolConfig{}, errors.Wrapf(err, "get config for pool %s", poolID)
	}
	if out.Item == nil {
		return models.PoolConfig{}, storage.ErrConfigNotFound
	}

	var cfg models.PoolConfig
	if err := attributevalue.UnmarshalMap(out.Item, &cfg); err != nil {
		return models.PoolConfig{}, errors.Wrap(err, "unmarshal pool config")
	}
	return cfg, nil
}

// Put creates or replaces cfg.
func (s *Store) Put(ctx context.Context, cfg models.PoolConfig) error {
	item, err := attributevalue.MarshalMap(cfg)
	if err != nil {
		return errors.Wrap(err, "marshal pool config")
	}
	_, err = s.Client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.ConfigTable),
		Item:      item,
	})
	if err != nil {
		return errors.Wrapf(err, "put config for pool %s", cfg.PoolId)
	}
	return nil
}

var _ storage.ConfigStore = (*Store)(nil)

package dynamodb

import (
	"context"
	"testing"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/nrhodes/burstqueue/pkg/models"
	"github.com/nrhodes/burstqueue/pkg/storage"
	"github.com/nrhodes/burstqueue/pkg/storage/dynamodb/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestConfigGet(t *testing.T) {
	t.Run("returns the stored config", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		store := &Store{Client: mockClient, ConfigTable: "config"}

		cfg := models.PoolConfig{PoolId: "pool-1", IsActive: true, MaxRetries: 5}
		av, _ := attributevalue.MarshalMap(cfg)
		mockClient.On("GetItem", mock.Anything, mock.Anything).Return(&dynamodb.GetItemOutput{Item: av}, nil).Once()

		got, err := store.Get(context.Background(), "pool-1")

		assert.NoError(t, err)
		assert.Equal(t, cfg, got)
		mockClient.AssertExpectations(t)
	})

	t.Run("reports ErrConfigNotFound on a missing row", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		store := &Store{Client: mockClient, ConfigTable: "config"}

		mockClient.On("GetItem", mock.Anything, mock.Anything).Return(&dynamodb.GetItemOutput{Item: nil}, nil).Once()

		_, err := store.Get(context.Background(), "pool-missing")

		assert.ErrorIs(t, err, storage.ErrConfigNotFound)
		mockClient.AssertExpectations(t)
	})
}

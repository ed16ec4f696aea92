package dynamodb

import (
	"context"
	"testing"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/Denizbukut/TCG-sub001/pkg/models"
	"github.com/Denizbukut/TCG-sub001/pkg/storage"
	"github.com/Denizbukut/TCG-sub001/pkg/storage/dynamodb/mocks"
)

func TestReserveQuota(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		store := &Store{Client: mockClient, QuotaTableName: "quota"}

		row := &models.QuotaRow{QuotaKey: models.QuotaKey("legendary-draws", "2026-08-29"), Reserved: 1, Cap: 100}
		rowAV, _ := attributevalue.MarshalMap(row)
		mockClient.On("UpdateItem", mock.Anything, mock.Anything).Return(&dynamodb.UpdateItemOutput{Attributes: rowAV}, nil)

		reserved, err := store.ReserveQuota(context.Background(), "legendary-draws", "2026-08-29", 100)

		assert.NoError(t, err)
		assert.Equal(t, int64(1), reserved)
		mockClient.AssertExpectations(t)
	})

	t.Run("Cap Reached", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		store := &Store{Client: mockClient, QuotaTableName: "quota"}

		mockClient.On("UpdateItem", mock.Anything, mock.Anything).Return(nil, &types.ConditionalCheckFailedException{})

		_, err := store.ReserveQuota(context.Background(), "legendary-draws", "2026-08-29", 100)

		assert.ErrorIs(t, err, storage.ErrQuotaExceeded)
		mockClient.AssertExpectations(t)
	})

	t.Run("Zero Cap", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		store := &Store{Client: mockClient, QuotaTableName: "quota"}

		_, err := store.ReserveQuota(context.Background(), "legendary-draws", "2026-08-29", 0)

		assert.ErrorIs(t, err, storage.ErrQuotaExceeded)
		mockClient.AssertNotCalled(t, "UpdateItem")
	})
}

func TestGetQuotaReserved(t *testing.T) {
	t.Run("No Row Means Zero", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		store := &Store{Client: mockClient, QuotaTableName: "quota"}

		mockClient.On("GetItem", mock.Anything, mock.Anything).Return(&dynamodb.GetItemOutput{Item: nil}, nil)

		reserved, err := store.GetQuotaReserved(context.Background(), "legendary-draws", "2026-08-29")

		assert.NoError(t, err)
		assert.Zero(t, reserved)
		mockClient.AssertExpectations(t)
	})
}

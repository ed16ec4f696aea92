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

func TestGetPlayer(t *testing.T) {
	player := &models.Player{UserId: "user1", Tickets: 3, Score: 100, Version: 1}

	t.Run("Success", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		store := &Store{Client: mockClient, PlayersTableName: "players"}

		playerAV, _ := attributevalue.MarshalMap(player)
		mockClient.On("GetItem", mock.Anything, mock.Anything).Return(&dynamodb.GetItemOutput{Item: playerAV}, nil)

		result, err := store.GetPlayer(context.Background(), "user1")

		assert.NoError(t, err)
		assert.Equal(t, player.UserId, result.UserId)
		assert.Equal(t, player.Tickets, result.Tickets)
		mockClient.AssertExpectations(t)
	})

	t.Run("Not Found", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		store := &Store{Client: mockClient, PlayersTableName: "players"}

		mockClient.On("GetItem", mock.Anything, mock.Anything).Return(&dynamodb.GetItemOutput{Item: nil}, nil)

		_, err := store.GetPlayer(context.Background(), "ghost")

		assert.ErrorIs(t, err, storage.ErrPlayerNotFound)
		mockClient.AssertExpectations(t)
	})
}

func TestSpendTicket(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		store := &Store{Client: mockClient, PlayersTableName: "players"}

		mockClient.On("UpdateItem", mock.Anything, mock.Anything).Return(&dynamodb.UpdateItemOutput{}, nil)

		err := store.SpendTicket(context.Background(), "user1", storage.TierStandard)

		assert.NoError(t, err)
		mockClient.AssertExpectations(t)
	})

	t.Run("No Tickets", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		store := &Store{Client: mockClient, PlayersTableName: "players"}

		// The CAS fails, and the classifying re-read finds the player with an
		// empty elite balance.
		mockClient.On("UpdateItem", mock.Anything, mock.Anything).Return(nil, &types.ConditionalCheckFailedException{})
		brokeAV, _ := attributevalue.MarshalMap(&models.Player{UserId: "user1", Tickets: 2, Version: 1})
		mockClient.On("GetItem", mock.Anything, mock.Anything).Return(&dynamodb.GetItemOutput{Item: brokeAV}, nil)

		err := store.SpendTicket(context.Background(), "user1", storage.TierElite)

		assert.ErrorIs(t, err, storage.ErrNoTickets)
		mockClient.AssertExpectations(t)
	})

	t.Run("Missing Player", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		store := &Store{Client: mockClient, PlayersTableName: "players"}

		// The same conditional failure, but the re-read shows no row at all.
		mockClient.On("UpdateItem", mock.Anything, mock.Anything).Return(nil, &types.ConditionalCheckFailedException{})
		mockClient.On("GetItem", mock.Anything, mock.Anything).Return(&dynamodb.GetItemOutput{Item: nil}, nil)

		err := store.SpendTicket(context.Background(), "ghost", storage.TierStandard)

		assert.ErrorIs(t, err, storage.ErrPlayerNotFound)
		mockClient.AssertExpectations(t)
	})
}

func TestAdjustScore(t *testing.T) {
	t.Run("Credit", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		store := &Store{Client: mockClient, PlayersTableName: "players"}

		mockClient.On("UpdateItem", mock.Anything, mock.Anything).Once().Return(&dynamodb.UpdateItemOutput{}, nil)

		err := store.AdjustScore(context.Background(), "user1", 10)

		assert.NoError(t, err)
		mockClient.AssertExpectations(t)
	})

	t.Run("Debit With Sufficient Score", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		store := &Store{Client: mockClient, PlayersTableName: "players"}

		mockClient.On("UpdateItem", mock.Anything, mock.Anything).Once().Return(&dynamodb.UpdateItemOutput{}, nil)

		err := store.AdjustScore(context.Background(), "user1", -10)

		assert.NoError(t, err)
		mockClient.AssertExpectations(t)
	})

	t.Run("Debit Clamps At Zero", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		store := &Store{Client: mockClient, PlayersTableName: "players"}

		// The conditioned decrement fails, then the clamp write succeeds.
		mockClient.On("UpdateItem", mock.Anything, mock.Anything).Once().Return(nil, &types.ConditionalCheckFailedException{})
		mockClient.On("UpdateItem", mock.Anything, mock.Anything).Once().Return(&dynamodb.UpdateItemOutput{}, nil)

		err := store.AdjustScore(context.Background(), "user1", -500)

		assert.NoError(t, err)
		mockClient.AssertExpectations(t)
	})

	t.Run("Missing Player", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		store := &Store{Client: mockClient, PlayersTableName: "players"}

		mockClient.On("UpdateItem", mock.Anything, mock.Anything).Return(nil, &types.ConditionalCheckFailedException{})

		err := store.AdjustScore(context.Background(), "ghost", 10)

		assert.ErrorIs(t, err, storage.ErrPlayerNotFound)
		mockClient.AssertExpectations(t)
	})
}

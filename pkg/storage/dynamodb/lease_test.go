package dynamodb

import (
	"context"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/Denizbukut/TCG-sub001/pkg/models"
	"github.com/Denizbukut/TCG-sub001/pkg/storage"
	"github.com/Denizbukut/TCG-sub001/pkg/storage/dynamodb/mocks"
)

func TestLockListing(t *testing.T) {
	now := time.Now().UTC()
	ttl := 30 * time.Second

	t.Run("Success", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		store := &Store{Client: mockClient, ListingsTableName: "listings"}

		locked := activeListing()
		locked.Status = models.LOCKED
		expires := now.Add(ttl)
		locked.LockExpiresAt = &expires
		lockedAV, _ := attributevalue.MarshalMap(locked)
		mockClient.On("UpdateItem", mock.Anything, mock.Anything).Once().Return(&dynamodb.UpdateItemOutput{Attributes: lockedAV}, nil)

		result, err := store.LockListing(context.Background(), locked.Id, now, ttl)

		assert.NoError(t, err)
		assert.Equal(t, models.LOCKED, result.Status)
		assert.NotNil(t, result.LockExpiresAt)
		mockClient.AssertExpectations(t)
	})

	t.Run("Held By Another Buyer", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		store := &Store{Client: mockClient, ListingsTableName: "listings"}

		mockClient.On("UpdateItem", mock.Anything, mock.Anything).Once().Return(nil, &types.ConditionalCheckFailedException{})

		held := activeListing()
		held.Status = models.LOCKED
		expires := now.Add(20 * time.Second)
		held.LockExpiresAt = &expires
		heldAV, _ := attributevalue.MarshalMap(held)
		mockClient.On("GetItem", mock.Anything, mock.Anything).Return(&dynamodb.GetItemOutput{Item: heldAV}, nil)

		_, err := store.LockListing(context.Background(), held.Id, now, ttl)

		var lockedErr *storage.ErrListingLocked
		assert.ErrorAs(t, err, &lockedErr)
		assert.Equal(t, 20*time.Second, lockedErr.Remaining)
		mockClient.AssertExpectations(t)
	})

	t.Run("Expired Lease Taken Over", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		store := &Store{Client: mockClient, ListingsTableName: "listings"}

		// First CAS loses because the row is LOCKED.
		mockClient.On("UpdateItem", mock.Anything, mock.Anything).Once().Return(nil, &types.ConditionalCheckFailedException{})

		stale := activeListing()
		stale.Status = models.LOCKED
		expired := now.Add(-5 * time.Second)
		stale.LockExpiresAt = &expired
		staleAV, _ := attributevalue.MarshalMap(stale)
		mockClient.On("GetItem", mock.Anything, mock.Anything).Return(&dynamodb.GetItemOutput{Item: staleAV}, nil)

		// Takeover CAS succeeds with a fresh expiry.
		relocked := *stale
		fresh := now.Add(ttl)
		relocked.LockExpiresAt = &fresh
		relockedAV, _ := attributevalue.MarshalMap(&relocked)
		mockClient.On("UpdateItem", mock.Anything, mock.Anything).Once().Return(&dynamodb.UpdateItemOutput{Attributes: relockedAV}, nil)

		result, err := store.LockListing(context.Background(), stale.Id, now, ttl)

		assert.NoError(t, err)
		assert.Equal(t, models.LOCKED, result.Status)
		assert.True(t, result.LockExpiresAt.After(now))
		mockClient.AssertExpectations(t)
	})

	t.Run("Takeover Race Lost", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		store := &Store{Client: mockClient, ListingsTableName: "listings"}

		mockClient.On("UpdateItem", mock.Anything, mock.Anything).Once().Return(nil, &types.ConditionalCheckFailedException{})

		stale := activeListing()
		stale.Status = models.LOCKED
		expired := now.Add(-time.Second)
		stale.LockExpiresAt = &expired
		staleAV, _ := attributevalue.MarshalMap(stale)
		mockClient.On("GetItem", mock.Anything, mock.Anything).Return(&dynamodb.GetItemOutput{Item: staleAV}, nil)

		// Somebody else rewrote the expiry between our read and our takeover.
		mockClient.On("UpdateItem", mock.Anything, mock.Anything).Once().Return(nil, &types.ConditionalCheckFailedException{})

		_, err := store.LockListing(context.Background(), stale.Id, now, ttl)

		var lockedErr *storage.ErrListingLocked
		assert.ErrorAs(t, err, &lockedErr)
		mockClient.AssertExpectations(t)
	})

	t.Run("Already Sold", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		store := &Store{Client: mockClient, ListingsTableName: "listings"}

		mockClient.On("UpdateItem", mock.Anything, mock.Anything).Return(nil, &types.ConditionalCheckFailedException{})

		sold := activeListing()
		sold.Status = models.SOLD
		soldAV, _ := attributevalue.MarshalMap(sold)
		mockClient.On("GetItem", mock.Anything, mock.Anything).Return(&dynamodb.GetItemOutput{Item: soldAV}, nil)

		_, err := store.LockListing(context.Background(), sold.Id, now, ttl)

		assert.ErrorIs(t, err, storage.ErrAlreadySold)
		mockClient.AssertExpectations(t)
	})
}

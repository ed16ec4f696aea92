package dynamodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/Denizbukut/TCG-sub001/pkg/models"
	"github.com/Denizbukut/TCG-sub001/pkg/storage"
)

// errLeaseBusy signals that the lease CAS lost to the current row state. The
// caller re-reads the row to decide between a live lease and a stale one.
var errLeaseBusy = errors.New("lease CAS condition failed")

// LockListing attempts the ACTIVE->LOCKED lease CAS with the given TTL.
//
// There is no background sweeper for expired leases. Expiry is evaluated
// lazily, right here, when another actor contends for the same listing: if the
// row is LOCKED but the lease has lapsed at now, the caller takes the lease
// over with a second CAS conditioned on the old expiry value.
func (s *Store) LockListing(ctx context.Context, listingID string, now time.Time, ttl time.Duration) (*models.Listing, error) {
	expiresAt := now.Add(ttl)

	listing, err := s.acquireLease(ctx, listingID, expiresAt, now)
	if err == nil {
		return listing, nil
	}
	if !errors.Is(err, errLeaseBusy) {
		return nil, err
	}

	// Contention: re-read to find out who holds the row now.
	current, err := s.GetListing(ctx, listingID)
	if err != nil {
		return nil, err
	}

	switch current.Status {
	case models.LOCKED:
		remaining := current.LockRemaining(now)
		if remaining > 0 {
			return nil, &storage.ErrListingLocked{Remaining: remaining}
		}
		// Stale lease: take it over, conditioned on the expiry we observed so
		// that two takeover attempts cannot both win.
		return s.takeOverLease(ctx, listingID, *current.LockExpiresAt, expiresAt, now)
	case models.SOLD:
		return nil, storage.ErrAlreadySold
	default:
		return nil, storage.ErrListingNotActive
	}
}

// acquireLease is the generic time-boxed lock primitive: a single conditional
// write flipping an ACTIVE row to LOCKED with an expiry timestamp.
func (s *Store) acquireLease(ctx context.Context, listingID string, expiresAt, now time.Time) (*models.Listing, error) {
	expiresAV, err := attributevalue.Marshal(expiresAt)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal lease expiry: %w", err)
	}
	nowAV, err := attributevalue.Marshal(now)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal lease timestamp: %w", err)
	}

	input := &dynamodb.UpdateItemInput{
		TableName: aws.String(s.ListingsTableName),
		Key: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: listingID},
		},
		UpdateExpression:    aws.String("SET #status = :locked, lock_expires_at = :expires, updated_at = :now"),
		ConditionExpression: aws.String("#status = :active"),
		ExpressionAttributeNames: map[string]string{
			"#status": "status",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":locked":  &types.AttributeValueMemberS{Value: string(models.LOCKED)},
			":active":  &types.AttributeValueMemberS{Value: string(models.ACTIVE)},
			":expires": expiresAV,
			":now":     nowAV,
		},
		ReturnValues: types.ReturnValueAllNew,
	}

	result, err := s.Client.UpdateItem(ctx, input)
	if err != nil {
		if isConditionalCheckFailed(err) {
			return nil, errLeaseBusy
		}
		return nil, fmt.Errorf("failed to acquire listing lease: %w", err)
	}

	var listing models.Listing
	if err := attributevalue.UnmarshalMap(result.Attributes, &listing); err != nil {
		return nil, fmt.Errorf("failed to unmarshal locked listing: %w", err)
	}

	return &listing, nil
}

// takeOverLease replaces a stale lease with a fresh one. The CAS is conditioned
// on the stale expiry value, so concurrent takeover attempts race safely:
// exactly one rewrites the expiry, the rest fail and report the new lease.
func (s *Store) takeOverLease(ctx context.Context, listingID string, staleExpiry, expiresAt, now time.Time) (*models.Listing, error) {
	staleAV, err := attributevalue.Marshal(staleExpiry)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal stale lease expiry: %w", err)
	}
	expiresAV, err := attributevalue.Marshal(expiresAt)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal lease expiry: %w", err)
	}
	nowAV, err := attributevalue.Marshal(now)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal lease timestamp: %w", err)
	}

	input := &dynamodb.UpdateItemInput{
		TableName: aws.String(s.ListingsTableName),
		Key: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: listingID},
		},
		UpdateExpression:    aws.String("SET lock_expires_at = :expires, updated_at = :now"),
		ConditionExpression: aws.String("#status = :locked AND lock_expires_at = :stale"),
		ExpressionAttributeNames: map[string]string{
			"#status": "status",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":locked":  &types.AttributeValueMemberS{Value: string(models.LOCKED)},
			":stale":   staleAV,
			":expires": expiresAV,
			":now":     nowAV,
		},
		ReturnValues: types.ReturnValueAllNew,
	}

	result, err := s.Client.UpdateItem(ctx, input)
	if err != nil {
		if isConditionalCheckFailed(err) {
			// Somebody else took the lease over first.
			return nil, &storage.ErrListingLocked{Remaining: expiresAt.Sub(now)}
		}
		return nil, fmt.Errorf("failed to take over stale lease: %w", err)
	}

	var listing models.Listing
	if err := attributevalue.UnmarshalMap(result.Attributes, &listing); err != nil {
		return nil, fmt.Errorf("failed to unmarshal relocked listing: %w", err)
	}

	return &listing, nil
}

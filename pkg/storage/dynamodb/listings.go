package dynamodb

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/Denizbukut/TCG-sub001/pkg/models"
	"github.com/Denizbukut/TCG-sub001/pkg/storage"
)

const sellerIndex = "seller-index"

// InsertListing creates a new ACTIVE listing row.
func (s *Store) InsertListing(ctx context.Context, listing *models.Listing) error {
	listingAV, err := attributevalue.MarshalMap(listing)
	if err != nil {
		return fmt.Errorf("failed to marshal listing: %w", err)
	}

	input := &dynamodb.PutItemInput{
		TableName:           aws.String(s.ListingsTableName),
		Item:                listingAV,
		ConditionExpression: aws.String("attribute_not_exists(id)"), // Prevent overwriting existing listings.
	}

	if _, err := s.Client.PutItem(ctx, input); err != nil {
		if isConditionalCheckFailed(err) {
			return fmt.Errorf("listing %s already exists", listing.Id)
		}
		return fmt.Errorf("failed to create listing in DynamoDB: %w", err)
	}

	return nil
}

// GetListing retrieves a listing from DynamoDB by its ID.
func (s *Store) GetListing(ctx context.Context, listingID string) (*models.Listing, error) {
	key, err := attributevalue.MarshalMap(map[string]string{"id": listingID})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal listing ID: %w", err)
	}

	result, err := s.Client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.ListingsTableName),
		Key:       key,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get listing from DynamoDB: %w", err)
	}

	if result.Item == nil {
		return nil, storage.ErrListingNotFound
	}

	var listing models.Listing
	if err := attributevalue.UnmarshalMap(result.Item, &listing); err != nil {
		return nil, fmt.Errorf("failed to unmarshal listing: %w", err)
	}

	return &listing, nil
}

// DeleteListing removes a listing row unconditionally. This is the compensating
// action for a failed inventory withdrawal after insert.
func (s *Store) DeleteListing(ctx context.Context, listingID string) error {
	key, err := attributevalue.MarshalMap(map[string]string{"id": listingID})
	if err != nil {
		return fmt.Errorf("failed to marshal listing ID for deletion: %w", err)
	}

	_, err = s.Client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(s.ListingsTableName),
		Key:       key,
	})
	if err != nil {
		return fmt.Errorf("failed to delete listing from DynamoDB: %w", err)
	}

	return nil
}

// FinalizeListing attempts the (ACTIVE|LOCKED)->SOLD CAS. This is the single
// linearization point of a sale: exactly one concurrent caller succeeds.
func (s *Store) FinalizeListing(ctx context.Context, listingID, buyer string, now time.Time) (*models.Listing, error) {
	soldAtAV, err := attributevalue.Marshal(now)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal sold_at timestamp: %w", err)
	}

	input := &dynamodb.UpdateItemInput{
		TableName: aws.String(s.ListingsTableName),
		Key: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: listingID},
		},
		UpdateExpression:    aws.String("SET #status = :sold, buyer = :buyer, sold_at = :now, updated_at = :now REMOVE lock_expires_at"),
		ConditionExpression: aws.String("#status = :active OR #status = :locked"),
		ExpressionAttributeNames: map[string]string{
			"#status": "status",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":sold":   &types.AttributeValueMemberS{Value: string(models.SOLD)},
			":active": &types.AttributeValueMemberS{Value: string(models.ACTIVE)},
			":locked": &types.AttributeValueMemberS{Value: string(models.LOCKED)},
			":buyer":  &types.AttributeValueMemberS{Value: buyer},
			":now":    soldAtAV,
		},
		ReturnValues: types.ReturnValueAllNew,
	}

	result, err := s.Client.UpdateItem(ctx, input)
	if err != nil {
		if isConditionalCheckFailed(err) {
			return nil, s.classifyFinalizeConflict(ctx, listingID)
		}
		return nil, fmt.Errorf("failed to finalize listing: %w", err)
	}

	var listing models.Listing
	if err := attributevalue.UnmarshalMap(result.Attributes, &listing); err != nil {
		return nil, fmt.Errorf("failed to unmarshal finalized listing: %w", err)
	}

	return &listing, nil
}

// classifyFinalizeConflict re-reads a listing whose finalize CAS failed and
// maps the current state to a typed conflict error.
func (s *Store) classifyFinalizeConflict(ctx context.Context, listingID string) error {
	current, err := s.GetListing(ctx, listingID)
	if err != nil {
		if errors.Is(err, storage.ErrListingNotFound) {
			return storage.ErrListingNotFound
		}
		return fmt.Errorf("failed to re-read listing after finalize conflict: %w", err)
	}
	if current.Status == models.SOLD {
		return storage.ErrAlreadySold
	}
	return storage.ErrListingNotActive
}

// CancelListing removes the listing iff it is ACTIVE and owned by seller,
// returning the removed row.
func (s *Store) CancelListing(ctx context.Context, listingID, seller string) (*models.Listing, error) {
	input := &dynamodb.DeleteItemInput{
		TableName: aws.String(s.ListingsTableName),
		Key: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: listingID},
		},
		ConditionExpression: aws.String("seller = :seller AND #status = :active"),
		ExpressionAttributeNames: map[string]string{
			"#status": "status",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":seller": &types.AttributeValueMemberS{Value: seller},
			":active": &types.AttributeValueMemberS{Value: string(models.ACTIVE)},
		},
		ReturnValues: types.ReturnValueAllOld,
	}

	result, err := s.Client.DeleteItem(ctx, input)
	if err != nil {
		if isConditionalCheckFailed(err) {
			return nil, storage.ErrNotOwnerOrNotActive
		}
		return nil, fmt.Errorf("failed to cancel listing: %w", err)
	}

	var listing models.Listing
	if err := attributevalue.UnmarshalMap(result.Attributes, &listing); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cancelled listing: %w", err)
	}

	return &listing, nil
}

// UpdateListingPrice sets a new price iff the listing is ACTIVE and owned by
// seller.
func (s *Store) UpdateListingPrice(ctx context.Context, listingID, seller string, newPrice int64, now time.Time) error {
	nowAV, err := attributevalue.Marshal(now)
	if err != nil {
		return fmt.Errorf("failed to marshal timestamp for price update: %w", err)
	}

	input := &dynamodb.UpdateItemInput{
		TableName: aws.String(s.ListingsTableName),
		Key: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: listingID},
		},
		UpdateExpression:    aws.String("SET price = :price, updated_at = :now"),
		ConditionExpression: aws.String("seller = :seller AND #status = :active"),
		ExpressionAttributeNames: map[string]string{
			"#status": "status",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":price":  &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", newPrice)},
			":seller": &types.AttributeValueMemberS{Value: seller},
			":active": &types.AttributeValueMemberS{Value: string(models.ACTIVE)},
			":now":    nowAV,
		},
	}

	if _, err := s.Client.UpdateItem(ctx, input); err != nil {
		if isConditionalCheckFailed(err) {
			return storage.ErrNotOwnerOrNotActive
		}
		return fmt.Errorf("failed to update listing price: %w", err)
	}

	return nil
}

// CountActiveBySeller counts the seller's ACTIVE listings via the seller GSI.
func (s *Store) CountActiveBySeller(ctx context.Context, seller string) (int, error) {
	var total int
	var startKey map[string]types.AttributeValue

	for {
		result, err := s.Client.Query(ctx, &dynamodb.QueryInput{
			TableName:              aws.String(s.ListingsTableName),
			IndexName:              aws.String(sellerIndex),
			KeyConditionExpression: aws.String("seller = :seller"),
			FilterExpression:       aws.String("#status = :active"),
			ExpressionAttributeNames: map[string]string{
				"#status": "status",
			},
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":seller": &types.AttributeValueMemberS{Value: seller},
				":active": &types.AttributeValueMemberS{Value: string(models.ACTIVE)},
			},
			Select:            types.SelectCount,
			ExclusiveStartKey: startKey,
		})
		if err != nil {
			return 0, fmt.Errorf("failed to count seller listings: %w", err)
		}

		total += int(result.Count)
		if result.LastEvaluatedKey == nil {
			break
		}
		startKey = result.LastEvaluatedKey
	}

	return total, nil
}

// ListListings retrieves one page of ACTIVE listings matching the query. The
// filter runs in DynamoDB; the sort and page window run here, because a scan
// has no server-side ordering.
func (s *Store) ListListings(ctx context.Context, q storage.ListingQuery) (*storage.ListingPage, error) {
	filter := []string{"#status = :active"}
	names := map[string]string{"#status": "status"}
	values := map[string]types.AttributeValue{
		":active": &types.AttributeValueMemberS{Value: string(models.ACTIVE)},
	}

	if q.MinPrice > 0 {
		filter = append(filter, "price >= :min_price")
		values[":min_price"] = &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", q.MinPrice)}
	}
	if q.MaxPrice > 0 {
		filter = append(filter, "price <= :max_price")
		values[":max_price"] = &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", q.MaxPrice)}
	}
	if q.Rarity != "" {
		filter = append(filter, "rarity = :rarity")
		values[":rarity"] = &types.AttributeValueMemberS{Value: string(q.Rarity)}
	}
	if q.Search != "" {
		filter = append(filter, "contains(card_name, :search)")
		values[":search"] = &types.AttributeValueMemberS{Value: q.Search}
	}

	var listings []models.Listing
	var startKey map[string]types.AttributeValue

	for {
		result, err := s.Client.Scan(ctx, &dynamodb.ScanInput{
			TableName:                 aws.String(s.ListingsTableName),
			FilterExpression:          aws.String(strings.Join(filter, " AND ")),
			ExpressionAttributeNames:  names,
			ExpressionAttributeValues: values,
			ExclusiveStartKey:         startKey,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to scan listings table: %w", err)
		}

		var page []models.Listing
		if err := attributevalue.UnmarshalListOfMaps(result.Items, &page); err != nil {
			return nil, fmt.Errorf("failed to unmarshal listings: %w", err)
		}
		listings = append(listings, page...)

		if result.LastEvaluatedKey == nil {
			break
		}
		startKey = result.LastEvaluatedKey
	}

	sortListings(listings, q.Sort)
	return paginateListings(listings, q.Page, q.PageSize), nil
}

func sortListings(listings []models.Listing, order storage.ListingSort) {
	switch order {
	case storage.SortPriceAsc:
		sort.SliceStable(listings, func(i, j int) bool { return listings[i].Price < listings[j].Price })
	case storage.SortPriceDesc:
		sort.SliceStable(listings, func(i, j int) bool { return listings[i].Price > listings[j].Price })
	default:
		sort.SliceStable(listings, func(i, j int) bool { return listings[i].CreatedAt.After(listings[j].CreatedAt) })
	}
}

func paginateListings(listings []models.Listing, page, pageSize int) *storage.ListingPage {
	if page < 1 {
		page = 1
	}
	start := (page - 1) * pageSize
	end := start + pageSize
	if start > len(listings) {
		start = len(listings)
	}
	if end > len(listings) {
		end = len(listings)
	}

	return &storage.ListingPage{
		Listings: listings[start:end],
		Page:     page,
		PageSize: pageSize,
		Total:    len(listings),
	}
}

// isConditionalCheckFailed reports whether err is a failed ConditionExpression.
func isConditionalCheckFailed(err error) bool {
	var condCheckFailed *types.ConditionalCheckFailedException
	return errors.As(err, &condCheckFailed)
}

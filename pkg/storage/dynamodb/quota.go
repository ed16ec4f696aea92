package dynamodb

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/Denizbukut/TCG-sub001/pkg/models"
	"github.com/Denizbukut/TCG-sub001/pkg/storage"
)

// ReserveQuota atomically increments the (subject, day) counter iff it is
// below cap, creating the row on first use. The increment and the cap check
// are one UpdateItem, so concurrent reservations can never overrun the cap.
// Days roll over by key; old rows just stop being touched.
func (s *Store) ReserveQuota(ctx context.Context, subject, day string, cap int64) (int64, error) {
	if cap < 1 {
		return 0, storage.ErrQuotaExceeded
	}

	input := &dynamodb.UpdateItemInput{
		TableName: aws.String(s.QuotaTableName),
		Key: map[string]types.AttributeValue{
			"quota_key": &types.AttributeValueMemberS{Value: models.QuotaKey(subject, day)},
		},
		UpdateExpression:    aws.String("SET subject = if_not_exists(subject, :subject), #day = if_not_exists(#day, :day), #cap = if_not_exists(#cap, :cap) ADD reserved :one"),
		ConditionExpression: aws.String("attribute_not_exists(quota_key) OR reserved < :cap"),
		ExpressionAttributeNames: map[string]string{
			"#day": "day",
			"#cap": "cap",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":subject": &types.AttributeValueMemberS{Value: subject},
			":day":     &types.AttributeValueMemberS{Value: day},
			":cap":     &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", cap)},
			":one":     &types.AttributeValueMemberN{Value: "1"},
		},
		ReturnValues: types.ReturnValueAllNew,
	}

	result, err := s.Client.UpdateItem(ctx, input)
	if err != nil {
		if isConditionalCheckFailed(err) {
			return 0, storage.ErrQuotaExceeded
		}
		return 0, fmt.Errorf("failed to reserve quota: %w", err)
	}

	var row models.QuotaRow
	if err := attributevalue.UnmarshalMap(result.Attributes, &row); err != nil {
		return 0, fmt.Errorf("failed to unmarshal quota row: %w", err)
	}

	return row.Reserved, nil
}

// ConfirmQuota records that a reservation was consumed. Pure accounting; the
// reserved count already reflects usage.
func (s *Store) ConfirmQuota(ctx context.Context, subject, day string) error {
	input := &dynamodb.UpdateItemInput{
		TableName: aws.String(s.QuotaTableName),
		Key: map[string]types.AttributeValue{
			"quota_key": &types.AttributeValueMemberS{Value: models.QuotaKey(subject, day)},
		},
		UpdateExpression:    aws.String("ADD confirmed :one"),
		ConditionExpression: aws.String("attribute_exists(quota_key)"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":one": &types.AttributeValueMemberN{Value: "1"},
		},
	}

	if _, err := s.Client.UpdateItem(ctx, input); err != nil {
		return fmt.Errorf("failed to confirm quota: %w", err)
	}

	return nil
}

// ReleaseQuota backs out one reservation that was never consumed.
func (s *Store) ReleaseQuota(ctx context.Context, subject, day string) error {
	input := &dynamodb.UpdateItemInput{
		TableName: aws.String(s.QuotaTableName),
		Key: map[string]types.AttributeValue{
			"quota_key": &types.AttributeValueMemberS{Value: models.QuotaKey(subject, day)},
		},
		UpdateExpression:    aws.String("SET reserved = reserved - :one"),
		ConditionExpression: aws.String("reserved >= :one"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":one": &types.AttributeValueMemberN{Value: "1"},
		},
	}

	if _, err := s.Client.UpdateItem(ctx, input); err != nil {
		if isConditionalCheckFailed(err) {
			return fmt.Errorf("no reservation to release for %s on %s", subject, day)
		}
		return fmt.Errorf("failed to release quota: %w", err)
	}

	return nil
}

// GetQuotaReserved reads the current reserved count, zero if no row exists.
func (s *Store) GetQuotaReserved(ctx context.Context, subject, day string) (int64, error) {
	key, err := attributevalue.MarshalMap(map[string]string{"quota_key": models.QuotaKey(subject, day)})
	if err != nil {
		return 0, fmt.Errorf("failed to marshal quota key: %w", err)
	}

	result, err := s.Client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.QuotaTableName),
		Key:       key,
	})
	if err != nil {
		return 0, fmt.Errorf("failed to get quota row: %w", err)
	}

	if result.Item == nil {
		return 0, nil
	}

	var row models.QuotaRow
	if err := attributevalue.UnmarshalMap(result.Item, &row); err != nil {
		return 0, fmt.Errorf("failed to unmarshal quota row: %w", err)
	}

	return row.Reserved, nil
}

package dynamodb

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/Denizbukut/TCG-sub001/pkg/storage"
)

// cardKey builds the inventory sort key for a card at a level. Copies of the
// same card at different levels are distinct holdings.
func cardKey(cardID string, level int) string {
	return fmt.Sprintf("%s#%d", cardID, level)
}

// WithdrawCard removes one copy of the card at the given level from the user's
// holdings. The decrement is conditioned on quantity >= 1, so two concurrent
// listings of a player's last copy cannot both succeed.
func (s *Store) WithdrawCard(ctx context.Context, userID, cardID string, level int) error {
	input := &dynamodb.UpdateItemInput{
		TableName: aws.String(s.InventoryTableName),
		Key: map[string]types.AttributeValue{
			"user_id":  &types.AttributeValueMemberS{Value: userID},
			"card_key": &types.AttributeValueMemberS{Value: cardKey(cardID, level)},
		},
		UpdateExpression:    aws.String("SET quantity = quantity - :one"),
		ConditionExpression: aws.String("quantity >= :one"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":one": &types.AttributeValueMemberN{Value: "1"},
		},
	}

	if _, err := s.Client.UpdateItem(ctx, input); err != nil {
		if isConditionalCheckFailed(err) {
			return storage.ErrCardNotOwned
		}
		return fmt.Errorf("failed to withdraw card from inventory: %w", err)
	}

	return nil
}

// DepositCard adds one copy of the card at the given level to the user's
// holdings, creating the slot on first use.
func (s *Store) DepositCard(ctx context.Context, userID, cardID string, level int) error {
	input := &dynamodb.UpdateItemInput{
		TableName: aws.String(s.InventoryTableName),
		Key: map[string]types.AttributeValue{
			"user_id":  &types.AttributeValueMemberS{Value: userID},
			"card_key": &types.AttributeValueMemberS{Value: cardKey(cardID, level)},
		},
		UpdateExpression: aws.String("SET card_id = if_not_exists(card_id, :card_id), #lvl = if_not_exists(#lvl, :level) ADD quantity :one"),
		ExpressionAttributeNames: map[string]string{
			"#lvl": "level",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":card_id": &types.AttributeValueMemberS{Value: cardID},
			":level":   &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", level)},
			":one":     &types.AttributeValueMemberN{Value: "1"},
		},
	}

	if _, err := s.Client.UpdateItem(ctx, input); err != nil {
		return fmt.Errorf("failed to deposit card into inventory: %w", err)
	}

	return nil
}

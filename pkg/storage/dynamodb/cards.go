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

const cardRarityIndex = "rarity-index"

// GetCard retrieves a catalog entry by card ID.
func (s *Store) GetCard(ctx context.Context, cardID string) (*models.Card, error) {
	key, err := attributevalue.MarshalMap(map[string]string{"card_id": cardID})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal card ID: %w", err)
	}

	result, err := s.Client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.CardsTableName),
		Key:       key,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get card from DynamoDB: %w", err)
	}

	if result.Item == nil {
		return nil, storage.ErrCardNotFound
	}

	var card models.Card
	if err := attributevalue.UnmarshalMap(result.Item, &card); err != nil {
		return nil, fmt.Errorf("failed to unmarshal card: %w", err)
	}

	return &card, nil
}

// ListCardsByRarity retrieves all catalog entries of the given rarity via the
// rarity GSI.
func (s *Store) ListCardsByRarity(ctx context.Context, rarity models.Rarity) ([]models.Card, error) {
	var cards []models.Card
	var startKey map[string]types.AttributeValue

	for {
		result, err := s.Client.Query(ctx, &dynamodb.QueryInput{
			TableName:              aws.String(s.CardsTableName),
			IndexName:              aws.String(cardRarityIndex),
			KeyConditionExpression: aws.String("rarity = :rarity"),
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":rarity": &types.AttributeValueMemberS{Value: string(rarity)},
			},
			ExclusiveStartKey: startKey,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to query cards by rarity: %w", err)
		}

		var page []models.Card
		if err := attributevalue.UnmarshalListOfMaps(result.Items, &page); err != nil {
			return nil, fmt.Errorf("failed to unmarshal cards: %w", err)
		}
		cards = append(cards, page...)

		if result.LastEvaluatedKey == nil {
			break
		}
		startKey = result.LastEvaluatedKey
	}

	return cards, nil
}

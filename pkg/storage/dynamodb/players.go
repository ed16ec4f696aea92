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

// scoreClampRetries bounds the two-step clamped decrement loop under
// concurrent score writes.
const scoreClampRetries = 3

// GetPlayer retrieves a user's balance row from DynamoDB.
func (s *Store) GetPlayer(ctx context.Context, userID string) (*models.Player, error) {
	key, err := attributevalue.MarshalMap(map[string]string{"user_id": userID})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal player user ID: %w", err)
	}

	result, err := s.Client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.PlayersTableName),
		Key:       key,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get player from DynamoDB: %w", err)
	}

	if result.Item == nil {
		return nil, storage.ErrPlayerNotFound
	}

	var player models.Player
	if err := attributevalue.UnmarshalMap(result.Item, &player); err != nil {
		return nil, fmt.Errorf("failed to unmarshal player: %w", err)
	}

	return &player, nil
}

// CreatePlayer creates a new balance row in DynamoDB.
func (s *Store) CreatePlayer(ctx context.Context, player *models.Player) (*models.Player, error) {
	playerAV, err := attributevalue.MarshalMap(player)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal player: %w", err)
	}

	input := &dynamodb.PutItemInput{
		TableName:           aws.String(s.PlayersTableName),
		Item:                playerAV,
		ConditionExpression: aws.String("attribute_not_exists(user_id)"), // Prevent overwriting existing players.
	}

	if _, err := s.Client.PutItem(ctx, input); err != nil {
		if isConditionalCheckFailed(err) {
			return nil, fmt.Errorf("player %s already exists", player.UserId)
		}
		return nil, fmt.Errorf("failed to create player in DynamoDB: %w", err)
	}

	return player, nil
}

// AdjustScore applies a score delta atomically. A negative delta never takes
// the stored score below zero: the decrement is conditioned on score >= |delta|
// and falls back to writing zero when the balance is smaller.
func (s *Store) AdjustScore(ctx context.Context, userID string, delta int64) error {
	if delta >= 0 {
		return s.updatePlayer(ctx, userID, &playerUpdate{
			expression: "ADD score :delta",
			values: map[string]types.AttributeValue{
				":delta": &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", delta)},
			},
		})
	}

	abs := -delta
	for attempt := 0; attempt < scoreClampRetries; attempt++ {
		err := s.updatePlayer(ctx, userID, &playerUpdate{
			expression: "SET score = score - :abs",
			condition:  "score >= :abs",
			values: map[string]types.AttributeValue{
				":abs": &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", abs)},
			},
		})
		if err == nil || !isConditionalCheckFailed(err) {
			return err
		}

		// Score is below |delta|: clamp to the floor instead. This write can
		// itself lose to a concurrent credit, in which case the plain
		// decrement is retried.
		err = s.updatePlayer(ctx, userID, &playerUpdate{
			expression: "SET score = :zero",
			condition:  "score < :abs",
			values: map[string]types.AttributeValue{
				":zero": &types.AttributeValueMemberN{Value: "0"},
				":abs":  &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", abs)},
			},
		})
		if err == nil || !isConditionalCheckFailed(err) {
			return err
		}
	}

	return fmt.Errorf("failed to adjust score for %s after %d attempts", userID, scoreClampRetries)
}

// AddTickets credits draw tickets atomically.
func (s *Store) AddTickets(ctx context.Context, userID string, tickets, eliteTickets int64) error {
	return s.updatePlayer(ctx, userID, &playerUpdate{
		expression: "ADD tickets :tickets, elite_tickets :elite",
		values: map[string]types.AttributeValue{
			":tickets": &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", tickets)},
			":elite":   &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", eliteTickets)},
		},
	})
}

// SpendTicket atomically decrements one ticket of the given tier.
func (s *Store) SpendTicket(ctx context.Context, userID string, tier storage.TicketTier) error {
	attr := "tickets"
	if tier == storage.TierElite {
		attr = "elite_tickets"
	}

	err := s.updatePlayer(ctx, userID, &playerUpdate{
		expression: fmt.Sprintf("SET %s = %s - :one", attr, attr),
		condition:  fmt.Sprintf("%s >= :one", attr),
		values: map[string]types.AttributeValue{
			":one": &types.AttributeValueMemberN{Value: "1"},
		},
	})
	if isConditionalCheckFailed(err) {
		// The existence guard and the balance check share one condition;
		// re-read to tell a missing row apart from an empty balance.
		if _, getErr := s.GetPlayer(ctx, userID); getErr != nil {
			return getErr
		}
		return storage.ErrNoTickets
	}
	return err
}

// IncrementSales bumps the seller's consecutive-sales counter.
func (s *Store) IncrementSales(ctx context.Context, userID string) error {
	return s.updatePlayer(ctx, userID, &playerUpdate{
		expression: "ADD sales_since_purchase :one",
		values: map[string]types.AttributeValue{
			":one": &types.AttributeValueMemberN{Value: "1"},
		},
	})
}

// ResetSales zeroes the buyer's consecutive-sales counter.
func (s *Store) ResetSales(ctx context.Context, userID string) error {
	return s.updatePlayer(ctx, userID, &playerUpdate{
		expression: "SET sales_since_purchase = :zero",
		values: map[string]types.AttributeValue{
			":zero": &types.AttributeValueMemberN{Value: "0"},
		},
	})
}

// playerUpdate describes one single-row conditional update on a balance row.
type playerUpdate struct {
	expression string
	condition  string
	values     map[string]types.AttributeValue
}

func (s *Store) updatePlayer(ctx context.Context, userID string, u *playerUpdate) error {
	condition := "attribute_exists(user_id)"
	if u.condition != "" {
		condition = condition + " AND " + u.condition
	}

	input := &dynamodb.UpdateItemInput{
		TableName: aws.String(s.PlayersTableName),
		Key: map[string]types.AttributeValue{
			"user_id": &types.AttributeValueMemberS{Value: userID},
		},
		UpdateExpression:          aws.String(u.expression),
		ConditionExpression:       aws.String(condition),
		ExpressionAttributeValues: u.values,
	}

	if _, err := s.Client.UpdateItem(ctx, input); err != nil {
		if isConditionalCheckFailed(err) {
			if u.condition == "" {
				// Only the existence guard can have failed.
				return storage.ErrPlayerNotFound
			}
			// Keep the raw conditional failure so callers can map it to their
			// own typed error (ErrNoTickets, clamp fallback).
			return err
		}
		return fmt.Errorf("failed to update player %s: %w", userID, err)
	}

	return nil
}

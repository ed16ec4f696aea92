package dynamodb

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/Denizbukut/TCG-sub001/pkg/models"
)

const tradePairIndex = "pair_key-ts_epoch-index"

// AppendTrade writes one record to the append-only trade ledger.
func (s *Store) AppendTrade(ctx context.Context, trade *models.TradeRecord) error {
	trade.PairKey = models.TradePairKey(trade.Seller, trade.Buyer)
	trade.TsEpoch = trade.Timestamp.UnixNano()

	tradeAV, err := attributevalue.MarshalMap(trade)
	if err != nil {
		return fmt.Errorf("failed to marshal trade record: %w", err)
	}

	input := &dynamodb.PutItemInput{
		TableName:           aws.String(s.TradesTableName),
		Item:                tradeAV,
		ConditionExpression: aws.String("attribute_not_exists(trade_id)"),
	}

	if _, err := s.Client.PutItem(ctx, input); err != nil {
		if isConditionalCheckFailed(err) {
			// Already recorded; re-appending the same trade ID is a no-op so
			// the reconciliation path stays idempotent.
			return nil
		}
		return fmt.Errorf("failed to append trade record: %w", err)
	}

	return nil
}

// CountPairTrades counts trades between the exact (seller, buyer) pair with a
// timestamp at or after since, via the pair GSI.
func (s *Store) CountPairTrades(ctx context.Context, seller, buyer string, since time.Time) (int, error) {
	var total int
	var startKey map[string]types.AttributeValue

	for {
		result, err := s.Client.Query(ctx, &dynamodb.QueryInput{
			TableName:              aws.String(s.TradesTableName),
			IndexName:              aws.String(tradePairIndex),
			KeyConditionExpression: aws.String("pair_key = :pair AND ts_epoch >= :since"),
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":pair":  &types.AttributeValueMemberS{Value: models.TradePairKey(seller, buyer)},
				":since": &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", since.UnixNano())},
			},
			Select:            types.SelectCount,
			ExclusiveStartKey: startKey,
		})
		if err != nil {
			return 0, fmt.Errorf("failed to query trade ledger: %w", err)
		}

		total += int(result.Count)
		if result.LastEvaluatedKey == nil {
			break
		}
		startKey = result.LastEvaluatedKey
	}

	return total, nil
}

package application

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Apurer/go-gin-order-lifecycle/internal/domains/orders/application/types"
	"github.com/Apurer/go-gin-order-lifecycle/internal/domains/orders/domain"
)

// BulkPolicy selects whether bulk updates honour the transition table.
type BulkPolicy string

const (
	// BulkPolicyEnforce checks every item against the transition table, like single updates.
	BulkPolicyEnforce BulkPolicy = "enforce"
	// BulkPolicyOverride skips the table so operators can force a status across a batch.
	BulkPolicyOverride BulkPolicy = "override"
)

// ParseBulkPolicy accepts the configured policy name.
func ParseBulkPolicy(raw string) (BulkPolicy, error) {
	switch p := BulkPolicy(strings.ToLower(strings.TrimSpace(raw))); p {
	case "":
		return BulkPolicyEnforce, nil
	case BulkPolicyEnforce, BulkPolicyOverride:
		return p, nil
	default:
		return "", fmt.Errorf("unknown bulk transition policy %q", raw)
	}
}

// BulkUpdateStatus applies one status to each order independently.
// Only an invalid status value or an empty batch fails the whole call.
func (s *Service) BulkUpdateStatus(ctx context.Context, input types.BulkUpdateInput) (*types.BulkResult, error) {
	if len(input.OrderIDs) == 0 {
		return nil, fmt.Errorf("%w: order_ids must not be empty", ErrInvalidInput)
	}
	next, err := domain.ValidateStatusValue(input.Status)
	if err != nil {
		return nil, mapError(err)
	}
	enforce := s.bulkPolicy != BulkPolicyOverride

	result := &types.BulkResult{Errors: []types.BulkItemError{}}
	for _, id := range input.OrderIDs {
		if err := s.authorize(ctx, input.Actor, id); err != nil {
			result.Errors = append(result.Errors, types.BulkItemError{OrderID: id, Error: bulkItemMessage(err)})
			continue
		}
		_, event, err := s.transition(ctx, input.Actor, id, next, input.Notes, domain.Shipment{}, enforce)
		if err != nil {
			s.logger.LogAttrs(ctx, slog.LevelInfo, "bulk status item rejected",
				slog.Int64("order.id", id), slog.String("status.to", string(next)), slog.String("error", err.Error()))
			result.Errors = append(result.Errors, types.BulkItemError{OrderID: id, Error: bulkItemMessage(err)})
			continue
		}
		if event == nil {
			continue
		}
		result.UpdatedCount++
		s.notify(ctx, event)
	}
	return result, nil
}

package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"lead_scoring_backend/internal/scoring/domain"
	"lead_scoring_backend/internal/scoring/transport"
	"lead_scoring_backend/platform/apperr"
)

// RecalculateAll rescores every lead with a bounded worker pool.
// One lead failing never stops the batch; failures are returned per lead.
func (s *Service) RecalculateAll(ctx context.Context, reason domain.ChangeReason) (*transport.RecalculateResponse, error) {
	if !reason.IsRecalculation() {
		return nil, apperr.Validation("invalid recalculation reason").With("reason", string(reason))
	}

	set, err := s.loadConfigSet(ctx)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	result := &transport.RecalculateResponse{Reason: string(reason), Errors: []transport.LeadErrorResponse{}}
	var mu sync.Mutex

	var g errgroup.Group
	g.SetLimit(s.opts.RecalcWorkers)

	cursor := uuid.Nil
	var pageErr error
	for ctx.Err() == nil {
		ids, err := s.repo.ListLeadIDs(ctx, cursor, leadPageSize)
		if err != nil {
			pageErr = apperr.Persistence("list leads", err).With("reason", string(reason))
			break
		}
		for _, id := range ids {
			id := id
			g.Go(func() error {
				out, err := s.calculate(ctx, id, set, CalculateOptions{Reason: reason, Actor: domain.SystemActor})

				mu.Lock()
				defer mu.Unlock()
				result.Processed++
				if err != nil {
					result.Errors = append(result.Errors, transport.LeadErrorResponse{
						LeadID:  id,
						Kind:    apperr.GetKind(err).String(),
						Message: err.Error(),
					})
					return nil
				}
				result.UpdatedCount++
				if out.changed {
					result.ChangedCount++
				}
				return nil
			})
		}
		if len(ids) < leadPageSize {
			break
		}
		cursor = ids[len(ids)-1]
	}
	_ = g.Wait()

	sort.Slice(result.Errors, func(i, j int) bool {
		return result.Errors[i].LeadID.String() < result.Errors[j].LeadID.String()
	})
	result.DurationMs = time.Since(start).Milliseconds()
	s.log.WithContext(ctx).BatchCompleted(result.Reason, result.Processed, result.UpdatedCount, len(result.Errors), result.DurationMs)

	if pageErr != nil {
		return result, pageErr
	}
	if err := ctx.Err(); err != nil {
		return result, err
	}
	return result, nil
}

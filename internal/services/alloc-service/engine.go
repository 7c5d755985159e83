package allocservice

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog/log"
)

var (
	// ErrEmptyScope is returned when the requested scope filters down to no
	// valid order line ids; no partial work is performed.
	ErrEmptyScope = errors.New("allocation scope contains no valid order line ids")
)

// EngineConfig holds the tunables of one engine instance.
type EngineConfig struct {
	// IterationCap bounds the run; hitting it is reported, not fatal.
	IterationCap int
}

const DefaultIterationCap = 20000

// Engine is the iterative greedy allocator. Each iteration picks the single
// globally best (line, receipt) pair and commits one ledger row, so bucket
// classification reacts to every partial fill before the next pick.
type Engine struct {
	store  Store
	config EngineConfig
}

func NewEngine(store Store) *Engine {
	return NewEngineWithConfig(store, EngineConfig{IterationCap: DefaultIterationCap})
}

func NewEngineWithConfig(store Store, config EngineConfig) *Engine {
	if config.IterationCap <= 0 {
		config.IterationCap = DefaultIterationCap
	}
	return &Engine{store: store, config: config}
}

// lineState tracks one line's remaining open quantity during a run.
type lineState struct {
	OrderLine
	remaining int
}

// Run clears the ledger for the scope and rebuilds it. The clear is
// transactional per call; the run as a whole is not atomic, and a crashed
// run is safe to simply re-run.
func (e *Engine) Run(ctx context.Context, scope Scope) (*Result, error) {
	lineIDs, err := e.resolveScope(ctx, scope)
	if err != nil {
		return nil, err
	}

	lines, err := e.store.LoadOrderLines(ctx, lineIDs)
	if err != nil {
		return nil, fmt.Errorf("load order lines: %w", err)
	}
	if len(lines) == 0 {
		return nil, ErrEmptyScope
	}

	if err := e.store.ClearLedger(ctx, lineIDs); err != nil {
		return nil, fmt.Errorf("clear ledger: %w", err)
	}

	itemIDs, skus := MatchKeys(lines)
	receipts, err := e.store.LoadInventory(ctx, itemIDs, skus)
	if err != nil {
		return nil, fmt.Errorf("load inventory: %w", err)
	}

	// Receipts consumed by other scopes stay excluded until their ledger
	// rows are cleared.
	allocated, err := e.store.AllocatedReceiptIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("load allocated receipts: %w", err)
	}

	index := NewInventoryIndex(receipts, allocated)

	states := make([]*lineState, 0, len(lines))
	for _, line := range lines {
		if line.OrderedQty < 0 {
			line.OrderedQty = 0
		}
		states = append(states, &lineState{OrderLine: line, remaining: line.OrderedQty})
	}
	sort.Slice(states, func(a, b int) bool {
		return states[a].OrderItemID < states[b].OrderItemID
	})

	result := &Result{}

	for {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}

		if result.Iterations >= e.config.IterationCap {
			result.HitCap = true
			log.Warn().
				Int("iterations", result.Iterations).
				Int("cap", e.config.IterationCap).
				Msg("allocation run hit the iteration cap")
			break
		}

		line, receipt := pickBest(states, index)
		if line == nil {
			break
		}

		qty := line.remaining
		if receipt.AvailableQty < qty {
			qty = receipt.AvailableQty
		}

		entry := LedgerEntry{
			OrderItemID:   line.OrderItemID,
			ReceiveItemID: receipt.ReceiveItemID,
			SuggAllocQty:  qty,
			CreatedAt:     time.Now().UTC(),
		}

		if err := e.store.CommitEntry(ctx, entry); err != nil {
			return result, fmt.Errorf("commit ledger entry: %w", err)
		}

		receipt.used = true
		line.remaining -= qty
		result.Iterations++
		result.AllocatedCount++
		result.AllocatedQty += qty
		result.Rows = append(result.Rows, entry)
	}

	sort.Slice(result.Rows, func(a, b int) bool {
		if result.Rows[a].OrderItemID != result.Rows[b].OrderItemID {
			return result.Rows[a].OrderItemID < result.Rows[b].OrderItemID
		}
		return result.Rows[a].ReceiveItemID < result.Rows[b].ReceiveItemID
	})

	for _, line := range states {
		result.Lines = append(result.Lines, LineResult{
			OrderItemID:  line.OrderItemID,
			OrderedQty:   line.OrderedQty,
			AllocatedQty: line.OrderedQty - line.remaining,
			RemainingQty: line.remaining,
		})
	}

	return result, nil
}

func (e *Engine) resolveScope(ctx context.Context, scope Scope) ([]int, error) {
	ids := make([]int, 0, len(scope.OrderItemIDs))
	seen := map[int]bool{}
	for _, id := range scope.OrderItemIDs {
		if id > 0 && !seen[id] {
			ids = append(ids, id)
			seen[id] = true
		}
	}

	if len(ids) == 0 && scope.OrderID > 0 {
		orderIDs, err := e.store.LineIDsForOrder(ctx, scope.OrderID)
		if err != nil {
			return nil, fmt.Errorf("resolve order scope: %w", err)
		}
		ids = orderIDs
	}

	if len(ids) == 0 {
		return nil, ErrEmptyScope
	}

	sort.Ints(ids)
	return ids, nil
}

// pickBest returns the globally best open (line, receipt) pair: lowest
// order item id first, then lowest bucket, then the bucket's quantity
// preference. Nil line means nothing is allocatable.
func pickBest(states []*lineState, index *InventoryIndex) (*lineState, *receiptState) {
	for _, line := range states {
		if line.remaining <= 0 {
			continue
		}

		candidates, _ := index.CandidatesFor(line.OrderLine)
		if len(candidates) == 0 {
			continue
		}

		best := candidates[0]
		bestBucket := bucketFor(line.remaining, best.AvailableQty, best.ReceivedQty, best.LocationName)
		for _, candidate := range candidates[1:] {
			bucket := bucketFor(line.remaining, candidate.AvailableQty, candidate.ReceivedQty, candidate.LocationName)
			if betterCandidate(bucket, candidate, bestBucket, best) {
				best, bestBucket = candidate, bucket
			}
		}

		return line, best
	}

	return nil, nil
}

// bucketFor classifies a candidate pair into one of the 8 priority buckets.
// The rows are evaluated in order and the first match wins; fully received
// means the receipt has never been partially drawn down outside the ledger.
func bucketFor(remaining, available, received int, location string) int {
	exact := remaining == available
	over := remaining > available
	fully := received == available
	locA := locationCodeA(location)

	switch {
	case fully && locA && exact:
		return 1
	case fully && !locA && exact:
		return 2
	case fully && !locA && over:
		return 3
	case fully && locA && over:
		return 4
	case !fully && locA && (exact || over):
		return 5
	case !fully && !locA && (exact || over):
		return 6
	case locA:
		return 7
	default:
		return 8
	}
}

// betterCandidate orders two candidates of the same line: lower bucket
// first; within buckets 1-6 the larger receipt wins, within 7-8 the smaller
// one; receipt id breaks the final tie so reruns stay deterministic.
func betterCandidate(bucket int, candidate *receiptState, bestBucket int, best *receiptState) bool {
	if bucket != bestBucket {
		return bucket < bestBucket
	}
	if candidate.AvailableQty != best.AvailableQty {
		if bucket <= 6 {
			return candidate.AvailableQty > best.AvailableQty
		}
		return candidate.AvailableQty < best.AvailableQty
	}
	return candidate.ReceiveItemID < best.ReceiveItemID
}

// locationCodeA reports whether the 4th character of the location code is
// 'A'. Codes shorter than 4 characters count as not-'A'.
func locationCodeA(location string) bool {
	return len(location) >= 4 && location[3] == 'A'
}

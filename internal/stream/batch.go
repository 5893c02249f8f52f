package stream

import "context"

// Batch regroups s into groups of exactly size items; the final group holds
// the remainder and is flushed once s completes. An empty input stream
// yields zero groups. The operator runs on a capacity-1 bridge, so the
// consumer pulling a group is the only thing that unblocks further
// accumulation and slow consumers throttle the upstream source.
//
// An error item on s propagates terminally and the partial batch
// accumulated so far is discarded.
func Batch[T any](ctx context.Context, s *Stream[T], size int) *Stream[[]T] {
	if size < 1 {
		size = 1
	}

	return Generate(1, func(tx Sender[[]T]) error {
		batch := make([]T, 0, size)

		for item := range s.Items() {
			if item.Err != nil {
				return item.Err
			}

			batch = append(batch, item.Value)
			if len(batch) == size {
				if err := tx.Send(ctx, batch); err != nil {
					return err
				}
				batch = make([]T, 0, size)
			}
		}

		if len(batch) > 0 {
			return tx.Send(ctx, batch)
		}
		return nil
	})
}

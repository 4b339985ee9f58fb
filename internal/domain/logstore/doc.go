// Package logstore holds the live trace log: an append-only text document
// fed one line at a time and cleared by reset events.
//
// Components:
//   - Store: the buffer and its two notification channels
//   - Subscription: a non-blocking, coalescing notification handle
//
// Reset cycle:
//
//	EMPTY --Append--> ACCUMULATING   first-content signal, no separator
//	ACCUMULATING --Append--> ACCUMULATING   "\n" separator
//	any --Reset--> EMPTY   always notifies
//
// Change notifications carry no payload. Subscribers re-read the buffer
// with Content or Snapshot. The first-content signal is a separate
// subscription so consumers that do not open views can ignore it.
//
// Example Usage:
//
//	store := logstore.New()
//	sub := store.Subscribe()
//	defer sub.Close()
//	for {
//		if _, err := sub.Next(ctx); err != nil {
//			return err
//		}
//		render(store.Snapshot())
//	}
package logstore

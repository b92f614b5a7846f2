// Package pulse implements an in-process publish/subscribe event bus with
// priority-tiered dispatch.
//
// Listeners subscribe to exact event names or wildcard patterns and are
// scheduled by priority tier when an event is published:
//
//   - Critical and High listeners run strictly sequentially in
//     (priority, identifier) order, each bounded by a configurable timeout.
//   - Normal listeners run concurrently; Publish waits for all of them.
//   - Low listeners are fire-and-forget background work; Publish returns
//     without waiting, and the bus keeps a handle to each task until it
//     completes.
//
// Every listener failure (returned error, panic, or timeout) is isolated at
// the single-listener boundary: it is counted, logged, optionally journaled,
// and surfaced to the Publish caller only as a nil slot in the result list.
// Nothing a listener does can abort dispatch for its siblings.
//
// Design Influences:
//   - Node.js EventEmitter (subscribe/unsubscribe/publish surface)
//   - Temporal signals (fire-and-forget dispatch)
//   - AWS EventBridge (per-handler failure isolation)
package pulse

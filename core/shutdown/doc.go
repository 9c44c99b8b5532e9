// Package shutdown provides cooperative cancellation and ordered cleanup:
// a clonable shutdown token propagated to spawned tasks, a graceful-shutdown
// coordinator with bounded cleanup, and a shutdown-aware task spawner.
//
// Basic usage:
//
//	import "github.com/all-source-os/allframe/core/shutdown"
//
//	gs := shutdown.New(shutdown.WithTimeout(30 * time.Second))
//	spawner := shutdown.NewSpawner(gs)
//
//	spawner.Spawn("message_consumer", func(ctx context.Context) {
//		for {
//			select {
//			case <-ctx.Done():
//				return
//			case msg := <-messages:
//				process(msg)
//			}
//		}
//	})
//
//	// On SIGINT/SIGTERM or an explicit trigger:
//	gs.Shutdown()
//	err := gs.PerformShutdown(context.Background(), func(ctx context.Context) error {
//		return pool.Close(ctx)
//	})
//
// Shutdown fires cancellation before cleanup begins, cleanup runs exactly
// once bounded by the timeout, and spawned tasks are never forcibly
// aborted: they observe cancellation through their context and return
// cooperatively.
package shutdown

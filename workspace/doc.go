// Package workspace implements the multi-document workspace engine: the
// in-memory registry of open documents and the session that coordinates
// every mutation against the remote workspace service.
//
// # Sessions
//
// A Session is constructed per open workspace and owns its Registry
// exclusively; no two sessions share state. Create a session against a
// backend and manipulate documents through it:
//
//	sess, err := workspace.Create(ctx, "review", layout.ModeGrid, geom.Size{Width: 1200, Height: 800}, workspace.Options{
//	    Service: client,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	doc, _ := sess.AddDocument(ctx, "/corpus/report.pdf")
//	_ = sess.MoveDocument(ctx, doc.ID, geom.Point{X: 40, Y: 40})
//
// # Degradation
//
// This is a local-first tool: when the backend is slow or unreachable,
// every operation falls back to a deterministic local mutation and the
// session stays usable. Fallback state is repaired wholesale by the next
// successful LoadState. Operations therefore only return errors for invalid
// parameters, never for remote failures.
//
// # Concurrency
//
// Operations are synchronous; two concurrent operations on one session
// resolve last-write-wins. Busy flags (IsLoading, IsSaving,
// IsTransitioning) are advisory, not locks.
package workspace

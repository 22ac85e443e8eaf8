// Package events publishes task domain events through the sidecar gateway.
// Each mutation of a task produces one envelope (the payload enriched with
// an event ID, event type and UTC timestamp) fanned out to the lifecycle
// audit topic and the live-sync topic. Publishing is best-effort and happens
// strictly after the store commit; a publish failure surfaces to the caller
// while the committed mutation stands.
package events

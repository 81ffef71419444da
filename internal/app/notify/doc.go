// Package notify decides who is notified about an event on a work item.
//
// The Engine combines five signals into one recipient set:
//   - the effective notification level of each user (project, then group,
//     then account default, then "participating")
//   - explicit subscriptions on the item and on its labels
//   - mentions in the event's text
//   - team membership and access tier
//   - confidentiality of the item
//
// Resolution runs as a fixed pipeline. Later stages can only remove users
// that earlier stages added:
//
//	A  collect candidates, each tagged with the reasons it was added
//	B  drop candidates whose reasons are not enough for their level
//	C  drop users with an explicit subscribed=false on the item
//	D  drop users who cannot read the item
//	E  drop the acting user
//	F  emit the remaining ids as a set
//
// Everything the engine knows about users, settings and subscriptions comes
// through the collaborator interfaces in collaborators.go. The engine never
// writes. A failing collaborator aborts the resolution with
// ErrCollaboratorUnavailable; no partial set is ever returned.
package notify

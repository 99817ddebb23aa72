// Package policy centralizes every role and ownership decision the
// services make. Handlers and services never compare role strings
// directly; they ask a named predicate here so a rule can only change in
// one place.
package policy

import (
	"context"

	"pousada/shared/constant"
)

// Actor is the authenticated identity performing a request.
type Actor struct {
	ID   string
	Role string
}

// FromContext rebuilds the actor from the values the auth middleware
// stored on the request context. A request that never passed the
// middleware yields a zero actor, which fails every predicate.
func FromContext(ctx context.Context) Actor {
	id, _ := ctx.Value(constant.ContextKeyUserID).(string)
	role, _ := ctx.Value(constant.ContextKeyUserRole).(string)

	return Actor{
		ID:   id,
		Role: role,
	}
}

func IsAdmin(actor Actor) bool {
	return actor.Role == constant.RoleAdmin
}

func IsOwner(actor Actor, ownerID string) bool {
	return actor.ID != constant.Empty && actor.ID == ownerID
}

func CanManageRooms(actor Actor) bool {
	return IsAdmin(actor)
}

func CanListAllReservations(actor Actor) bool {
	return IsAdmin(actor)
}

func CanUpdateReservation(actor Actor) bool {
	return IsAdmin(actor)
}

func CanDeleteReservation(actor Actor, ownerID string) bool {
	return IsAdmin(actor) || IsOwner(actor, ownerID)
}

func CanManageUser(actor Actor, userID string) bool {
	return IsAdmin(actor) || IsOwner(actor, userID)
}

func CanListUsers(actor Actor) bool {
	return IsAdmin(actor)
}

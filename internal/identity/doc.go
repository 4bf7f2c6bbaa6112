// Package identity holds herosg's account model and persistence boundary.
//
// The three account roles (user, partner, admin) are structurally identical
// for authentication purposes and share one store; role-specific profile
// fields are optional columns, not separate code paths.
package identity

// Package models defines the core domain models for Convoy.
//
// # Model overview
//
//   - User: a registered account with profile fields and an avatar URL
//   - Group: a travel party with a join code, a leader, members, and
//     pending join requests
//   - UserLocation: the last known device position for a user
//   - MemberLocation: a read-time join of a group member with their
//     last known position (never persisted)
//   - Marker: a user-placed map point that members can adopt as a
//     navigation waypoint
//   - Destination / Category: reference data for destination groups
//   - RouteInfo: a computed navigation route for one member (never
//     persisted; recomputed on every journey tick)
//
// # Design principles
//
//  1. Relationships use ID strings, never struct pointers, to avoid
//     circular references.
//  2. Timestamps are Unix seconds (int64) throughout.
//  3. Ephemeral values (MemberLocation, RouteInfo, journey state) are
//     plain structs with no storage representation.
package models

// Package models defines domain entities and persistence interfaces for the PPE inspection client.
//
// The package contains one persistent entity:
//   - [Session] : The authenticated account, kept between CLI invocations
//
// All persistent entities implement the Model interface providing ID generation, timestamps, validation, and soft delete support.
// The Repository[T] interface defines standard CRUD operations for database access.
package models

// Package domain contains the core domain entities and value objects for streamship.
//
// This package represents the innermost layer of the Clean Architecture. It has
// no dependencies on infrastructure concerns (HTTP, logging) and contains only
// the types exchanged between pipeline stages.
//
// # Entities
//
//   - [EventBatch]: One decoded batch from the consumption stream (cursor, events, info)
//   - [Cursor]: Broker-issued position marker carried with each batch
//   - [Signal]: Control messages of the acknowledgment handshake
//   - [StreamParams]: Parameters of a consumption request
//
// # Design Principles
//
// Domain entities are:
//   - Immutable after construction (where practical)
//   - Free of infrastructure dependencies
//   - Testable without mocks or external systems
package domain

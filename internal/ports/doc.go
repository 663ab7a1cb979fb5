// Package ports defines the interfaces (ports) that connect the application
// layer to infrastructure adapters.
//
// Ports are the boundaries between the streaming core and the outside world.
// They describe what the core needs from external collaborators without
// specifying how those needs are fulfilled.
//
// # Port Interfaces
//
//   - [HTTPClient]: Request/response exchange with the broker
//   - [TokenProvider]: Bearer token for each request
//   - [Endpoints]: URL templating for consume and publish endpoints
//   - [Receiver] and [Mailbox]: The acknowledgment handshake with the consumer
//   - [Observer]: Pipeline events for metrics
//   - [Logger]: Structured logging abstraction
//
// # Usage
//
// The application layer (internal/app) depends only on these interfaces.
// Infrastructure adapters (internal/adapters) implement them with concrete
// implementations (net/http, oauth2, zerolog, prometheus).
package ports

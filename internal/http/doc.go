// Package http provides HTTP handlers and middleware for the seating API.
//
// The router exposes the following endpoints:
//   - POST /login: issues a session token. Body: {"password"}. Response:
//     {"token","expires_at"} with token also surfaced via the
//     `X-Session-Token` header and a `session_token` cookie.
//   - POST /logout: revokes the current session token extracted from the
//     Authorization header or session cookie. Returns 204 No Content and
//     clears the cookie.
//   - POST /rsvp/register: access-code gated public guest registration.
//   - GET /rsvp/{code}, POST /rsvp/{code}: invitation lookup and attendance
//     confirmation for the public RSVP form.
//   - GET /healthz, GET /metrics: liveness and Prometheus scrape endpoints.
//   - GET /guests, POST /guests, GET/PUT/DELETE /guests/{id}: guest registry
//     endpoints exchanging the `guestDTO` payload defined in guest_handler.go.
//     GET /guests/{id}/badge returns the guest's QR badge as a PNG.
//   - GET /tables, POST /tables, GET/PUT/DELETE /tables/{id}: table catalog
//     endpoints exchanging the `tableDTO` payload defined in table_handler.go.
//     GET /tables/{id}/next-seat returns the lowest free seat number.
//   - POST /assignments, GET/DELETE /assignments/{guestId}: seat assignment
//     endpoints. POST /moves reseats a guest at another table's next free seat.
//   - GET /views/tables, GET /views/guests: the occupancy and guest status
//     projections consumed by every operator screen.
//   - POST /checkins/{guestId}, DELETE /checkins/{guestId}: idempotent guest
//     check-in and check-out. POST /scans resolves a badge payload and checks
//     the guest in, returning their seat summary.
//   - GET /access-codes, POST /access-codes: administrator management of the
//     shared codes gating public registration.
//
// Request/response DTOs live alongside their respective handlers so tests and
// documentation share the same ground truth.
package http

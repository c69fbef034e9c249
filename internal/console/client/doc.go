// Package client is the console's transport to the authoritative store.
//
// The Client interface covers every remote operation the console performs;
// HTTPClient is the production implementation. It injects the bearer access
// token and tenant header on authenticated calls, and transparently refreshes
// an expired access token exactly once per failed request. Concurrent callers
// that all observe an expired credential share a single refresh round trip.
//
// The client only moves bytes and maps status codes to sentinel errors; it
// never mutates console state beyond the token store.
package client

// Package source is the read-only client for the Cobalto facilities API.
//
// A single GET returns the whole compartimento grid (rows=-1, sorted by
// compartimento id and name, search disabled). The optional PHPSESSID cookie
// authenticates the request. The body must be an object whose "rows" field is a
// list of flat objects; anything else yields ErrInvalidPayload.
//
// The Client interface keeps the sync pipeline independent from HTTP and lets
// tests substitute core/source/mocks.
//
// # Usage
//
//	client, err := source.NewClient(cfg.Cobalto, logger)
//	payload, err := client.Fetch(ctx)
//	for _, row := range payload.Rows { ... }
package source

// Package esi is a client for the EVE Online ESI REST API.
//
// # Overview
//
// Every ESI operation is addressed by its route id (the swagger operation id,
// e.g. "get_alliances_alliance_id"). All calls go through one Agent, which
// adds caching, coalescing of identical in-flight requests, rate limiting and
// bearer tokens. Per-resource helpers are thin callers of Agent.Request.
//
//	agent, err := esi.New(&esi.Config{UserAgent: "my-app (me@example.com)"})
//	if err != nil { log.Fatal(err) }
//	defer agent.Close()
//
//	resp, err := agent.Request(ctx, "get_alliances_alliance_id",
//	  &esi.Params{Path: map[string]any{"alliance_id": 99000006}}, "")
//	if err != nil { log.Fatal(err) }
//
//	var alliance esi.Alliance
//	_ = resp.Decode(&alliance)
//
// or with the typed helper:
//
//	status, err := esi.Do[esi.ServerStatus](ctx, agent, "get_status", nil, "")
//
// # Caching
//
// A call is identified by its Request Key: route id, parameters serialized
// with sorted keys, and token. While a request for a key is in flight, every
// other call with that key waits on the same Future. Successful responses are
// cached until Cache-Control max-age or Expires, falling back to
// Config.DefaultTTL. Transport and HTTP status failures are cached for
// Config.ErrorTTL (or Retry-After) unless Config.DisableErrorCaching is set.
// Unknown routes and undecodable bodies are never cached.
//
// A Store adds a second tier shared beyond the agent: MemoryStore,
// NATSKVStore (JetStream key-value), LevelDBStore, or a StoreChain of them.
//
// # Errors
//
// Failures are UnknownRouteError, TransportError, HTTPStatusError or
// DecodeError. Helpers such as IsNotFound, IsForbidden and IsErrorLimited
// branch on common ESI cases. The agent never retries.
//
// # Observability
//
// Set Config.MetricsRegisterer to export Prometheus collectors and
// Config.TracerProvider (or the global OpenTelemetry provider) to trace
// each network dispatch.
package esi

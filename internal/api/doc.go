// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package api is the client for the matchup answer service.
//
// # Key Types
//
//   - Client: HTTP client for POST /chat and GET /health
//   - ChatRequest / ChatResponse: wire format of the ask call
//   - APIError: non-2xx response with the service's detail text
//
// # Usage
//
//	client := api.NewClient("http://localhost:8000")
//	resp, err := client.Ask(ctx, "양현종이 삼진을 많이 잡을 수 있는 타자는?")
//	reply := api.Settlement(resp, err) // apology message on any error
//
// # Behaviour
//
// Ask makes exactly one attempt and sets no deadline of its own; the caller's
// context is the only way to bound it. Request and response bodies are never
// logged.
package api

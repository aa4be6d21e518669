// Package http implements the HTTP handlers of the GHG Pulse API.
// Handlers are a thin layer between the chi router and the services:
// they decode and validate requests, call the report service and render
// responses. Business rules live in the services and below.
//
// # Routes
//
// Mounted under /api/v1:
//
//	POST /emissions/evaluate   JSON records -> JSON evaluation
//	POST /emissions/report     JSON records -> xlsx (or ?format=csv|json)
//	POST /emissions/upload     multipart dataset -> xlsx (or format=json|csv)
//	GET  /compliance/tiers     tier legend and thresholds
//	GET  /health, /health/ready, /health/live, /version
//
// The event stream is served by WebSocketHandler at /ws.
//
// # Errors
//
// Every error is handed to errors.ErrorHandler, which renders RFC 7807
// problem details. Dataset problems surface as 422, rejected input as 400.
package http

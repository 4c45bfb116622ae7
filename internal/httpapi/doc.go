// Package httpapi serves the public JSON API consumed by the mobile apps.
//
// Every REST route sits behind a shared request timeout; the websocket
// stream route does not, because the timeout middleware would sever
// long-lived connections. Failures share one envelope:
//
//	{"error": {"code": "...", "message": "..."}, "request_id": "..."}
package httpapi

// Package server exposes expansion and binding over HTTP.
//
// Routes:
//
//	POST /expand           {"expression": "...", "data": {...}, "format": "html|yaml"}
//	POST /bind             {"view": "<ul ...>", "template": "id", "data": {...}}
//	GET  /templates        registered template and conditional map ids
//	GET  /templates/{id}   one template body
//	GET  /preview?expr=... an HTML5 page showing the expansion
//	GET  /metrics          Prometheus metrics
//
// Every response carries an X-Request-ID header, echoed from the request
// when present.
package server

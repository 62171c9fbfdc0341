// Package http provides the HTTP surface of contentd.
//
// The router is a fixed go-chi table:
//
//	GET  /             200 "default endpoint"
//	GET  /newEndpoint  200 "different endpoint"
//	GET  /download     content of the file or directory named by ?param=
//	POST /upload_creds 200 "Received body: <body>"
//	GET  /attachment   configured file as application/octet-stream (optional)
//
// Anything else, including a known path with another method, receives
// 404 with an empty body.
//
// # Errors
//
// Download failures of every kind (missing, permission, unreadable,
// invalid UTF-8, outside the root) are written as an empty 404; the
// category only reaches the contentd.Reporter. Upload failures are JSON:
//
//	400 {"error":"invalid_body",...}    body is not valid UTF-8
//	413 {"error":"body_too_large",...}  body exceeds MaxUploadSize
//
// # Usage
//
//	handlerCfg := http.HandlerConfig{
//	    AttachmentRoute: http.AttachmentPath,
//	    MaxUploadSize:   1 << 20,
//	}
//	handler := http.NewHandler(&handlerCfg, service)
//	http.ListenAndServe(":9091", handler.Router())
//
// # Middleware
//
// RequestLogger assigns an X-Request-ID and logs every request through
// log/slog. AuthMiddleware consults an optional RequestVerifier before the
// download routes run; nil keeps them public.
package http

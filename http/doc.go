// Package http provides the HTTP surface of filedrop.
//
// # Routes
//
//	PUT /{name}       store the request body, reply 201 with a curl command
//	GET /get/{name}   stream a stored file, or 404
//	GET /             400 with a usage hint
//
// Upload bodies are capped by BodyLimitMiddleware: a declared Content-Length
// over the limit is refused with 413 before the handler runs, and undeclared
// lengths are enforced while streaming, in which case the partial upload is
// discarded by the storage layer.
//
// All replies are plain text and never include file system paths or OS error
// text; the cause of a failure is only logged. Uploads that send
// "Accept: application/json" receive an UploadResponse instead of the banner.
//
// # Usage
//
//	handlerCfg := http.HandlerConfig{
//	    PublicHost:    cfg.PublicHostString(),
//	    MaxBodyBytes:  cfg.MaxBodyBytes(),
//	    AllowUpload:   true,
//	    AllowDownload: true,
//	}
//	handler := http.NewHandler(&handlerCfg, service, logger)
//	server := &http.Server{Handler: handler.Router()}
package http

// Package filedrop provides a minimal file drop service: clients upload a
// file under a name of their choosing and get back a URL that retrieves it.
//
// Every upload is stored under a fresh storage name made of a short random
// token and the requested name, so two uploads of "report.pdf" never collide.
// No metadata is kept beyond the file itself.
//
// # Key Components
//
//   - DropService: upload and download operations over a FileStorage
//   - FileStorage: interface for file operations (see the filesystem package)
//   - GenerateStorageName: random token prefixing for requested names
//   - IsValidName: rejects names that could escape the storage directory
//
// # Example Usage
//
//	root, err := os.OpenRoot("storage")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	service, err := filedrop.NewDropService(filesystem.NewFileStorage(root), logger)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Upload
//	result, err := service.Upload(ctx, "report.pdf", body)
//
//	// Download by the returned storage name
//	obj, err := service.Download(ctx, result.StorageName)
//
// See the http package for the HTTP surface and the config package for
// configuration resolution.
package filedrop

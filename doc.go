// Package contentd resolves client-supplied identifiers to content under a
// configured root directory.
//
// An identifier taken from a query parameter is appended to the root,
// canonicalized and rejected if it leaves the root. A regular file is
// returned as UTF-8 text. A directory is returned as the concatenation of
// the regular files directly inside it, each followed by a newline; files
// that cannot be opened, read or decoded are skipped.
//
// # Key Components
//
//   - PathResolver: query parameter to root-relative name
//   - ContentStore: filesystem classification and reads (see package filesystem)
//   - Service: combines the two and reports every outcome to a Reporter
//   - Reporter: structured logging collaborator (SlogReporter by default)
//
// # Errors
//
// Failures wrap one of ErrNotFound, ErrPermission, ErrRead, ErrDecode or
// ErrOutsideRoot. The http package maps all of them to the same empty 404;
// the category is only visible to the Reporter.
//
// # Example Usage
//
//	root, err := os.OpenRoot("./data")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	store := filesystem.NewStore(root)
//
//	service, err := contentd.NewService(contentd.ServiceConfig{
//	    Resolver: contentd.ResolverConfig{Param: "param", Default: "default"},
//	}, store, contentd.NewSlogReporter(nil))
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	content, err := service.Download(ctx, url.Values{"param": {"notes"}})
package contentd

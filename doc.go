// Package anaconda is a client for anaconda.org style package
// repositories: authentication, package/release/distribution CRUD,
// search, download, and staged multipart upload.
//
// This package provides the high-level API through [Client]. The
// low-level REST transport lives in the [rest] subpackage; the streaming
// multipart encoder used for the storage leg of uploads lives in
// [formstream].
//
// # Quick Start
//
// Upload a distribution to a package release:
//
//	c, err := anaconda.New(anaconda.WithToken(token))
//	if err != nil {
//	    return err
//	}
//	f, err := os.Open("demo-1.0-py311_0.tar.bz2")
//	if err != nil {
//	    return err
//	}
//	defer f.Close()
//	result, err := c.Upload(ctx, anaconda.UploadRequest{
//	    Owner:    "myorg",
//	    Package:  "demo",
//	    Release:  "1.0",
//	    Basename: "demo-1.0-py311_0.tar.bz2",
//	    Content:  f,
//	})
//
// The upload runs in three sequential phases: a stage call that returns a
// presigned storage target, a streamed multipart POST to that target, and
// a commit call that finalizes the release file. A failure in the storage
// phase leaves the staged entry orphaned server-side; re-running Upload
// always starts a fresh stage.
//
// # Downloads
//
// Download returns a streaming handle, or nil when the server reports the
// cached copy identified by md5 is still current:
//
//	dl, err := c.Download(ctx, "myorg", "demo", "1.0", "demo-1.0-py311_0.tar.bz2",
//	    anaconda.DownloadWithMD5(cachedMD5),
//	)
//	if err != nil {
//	    return err
//	}
//	if dl == nil {
//	    return nil // cache still valid
//	}
//	defer dl.Body.Close()
package anaconda

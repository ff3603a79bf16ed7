package rest

import (
	"net/http"

	"github.com/Masterminds/semver/v3"
)

// checkVersionSkew compares the server's advertised API version against
// APIVersion and emits an upgrade hint when the server is newer. The
// comparison is semantic, not lexical, so "0.10" correctly orders after
// "0.9". Unparseable or missing versions are ignored; skew is never an
// error.
func (c *Client) checkVersionSkew(resp *http.Response) {
	serverVersion := resp.Header.Get(versionHeader)
	if serverVersion == "" {
		return
	}
	sv, err := semver.NewVersion(serverVersion)
	if err != nil {
		return
	}
	cv, err := semver.NewVersion(APIVersion)
	if err != nil {
		return
	}
	if !sv.GreaterThan(cv) {
		return
	}

	c.log().Warn("api server is newer than this client, consider upgrading",
		"server_version", serverVersion,
		"client_version", APIVersion)
	if c.onVersionSkew != nil {
		c.onVersionSkew(serverVersion)
	}
}

// Package version reports the restclient build version.
//
// Version can be stamped at build time:
//
//	go build -ldflags "-X github.com/kbukum/restclient/version.Version=1.2.0"
//
// Otherwise it is taken from the module build info when restclient is used
// as a dependency.
package version

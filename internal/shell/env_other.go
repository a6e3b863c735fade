//go:build !windows

package shell

import "errors"

var errNotWindows = errors.New("user environment registry is only available on Windows")

func setUserEnv(string, string) error {
	return errNotWindows
}

func prependUserPath(string) error {
	return errNotWindows
}

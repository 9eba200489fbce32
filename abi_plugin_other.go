//go:build !linux

package capsule

import "errors"

// ErrPluginsUnsupported is returned by LoadPlugin on platforms the
// standard library's plugin package does not support.
var ErrPluginsUnsupported = errors.New("capsule: dynamic plugin loading requires linux")

// LoadPlugin is unavailable outside linux; see abi_plugin_linux.go.
func LoadPlugin(path string) (RegisterPluginFunc, error) {
	return nil, ErrPluginsUnsupported
}

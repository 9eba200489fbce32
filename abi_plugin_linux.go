//go:build linux

package capsule

import (
	"fmt"
	"plugin"
)

// LoadPlugin opens a shared object built with `go build -buildmode=plugin`
// and looks up its exported RegisterPlugin symbol, which must have type
// func(*capsule.Collection). Go's plugin package only ships on Linux
// and requires the plugin and host to have been built against identical
// module versions and toolchains — the practical reason NewABIStable's
// structural identity exists at all, since reflect.Type values from two
// separately compiled binaries are never equal even for what a human
// would call "the same type".
func LoadPlugin(path string) (RegisterPluginFunc, error) {
	p, err := plugin.Open(path)
	if err != nil {
		return nil, fmt.Errorf("capsule: opening plugin %s: %w", path, err)
	}
	sym, err := p.Lookup("RegisterPlugin")
	if err != nil {
		return nil, fmt.Errorf("capsule: plugin %s has no RegisterPlugin symbol: %w", path, err)
	}
	fn, ok := sym.(func(*Collection))
	if !ok {
		return nil, fmt.Errorf("capsule: plugin %s RegisterPlugin has the wrong signature", path)
	}
	return fn, nil
}

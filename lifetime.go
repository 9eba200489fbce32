package capsule

import (
	"fmt"
	"strings"
)

// lifetimeFinding is one leaked reference discovered while closing a
// provider: a RegisterShared/RegisterDepShared instance with
// outstanding Clones still live elsewhere. The zero value means
// "nothing to report" — auditors return it unconditionally and callers
// filter on SharedInstanceLeak.
type lifetimeFinding struct {
	TypeName           string
	RemainingRefs      int32
	SharedInstanceLeak bool
}

func (f lifetimeFinding) isEmpty() bool {
	return !f.SharedInstanceLeak
}

func (f lifetimeFinding) String() string {
	if !f.SharedInstanceLeak {
		return ""
	}
	return fmt.Sprintf("%s: %d strong reference(s) still outstanding after provider close", f.TypeName, f.RemainingRefs)
}

// ErrorHandler is called with every finding the lifetime guard produces
// when a provider is closed with outstanding references. The default
// panics. Rust's equivalent default_error_handler additionally checks
// std::thread::panicking() to avoid masking an in-flight panic; Go
// exposes no public API to detect that a panic is already unwinding
// outside of a deferred recover(), so the default here always panics.
// Code that calls Close from its own deferred recover should install a
// log-only handler with SetErrorHandler first.
var ErrorHandler func(findings []lifetimeFinding) = defaultErrorHandler

// SetErrorHandler replaces the lifetime guard's error handler.
func SetErrorHandler(h func(findings []lifetimeFinding)) {
	if h == nil {
		h = defaultErrorHandler
	}
	ErrorHandler = h
}

func defaultErrorHandler(findings []lifetimeFinding) {
	lines := make([]string, len(findings))
	for i, f := range findings {
		lines[i] = f.String()
	}
	panic("capsule: provider closed with outstanding references:\n" + strings.Join(lines, "\n"))
}

// Close runs the lifetime audit and releases every shared slot's own
// strong reference. It is the Go realization of dropping a
// ServiceProvider: Rust's Drop runs this automatically, Go has no
// equivalent, so callers that want the guarantee call Close explicitly
// (typically via defer, right after Build). Close is idempotent; the
// audit only ever runs once per provider.
//
// Any finding — a RegisterShared/RegisterDepShared instance some caller
// is still holding a Clone of — is reported through ErrorHandler.
// log.Error records the same findings unconditionally, even if
// ErrorHandler chooses not to panic.
func (p *Provider) Close() {
	if !p.closed.CompareAndSwap(false, true) {
		return
	}

	var findings []lifetimeFinding
	for _, audit := range p.auditors {
		if f := audit(p); !f.isEmpty() {
			findings = append(findings, f)
		}
	}

	if len(findings) == 0 {
		met.Count("capsule.provider.closed", 1, "leaked", "false")
		return
	}

	met.Count("capsule.provider.closed", 1, "leaked", "true")
	for _, f := range findings {
		log.Error("capsule: provider closed with a dangling reference", "finding", f.String())
	}
	ErrorHandler(findings)
}

package capsule

import logger "github.com/xraph/go-utils/log"

// log is the package-level logging seam. It defaults to a no-op so the
// container never forces a logging backend on callers who don't
// configure one, mirroring the teacher's GetLogger/logger.Logger seam
// (see the teacher's helpers.go) but pushed to package scope since this
// container has no central struct to resolve a logger from — it is the
// thing components get wired through, not a component itself.
var log logger.Logger = noopLogger{}

// SetLogger replaces the package-level logger. The lifetime guard
// (Provider.Close) reports its audit findings through it; the validator
// does not log.
func SetLogger(l logger.Logger) {
	if l == nil {
		l = noopLogger{}
	}
	log = l
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

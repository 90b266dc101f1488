package report

import "sync"

// Reporter is responsible for reporting errors, warnings, and advisory
// messages to the user during transpilation.  The reporter respects the set
// log level and is synchronized: its methods can be safely called from the
// goroutines translating different functions in parallel.
type Reporter struct {
	// The mutex used to synchronize different report method calls.
	m *sync.Mutex

	// The selected log level of the reporter.  This must be one of the
	// enumerated log levels below.
	logLevel int

	// errors accumulates every non-advisory error reported so far, in report
	// order.
	errors []TranspileError

	// warnings accumulates advisory messages so they can be flushed at the end
	// of transpilation.
	warnings []TranspileError
}

// Enumeration of the different possible log levels.
const (
	LogLevelSilent  = iota // Displays no output.
	LogLevelError          // Displays only errors to the user.
	LogLevelWarn           // Displays only warnings and errors to the user.
	LogLevelVerbose        // Displays all transpilation messages to the user (default).
)

// NewReporter creates a reporter with the given log level.
func NewReporter(logLevel int) *Reporter {
	return &Reporter{
		m:        &sync.Mutex{},
		logLevel: logLevel,
	}
}

// ReportError records a transpilation error and displays it if the log level
// permits.  The fileName is the representative name of the Python source file.
func (r *Reporter) ReportError(fileName string, err TranspileError) {
	r.m.Lock()
	defer r.m.Unlock()

	r.errors = append(r.errors, err)

	if r.logLevel >= LogLevelError {
		displayError(fileName, err)
	}
}

// ReportWarning records an advisory message such as a borrow conflict and
// displays it if the log level permits.
func (r *Reporter) ReportWarning(fileName string, err TranspileError) {
	r.m.Lock()
	defer r.m.Unlock()

	r.warnings = append(r.warnings, err)

	if r.logLevel >= LogLevelWarn {
		displayWarning(fileName, err)
	}
}

// ReportPhase displays an informational phase message.  These only appear at
// the verbose log level.
func (r *Reporter) ReportPhase(msg string) {
	r.m.Lock()
	defer r.m.Unlock()

	if r.logLevel >= LogLevelVerbose {
		displayPhase(msg)
	}
}

// AnyErrors returns whether or not any errors were reported.
func (r *Reporter) AnyErrors() bool {
	r.m.Lock()
	defer r.m.Unlock()

	return len(r.errors) > 0
}

// Errors returns the accumulated errors in report order.
func (r *Reporter) Errors() []TranspileError {
	r.m.Lock()
	defer r.m.Unlock()

	return append([]TranspileError(nil), r.errors...)
}

// Warnings returns the accumulated advisory messages in report order.
func (r *Reporter) Warnings() []TranspileError {
	r.m.Lock()
	defer r.m.Unlock()

	return append([]TranspileError(nil), r.warnings...)
}

package vantage

import "fmt"

// SubmissionError reports an upload rejected by the service. The
// message is surfaced verbatim from the service when available.
type SubmissionError struct {
	Message string
}

func (e *SubmissionError) Error() string {
	return "submission rejected: " + e.Message
}

// NotFoundError reports an unknown analysis id.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("analysis %s not found", e.ID)
}

// TransportError reports a network or service-level failure.
type TransportError struct {
	Op         string
	StatusCode int
	Message    string
	Err        error
}

func (e *TransportError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	if e.Message != "" {
		return fmt.Sprintf("%s: %s (status %d)", e.Op, e.Message, e.StatusCode)
	}
	return fmt.Sprintf("%s: service returned status %d", e.Op, e.StatusCode)
}

func (e *TransportError) Unwrap() error { return e.Err }

// PollingTimeoutError reports that an analysis never reached a terminal
// state within the attempt budget. It is a recorded, non-fatal state.
type PollingTimeoutError struct {
	ID       string
	Attempts int
}

func (e *PollingTimeoutError) Error() string {
	return fmt.Sprintf("analysis %s still processing after %d polls", e.ID, e.Attempts)
}

// ReportGenerationError reports that the service could not produce a
// report, e.g. because the analysis is not completed.
type ReportGenerationError struct {
	Message string
}

func (e *ReportGenerationError) Error() string {
	return "report generation failed: " + e.Message
}

package document

// OutputState describes how an executable block was resolved.
type OutputState int

const (
	// NotExecuted means the block carried no execute directive.
	NotExecuted OutputState = iota
	// Executed means the subprocess ran to completion with exit 0.
	Executed
	// Failed means the block produced a block-local error annotation.
	Failed
)

// FailureKind classifies block-local execution failures.
type FailureKind int

const (
	FailureNone FailureKind = iota
	// FailureExec is a non-zero exit or runtime failure.
	FailureExec
	// FailureTimeout means the wall-clock budget was exceeded.
	FailureTimeout
	// FailureLanguage means the directive named an unknown language.
	FailureLanguage
)

func (k FailureKind) String() string {
	switch k {
	case FailureExec:
		return "execution failed"
	case FailureTimeout:
		return "timed out"
	case FailureLanguage:
		return "unsupported language"
	default:
		return "ok"
	}
}

// Output is the resolved result of an executable code block.
type Output struct {
	State OutputState

	// Text is the captured stdout+stderr in arrival order.
	Text string
	// Artifacts are build-dir-relative paths of files the snippet wrote.
	Artifacts []string
	// ExitCode of the subprocess; meaningful for Executed and FailureExec.
	ExitCode int

	Failure FailureKind
	// Message describes the failure for the inline annotation.
	Message string
	// FromCache marks results reused from the persisted store.
	FromCache bool
}

package errors

// ErrorCode represents a unique error identifier
type ErrorCode int

// Error code ranges allocation:
// 10000-10999: System & Common errors
// 11000-11999: Test data errors
// 12000-12999: Build & Compile errors
// 13000-13999: Execution errors
// 14000-14999: Comparison & Checker errors

const (
	// ========== System & Common Errors (10000-10999) ==========

	// Success
	Success ErrorCode = 10000

	// Generic errors (10000-10099)
	SystemError   ErrorCode = 10001
	InvalidParams ErrorCode = 10002
	NotFound      ErrorCode = 10003
	Timeout       ErrorCode = 10004
	Canceled      ErrorCode = 10005

	// Configuration errors (10100-10199)
	ConfigError     ErrorCode = 10100
	ConfigNotFound  ErrorCode = 10101
	ConfigParseFail ErrorCode = 10102

	// Validation errors (10300-10399)
	ValidationFailed   ErrorCode = 10300
	InvalidFormat      ErrorCode = 10301
	InvalidValue       ErrorCode = 10302
	RequiredFieldEmpty ErrorCode = 10303

	// ========== Test Data Errors (11000-11999) ==========

	// Discovery (11000-11099)
	DiscoveryFailed ErrorCode = 11000
	TestRootMissing ErrorCode = 11001
	NoTestCases     ErrorCode = 11002
	TestCaseInvalid ErrorCode = 11003

	// Pack import (11100-11199)
	PackInvalid       ErrorCode = 11100
	PackExtractFailed ErrorCode = 11101
	PackUnsafePath    ErrorCode = 11102

	// ========== Build & Compile Errors (12000-12999) ==========

	LanguageNotSupported   ErrorCode = 12000
	CompilationError       ErrorCode = 12001
	SourceNotFound         ErrorCode = 12002
	InvalidCommandTemplate ErrorCode = 12003

	// ========== Execution Errors (13000-13999) ==========

	ExecutionFailed    ErrorCode = 13000
	RuntimeError       ErrorCode = 13001
	TimeLimitExceeded  ErrorCode = 13002
	ProcessStartFailed ErrorCode = 13003
	WorkspaceError     ErrorCode = 13004

	// ========== Comparison & Checker Errors (14000-14999) ==========

	WrongAnswer     ErrorCode = 14000
	CheckerError    ErrorCode = 14001
	CheckerNotFound ErrorCode = 14002
	UnknownStrategy ErrorCode = 14003
)

// errorMessages maps error codes to their default English messages
var errorMessages = map[ErrorCode]string{
	// System & Common
	Success:       "Success",
	SystemError:   "Judge system error",
	InvalidParams: "Invalid parameters",
	NotFound:      "Resource not found",
	Timeout:       "Operation timed out",
	Canceled:      "Operation canceled",

	// Configuration
	ConfigError:     "Configuration error",
	ConfigNotFound:  "Configuration file not found",
	ConfigParseFail: "Failed to parse configuration",

	// Validation
	ValidationFailed:   "Validation failed",
	InvalidFormat:      "Invalid format",
	InvalidValue:       "Invalid value",
	RequiredFieldEmpty: "Required field is empty",

	// Test data
	DiscoveryFailed: "Test case discovery failed",
	TestRootMissing: "Test case directory does not exist",
	NoTestCases:     "No test cases found",
	TestCaseInvalid: "Invalid test case layout",

	// Pack import
	PackInvalid:       "Invalid test case pack",
	PackExtractFailed: "Failed to extract test case pack",
	PackUnsafePath:    "Pack entry escapes destination directory",

	// Build & Compile
	LanguageNotSupported:   "Programming language not supported",
	CompilationError:       "Compilation error",
	SourceNotFound:         "Source file not found",
	InvalidCommandTemplate: "Invalid command template",

	// Execution
	ExecutionFailed:    "Execution failed",
	RuntimeError:       "Runtime error",
	TimeLimitExceeded:  "Time limit exceeded",
	ProcessStartFailed: "Failed to start process",
	WorkspaceError:     "Workspace operation failed",

	// Comparison & Checker
	WrongAnswer:     "Wrong answer",
	CheckerError:    "Checker error",
	CheckerNotFound: "Checker program not found",
	UnknownStrategy: "Unknown comparison strategy",
}

// Message returns the default message for the error code
func (c ErrorCode) Message() string {
	if msg, ok := errorMessages[c]; ok {
		return msg
	}
	return "Unknown error"
}

// ExitStatus returns the recommended process exit status for errors that
// abort a run before a report is produced. Completed runs derive their exit
// status from the report's overall verdict instead.
func (c ErrorCode) ExitStatus() int {
	switch {
	case c == Success:
		return 0
	case c == InvalidParams, c >= 10100 && c < 10400:
		return 2
	case c == LanguageNotSupported, c == SourceNotFound, c == UnknownStrategy:
		return 2
	case c >= 11000 && c < 12000:
		return 3
	default:
		return 4
	}
}

package lsp

import (
	"encoding/json"
	"errors"
	"fmt"
)

// JSON-RPC and LSP error codes.
const (
	CodeParseError           = -32700
	CodeInvalidRequest       = -32600
	CodeMethodNotFound       = -32601
	CodeInvalidParams        = -32602
	CodeInternalError        = -32603
	CodeServerNotInitialized = -32002
)

var (
	// ErrExit signals a graceful shutdown after receiving "exit".
	ErrExit = errors.New("lsp exit")
	// ErrExitWithoutShutdown signals an "exit" without a preceding "shutdown".
	ErrExitWithoutShutdown = errors.New("lsp exit without shutdown")

	errIncrementalChange = errors.New("incremental content changes are not supported")
	errNoContentChanges  = errors.New("no content changes")
)

// ResponseError is a protocol fault answered with a JSON-RPC error envelope.
type ResponseError struct {
	Code    int
	Message string
}

func (e *ResponseError) Error() string {
	return fmt.Sprintf("jsonrpc error %d: %s", e.Code, e.Message)
}

func newResponseError(code int, format string, args ...any) *ResponseError {
	return &ResponseError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// asResponseError maps any handler error onto a protocol error. Errors that
// are not protocol faults become InternalError.
func asResponseError(err error) *ResponseError {
	var rerr *ResponseError
	if errors.As(err, &rerr) {
		return rerr
	}
	return &ResponseError{Code: CodeInternalError, Message: err.Error()}
}

// decodeParams unmarshals raw into v. Missing params leave v at its zero
// value; malformed params are reported as InvalidParams.
func decodeParams(raw json.RawMessage, v any) error {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return newResponseError(CodeInvalidParams, "invalid params: %v", err)
	}
	return nil
}

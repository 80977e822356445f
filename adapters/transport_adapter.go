package adapters

import (
	"context"
	"errors"
)

// ErrTransportClosed is returned when a command is sent over, or a result is
// written to, a bridge connection that has gone away.
var ErrTransportClosed = errors.New("transport closed")

// ResultHandler receives the results of one command invocation. Handlers of
// long-lived commands are called once per result until the transport closes.
type ResultHandler func(result Result)

// TransportAdapter carries commands from the host to the native side of the
// bridge. Implement this interface to use a custom bridge channel.
type TransportAdapter interface {
	// Exec sends action with args. handler is invoked for every result sent
	// back for this invocation; it stays registered while results arrive
	// with KeepCallback set.
	//
	// The returned release func unregisters handler: later results for this
	// invocation are dropped. Calling it after the last result is a no-op.
	// Returns an error if the command could not be sent.
	Exec(ctx context.Context, action string, args []any, handler ResultHandler) (release func(), err error)

	// Close releases the transport. Pending handlers receive an error result.
	Close() error
}

// closedResult is delivered to handlers still waiting when a transport closes.
func closedResult() Result {
	msg, _ := json.Marshal(ErrTransportClosed.Error())
	return Result{Status: StatusError, Message: msg}
}

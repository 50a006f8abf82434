// Package callbacks provides observers for the assistant and tool events.
package callbacks

import (
	"github.com/effective-security/reactagent/assistants"
	"github.com/effective-security/reactagent/tools"
)

var (
	_ assistants.Callback = (*Noop)(nil)
	_ tools.Callback      = (*Noop)(nil)
	_ assistants.Callback = (*Printer)(nil)
	_ tools.Callback      = (*Printer)(nil)
	_ assistants.Callback = (*PackageLogger)(nil)
	_ tools.Callback      = (*PackageLogger)(nil)
	_ assistants.Callback = (*Fanout)(nil)
	_ tools.Callback      = (*Fanout)(nil)
)

// Mode defines how much of a run the Printer shows
type Mode int

const (
	// ModeDefault prints the events only
	ModeDefault Mode = iota
	// ModeVerbose also prints the model responses and tool outputs
	ModeVerbose
)

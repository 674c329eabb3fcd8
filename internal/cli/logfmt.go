package cli

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

// logRecord is a structured lifecycle event ready for JSON encoding.
type logRecord struct {
	Timestamp time.Time `json:"ts"`
	Event     string    `json:"event"`
	Message   string    `json:"msg"`
	Pid       int       `json:"pid,omitempty"`
}

// emitEvent writes a lifecycle record to stdout. With --log-json set the
// record is JSON, otherwise a plain line.
func (c *context) emitEvent(cmd *cobra.Command, event, message string, pid int) {
	out := cmd.OutOrStdout()
	if c.logJSON != nil && *c.logJSON {
		enc := json.NewEncoder(out)
		record := logRecord{Timestamp: time.Now(), Event: event, Message: message, Pid: pid}
		if err := enc.Encode(&record); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "error: encode log: %v\n", err)
		}
		return
	}
	fmt.Fprintln(out, message)
}

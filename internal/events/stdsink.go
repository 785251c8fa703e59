package events

import (
	"fmt"
	"log"
)

// StdSink is the default Sink: it writes timestamped lines to a stdlib
// log.Logger. The teacher codebase only ever calls println on its two
// top-level error paths; this is the faithful upgrade for a service that
// has an actual request lifecycle to narrate.
type StdSink struct {
	L *log.Logger
}

// NewStdSink returns a Sink writing to l, or to log.Default() if l is nil.
func NewStdSink(l *log.Logger) *StdSink {
	if l == nil {
		l = log.Default()
	}
	return &StdSink{L: l}
}

func (s *StdSink) Log(msg string) { s.L.Println(msg) }

func (s *StdSink) WorkStarted() { s.L.Println("work started") }

func (s *StdSink) WorkFinished(success bool) {
	s.L.Printf("work finished: success=%t", success)
}

func (s *StdSink) TokenUsage(promptTokens, completionTokens int) {
	s.L.Println(fmt.Sprintf("token usage: prompt=%d completion=%d", promptTokens, completionTokens))
}

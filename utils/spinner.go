package utils

import (
	"fmt"
	"io"
	"sync"
	"time"
)

// Spinner shows a process indicator until stopped.
type Spinner struct {
	w        io.Writer
	color    bool
	stopChan chan struct{}
	done     sync.WaitGroup
}

// NewSpinner returns a spinner writing to w. Colors are used when
// color is set.
func NewSpinner(w io.Writer, color bool) *Spinner {
	return &Spinner{w: w, color: color}
}

// Start starts the process indicator.
func (s *Spinner) Start(message string) {
	s.stopChan = make(chan struct{})
	s.done.Add(1)

	go func() {
		defer s.done.Done()
		for {
			for _, r := range `-\|/` {
				select {
				case <-s.stopChan:
					fmt.Fprint(s.w, "\r")
					return
				default:
					fmt.Fprintf(s.w, "\r%s %s", message, Colorize(s.color, SuccessColor, string(r)))
					time.Sleep(time.Millisecond * 100)
				}
			}
		}
	}()
}

// Stop stops the process indicator and waits for it to return.
func (s *Spinner) Stop() {
	close(s.stopChan)
	s.done.Wait()
}

package launcher

import (
	"fmt"
	"io"
	"time"

	"github.com/briandowns/spinner"
)

// MaybeSpinner is a spinner that can also just log text
type MaybeSpinner struct {
	Spin    bool
	Spinner *spinner.Spinner
	out     io.Writer
}

// Start might start the spinner
func (m *MaybeSpinner) Start(msg string) {
	m.Spinner.Suffix = " " + msg
	if m.Spin {
		m.Spinner.Start()
	} else if msg != "" {
		fmt.Fprintln(m.out, msg)
	}
}

// Stop will stop the spinner
func (m *MaybeSpinner) Stop() {
	if m.Spin {
		m.Spinner.Stop()
	}
}

// Update will update the spinner text
func (m *MaybeSpinner) Update(t string) {
	m.Spinner.Suffix = " " + t

	if !m.Spin {
		fmt.Fprintln(m.out, t)
	}
}

// NewMaybeSpinner will return a new MaybeSpinner writing to out
func NewMaybeSpinner(spin bool, out io.Writer) *MaybeSpinner {
	s := &MaybeSpinner{
		Spin:    spin,
		Spinner: spinner.New(spinner.CharSets[9], 300*time.Millisecond, spinner.WithWriter(out)),
		out:     out,
	}
	s.Spinner.Prefix = " "
	return s
}

// Package testutils holds helpers shared by the package tests.
package testutils

import (
	"io"
	"testing"

	"github.com/sirupsen/logrus"
)

type testOutput struct{ testing.TB }

func (to testOutput) Write(p []byte) (int, error) {
	to.Logf("%s", p)
	return len(p), nil
}

// NewLogger returns a debug level logger writing through t.Logf. A nil t
// discards everything.
func NewLogger(t testing.TB) *logrus.Logger {
	l := logrus.New()
	l.SetLevel(logrus.DebugLevel)
	if t == nil {
		l.SetOutput(io.Discard)
	} else {
		l.SetOutput(testOutput{t})
	}
	return l
}

package provider

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
)

// ConsoleNotifier prints notifications to a terminal
type ConsoleNotifier struct {
	out io.Writer
	mu  sync.Mutex
}

// NewConsoleNotifier writes to stdout
func NewConsoleNotifier() *ConsoleNotifier {
	return &ConsoleNotifier{out: os.Stdout}
}

// NewConsoleNotifierTo writes to w
func NewConsoleNotifierTo(w io.Writer) *ConsoleNotifier {
	return &ConsoleNotifier{out: w}
}

func (n *ConsoleNotifier) Notify(title, message string) {
	n.mu.Lock()
	defer n.mu.Unlock()

	fmt.Fprintf(n.out, "\n%s %s\n", color.GreenString("✓ %s", title), message)
}

// LogNotifier records notifications in the log
type LogNotifier struct {
	log logrus.FieldLogger
}

func NewLogNotifier(log logrus.FieldLogger) *LogNotifier {
	return &LogNotifier{log: log}
}

func (n *LogNotifier) Notify(title, message string) {
	n.log.WithField("title", title).Info(message)
}

// Multi fans a notification out to several sinks
type Multi []Notifier

func (m Multi) Notify(title, message string) {
	for _, n := range m {
		if n != nil {
			n.Notify(title, message)
		}
	}
}

// Discard drops every notification
type Discard struct{}

func (Discard) Notify(string, string) {}

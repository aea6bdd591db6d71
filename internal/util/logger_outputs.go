package util

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"

	"github.com/bytedance/sonic"
	"github.com/charmbracelet/lipgloss"
)

var levelStyles = map[string]lipgloss.Style{
	"TRACE": lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
	"DEBUG": lipgloss.NewStyle().Foreground(lipgloss.Color("39")),
	"INFO":  lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
	"WARN":  lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true),
	"ERROR": lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true),
}

// ConsoleOutput writes one entry per line, normally to stderr. Text entries
// look like
//
//	biff [WARN] skipping invalid input line=3
//
// and JSON entries are single objects.
type ConsoleOutput struct {
	mu     sync.Mutex
	writer io.Writer
	format LogFormat
	styled bool
}

// NewConsoleOutput creates a console output. When styled is set the level
// label is colored.
func NewConsoleOutput(writer io.Writer, format LogFormat, styled bool) *ConsoleOutput {
	return &ConsoleOutput{writer: writer, format: format, styled: styled}
}

func (c *ConsoleOutput) Write(entry LogEntry) error {
	var line []byte
	if c.format == FormatJSON {
		data, err := sonic.Marshal(entry)
		if err != nil {
			return err
		}
		line = append(data, '\n')
	} else {
		line = []byte(c.text(entry))
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	_, err := c.writer.Write(line)
	return err
}

func (c *ConsoleOutput) text(entry LogEntry) string {
	level := entry.Level
	if style, ok := levelStyles[level]; ok && c.styled {
		level = style.Render(level)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "biff [%s] %s", level, entry.Message)
	keys := make([]string, 0, len(entry.Fields))
	for k := range entry.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, " %s=%v", k, entry.Fields[k])
	}
	b.WriteByte('\n')
	return b.String()
}

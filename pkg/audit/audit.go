package audit

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"
	"time"
)

// Structured data IDs (RFC5424)
const (
	SDIDAuth   = "auth@43868"
	SDIDClient = "client@43868"
)

// Syslog facility constants
const (
	FacilityAuth     = 4  // LOG_AUTH
	FacilityAuthPriv = 10 // LOG_AUTHPRIV
)

// Severity levels matching syslog (RFC5424)
type Severity int

const (
	SeverityEmergency Severity = iota // 0
	SeverityAlert                     // 1
	SeverityCritical                  // 2
	SeverityError                     // 3
	SeverityWarning                   // 4
	SeverityNotice                    // 5
	SeverityInfo                      // 6
	SeverityDebug                     // 7
)

// Event represents an audit event
type Event interface {
	MessageID() string
	Message() string
	Severity() Severity
	Facility() int
	StructuredData() map[string]map[string]string
}

// Logger writes audit events in RFC5424 syslog format
type Logger struct {
	mu       sync.Mutex
	writer   io.Writer
	hostname string
	appName  string
	pid      int
	enabled  bool
	now      func() time.Time
}

// NewLogger creates an audit logger writing to w
func NewLogger(w io.Writer, enabled bool) *Logger {
	hostname, _ := os.Hostname()
	return &Logger{
		writer:   w,
		hostname: hostname,
		appName:  "casino",
		pid:      os.Getpid(),
		enabled:  enabled,
		now:      time.Now,
	}
}

// Enabled reports whether events are written
func (l *Logger) Enabled() bool {
	return l != nil && l.enabled
}

// Log writes an audit event. A nil or disabled logger discards it.
// Format: <PRI>VERSION TIMESTAMP HOSTNAME APP-NAME PROCID MSGID SD MSG
func (l *Logger) Log(event Event) {
	if !l.Enabled() {
		return
	}

	pri := event.Facility()*8 + int(event.Severity())
	timestamp := l.now().UTC().Format("2006-01-02T15:04:05.000Z")

	sd := formatStructuredData(event.StructuredData())
	if sd == "" {
		sd = "-"
	}

	hostname := l.hostname
	if hostname == "" {
		hostname = "-"
	}

	line := fmt.Sprintf("<%d>1 %s %s %s %d %s %s %s\n",
		pri,
		timestamp,
		hostname,
		l.appName,
		l.pid,
		event.MessageID(),
		sd,
		event.Message(),
	)

	l.mu.Lock()
	defer l.mu.Unlock()
	_, _ = io.WriteString(l.writer, line)
}

// formatStructuredData renders [sdid key="value" ...] blocks with SD-IDs and
// parameter names sorted.
func formatStructuredData(sd map[string]map[string]string) string {
	if len(sd) == 0 {
		return ""
	}

	var b strings.Builder
	for _, sdid := range sortedKeys(sd) {
		params := sd[sdid]
		b.WriteString("[")
		b.WriteString(sdid)
		for _, key := range sortedKeys(params) {
			b.WriteString(" ")
			b.WriteString(key)
			b.WriteString("=")
			b.WriteString(escapeSDValue(params[key]))
		}
		b.WriteString("]")
	}
	return b.String()
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// escapeSDValue escapes special characters in structured data values per RFC5424
func escapeSDValue(value string) string {
	value = strings.ReplaceAll(value, "\\", "\\\\")
	value = strings.ReplaceAll(value, "\"", "\\\"")
	value = strings.ReplaceAll(value, "]", "\\]")
	return "\"" + value + "\""
}

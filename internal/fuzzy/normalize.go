package fuzzy

import "regexp"

// Order matters: broader shapes must be masked before bare numbers.
var masks = []struct {
	re          *regexp.Regexp
	placeholder string
}{
	{regexp.MustCompile(`[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}`), "<UUID>"},
	{regexp.MustCompile(`\b\d{1,3}\.\d{1,3}\.\d{1,3}\.\d{1,3}(:\d+)?\b`), "<IP>"},
	{regexp.MustCompile(`\d{4}-\d{2}-\d{2}[T ]\d{2}:\d{2}:\d{2}(\.\d+)?(Z|[+-]\d{2}:?\d{2})?`), "<TIMESTAMP>"},
	{regexp.MustCompile(`\b[0-9a-fA-F]{24,}\b`), "<HEX>"},
	{regexp.MustCompile(`(?i)\b(TransactionID|RequestID|TraceID)=[0-9a-zA-Z-]+`), "$1=<ID>"},
	{regexp.MustCompile(`/[\w./-]+(:\d+)?`), "<PATH>"},
	{regexp.MustCompile(`\b\d+(\.\d+)?\b`), "<NUM>"},
}

// Normalize masks the variable parts of a log message so that repeats of the
// same error produce the same template.
func Normalize(msg string) string {
	for _, m := range masks {
		msg = m.re.ReplaceAllString(msg, m.placeholder)
	}
	return msg
}

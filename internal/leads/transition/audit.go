package transition

import (
	"fmt"
	"strings"
)

// pluralize renders "1 final document" or "3 final documents".
func pluralize(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", noun)
	}
	return fmt.Sprintf("%d %ss", n, noun)
}

// auditMessage renders "<label>: part, part. Remark: <remark>".
func auditMessage(label string, parts []string, remark string) string {
	var b strings.Builder
	b.WriteString(label)
	b.WriteString(": ")
	if len(parts) == 0 {
		b.WriteString("details updated")
	} else {
		b.WriteString(strings.Join(parts, ", "))
	}
	b.WriteString(". ")

	if remark = strings.TrimSpace(remark); remark != "" {
		b.WriteString("Remark: ")
		b.WriteString(remark)
	} else {
		b.WriteString("No remark provided")
	}
	return b.String()
}

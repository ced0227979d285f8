package analysis

import (
	"bufio"
	"bytes"
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/beanls/beanls/ast"
	"github.com/tliron/commonlog"
)

// BeanCheck shells out to the reference ledger validator for
// authoritative checking beyond the built-in diagnostics. Its results
// are advisory: a missing binary, a timeout, or unparseable output
// degrade to the built-in checks alone, never to a failed request.
type BeanCheck struct {
	binary  string
	timeout time.Duration
	log     commonlog.Logger
}

// NewBeanCheck builds a validator around the given binary, typically
// "bean-check". The timeout bounds one validation run.
func NewBeanCheck(binary string, timeout time.Duration) *BeanCheck {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &BeanCheck{
		binary:  binary,
		timeout: timeout,
		log:     commonlog.GetLogger("beanls.beancheck"),
	}
}

// beanCheckLine matches "/path/file.beancount:123: message", with the
// message possibly continued on indented followup lines (ignored).
var beanCheckLine = regexp.MustCompile(`^(.+):(\d+):\s*(.*)$`)

// Run validates the document text and returns advisory diagnostics.
// The editor buffer may be ahead of the file on disk, so the text is
// written to a temp file and the validator runs against that.
func (b *BeanCheck) Run(ctx context.Context, uri string, text []byte) []Diagnostic {
	tmp, err := os.CreateTemp("", "beanls-*.beancount")
	if err != nil {
		b.log.Errorf("temp file: %s", err)
		return nil
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(text); err != nil {
		tmp.Close()
		b.log.Errorf("temp file write: %s", err)
		return nil
	}
	tmp.Close()

	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	// bean-check reports findings on stderr and exits nonzero when it
	// finds any, so the exit error alone is not a failure.
	cmd := exec.CommandContext(ctx, b.binary, tmp.Name())
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			b.log.Infof("validator timed out after %s", b.timeout)
			return nil
		}
		if _, ok := err.(*exec.ExitError); !ok {
			b.log.Infof("validator unavailable: %s", err)
			return nil
		}
	}

	return b.parseOutput(uri, tmp.Name(), text, stderr.Bytes())
}

func (b *BeanCheck) parseOutput(uri, tmpPath string, text, output []byte) []Diagnostic {
	lines := lineOffsets(text)

	var diags []Diagnostic
	scanner := bufio.NewScanner(bytes.NewReader(output))
	for scanner.Scan() {
		m := beanCheckLine.FindStringSubmatch(scanner.Text())
		if m == nil {
			continue
		}
		if filepath.Clean(m[1]) != tmpPath {
			continue
		}
		lineNo, err := strconv.Atoi(m[2])
		if err != nil || lineNo < 1 || lineNo > len(lines) {
			continue
		}
		message := strings.TrimSpace(m[3])
		if message == "" {
			continue
		}

		diags = append(diags, Diagnostic{
			URI:      uri,
			Span:     lines[lineNo-1],
			Severity: SeverityError,
			Code:     CodeBeanCheck,
			Message:  message,
		})
	}
	return diags
}

// lineOffsets returns the span of every line in the text, newline
// excluded.
func lineOffsets(text []byte) []ast.Span {
	var spans []ast.Span
	start := 0
	for i, ch := range text {
		if ch == '\n' {
			spans = append(spans, ast.Span{Start: start, End: i})
			start = i + 1
		}
	}
	spans = append(spans, ast.Span{Start: start, End: len(text)})
	return spans
}

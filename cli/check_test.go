package cli

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/alecthomas/assert/v2"
	"github.com/alecthomas/kong"
)

func writeLedger(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "main.beancount")
	assert.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

// runCommand parses and runs a full command line the way main does,
// capturing stdout and stderr.
func runCommand(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()

	var cmds Commands
	var out, errOut bytes.Buffer
	parser, kerr := kong.New(&cmds,
		kong.Writers(&out, &errOut),
		kong.Bind(&cmds.Globals),
	)
	assert.NoError(t, kerr)

	ctx, kerr := parser.Parse(args)
	assert.NoError(t, kerr)

	err = ctx.Run()
	return out.String(), errOut.String(), err
}

func TestCheckCmdCleanLedger(t *testing.T) {
	path := writeLedger(t, `2024-01-01 open Assets:Cash
2024-01-01 open Expenses:Food

2024-01-02 * "lunch"
  Assets:Cash  -10.00 USD
  Expenses:Food  10.00 USD
`)

	stdout, _, err := runCommand(t, "check", path)

	assert.NoError(t, err)
	assert.Contains(t, stdout, "check passed")
}

func TestCheckCmdErrorSeverityExitsNonzero(t *testing.T) {
	path := writeLedger(t, `2024-01-01 open Assets:Cash
2024-01-01 open Expenses:Food

2024-01-02 * "lunch"
  Assets:Cash  -10.00 USD
  Expenses:Food  12.00 USD
`)

	_, stderr, err := runCommand(t, "check", path)

	var cmdErr *CommandError
	assert.True(t, errors.As(err, &cmdErr))
	assert.Equal(t, 1, cmdErr.ExitCode())
	assert.Contains(t, stderr, "unbalanced")
}

func TestCheckCmdWarningsAloneExitZero(t *testing.T) {
	path := writeLedger(t, `2024-01-02 * "lunch"
  Assets:Cash  -10.00 USD
  Expenses:Food  10.00 USD
`)

	stdout, _, err := runCommand(t, "check", path)

	assert.NoError(t, err)
	assert.Contains(t, stdout, "warning")
}

func TestCheckCmdJSONOutput(t *testing.T) {
	path := writeLedger(t, `2024-01-01 open Assets:Cash
2024-01-01 open Expenses:Food

2024-01-02 * "lunch"
  Assets:Cash  -10.00 USD
  Expenses:Food  12.00 USD
`)

	stdout, _, err := runCommand(t, "check", "--json", path)

	var cmdErr *CommandError
	assert.True(t, errors.As(err, &cmdErr))
	assert.Contains(t, stdout, `"code": "unbalanced"`)
	assert.Contains(t, stdout, `"severity": "error"`)
}

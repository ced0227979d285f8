package cli

import (
	"fmt"
	"os"

	"github.com/alecthomas/kong"

	"github.com/beanls/beanls/formatter"
)

type FmtCmd struct {
	File           FileOrStdin `help:"Ledger file to format (use '-' for stdin, or omit for stdin)." arg:"" optional:""`
	Write          bool        `short:"w" help:"Rewrite the file in place instead of printing to stdout."`
	CurrencyColumn int         `help:"Column for currency alignment (derived from content if 0)." default:"0"`
}

func (cmd *FmtCmd) Run(ctx *kong.Context) error {
	if err := cmd.File.EnsureContents(); err != nil {
		return err
	}

	var opts []formatter.Option
	if cmd.CurrencyColumn > 0 {
		opts = append(opts, formatter.WithCurrencyColumn(cmd.CurrencyColumn))
	}
	formatted := formatter.New(opts...).Format(cmd.File.Contents)

	if cmd.Write {
		if cmd.File.IsStdin() {
			return fmt.Errorf("cannot write in place when reading from stdin")
		}
		return os.WriteFile(cmd.File.Filename, formatted, 0o644)
	}

	_, err := ctx.Stdout.Write(formatted)
	return err
}

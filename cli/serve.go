package cli

import (
	"os/exec"
	"time"

	"github.com/alecthomas/kong"
	"github.com/tliron/commonlog"

	// The simple backend writes to a file or stderr, which is all the
	// server needs; stdio carries the protocol.
	_ "github.com/tliron/commonlog/simple"

	"github.com/beanls/beanls/analysis"
	"github.com/beanls/beanls/lsp"
)

type ServeCmd struct {
	LogFile   string        `help:"Write server logs to this file instead of stderr."`
	LogLevel  int           `help:"Log verbosity, 0-4." default:"1"`
	BeanCheck string        `help:"Path to the bean-check binary for external validation." default:"bean-check"`
	Timeout   time.Duration `help:"Timeout for one external validation run." default:"5s"`
}

func (cmd *ServeCmd) Run(ctx *kong.Context, globals *Globals) error {
	var path *string
	if cmd.LogFile != "" {
		path = &cmd.LogFile
	}
	commonlog.Configure(cmd.LogLevel, path)
	log := commonlog.GetLogger("beanls")

	// External validation is best-effort: without the binary the
	// built-in diagnostics stand alone.
	var validator *analysis.BeanCheck
	if binary, err := exec.LookPath(cmd.BeanCheck); err == nil {
		validator = analysis.NewBeanCheck(binary, cmd.Timeout)
		log.Infof("external validator: %s", binary)
	} else {
		log.Infof("external validator unavailable: %s", cmd.BeanCheck)
	}

	server := lsp.New(Version, validator)
	return server.RunStdio()
}

package cli

var (
	Version   = ""
	CommitSHA = ""
)

// Globals defines global flags available to all commands.
type Globals struct {
	Telemetry bool `help:"Show timing telemetry for operations."`
}

type Commands struct {
	Globals

	Serve ServeCmd `cmd:"" default:"withargs" help:"Run the language server over stdio."`
	Check CheckCmd `cmd:"" help:"Check a ledger file and report diagnostics."`
	Fmt   FmtCmd   `cmd:"" help:"Align amounts and currencies in a ledger file."`
}

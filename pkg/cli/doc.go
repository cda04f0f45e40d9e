/*
Package cli provides command-line helpers for the parley command.

Output Formatting:

Command results can be written as text, JSON or CSV:

	formatter, err := cli.NewFormatter(cli.FormatJSON)
	if err != nil {
		return err
	}
	if err := formatter.FormatTo(os.Stdout, sessions); err != nil {
		return err
	}

CSV output needs a value implementing Table.

Exit Codes:

ExitCode maps an error returned by a command to the process exit status:
0 for success, 2 for usage errors, 3 for configuration errors and 1 for
everything else.

Signal Handling:

For graceful shutdown on SIGINT/SIGTERM:

	ctx, stop := cli.SetupSignalHandler()
	defer stop()
*/
package cli

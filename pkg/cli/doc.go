/*
Package cli provides the output and process helpers shared by ragdoctor's
commands.

Output Formatting:

Results print as a text checklist or as indented JSON:

	formatter := cli.NewFormatter(cli.FormatJSON)
	if err := formatter.FormatTo(os.Stdout, cli.RunReport{Run: run}); err != nil {
		return err
	}

Exit Status:

Failed checks are data, not errors. A command prints its report and then
returns a CheckFailedError so the process exits non-zero:

	return cli.NewCheckFailedError("doctor", run.Failures)

Signal Handling:

	ctx, stop := cli.SetupSignalHandler(context.Background())
	defer stop()
*/
package cli

// Package output provides colored terminal output for hnrflow.
//
// The package prints the human-readable progress of a workflow run: step
// banners, per-service health rows and success, warning, skip and failure
// indicators. Colors are disabled when NO_COLOR is set or stdout is not a
// terminal, and a spinner is shown during network calls only on terminals.
//
// Example usage:
//
//	printer := output.NewPrinter()
//	printer.StepHeader(1, "Health Check")
//	printer.ServiceStatus(true, "Chat", "http://localhost:3006")
//	printer.Warning("Only %d/%d services healthy", healthy, total)
package output

package main

import (
	"runapp/cmd" // CLI commands live in cmd; main only hands control over
)

// main is the program entry point.
// It delegates to cmd.Execute() which parses the command line and runs the selected mode.
//
// runapp is a developer-environment bootstrapper for a local Java web application stack:
//   - A MySQL instance living under the project's mysql/ directory (or an externally hosted schema)
//   - A Tomcat application server found through CATALINA_HOME
//   - A Maven-built WAR artifact named after the project's registration descriptor
//
// Every mode brings the machine's observable state (marker files, the process table) into
// agreement with the requested environment using idempotent checks and external commands:
//   - local, code and docker provision the database while the Maven build runs in the background,
//     then deploy (or package an image) once the build has been joined
//   - clean and drop tear everything down again, drop also removing the schema itself
//   - running without a subcommand prepares an externally hosted schema and copies seed data
//
// Error handling strategy:
//   - Configuration problems (missing environment variables, unreadable descriptor) abort before
//     anything on disk or in the process table is touched
//   - A failing external command aborts the current mode; build failures surface the tail of the build log
//   - The process exits non-zero on any failure
func main() {
	cmd.Execute()
}

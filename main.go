// Command cursor-enhanced is the entry point for the cursor-agent
// orchestration wrapper: a one-shot CLI run by default, plus subcommands
// for the Telegram chat front-end and the reach/schedule scheduler core.
package main

import "github.com/nextlevelbuilder/cursor-enhanced-go/cmd"

func main() {
	cmd.Execute()
}

package main

import "github.com/launchtrack/timeclock/cmd"

func main() {
	cmd.Execute()
}

package main

import "github.com/Annadata-Aniketh/My-Daily-Brief-app-JP/cmd"

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	cmd.SetVersionInfo(version, commit, date)
	cmd.Execute()
}

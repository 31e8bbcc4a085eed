package main

import "github.com/hasim-hairlahovic/AWS-Cybersecurity-Analyzer/cmd"

func main() {
	cmd.Execute()
}

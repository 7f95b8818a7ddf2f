package main

import "github.com/nikogura/resume-studio/cmd"

func main() {
	cmd.Execute()
}

package main

import "github.com/jobseeker-app/apiserver/cmd"

func main() {
	cmd.Execute()
}

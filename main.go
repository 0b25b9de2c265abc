package main

import "github.com/jsphweid/basstile/cmd"

func main() {
	cmd.Execute()
}

package main

import "github.com/kjordahl/chippy8/cmd"

func main() {
	cmd.Execute()
}

package main

import (
	"github.com/JBibu/zerobyte/pkg/cli"
)

func main() {
	cli.Execute()
}

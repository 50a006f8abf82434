package main

import (
	"os"

	"github.com/alecthomas/kong"
	"github.com/effective-security/reactagent/cmd/reactagent/cli"
)

func main() {
	c := cli.New(os.Stdin, os.Stdout, os.Stderr)

	ctx := kong.Parse(c,
		kong.Name("reactagent"),
		kong.Description("ReAct agent over a locally hosted language model"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
	)

	c.Configure()
	err := ctx.Run(c)
	ctx.FatalIfErrorf(err)
}

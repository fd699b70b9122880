package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli"
)

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "[iokey] %v\n", err)
	os.Exit(1)
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fatal(err)
	}
}

func newApp() *cli.App {
	app := cli.NewApp()
	app.Name = "iokey"
	app.Version = "0.1.0"
	app.Usage = "create accounts, sign payloads and inspect io1 addresses"
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:   "network",
			Value:  "mainnet",
			EnvVar: "IOTEX_NETWORK",
			Usage:  "address prefix to use: mainnet (io) or testnet (it)",
		},
	}
	app.Before = selectNetwork
	app.Commands = []cli.Command{
		newCommand,
		importCommand,
		signCommand,
		verifyCommand,
		recoverCommand,
		decodeCommand,
		encodeCommand,
		convertCommand,
	}
	return app
}

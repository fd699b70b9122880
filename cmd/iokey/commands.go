package main

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/urfave/cli"

	"github.com/uhyunpark/ioaccount/pkg/account"
	"github.com/uhyunpark/ioaccount/pkg/address"
	"github.com/uhyunpark/ioaccount/pkg/crypto"
)

var (
	keyFlag = cli.StringFlag{
		Name:   "key",
		EnvVar: "IOKEY_PRIVATE_KEY",
		Usage:  "hex private key (64 chars)",
	}
	messageFlag = cli.StringFlag{
		Name:  "message",
		Usage: "hex encoded message, hashed with Keccak-256",
	}
	textFlag = cli.StringFlag{
		Name:  "text",
		Usage: "utf-8 message, hashed with Keccak-256",
	}
	digestFlag = cli.StringFlag{
		Name:  "digest",
		Usage: "hex encoded 32-byte digest, used as is",
	}
	sigFlag = cli.StringFlag{
		Name:  "sig",
		Usage: "hex encoded 65-byte signature",
	}
)

// selectNetwork fixes the process-wide network before any command runs
func selectNetwork(ctx *cli.Context) error {
	n, err := address.ParseNetwork(ctx.String("network"))
	if err != nil {
		return err
	}
	return address.SetNetwork(n)
}

var newCommand = cli.Command{
	Name:   "new",
	Usage:  "Generate a new account.",
	Action: newAccount,
}

func newAccount(ctx *cli.Context) error {
	acc, err := account.New()
	if err != nil {
		return err
	}
	defer acc.Zero()

	printAccount(ctx, acc)
	key := acc.PrivateKey()
	defer key.Zero()
	fmt.Fprintf(ctx.App.Writer, "Private Key: %s (KEEP SECRET!)\n", key.HexString())
	return nil
}

var importCommand = cli.Command{
	Name:      "import",
	Usage:     "Derive the address and public key of a private key.",
	ArgsUsage: "[private key hex]",
	Flags:     []cli.Flag{keyFlag},
	Action:    importAccount,
}

func importAccount(ctx *cli.Context) error {
	acc, err := loadAccount(ctx)
	if err != nil {
		return err
	}
	defer acc.Zero()

	printAccount(ctx, acc)
	return nil
}

var signCommand = cli.Command{
	Name:  "sign",
	Usage: "Sign a message or digest with a private key.",
	Flags: []cli.Flag{keyFlag, messageFlag, textFlag, digestFlag},
	Action: func(ctx *cli.Context) error {
		acc, err := loadAccount(ctx)
		if err != nil {
			return err
		}
		defer acc.Zero()

		var sig crypto.Signature
		if ctx.IsSet("digest") {
			digest, err := decodeHex(ctx.String("digest"))
			if err != nil {
				return err
			}
			sig, err = acc.SignHash(digest)
			if err != nil {
				return err
			}
		} else {
			msg, err := readMessage(ctx)
			if err != nil {
				return err
			}
			sig, err = acc.Sign(msg)
			if err != nil {
				return err
			}
		}

		fmt.Fprintln(ctx.App.Writer, sig.Hex())
		return nil
	},
}

var verifyCommand = cli.Command{
	Name:  "verify",
	Usage: "Verify a signature against a public key.",
	Flags: []cli.Flag{
		messageFlag, textFlag, sigFlag,
		cli.StringFlag{Name: "pubkey", Usage: "uncompressed hex public key (130 chars)"},
	},
	Action: func(ctx *cli.Context) error {
		msg, err := readMessage(ctx)
		if err != nil {
			return err
		}
		sig, err := decodeHex(ctx.String("sig"))
		if err != nil {
			return err
		}

		valid, err := crypto.Verify(msg, sig, ctx.String("pubkey"))
		if err != nil {
			return err
		}
		fmt.Fprintln(ctx.App.Writer, valid)
		return nil
	},
}

var recoverCommand = cli.Command{
	Name:  "recover",
	Usage: "Recover the signer of a digest.",
	Flags: []cli.Flag{digestFlag, sigFlag},
	Action: func(ctx *cli.Context) error {
		digest, err := decodeHex(ctx.String("digest"))
		if err != nil {
			return err
		}
		sig, err := decodeHex(ctx.String("sig"))
		if err != nil {
			return err
		}

		pub, err := crypto.Recover(digest, sig)
		if err != nil {
			return err
		}
		fmt.Fprintf(ctx.App.Writer, "Address: %s\n", address.FromPublicKey(pub))
		fmt.Fprintf(ctx.App.Writer, "Public Key: %s\n", pub.HexString())
		return nil
	},
}

var decodeCommand = cli.Command{
	Name:      "decode",
	Usage:     "Decode an address into its 20-byte payload.",
	ArgsUsage: "address",
	Action: func(ctx *cli.Context) error {
		if ctx.NArg() != 1 {
			return errors.New("decode takes exactly one address")
		}
		addr, err := address.FromString(ctx.Args().First())
		if err != nil {
			return err
		}
		fmt.Fprintln(ctx.App.Writer, addr.Payload().Hex())
		return nil
	},
}

var encodeCommand = cli.Command{
	Name:      "encode",
	Usage:     "Encode a 20-byte hex payload as an address.",
	ArgsUsage: "payload",
	Action: func(ctx *cli.Context) error {
		if ctx.NArg() != 1 {
			return errors.New("encode takes exactly one payload")
		}
		payload, err := decodeHex(ctx.Args().First())
		if err != nil {
			return err
		}
		addr, err := address.FromBytes(payload)
		if err != nil {
			return err
		}
		fmt.Fprintln(ctx.App.Writer, addr)
		return nil
	},
}

var convertCommand = cli.Command{
	Name:      "convert",
	Usage:     "Convert between the io1 and 0x forms of an address.",
	ArgsUsage: "address",
	Action: func(ctx *cli.Context) error {
		if ctx.NArg() != 1 {
			return errors.New("convert takes exactly one address")
		}
		in := ctx.Args().First()
		addr, err := address.Parse(in)
		if err != nil {
			return err
		}
		if strings.HasPrefix(strings.ToLower(in), "0x") {
			fmt.Fprintln(ctx.App.Writer, addr)
		} else {
			fmt.Fprintln(ctx.App.Writer, addr.Hex())
		}
		return nil
	},
}

func loadAccount(ctx *cli.Context) (*account.Account, error) {
	keyHex := ctx.String("key")
	if keyHex == "" {
		keyHex = ctx.Args().First()
	}
	if keyHex == "" {
		return nil, errors.New("private key required (--key or first argument)")
	}
	return account.FromPrivateKeyHex(keyHex)
}

func readMessage(ctx *cli.Context) ([]byte, error) {
	switch {
	case ctx.IsSet("message") && ctx.IsSet("text"):
		return nil, errors.New("use either --message or --text, not both")
	case ctx.IsSet("message"):
		return decodeHex(ctx.String("message"))
	default:
		return []byte(ctx.String("text")), nil
	}
}

func printAccount(ctx *cli.Context, acc *account.Account) {
	fmt.Fprintf(ctx.App.Writer, "Address: %s\n", acc.Address())
	fmt.Fprintf(ctx.App.Writer, "Public Key: %s\n", acc.PublicKeyHex())
}

func decodeHex(s string) ([]byte, error) {
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("invalid hex: %w", err)
	}
	return b, nil
}

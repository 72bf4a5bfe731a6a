package main

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/c2xstation/storefront/cmd/utils"
	"github.com/c2xstation/storefront/hive"
)

var (
	toolsCommand = &cli.Command{
		Name:  "tools",
		Usage: "useful tools",
		Flags: utils.CommonLogFlags,
		Description: `
useful tools
`,
		Subcommands: []*cli.Command{
			{
				Name:      "base64",
				Usage:     "base64 encoding/decoding",
				Action:    base64Codec,
				ArgsUsage: "[message]",
				Flags:     []cli.Flag{messageFlag, isDecodeFlag, isHexFlag, isURLFlag, isRawFlag},
			},
			{
				Name:      "sha256",
				Usage:     "calc sha256 hash",
				Action:    sha256Hash,
				ArgsUsage: "[message]",
				Flags:     []cli.Flag{messageFlag, isHexFlag},
			},
			{
				Name:      "loginres",
				Usage:     "decode the res parameter of a hive login redirect",
				Action:    decodeLoginRes,
				ArgsUsage: "[message]",
				Flags:     []cli.Flag{messageFlag},
			},
		},
	}

	messageFlag = &cli.StringFlag{
		Name:    "message",
		Aliases: []string{"m"},
		Usage:   "message text",
	}

	isDecodeFlag = &cli.BoolFlag{
		Name:    "decode",
		Aliases: []string{"d"},
		Usage:   "decode data",
	}

	isHexFlag = &cli.BoolFlag{
		Name:  "hex",
		Usage: "from or to hex string",
	}

	isURLFlag = &cli.BoolFlag{
		Name:  "url",
		Usage: "use URL encoding",
	}

	isRawFlag = &cli.BoolFlag{
		Name:  "raw",
		Usage: "omits padding characters",
	}
)

func getMessage(ctx *cli.Context) (string, error) {
	if ctx.NArg() > 1 {
		return "", fmt.Errorf("has more than one position argument: %v", ctx.Args())
	}
	var message string
	if ctx.NArg() == 1 {
		message = ctx.Args().Get(0) // positional args first
	} else {
		message = ctx.String(messageFlag.Name)
	}
	fmt.Printf("the message is '%v'\n", message)
	return message, nil
}

func fromHex(s string) ([]byte, error) {
	return hex.DecodeString(strings.TrimPrefix(s, "0x"))
}

func base64Codec(ctx *cli.Context) error {
	utils.SetLogger(ctx)
	message, err := getMessage(ctx)
	if err != nil {
		return err
	}
	isDecode := ctx.Bool(isDecodeFlag.Name)
	isHex := ctx.Bool(isHexFlag.Name)
	isURL := ctx.Bool(isURLFlag.Name)
	isRaw := ctx.Bool(isRawFlag.Name)
	b64Encoding := base64.StdEncoding
	if isURL {
		if isRaw {
			b64Encoding = base64.RawURLEncoding
		} else {
			b64Encoding = base64.URLEncoding
		}
	} else if isRaw {
		b64Encoding = base64.RawStdEncoding
	}
	if isDecode {
		data, err := b64Encoding.DecodeString(message)
		if err != nil {
			return err
		}
		if isHex {
			fmt.Printf("base64 decoding to hex is '0x%x'\n", data)
		} else {
			fmt.Printf("base64 decoding to text is '%v'\n", string(data))
		}
		return nil
	}
	data := []byte(message)
	if isHex {
		if data, err = fromHex(message); err != nil {
			return err
		}
	}
	fmt.Printf("base64 encoding is '%v'\n", b64Encoding.EncodeToString(data))
	return nil
}

func sha256Hash(ctx *cli.Context) error {
	utils.SetLogger(ctx)
	message, err := getMessage(ctx)
	if err != nil {
		return err
	}
	data := []byte(message)
	if ctx.Bool(isHexFlag.Name) {
		if data, err = fromHex(message); err != nil {
			return err
		}
	}
	fmt.Printf("calc sha256 hash is '%X'\n", sha256.Sum256(data))
	return nil
}

func decodeLoginRes(ctx *cli.Context) error {
	utils.SetLogger(ctx)
	message, err := getMessage(ctx)
	if err != nil {
		return err
	}
	result, err := hive.DecodeLoginResult(message)
	if err != nil {
		return err
	}
	return printJSON(result)
}

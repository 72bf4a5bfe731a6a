package main

import (
	"encoding/json"
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/c2xstation/storefront/cmd/utils"
	"github.com/c2xstation/storefront/internal/storeapi"
	"github.com/c2xstation/storefront/params"
)

var (
	productsCommand = &cli.Command{
		Name:   "products",
		Usage:  "list the products of a game",
		Action: listProducts,
		Flags:  append([]cli.Flag{utils.GameIDFlag}, utils.CommonLogFlags...),
		Description: `
list the products of a game, the game id defaults to 'DefaultGameID' in config
`,
	}

	balanceCommand = &cli.Command{
		Name:      "balance",
		Usage:     "show the balances of an address",
		Action:    showBalances,
		ArgsUsage: "[address]",
		Flags:     utils.CommonLogFlags,
		Description: `
show the balances of the configured denoms, the address defaults to the configured wallet
`,
	}

	decodeCommand = &cli.Command{
		Name:      "decode",
		Usage:     "decode an unsigned tx payload",
		Action:    decodePayload,
		ArgsUsage: "<base64 payload>",
		Flags:     utils.CommonLogFlags,
		Description: `
decode an unsigned tx payload and print the signable transaction
`,
	}

	txStatusCommand = &cli.Command{
		Name:      "txstatus",
		Usage:     "query the status of a tx",
		Action:    txStatus,
		ArgsUsage: "<txhash>",
		Flags:     append([]cli.Flag{utils.WaitFlag}, utils.CommonLogFlags...),
		Description: `
query the status of a tx, with --wait it polls until confirmed, failed or timeout
`,
	}
)

func printJSON(v interface{}) error {
	bs, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(bs))
	return nil
}

func requireOneArg(ctx *cli.Context, name string) (string, error) {
	if ctx.NArg() != 1 {
		return "", fmt.Errorf("require exactly one position argument <%v>", name)
	}
	return ctx.Args().Get(0), nil
}

func listProducts(ctx *cli.Context) error {
	utils.SetLogger(ctx)
	loadConfig(ctx)
	config := params.GetConfig()
	initStoreAPI(config)

	gameID := utils.GetGameID(ctx, config.DefaultGameID)
	catalog, err := storeapi.GetProducts(ctx.Context, fmt.Sprint(gameID))
	if err != nil {
		return err
	}
	return printJSON(catalog)
}

func showBalances(ctx *cli.Context) error {
	utils.SetLogger(ctx)
	loadConfig(ctx)
	config := params.GetConfig()
	initStoreAPI(config)

	address := ctx.Args().First()
	if address == "" && config.Wallet != nil {
		address = config.Wallet.Address
	}
	result, err := storeapi.GetBalances(ctx.Context, address)
	if err != nil {
		return err
	}
	return printJSON(result)
}

func decodePayload(ctx *cli.Context) error {
	utils.SetLogger(ctx)
	payload, err := requireOneArg(ctx, "payload")
	if err != nil {
		return err
	}
	result, err := storeapi.DecodePayload(payload)
	if err != nil {
		return err
	}
	return printJSON(result)
}

func txStatus(ctx *cli.Context) error {
	utils.SetLogger(ctx)
	txHash, err := requireOneArg(ctx, "txhash")
	if err != nil {
		return err
	}
	loadConfig(ctx)
	initStoreAPI(params.GetConfig())

	status, err := storeapi.GetTxStatus(ctx.Context, txHash, ctx.Bool(utils.WaitFlag.Name))
	if err != nil {
		return err
	}
	return printJSON(status)
}

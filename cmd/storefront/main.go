// Command storefront is main program to start the storefront api server or its sub commands.
package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/c2xstation/storefront/cmd/utils"
	"github.com/c2xstation/storefront/common"
	"github.com/c2xstation/storefront/hive"
	"github.com/c2xstation/storefront/internal/storeapi"
	"github.com/c2xstation/storefront/lcd"
	"github.com/c2xstation/storefront/log"
	"github.com/c2xstation/storefront/metrics"
	"github.com/c2xstation/storefront/params"
	rpcserver "github.com/c2xstation/storefront/rpc/server"
)

var (
	clientIdentifier = "storefront"
	// Git SHA1 commit hash of the release (set via linker flags)
	gitCommit = ""
	gitDate   = ""
	// The app that holds all commands and flags.
	app = utils.NewApp(clientIdentifier, gitCommit, gitDate, "the storefront command line interface")
)

func initApp() {
	// Initialize the CLI app and start action
	app.Action = storefront
	app.HideVersion = true // we have a command to print the version
	app.Copyright = "Copyright 2024 The C2X Station Storefront Authors"
	app.Commands = []*cli.Command{
		productsCommand,
		balanceCommand,
		loginCommand,
		logoutCommand,
		profileCommand,
		checkoutCommand,
		decodeCommand,
		txStatusCommand,
		toolsCommand,
		utils.LicenseCommand,
		utils.VersionCommand,
	}
	app.Flags = []cli.Flag{
		utils.DataDirFlag,
		utils.ConfigFileFlag,
		utils.RunServerFlag,
		utils.LogFileFlag,
		utils.LogRotationFlag,
		utils.LogMaxAgeFlag,
		utils.VerbosityFlag,
		utils.JSONFormatFlag,
		utils.ColorFormatFlag,
	}
}

func main() {
	initApp()
	if err := app.Run(os.Args); err != nil {
		log.Println(err)
		os.Exit(1)
	}
}

func storefront(ctx *cli.Context) error {
	utils.SetLogger(ctx)
	if ctx.NArg() > 0 {
		return fmt.Errorf("invalid command: %q", ctx.Args().Get(0))
	}
	if !ctx.Bool(utils.RunServerFlag.Name) {
		return cli.ShowAppHelp(ctx)
	}

	configFile := loadConfig(ctx)
	config := params.GetConfig()
	if config.Server == nil {
		config.Server = &params.APIServerConfig{}
		if err := config.Server.CheckConfig(); err != nil {
			return err
		}
	}

	initStoreAPI(config)

	var metricsHandler rpcserver.MetricsHandler
	if config.Server.EnableMetrics {
		recorder := metrics.NewPrometheusRecorder()
		storeapi.SetRecorder(recorder)
		metricsHandler = recorder
	}

	if configFile != "" {
		params.WatchConfigFile(configFile, initStoreAPI, utils.CleanupChan)
	}

	log.Info("start storefront api server", "node", common.MakeName(clientIdentifier, params.VersionWithMeta))
	rpcserver.StartAPIServer(metricsHandler)

	utils.TopWaitGroup.Wait()
	return nil
}

// loadConfig applies --datadir and --config, returns the config file path
func loadConfig(ctx *cli.Context) string {
	params.SetDataDir(utils.GetDataDir(ctx))
	configFile := utils.GetConfigFilePath(ctx)
	params.LoadConfig(configFile)
	return configFile
}

func initStoreAPI(config *params.StoreConfig) {
	storeapi.Init(newBackend(config), newLCDClient(config))
}

func newBackend(config *params.StoreConfig) *hive.Client {
	return hive.NewClient(config.API.Origin, config.API.Timeout)
}

func newLCDClient(config *params.StoreConfig) *lcd.Client {
	return lcd.NewClient(config.Chain.LCD...)
}

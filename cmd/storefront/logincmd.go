package main

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/c2xstation/storefront/cmd/utils"
	"github.com/c2xstation/storefront/hive"
	"github.com/c2xstation/storefront/internal/storeapi"
	"github.com/c2xstation/storefront/log"
	"github.com/c2xstation/storefront/params"
	"github.com/c2xstation/storefront/session"
)

var (
	loginCommand = &cli.Command{
		Name:  "login",
		Usage: "hive game login",
		Description: `
hive game login, open the url printed by 'login url' and pass the redirected url to 'login confirm'
`,
		Subcommands: []*cli.Command{
			{
				Name:   "url",
				Usage:  "print the hive login url of a game",
				Action: printLoginURL,
				Flags:  append([]cli.Flag{utils.GameIDFlag}, utils.CommonLogFlags...),
			},
			{
				Name:      "confirm",
				Usage:     "confirm a hive login redirect and save the profile",
				Action:    confirmLoginCmd,
				ArgsUsage: "<redirect url or query>",
				Flags:     append([]cli.Flag{groupIDFlag}, utils.CommonLogFlags...),
			},
		},
	}

	logoutCommand = &cli.Command{
		Name:   "logout",
		Usage:  "end the backend session and clear the saved profile",
		Action: logout,
		Flags:  utils.CommonLogFlags,
	}

	profileCommand = &cli.Command{
		Name:   "profile",
		Usage:  "show the saved profile",
		Action: showProfile,
		Flags:  utils.CommonLogFlags,
	}

	groupIDFlag = &cli.StringFlag{
		Name:  "group",
		Usage: "select the character (group id), default the first one",
	}

	errLoginFailed  = errors.New("hive login failed")
	errNoSuchGroup  = errors.New("no such group")
	errEmptyProfile = errors.New("no saved profile, please login first")
)

func printLoginURL(ctx *cli.Context) error {
	utils.SetLogger(ctx)
	loadConfig(ctx)
	config := params.GetConfig()
	initStoreAPI(config)

	gameID := utils.GetGameID(ctx, config.DefaultGameID)
	loginURL, err := storeapi.GetLoginURL(ctx.Context, strconv.Itoa(gameID))
	if err != nil {
		return err
	}
	fmt.Println(loginURL)
	return nil
}

func confirmLoginCmd(ctx *cli.Context) error {
	utils.SetLogger(ctx)
	redirect, err := requireOneArg(ctx, "redirect")
	if err != nil {
		return err
	}
	loadConfig(ctx)
	config := params.GetConfig()
	initStoreAPI(config)

	sessions, err := session.NewRepository(config.Session)
	if err != nil {
		return err
	}
	defer sessions.Close()

	profile, err := confirmLogin(ctx.Context, sessions, redirect, ctx.String(groupIDFlag.Name))
	if err != nil {
		return err
	}
	return printJSON(profile)
}

// redirectQuery accepts a full redirect url or its query only
func redirectQuery(redirect string) string {
	redirect = strings.TrimSpace(redirect)
	if strings.Contains(redirect, "://") {
		if u, err := url.Parse(redirect); err == nil {
			return u.RawQuery
		}
	}
	return redirect
}

// confirmLogin confirms a login redirect with the backend and saves the selected character
func confirmLogin(ctx context.Context, sessions session.Repository, redirect, groupID string) (*session.Profile, error) {
	result, err := storeapi.ParseRedirect(ctx, redirectQuery(redirect))
	if err != nil {
		return nil, err
	}
	if !result.Success || result.User == nil {
		return nil, fmt.Errorf("%w, code '%v'", errLoginFailed, result.Code)
	}
	group, err := selectGroup(result.User, groupID)
	if err != nil {
		return nil, err
	}
	gameID, err := strconv.Atoi(result.GameID)
	if err != nil || gameID <= 0 {
		gameID = params.GetConfig().DefaultGameID
	}

	profile := &session.Profile{
		GameID:      gameID,
		PID:         result.User.PID,
		GroupID:     group.GroupID,
		GroupName:   group.GroupName,
		LastLoginAt: time.Now(),
	}
	if catalog, err := storeapi.GetProducts(ctx, strconv.Itoa(gameID)); err == nil && catalog.Game != nil {
		profile.GameTitle = catalog.Game.Title
	}
	if err := sessions.Set(ctx, profile); err != nil {
		return nil, err
	}
	log.Info("hive login success", "gameId", gameID, "pid", profile.PID, "groupId", profile.GroupID)
	return profile, nil
}

func selectGroup(user *hive.User, groupID string) (*hive.Group, error) {
	if groupID == "" {
		return user.Groups[0], nil
	}
	for _, group := range user.Groups {
		if group.GroupID == groupID {
			return group, nil
		}
	}
	return nil, fmt.Errorf("%w '%v'", errNoSuchGroup, groupID)
}

func logout(ctx *cli.Context) error {
	utils.SetLogger(ctx)
	loadConfig(ctx)
	config := params.GetConfig()

	newBackend(config).Logout(ctx.Context)

	sessions, err := session.NewRepository(config.Session)
	if err != nil {
		return err
	}
	defer sessions.Close()
	if err := sessions.Clear(ctx.Context); err != nil {
		return err
	}
	log.Info("logout success")
	return nil
}

func showProfile(ctx *cli.Context) error {
	utils.SetLogger(ctx)
	loadConfig(ctx)

	sessions, err := session.NewRepository(params.GetConfig().Session)
	if err != nil {
		return err
	}
	defer sessions.Close()

	profile, err := sessions.Get(ctx.Context)
	if errors.Is(err, session.ErrNoProfile) {
		return errEmptyProfile
	}
	if err != nil {
		return err
	}
	return printJSON(profile)
}

// Package utils provides the cli app, flags and process lifecycle shared by the commands.
package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/urfave/cli/v2"

	"github.com/c2xstation/storefront/params"
)

var (
	// LicenseCommand license command
	LicenseCommand = &cli.Command{
		Name:   "license",
		Usage:  "Display license information",
		Action: license,
	}
	// VersionCommand version command
	VersionCommand = &cli.Command{
		Name:    "version",
		Aliases: []string{"v"},
		Usage:   "Print version numbers",
		Action:  version,
	}

	clientName    string
	clientCommit  string
	clientGitDate string
)

// NewApp creates an app with sane defaults.
func NewApp(name, gitCommit, gitDate, usage string) *cli.App {
	clientName = name
	clientCommit = gitCommit
	clientGitDate = gitDate

	app := cli.NewApp()
	app.Name = filepath.Base(os.Args[0])
	app.Version = params.VersionWithCommit(gitCommit, gitDate)
	app.Usage = usage
	return app
}

func license(_ *cli.Context) error {
	fmt.Println(`The storefront is free software: you can redistribute it and/or modify
it under the terms of the GNU Lesser General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

The storefront is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
GNU Lesser General Public License for more details.

You should have received a copy of the GNU Lesser General Public License
along with storefront. If not, see <http://www.gnu.org/licenses/>.`)
	return nil
}

func version(ctx *cli.Context) error {
	fmt.Println(clientName)
	fmt.Println("Version:", params.VersionWithMeta)
	if clientCommit != "" {
		fmt.Println("Git Commit:", clientCommit)
	}
	if clientGitDate != "" {
		fmt.Println("Git Commit Date:", clientGitDate)
	}
	fmt.Println("Architecture:", runtime.GOARCH)
	fmt.Println("Go Version:", runtime.Version())
	fmt.Println("Operating System:", runtime.GOOS)
	fmt.Printf("GOPATH=%s\n", os.Getenv("GOPATH"))
	fmt.Printf("GOROOT=%s\n", runtime.GOROOT())
	return nil
}

package main

import (
	"errors"
	"flag"
	"fmt"

	echoapi "github.com/trezcool/udahili/apps/api/echo"
	"github.com/trezcool/udahili/core"
	"github.com/trezcool/udahili/storage/database"
)

var errHelp = errors.New("help provided")

type commandLine struct {
	conf *core.Config
}

func (cli *commandLine) printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  migrate - create the database if needed and apply pending migrations")
	fmt.Println("  mktoken -name NAME - mint a staff token for the admin review surface")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	mkTokenCmd := flag.NewFlagSet("mktoken", flag.ExitOnError)
	mkTokenName := mkTokenCmd.String("name", "", "The staff member's name; shows up in the token claims.")

	switch args[1] {
	case "migrate":
		return cli.migrate()
	case "mktoken":
		if err := mkTokenCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *mkTokenName == "" {
			mkTokenCmd.Usage()
			return errHelp
		}
		return cli.mkToken(*mkTokenName)
	default:
		cli.printUsage()
		return errHelp
	}
}

func (cli *commandLine) migrate() error {
	if err := database.CreateIfNotExist(cli.conf); err != nil {
		return err
	}

	db, err := database.Open(cli.conf)
	if err != nil {
		return err
	}
	defer db.Close()

	if err = db.Ping(); err != nil {
		return err
	}
	if err = database.Migrate(db); err != nil {
		return err
	}
	fmt.Println("database up to date")
	return nil
}

func (cli *commandLine) mkToken(name string) error {
	token, err := echoapi.GenerateToken(cli.conf, echoapi.GetStaffClaims(cli.conf, name))
	if err != nil {
		return err
	}
	fmt.Println(token)
	return nil
}

package main

import (
	"context"
	"log"
	"os"

	"github.com/spf13/afero"
	"github.com/urfave/cli/v2"

	"github.com/customeros/maildesk/config"
	"github.com/customeros/maildesk/internal/logger"
	"github.com/customeros/maildesk/internal/utils"
	"github.com/customeros/maildesk/server"
	"github.com/customeros/maildesk/services/email"
)

func main() {
	app := &cli.App{
		Name:  "maildesk",
		Usage: "local email desk with a JSON record store",
		Commands: []*cli.Command{
			{
				Name:   "server",
				Usage:  "Start the application server",
				Action: runServer,
			},
			{
				Name:   "init",
				Usage:  "Create the data file and the attachments directory",
				Action: runInit,
			},
			{
				Name:   "sweep",
				Usage:  "Delete attachments no email references",
				Action: runSweep,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatalf("%v", err)
	}
}

func loadConfig() (*config.Config, *logger.AppLogger, error) {
	cfg, err := config.InitConfig()
	if err != nil {
		return nil, nil, err
	}
	appLogger := logger.NewAppLogger(cfg.Logger)
	appLogger.InitLogger()
	return cfg, appLogger, nil
}

func runServer(_ *cli.Context) error {
	cfg, err := config.InitConfig()
	if err != nil {
		return cli.Exit("Config initialization failed: "+err.Error(), 1)
	}

	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
	log.Println("Maildesk starting up...")

	srv, err := server.NewServer(cfg)
	if err != nil {
		return cli.Exit("Server setup failed: "+err.Error(), 1)
	}

	if err = srv.Run(); err != nil {
		return cli.Exit("Server startup failed: "+err.Error(), 1)
	}

	log.Println("Shutdown complete")
	return nil
}

func runInit(c *cli.Context) error {
	cfg, appLogger, err := loadConfig()
	if err != nil {
		return cli.Exit("Config initialization failed: "+err.Error(), 1)
	}

	repos, err := server.InitRepositories(cfg, afero.NewOsFs(), appLogger)
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}
	if err = repos.Init(commandContext(c)); err != nil {
		return cli.Exit("Initialization failed: "+err.Error(), 1)
	}

	appLogger.Infof("Initialized %s and %s", cfg.AppConfig.DataFile, cfg.AppConfig.AttachmentsDir)
	return nil
}

func runSweep(c *cli.Context) error {
	cfg, appLogger, err := loadConfig()
	if err != nil {
		return cli.Exit("Config initialization failed: "+err.Error(), 1)
	}

	repos, err := server.InitRepositories(cfg, afero.NewOsFs(), appLogger)
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}

	sweeper := email.NewAttachmentSweeper(repos, cfg.CronConfig.AttachmentSweepGracePeriod, appLogger)
	removed, err := sweeper.SweepOrphanAttachments(commandContext(c))
	if err != nil {
		return cli.Exit("Sweep failed: "+err.Error(), 1)
	}

	appLogger.Infof("Removed %d orphan attachments", removed)
	return nil
}

func commandContext(c *cli.Context) context.Context {
	return utils.SetAppSourceInContext(c.Context, "cli")
}

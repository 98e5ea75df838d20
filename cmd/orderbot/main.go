package main

import (
	"fmt"
	"log"

	"github.com/m3rciful/orderbot/core/bootstrap"
	"github.com/m3rciful/orderbot/core/cmd"
	"github.com/m3rciful/orderbot/internal/taxibot"
)

func main() {
	err := cmd.Run(cmd.Options{
		ConfigEnvVar:      "CONFIG_PATH",
		DefaultConfigPath: "config.yaml",
		LoadConfig: func(path string) (cmd.ConfigCarrier, error) {
			return taxibot.LoadConfig(path)
		},
		Bootstrap: func(c cmd.ConfigCarrier) (cmd.TelegramApp, error) {
			cfg, ok := c.(*taxibot.Config)
			if !ok {
				return nil, fmt.Errorf("unexpected config type %T", c)
			}
			res, err := bootstrap.Run(bootstrap.Options{
				Config:   cfg.CoreConfig(),
				Database: cfg.Database,
			})
			if err != nil {
				return nil, err
			}
			return taxibot.New(cfg, res.DB)
		},
	})
	if err != nil {
		log.Fatal(err)
	}
}

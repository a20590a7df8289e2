package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/quellen/nt/internal/config"
	"github.com/quellen/nt/internal/constants"
	"github.com/quellen/nt/pkg/cmd/root"
)

func Execute() {
	home, err := os.UserHomeDir()
	cobra.CheckErr(err)

	viper.AddConfigPath(home + constants.ConfigDir)
	viper.SetConfigName(constants.ConfigFile)
	viper.SetConfigType(constants.ConfigFileType)
	viper.ReadInConfig()

	if err := config.EnsureConfigExists(home); err != nil {
		fmt.Printf("failed to initialize config: %v\n", err)
		os.Exit(1)
	}

	cfg, cfgErr := config.Load(home)
	if cfgErr != nil {
		fmt.Printf("failed to load config: %v\n", cfgErr)
		os.Exit(1)
	}

	rootCmd := root.NewCmdRoot(cfg)
	if execErr := rootCmd.Execute(); execErr != nil {
		os.Exit(1)
	}
}

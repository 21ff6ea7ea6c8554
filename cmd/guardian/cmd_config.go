// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/codeguardian/services/guardian/config"
)

func newConfigCmd(a *app) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the configuration file",
	}

	initCmd := &cobra.Command{
		Use:   "init [dir]",
		Short: "Write the default configuration to .ai-guardian.yml",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}
			path, err := config.Init(dir)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.stdout, "Created configuration file: %s\n", path)
			return nil
		},
	}

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Print the resolved configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.loadConfig()
			if err != nil {
				return err
			}
			data, err := config.Marshal(cfg)
			if err != nil {
				return err
			}
			_, err = a.stdout.Write(data)
			return err
		},
	}

	configCmd.AddCommand(initCmd, showCmd)
	return configCmd
}

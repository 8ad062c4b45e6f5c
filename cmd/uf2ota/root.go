/**
 * Licensed to the Apache Software Foundation (ASF) under one
 * or more contributor license agreements.  See the NOTICE file
 * distributed with this work for additional information
 * regarding copyright ownership.  The ASF licenses this file
 * to you under the Apache License, Version 2.0 (the
 * "License"); you may not use this file except in compliance
 * with the License.  You may obtain a copy of the License at
 *
 *  http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing,
 * software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY
 * KIND, either express or implied.  See the License for the
 * specific language governing permissions and limitations
 * under the License.
 */

// Command uf2ota packages firmware images into UF2/OTA streams and can
// apply or inspect them on the host, for testing device-side integrations
// without a real device attached.
package main

import (
	"fmt"
	"os"

	"github.com/kardianos/osext"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var logLevelStr string
var verbose bool
var quiet bool

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "uf2ota",
		Short: "Pack, apply and inspect UF2/OTA firmware update streams",
		Long: "uf2ota packages firmware images into the UF2/OTA streaming " +
			"container, and can apply or inspect a packaged stream on the " +
			"host the same way the device-side engine would.",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := log.WarnLevel
			if verbose {
				level = log.DebugLevel
			} else if quiet {
				level = log.ErrorLevel
			}
			if logLevelStr != "" {
				parsed, err := log.ParseLevel(logLevelStr)
				if err != nil {
					fmt.Fprintf(os.Stderr, "uf2ota: invalid log level %q: %v\n", logLevelStr, err)
					os.Exit(1)
				}
				level = parsed
			}
			log.SetLevel(level)
		},
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Help()
		},
	}

	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	root.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "only log errors")
	root.PersistentFlags().StringVarP(&logLevelStr, "loglevel", "l", "", "log level (overrides -v/-q)")

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print the uf2ota version and the running binary's path",
		Run: func(cmd *cobra.Command, args []string) {
			exe, err := osext.Executable()
			if err != nil {
				exe = "(unknown)"
			}
			fmt.Printf("uf2ota %s (%s)\n", version, exe)
		},
	}
	root.AddCommand(versionCmd)

	return root
}

const version = "0.1.0"

func main() {
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})

	root := rootCmd()
	addPackCmd(root)
	addApplyCmd(root)
	addInfoCmd(root)
	addVerifyCmd(root)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

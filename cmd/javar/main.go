// Copyright 2022 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

// javar loads a compiled Java class file and either executes it on the
// bytecode interpreter or dumps its parsed structure.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

const version = "0.1.0"

var (
	verbose bool
	trace   bool

	wantPool    bool
	wantFields  bool
	wantMethods bool
	wantAll     bool
)

func main() {

	var rootCmd = &cobra.Command{
		Use:   "javar",
		Short: "A class file loader and bytecode interpreter",
		Long: "Loads JVM class files, dumps their constant pool, fields and" +
			" methods, and runs a supported bytecode subset",
		Run: func(cmd *cobra.Command, args []string) {
			_ = cmd.Help()
		},
	}

	var versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print version number",
		Long:  "Print version number",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("You are using version " + version)
		},
	}

	var runCmd = &cobra.Command{
		Use:   "run <file.class>",
		Short: "Execute the class file",
		Long:  "Runs <clinit> then main of the given class and prints the result",
		Args:  cobra.ExactArgs(1),
		Run:   run,
	}

	var dumpCmd = &cobra.Command{
		Use:   "dump <file.class>",
		Short: "Dump the parsed class file",
		Long:  "Dumps interesting structure of the class file as JSON",
		Args:  cobra.MinimumNArgs(1),
		Run:   dump,
	}

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(dumpCmd)

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	runCmd.Flags().BoolVarP(&trace, "trace", "t", false, "trace stack and locals per instruction")
	dumpCmd.Flags().BoolVarP(&wantPool, "pool", "", false, "Dump the constant pool")
	dumpCmd.Flags().BoolVarP(&wantFields, "fields", "", false, "Dump the field table")
	dumpCmd.Flags().BoolVarP(&wantMethods, "methods", "", false, "Dump the method table")
	dumpCmd.Flags().BoolVarP(&wantAll, "all", "", false, "Dump everything")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

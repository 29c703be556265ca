// Copyright 2022 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"os"

	jvmparser "github.com/mgtlake/jvm"
	"github.com/mgtlake/jvm/log"
	"github.com/spf13/cobra"
)

func newLogger() log.Logger {
	level := log.LevelError
	if verbose || trace {
		level = log.LevelDebug
	}
	return log.NewFilter(log.NewStdLogger(os.Stdout), log.FilterLevel(level))
}

func run(cmd *cobra.Command, args []string) {
	filePath := args[0]

	cf, err := jvmparser.New(filePath, &jvmparser.Options{
		Trace:  trace,
		Logger: newLogger(),
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error while opening file: %s, reason: %v\n", filePath, err)
		os.Exit(1)
	}
	defer cf.Close()

	if err := cf.Parse(); err != nil {
		fmt.Fprintf(os.Stderr, "Error while parsing file: %s, reason: %v\n", filePath, err)
		os.Exit(1)
	}

	result, err := cf.Run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error while executing %s: %v\n", cf.ThisName, err)
		os.Exit(1)
	}

	fmt.Println(result)
}

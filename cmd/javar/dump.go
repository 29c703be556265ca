// Copyright 2022 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	jvmparser "github.com/mgtlake/jvm"
	"github.com/spf13/cobra"
)

func prettyPrint(buff []byte) string {
	var prettyJSON bytes.Buffer
	err := json.Indent(&prettyJSON, buff, "", "\t")
	if err != nil {
		return string(buff)
	}
	return prettyJSON.String()
}

func dumpClass(filePath string, cmd *cobra.Command) {
	cf, err := jvmparser.New(filePath, &jvmparser.Options{Logger: newLogger()})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error while opening file: %s, reason: %v\n", filePath, err)
		return
	}
	defer cf.Close()

	if err := cf.Parse(); err != nil {
		fmt.Fprintf(os.Stderr, "Error while parsing file: %s, reason: %v\n", filePath, err)
		return
	}

	fmt.Printf("%s (%s, super %s), %s\n", cf.ThisName,
		jvmparser.JavaVersion(cf.MajorVersion), cf.SuperName, filePath)

	wantPool, _ := cmd.Flags().GetBool("pool")
	wantAll, _ := cmd.Flags().GetBool("all")
	if wantPool || wantAll {
		pool, _ := json.Marshal(cf.ConstantPool)
		fmt.Println(prettyPrint(pool))
	}

	wantFields, _ := cmd.Flags().GetBool("fields")
	if wantFields || wantAll {
		fields, _ := json.Marshal(cf.Fields)
		fmt.Println(prettyPrint(fields))
	}

	wantMethods, _ := cmd.Flags().GetBool("methods")
	if wantMethods || wantAll {
		methods, _ := json.Marshal(cf.Methods)
		fmt.Println(prettyPrint(methods))
	}
}

func dump(cmd *cobra.Command, args []string) {
	for _, filePath := range args {
		dumpClass(filePath, cmd)
	}
}

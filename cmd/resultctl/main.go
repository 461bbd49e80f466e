/*
 * Copyright 2025 The BTEB Results Authors.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Command resultctl is the operator tool for a result proxy deployment:
// list configured sources, probe connectivity and run ad-hoc lookups
// against the fallback chain.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"runtime"

	log "github.com/sirupsen/logrus"

	"github.com/rafsaan123/probable-meme/config"
	"github.com/rafsaan123/probable-meme/model"
	"github.com/rafsaan123/probable-meme/source"
)

const name = "resultctl"

var (
	version     = "unknown"
	configFile  string
	listFlag    bool
	testFlag    bool
	searchFlag  bool
	rollNo      string
	regulation  string
	program     string
	showVersion bool
)

func init() {
	flag.StringVar(&configFile, "config", "config.yaml", "Configuration file for result proxy")
	flag.BoolVar(&listFlag, "list", false, "List configured sources and web APIs")
	flag.BoolVar(&testFlag, "test", false, "Probe connectivity of all sources and web APIs")
	flag.BoolVar(&searchFlag, "search", false, "Run one lookup against the fallback chain")
	flag.StringVar(&rollNo, "roll", "", "Roll number for -search")
	flag.StringVar(&regulation, "regulation", "", "Regulation year for -search")
	flag.StringVar(&program, "program", "Diploma in Engineering", "Program name for -search")
	flag.BoolVar(&showVersion, "version", false, "Show version information and exit")
}

func main() {
	flag.Parse()
	if showVersion {
		fmt.Printf("%v %v %v %v %v\n",
			name, version, runtime.GOOS, runtime.GOARCH, runtime.Version())
		os.Exit(0)
	}

	cfg, err := config.LoadConfig("", configFile)
	if err != nil {
		log.WithError(err).Error("read config failed")
		os.Exit(-1)
		return
	}

	chain, err := source.BuildChain(cfg)
	if err != nil {
		log.WithError(err).Error("build source chain failed")
		os.Exit(-1)
		return
	}
	defer chain.Close()

	switch {
	case listFlag:
		listSources(chain)
	case testFlag:
		os.Exit(testSources(chain))
	case searchFlag:
		os.Exit(search(chain))
	default:
		flag.Usage()
		os.Exit(2)
	}
}

func listSources(chain *source.Chain) {
	fmt.Println("database projects (search order):")
	for _, s := range chain.Projects() {
		marker := " "
		if s.Name() == chain.CurrentName() {
			marker = "*"
		}
		fmt.Printf("  %s %s\t%s\n", marker, s.Name(), s.Description())
	}

	fmt.Println("web apis (priority order):")
	for _, s := range chain.WebAPIs() {
		fmt.Printf("    %s\t%s\n", s.Name(), s.Description())
	}
}

func testSources(chain *source.Chain) (exitCode int) {
	all := append(append([]source.Source{}, chain.Projects()...), chain.WebAPIs()...)

	for _, s := range all {
		ctx, cancel := context.WithTimeout(context.Background(), chain.Timeout())
		err := s.Ping(ctx)
		cancel()

		if err != nil {
			fmt.Printf("  %s\tfailed: %v\n", s.Name(), err)
			exitCode = 1
		} else {
			fmt.Printf("  %s\tconnected\n", s.Name())
		}
	}

	return
}

func search(chain *source.Chain) (exitCode int) {
	if rollNo == "" || regulation == "" || program == "" {
		log.Error("-search requires -roll, -regulation and -program")
		return 2
	}

	key := model.Key{
		Program:    program,
		Regulation: regulation,
		RollNo:     rollNo,
	}

	res, attempted, err := chain.Lookup(context.Background(), key)
	if err != nil {
		log.WithError(err).Error("lookup failed")
		return 1
	}

	payload, err := json.MarshalIndent(model.NewSearchResponse(key, res, attempted), "", "  ")
	if err != nil {
		log.WithError(err).Error("encode result failed")
		return 1
	}

	fmt.Println(string(payload))
	return
}

// Copyright (C) 2017 Google Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Command ccc is the command-line frontend for this compiler: it reads a
// single C source file, drives it through package driver, and writes
// either textual LLVM IR or a linked object file. Flag handling and
// verbosity gating follow qjcg-driving/main.go's flag+hashicorp/logutils
// pattern (see DESIGN.md).
package main

import (
	"flag"
	"fmt"
	"io/ioutil"
	"log"
	"os"
	"os/exec"
	"strings"

	"github.com/hashicorp/logutils"

	"github.com/PiJoules/c-sub000/driver"
)

// includePathList collects every -I flag's value, in the order given,
// implementing the repeatable-flag contract spec §6 requires via a custom
// flag.Value the same way the original's argparse.c accumulates -I (see
// SPEC_FULL.md §7A).
type includePathList []string

func (l *includePathList) String() string { return strings.Join(*l, ":") }

func (l *includePathList) Set(v string) error {
	*l = append(*l, v)
	return nil
}

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := flag.NewFlagSet("ccc", flag.ContinueOnError)
	var includes includePathList
	fs.Var(&includes, "I", "add dir to the include search path (repeatable)")
	verbose := fs.Bool("v", false, "enable verbose (debug) logging")
	fs.Bool("c", false, "accepted for compatibility; no effect")
	output := fs.String("o", "out.obj", "output path")
	emitLLVM := fs.Bool("emit-llvm", false, "emit textual LLVM IR instead of an object file")

	if err := fs.Parse(args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return -1
	}

	filter := &logutils.LevelFilter{
		Levels:   []logutils.LogLevel{"DEBUG", "INFO"},
		MinLevel: logutils.LogLevel("INFO"),
		Writer:   os.Stderr,
	}
	if *verbose {
		filter.MinLevel = logutils.LogLevel("DEBUG")
	}
	logger := log.New(filter, "", 0)

	if fs.NArg() != 1 {
		logger.Printf("[INFO] expected exactly one input file, got %d", fs.NArg())
		return -1
	}
	inputPath := fs.Arg(0)

	src, err := preprocess(inputPath, includes, logger)
	if err != nil {
		logger.Printf("[INFO] %s", err)
		return -1
	}

	d := driver.New(inputPath, *verbose, logger)
	if err := d.CompileSource(src); err != nil {
		logger.Printf("[INFO] %s", err)
		return -1
	}

	ir := d.Module.IR.String()
	if err := verifyIR(ir, logger); err != nil {
		logger.Printf("[INFO] %s", err)
		return -1
	}

	if *emitLLVM {
		if err := ioutil.WriteFile(*output, []byte(ir), 0644); err != nil {
			logger.Printf("[INFO] %s", err)
			return -1
		}
		return 0
	}

	if err := emitObject(ir, *output, logger); err != nil {
		logger.Printf("[INFO] %s", err)
		return -1
	}
	return 0
}

// preprocess runs the external preprocessor collaborator spec §1 calls
// out of scope: it shells out to clang -E with every -I directory, the
// same external-tool boundary emitObject crosses for final object
// emission. When clang is not on PATH, the input is read and lexed as-is,
// a documented simplification for a source file that needs no macro
// expansion or #include (spec §6: "a single preprocessed or
// pre-preprocessable C source file").
func preprocess(path string, includes includePathList, logger *log.Logger) (string, error) {
	clangPath, err := exec.LookPath("clang")
	if err != nil {
		logger.Printf("[DEBUG] clang not found on PATH, reading %s unpreprocessed", path)
		data, err := ioutil.ReadFile(path)
		if err != nil {
			return "", err
		}
		return string(data), nil
	}
	cmdArgs := []string{"-E", "-P"}
	for _, dir := range includes {
		cmdArgs = append(cmdArgs, "-I", dir)
	}
	cmdArgs = append(cmdArgs, path)
	cmd := exec.Command(clangPath, cmdArgs...)
	out, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("preprocessing %s: %w", path, err)
	}
	return string(out), nil
}

// verifyIR runs the IR verification pass spec §7 requires after lowering
// completes. llvm-as parses and validates the module's textual form
// without ever writing its output, the lightest-weight correctness check
// available to a pure-Go IR builder with no native verifier of its own.
// When llvm-as is not on PATH, verification is skipped rather than failing
// the build over missing optional tooling.
func verifyIR(ir string, logger *log.Logger) error {
	llvmAs, err := exec.LookPath("llvm-as")
	if err != nil {
		logger.Printf("[DEBUG] llvm-as not found on PATH, skipping IR verification")
		return nil
	}
	cmd := exec.Command(llvmAs, "-o", os.DevNull)
	cmd.Stdin = strings.NewReader(ir)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("LLVM IR verification failed: %s", out)
	}
	return nil
}

// emitObject writes ir to a temporary .ll file and invokes clang to
// assemble and link it into outputPath, the object-file path DESIGN.md's
// Open Questions section resolves this way: llir/llvm only prints textual
// IR, so turning that into a real object file is itself an external-tool
// step, exactly like the original C compiler's own driver (spec §1: "the
// LLVM API itself... we specify what IR shapes must be emitted, not how").
func emitObject(ir, outputPath string, logger *log.Logger) error {
	clangPath, err := exec.LookPath("clang")
	if err != nil {
		return fmt.Errorf("emitting %s: clang not found on PATH", outputPath)
	}
	tmp, err := ioutil.TempFile("", "ccc-*.ll")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.WriteString(ir); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	logger.Printf("[DEBUG] clang -c %s -o %s", tmp.Name(), outputPath)
	cmd := exec.Command(clangPath, "-c", tmp.Name(), "-o", outputPath)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("clang failed: %s", out)
	}
	return nil
}

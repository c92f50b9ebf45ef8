// Package main provides the entry point for rvsim, a cycle-accurate RV64I/M
// simulator that can run a program through either the single-stage
// reference datapath or the configurable 5-stage pipeline.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/DWBH21/riscv-simulator-pipelined/emu"
	"github.com/DWBH21/riscv-simulator-pipelined/loader"
	"github.com/DWBH21/riscv-simulator-pipelined/report"
	"github.com/DWBH21/riscv-simulator-pipelined/timing/core"
	"github.com/DWBH21/riscv-simulator-pipelined/timing/pipeline"
)

var (
	vmFlag          = flag.String("vm", "single", "Datapath organization: single or pipeline")
	hazardFlag      = flag.String("hazard", "ideal", "Data-hazard policy: ideal, stall, or forward (pipeline only)")
	predictorFlag   = flag.String("predictor", "static-nt", "Branch predictor: static-nt, static-t, 1bit, or 2bit")
	branchStageFlag = flag.String("branch-stage", "ex", "Branch-resolution stage: ex or id")
	stepDelayFlag   = flag.Uint64("step-delay", 0, "Milliseconds to pause between ticks (0 runs at full speed)")
	maxInstrFlag    = flag.Uint64("max-instructions", 0, "Stop after this many retired instructions (0 is unbounded, single-stage only)")
	noMExtFlag      = flag.Bool("no-m", false, "Clear the M-extension flag in the pipeline config (M opcodes still decode and execute)")
	elfFlag         = flag.Bool("elf", false, "Treat the input file as an ELF binary instead of a text memory image")
	memHighFlag     = flag.Uint64("mem-high", 0, "Upper bound (exclusive) of the addressable memory region; 0 leaves memory unbounded")
	verboseFlag     = flag.Bool("v", false, "Verbose output")
)

func main() {
	flag.Parse()

	if flag.NArg() < 1 {
		fmt.Fprintf(os.Stderr, "Usage: rvsim [options] <program>\n\nOptions:\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	programPath := flag.Arg(0)

	regFile := &emu.RegFile{}
	var memory *emu.Memory
	if *memHighFlag > 0 {
		memory = emu.NewBoundedMemory(0, *memHighFlag)
	} else {
		memory = emu.NewMemory()
	}

	var entryPoint, programSize uint64

	if *elfFlag {
		prog, err := loader.Load(programPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading program: %v\n", err)
			os.Exit(1)
		}
		for _, seg := range prog.Segments {
			for i, b := range seg.Data {
				memory.Write8(seg.VirtAddr+uint64(i), b)
			}
			for i := uint64(len(seg.Data)); i < seg.MemSize; i++ {
				memory.Write8(seg.VirtAddr+i, 0)
			}
			end := seg.VirtAddr + seg.MemSize
			if end > programSize {
				programSize = end
			}
		}
		entryPoint = prog.EntryPoint
		regFile.WriteReg(2, loader.DefaultStackTop)
	} else {
		f, err := os.Open(programPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening image: %v\n", err)
			os.Exit(1)
		}
		img, err := loader.LoadImage(f)
		f.Close()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error parsing image: %v\n", err)
			os.Exit(1)
		}
		for _, w := range img.Warnings {
			fmt.Fprintf(os.Stderr, "warning: %s\n", w)
		}
		img.Apply(memory)
		programSize = img.ProgramSize
		regFile.WriteReg(2, loader.DefaultStackTop)
	}

	if *verboseFlag {
		fmt.Fprintf(os.Stderr, "Loaded: %s (entry=0x%x, program_size=0x%x)\n", programPath, entryPoint, programSize)
	}

	var snap report.Snapshot
	if *vmFlag == "pipeline" {
		snap = runPipeline(regFile, memory, entryPoint, programSize)
	} else {
		snap = runSingleStage(regFile, memory, entryPoint)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(snap); err != nil {
		fmt.Fprintf(os.Stderr, "Error encoding snapshot: %v\n", err)
		os.Exit(1)
	}

	os.Exit(int(snap.ExitCode))
}

func runSingleStage(regFile *emu.RegFile, memory *emu.Memory, entryPoint uint64) report.Snapshot {
	syscallHandler := emu.NewDefaultSyscallHandler(regFile, memory, os.Stdout, os.Stderr)
	s := core.NewSingleStage(regFile, memory, entryPoint, core.WithSyscallHandler(syscallHandler))

	if *stepDelayFlag > 0 {
		for !s.Halted() && (*maxInstrFlag == 0 || s.Stats().Retired < *maxInstrFlag) {
			s.Tick()
			time.Sleep(time.Duration(*stepDelayFlag) * time.Millisecond)
		}
	} else {
		s.Run(*maxInstrFlag)
	}

	return report.FromSingleStage(s, regFile)
}

func runPipeline(regFile *emu.RegFile, memory *emu.Memory, entryPoint, programSize uint64) report.Snapshot {
	config := buildConfig()
	if err := config.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	syscallHandler := emu.NewDefaultSyscallHandler(regFile, memory, os.Stdout, os.Stderr)
	p := pipeline.NewPipeline(regFile, memory, *config, pipeline.WithSyscallHandler(syscallHandler))
	p.SetPC(entryPoint)

	if *stepDelayFlag > 0 {
		for !p.Halted() {
			p.Tick()
			if p.PC() >= programSize && p.Stats().Cycles > 0 {
				break
			}
			time.Sleep(time.Duration(*stepDelayFlag) * time.Millisecond)
		}
	} else {
		p.Run(programSize)
	}

	return report.FromPipeline(p, regFile)
}

func buildConfig() *pipeline.Config {
	vmType := pipeline.VMSingleStage
	if *vmFlag == "pipeline" {
		vmType = pipeline.VMMultiStage
	}

	hazardMode := pipeline.HazardIdeal
	switch *hazardFlag {
	case "stall":
		hazardMode = pipeline.HazardStallOnly
	case "forward":
		hazardMode = pipeline.HazardForwarding
	}

	predictorKind := pipeline.PredictorStaticNotTaken
	switch *predictorFlag {
	case "static-t":
		predictorKind = pipeline.PredictorStaticTaken
	case "1bit":
		predictorKind = pipeline.PredictorDynamic1Bit
	case "2bit":
		predictorKind = pipeline.PredictorDynamic2Bit
	}

	branchStage := pipeline.BranchInEX
	if *branchStageFlag == "id" {
		branchStage = pipeline.BranchInID
	}

	return pipeline.NewConfig(
		pipeline.WithVMType(vmType),
		pipeline.WithDataHazardMode(hazardMode),
		pipeline.WithBranchPredictor(predictorKind),
		pipeline.WithBranchStage(branchStage),
		pipeline.WithRunStepDelay(*stepDelayFlag),
		pipeline.WithExtensions(!*noMExtFlag, false, false),
	)
}

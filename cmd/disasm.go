package cmd

import (
	"fmt"
	"os"

	"github.com/retroenv/retrogolib/log"
	"github.com/spf13/cobra"

	"github.com/bradford-hamilton/gr8/internal/opcode"
)

// disasmCmd decodes a whole ROM and prints one line per instruction:
// address, raw word, mnemonic.
var disasmCmd = &cobra.Command{
	Use:   "disasm `path/to/rom`",
	Short: "disassemble a chip-8 rom",
	Args:  cobra.ExactArgs(1),
	Run:   runDisasm,
}

func runDisasm(cmd *cobra.Command, args []string) {
	logger := newLogger()

	rom, err := os.ReadFile(args[0])
	if err != nil {
		logger.Fatal("error reading rom", log.Err(err))
	}

	ops, err := opcode.DecodeAll(rom)
	if err != nil {
		logger.Fatal("error disassembling rom", log.Err(err))
	}

	for idx, op := range ops {
		// ROMs load at 0x200, so report addresses the way a running
		// program would see them.
		b0, b1 := op.Encode()
		fmt.Printf("0x%03X  %02X%02X  %s\n", 0x200+idx*2, b0, b1, op)
	}
}

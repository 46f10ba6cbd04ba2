package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/zeebo/blake3"

	"github.com/bsm/hgsave"
	"github.com/bsm/hgsave/internal/backup"
)

type command struct {
	usage   string
	summary string
	minArgs int
	maxArgs int
	run     func(e *env, args []string) error
}

var commandOrder = []string{"decode", "encode", "show", "set", "info", "restore"}

var commands = map[string]command{
	"decode": {
		usage:   "<save> [-o out]",
		summary: "print a save as JSON with long keys, or convert it to -o",
		minArgs: 1, maxArgs: 1,
		run: runDecode,
	},
	"encode": {
		usage:   "<in.json> -o <save>",
		summary: "convert JSON with long keys to a save",
		minArgs: 1, maxArgs: 1,
		run: runEncode,
	},
	"show": {
		usage:   "<save> [pointer]",
		summary: "print the subtree at a JSON pointer",
		minArgs: 1, maxArgs: 2,
		run: runShow,
	},
	"set": {
		usage:   "<save> <pointer> <json|@file>",
		summary: "replace the subtree at a JSON pointer and save in place",
		minArgs: 3, maxArgs: 3,
		run: runSet,
	},
	"info": {
		usage:   "<save>",
		summary: "list container blocks and the payload digest",
		minArgs: 1, maxArgs: 1,
		run: runInfo,
	},
	"restore": {
		usage:   "<backup> <dest>",
		summary: "restore a backup made before overwriting",
		minArgs: 2, maxArgs: 2,
		run: runRestore,
	},
}

func runDecode(e *env, args []string) error {
	if err := e.session.Open(args[0]); err != nil {
		return err
	}
	if e.output == "" {
		_, err := e.session.WriteTo(e.stdout)
		return err
	}
	return e.session.Save(e.output)
}

func runEncode(e *env, args []string) error {
	if e.output == "" {
		return usagef("encode requires -o")
	}
	if err := e.session.Open(args[0]); err != nil {
		return err
	}
	return e.session.Save(e.output)
}

func runShow(e *env, args []string) error {
	if err := e.session.Open(args[0]); err != nil {
		return err
	}

	ptr := ""
	if len(args) > 1 {
		ptr = args[1]
	}
	text, err := e.session.Show(ptr)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(e.stdout, text)
	return err
}

func runSet(e *env, args []string) error {
	path, ptr, text := args[0], args[1], args[2]
	if strings.HasPrefix(text, "@") {
		data, err := os.ReadFile(text[1:])
		if err != nil {
			return err
		}
		text = string(data)
	}

	if err := e.session.Open(path); err != nil {
		return err
	}
	if err := e.session.Replace(ptr, text); err != nil {
		return err
	}

	dst := path
	if e.output != "" {
		dst = e.output
	}
	if err := e.session.Save(dst); err != nil {
		return err
	}
	e.logger.Info("replaced subtree", "path", dst, "pointer", ptr)
	return nil
}

func runInfo(e *env, args []string) error {
	raw, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}

	headers, err := hgsave.ScanBlocks(raw)
	if errors.Is(err, hgsave.ErrBadMagic) && len(headers) == 0 {
		fmt.Fprintf(e.stdout, "%s: not a container, %d bytes\n", args[0], len(raw))
		fmt.Fprintf(e.stdout, "blake3: %x\n", blake3.Sum256(raw))
		return nil
	} else if err != nil {
		return err
	}

	var compressed, uncompressed uint64
	fmt.Fprintf(e.stdout, "%s: %d block(s)\n", args[0], len(headers))
	for i, h := range headers {
		fmt.Fprintf(e.stdout, "  block %-4d %10d -> %10d bytes\n", i, h.CompressedSize, h.UncompressedSize)
		compressed += uint64(h.CompressedSize)
		uncompressed += uint64(h.UncompressedSize)
	}
	fmt.Fprintf(e.stdout, "total: %d -> %d bytes\n", compressed, uncompressed)

	plain, err := hgsave.NewCodec(&hgsave.Options{Logger: e.logger}).Decompress(raw)
	if err != nil {
		return err
	}
	fmt.Fprintf(e.stdout, "blake3: %x\n", blake3.Sum256(plain))
	return nil
}

func runRestore(e *env, args []string) error {
	if err := backup.Restore(args[0], args[1]); err != nil {
		return err
	}
	e.logger.Info("restored backup", "backup", args[0], "path", args[1])
	return nil
}

package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/piragi/knowledge-shell/internal/domain/nav"
)

var errUsage = errors.New("usage error")

type navOptions struct {
	File string
}

func parseNavOptions(name string, args []string, defaultFile string) (navOptions, error) {
	fs := flag.NewFlagSet("nav "+name, flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	var opts navOptions
	fs.StringVar(&opts.File, "file", defaultFile, "Navigation YAML file (defaults to NAV_CONFIG_PATH, then the embedded config)")
	if err := fs.Parse(args); err != nil {
		return navOptions{}, err
	}
	if fs.NArg() > 0 {
		return navOptions{}, fmt.Errorf("%w: unexpected arguments %v", errUsage, fs.Args())
	}
	return opts, nil
}

func runNav(ctx *commandContext, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("%w: nav validate|dump [--file path]", errUsage)
	}
	sub, rest := args[0], args[1:]

	opts, err := parseNavOptions(sub, rest, ctx.Config.Nav.Path)
	if err != nil {
		return err
	}
	model, err := nav.LoadOrDefault(opts.File)
	if err != nil {
		return err
	}

	source := "embedded"
	if strings.TrimSpace(opts.File) != "" {
		source = opts.File
	}

	switch sub {
	case "validate":
		items := 0
		for _, g := range model.Groups() {
			items += countItems(g.Items)
		}
		return writef(ctx.Out, "navigation ok: source=%s version=%d groups=%d items=%d routes=%d\n",
			source, model.Version(), len(model.Groups()), items, len(model.Targets()))
	case "dump":
		data, err := nav.Marshal(model)
		if err != nil {
			return err
		}
		_, err = ctx.Out.Write(data)
		return err
	default:
		return fmt.Errorf("%w: unknown nav subcommand %q", errUsage, sub)
	}
}

func countItems(items []nav.Item) int {
	n := len(items)
	for _, it := range items {
		n += countItems(it.Children)
	}
	return n
}

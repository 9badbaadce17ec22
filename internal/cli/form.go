package cli

import (
	"fmt"
	"strconv"

	"github.com/Parkside-Labs/evalgate/internal/engine"
)

// formFromArgs assembles a RunForm from the positional arguments of the run
// and preview subcommands. The layout mirrors the engine's own CLI:
//
//	smoke | full | retry
//	model <name>
//	pattern <regex>
//	first <count> [model <name>]
func formFromArgs(args []string) (engine.RunForm, error) {
	if len(args) == 0 {
		return engine.RunForm{}, fmt.Errorf("a run type is required (smoke, model, full, pattern, first, retry)")
	}

	form := engine.RunForm{RunType: args[0]}
	rest := args[1:]

	switch engine.RunType(args[0]) {
	case engine.RunTypeModel:
		if len(rest) != 1 {
			return form, fmt.Errorf("usage: model <name>")
		}
		form.ModelName = rest[0]

	case engine.RunTypePattern:
		if len(rest) != 1 {
			return form, fmt.Errorf("usage: pattern <regex>")
		}
		form.Pattern = rest[0]

	case engine.RunTypeFirst:
		if len(rest) == 0 {
			return form, fmt.Errorf("usage: first <count> [model <name>]")
		}
		count, err := strconv.Atoi(rest[0])
		if err != nil {
			return form, fmt.Errorf("count must be an integer, got: %s", rest[0])
		}
		form.Count = count
		switch {
		case len(rest) == 1:
		case len(rest) == 3 && rest[1] == "model":
			form.ModelName = rest[2]
		default:
			return form, fmt.Errorf("usage: first <count> [model <name>]")
		}

	default:
		if len(rest) != 0 {
			return form, fmt.Errorf("%s takes no further arguments", args[0])
		}
	}

	return form, nil
}

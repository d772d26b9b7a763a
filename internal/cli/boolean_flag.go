package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

const (
	toggleTypeName        = "bool"
	toggleImplicitLiteral = "true"
	toggleAcceptedValues  = "true, false, yes, no, on, off, 1, 0"
)

// toggleLiterals lists the spellings accepted by toggle flags such as --tree and --copy.
var toggleLiterals = map[string]bool{
	"true":  true,
	"t":     true,
	"1":     true,
	"yes":   true,
	"y":     true,
	"on":    true,
	"false": false,
	"f":     false,
	"0":     false,
	"no":    false,
	"n":     false,
	"off":   false,
}

func parseToggle(input string) (bool, bool) {
	normalized := strings.ToLower(strings.TrimSpace(input))
	if normalized == "" {
		normalized = toggleImplicitLiteral
	}
	parsed, known := toggleLiterals[normalized]
	return parsed, known
}

// toggleValue is a pflag.Value that accepts every literal in toggleLiterals.
type toggleValue struct {
	target *bool
	name   string
}

func (value *toggleValue) Set(input string) error {
	parsed, known := parseToggle(input)
	if !known {
		return fmt.Errorf("invalid boolean value %q for --%s; accepted values: %s", input, value.name, toggleAcceptedValues)
	}
	*value.target = parsed
	return nil
}

func (value *toggleValue) String() string {
	if value == nil || value.target == nil {
		return strconv.FormatBool(false)
	}
	return strconv.FormatBool(*value.target)
}

func (value *toggleValue) Type() string {
	return toggleTypeName
}

// registerBooleanFlag binds target to a flag that may be given bare, as --name=value, or as --name value.
func registerBooleanFlag(flagSet *pflag.FlagSet, target *bool, name string, defaultValue bool, usage string) {
	if flagSet == nil || target == nil {
		return
	}
	*target = defaultValue
	flagSet.Var(&toggleValue{target: target, name: name}, name, usage)
	registered := flagSet.Lookup(name)
	registered.DefValue = strconv.FormatBool(defaultValue)
	registered.NoOptDefVal = toggleImplicitLiteral
}

// normalizeBooleanFlagArguments joins "--name value" pairs into "--name=value" for toggle flags
// so that pflag does not treat the literal as a positional directory argument.
func normalizeBooleanFlagArguments(command *cobra.Command, arguments []string) []string {
	toggles := toggleFlagNames(command)
	if len(toggles) == 0 || len(arguments) == 0 {
		return arguments
	}
	normalized := make([]string, 0, len(arguments))
	for index := 0; index < len(arguments); index++ {
		argument := arguments[index]
		if argument == "--" {
			return append(normalized, arguments[index:]...)
		}
		name, isLongFlag := strings.CutPrefix(argument, "--")
		_, isToggle := toggles[name]
		if isLongFlag && isToggle && !strings.Contains(name, "=") && index+1 < len(arguments) {
			next := arguments[index+1]
			if _, known := parseToggle(next); known && strings.TrimSpace(next) != "" && !strings.HasPrefix(next, "-") {
				normalized = append(normalized, "--"+name+"="+next)
				index++
				continue
			}
		}
		normalized = append(normalized, argument)
	}
	return normalized
}

func toggleFlagNames(command *cobra.Command) map[string]struct{} {
	names := map[string]struct{}{}
	var visit func(*cobra.Command)
	visit = func(current *cobra.Command) {
		if current == nil {
			return
		}
		collect := func(flag *pflag.Flag) {
			if flag.Value != nil && flag.Value.Type() == toggleTypeName {
				names[flag.Name] = struct{}{}
			}
		}
		current.PersistentFlags().VisitAll(collect)
		current.Flags().VisitAll(collect)
		for _, child := range current.Commands() {
			visit(child)
		}
	}
	visit(command)
	return names
}

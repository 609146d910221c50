package minecraft

import (
	"bytes"
	"encoding/json"
	"strings"
)

// stringSlice is a slice of strings that can be unmarshalled from a string or a []string
type stringSlice []string

func (w *stringSlice) String() string {
	return strings.Join(*w, " ")
}

// UnmarshalJSON is needed because argument sometimes is a string
func (w *stringSlice) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) != 0 && data[0] == '[' {
		var arg []string
		if err := json.Unmarshal(data, &arg); err != nil {
			return err
		}
		*w = arg
		return nil
	}

	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	*w = []string{str}
	return nil
}

// Argument is one entry of the `arguments.game` or `arguments.jvm` list.
// It is either a plain string or an object with rules that guard one or more values.
type Argument struct {
	// Value is the actual argument
	Value stringSlice `json:"value"`
	Rules []Rule      `json:"rules,omitempty"`
}

// Literal returns an unconditional argument
func Literal(value string) Argument {
	return Argument{Value: stringSlice{value}}
}

// Values returns the (unsubstituted) values of this argument
func (a Argument) Values() []string {
	return a.Value
}

// UnmarshalJSON is needed because argument sometimes is a string
func (a *Argument) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) != 0 && data[0] == '{' {
		// avoid recursion
		type plain Argument
		var arg plain
		if err := json.Unmarshal(data, &arg); err != nil {
			return err
		}
		*a = Argument(arg)
		return nil
	}

	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	*a = Literal(str)
	return nil
}

// MarshalJSON writes unconditional single value arguments back as plain strings
func (a Argument) MarshalJSON() ([]byte, error) {
	if len(a.Rules) == 0 && len(a.Value) == 1 {
		return json.Marshal(a.Value[0])
	}
	type plain Argument
	return json.Marshal(plain(a))
}

// Arguments is the structured argument format used since 1.13
type Arguments struct {
	Game []Argument `json:"game,omitempty"`
	JVM  []Argument `json:"jvm,omitempty"`
}

// splitLegacyArguments turns the legacy `minecraftArguments` string into literal arguments
func splitLegacyArguments(s string) []Argument {
	fields := strings.Fields(s)
	args := make([]Argument, 0, len(fields))
	for _, f := range fields {
		args = append(args, Literal(f))
	}
	return args
}

package compiler

// Arg is one classified header line.
type Arg struct {
	Kind  HeaderArgKind
	Name  string
	Value string
}

// ParseArg classifies a de-commented header line into an Arg.
func ParseArg(line string) (Arg, error) {
	kind, content, err := HeaderTypeAndContent(line)
	if err != nil {
		return Arg{}, err
	}
	return Arg{Kind: kind, Name: content.Name, Value: content.Value}, nil
}

// IsInput reports whether the arg declares an input.
func (a Arg) IsInput() bool { return a.Kind == HeaderInput }

// IsOutput reports whether the arg declares an output.
func (a Arg) IsOutput() bool { return a.Kind == HeaderOutput }

// IsDoc reports whether the arg is documentation.
func (a Arg) IsDoc() bool { return a.Kind == HeaderDoc }

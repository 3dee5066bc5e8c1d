// survey_stdio.go - Contains utilities for handling survey I/O consistently
package cmd

import (
	"fmt"
	"os"
	"reflect"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"
	"github.com/golobby/cast"

	"github.com/GoCodeAlone/blueprint/internal/blueprint"
	"github.com/GoCodeAlone/blueprint/internal/truthy"
)

// SurveyIO represents the standard input/output streams for surveys
type SurveyIO struct {
	In  terminal.FileReader
	Out terminal.FileWriter
	Err terminal.FileWriter
}

// DefaultSurveyIO provides standard IO for interactive prompts
var DefaultSurveyIO = SurveyIO{
	In:  os.Stdin,
	Out: os.Stdout,
	Err: os.Stderr,
}

// SurveyStdio is the IO used by interactive prompts
var SurveyStdio = DefaultSurveyIO

// WithStdio returns survey.WithStdio option
func (s SurveyIO) WithStdio() survey.AskOpt {
	return survey.WithStdio(s.In, s.Out, s.Err)
}

// AskFunc matches survey.AskOne.
type AskFunc func(p survey.Prompt, response interface{}, opts ...survey.AskOpt) error

// SurveyPrompter asks blueprint questions on the terminal.
type SurveyPrompter struct {
	IO     SurveyIO
	AskOne AskFunc
}

// NewSurveyPrompter creates a prompter using SurveyStdio.
func NewSurveyPrompter() *SurveyPrompter {
	return &SurveyPrompter{IO: SurveyStdio, AskOne: survey.AskOne}
}

var _ blueprint.Prompter = (*SurveyPrompter)(nil)

// Ask prompts for v, offering current as the default. Booleans use a
// confirm prompt, choices a select; everything else is free text.
func (p *SurveyPrompter) Ask(v blueprint.Variable, current any) (any, error) {
	opts := []survey.AskOpt{p.IO.WithStdio()}

	switch {
	case v.Type == blueprint.TypeBool:
		answer := truthy.Of(current)
		prompt := &survey.Confirm{Message: v.Message(), Default: answer, Help: v.Help}
		if err := p.AskOne(prompt, &answer, opts...); err != nil {
			return nil, err
		}
		return answer, nil

	case len(v.Choices) > 0:
		answer := fmt.Sprint(current)
		prompt := &survey.Select{Message: v.Message(), Options: v.Choices, Help: v.Help}
		for _, c := range v.Choices {
			if c == answer {
				prompt.Default = answer
			}
		}
		if err := p.AskOne(prompt, &answer, opts...); err != nil {
			return nil, err
		}
		return answer, nil

	default:
		answer := ""
		if current != nil {
			answer = fmt.Sprint(current)
		}
		prompt := &survey.Input{Message: v.Message(), Default: answer, Help: v.Help}
		if kind := numericKind(v.Type); kind != nil {
			opts = append(opts, survey.WithValidator(func(ans interface{}) error {
				_, err := cast.FromType(fmt.Sprint(ans), kind)
				return err
			}))
		}
		if err := p.AskOne(prompt, &answer, opts...); err != nil {
			return nil, err
		}
		return answer, nil
	}
}

func numericKind(t blueprint.VarType) reflect.Type {
	switch t {
	case blueprint.TypeInt:
		return reflect.TypeOf(int(0))
	case blueprint.TypeFloat:
		return reflect.TypeOf(float64(0))
	default:
		return nil
	}
}

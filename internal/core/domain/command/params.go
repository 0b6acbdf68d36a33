package command

import (
	"yamble/internal/core/domain"
)

// Args holds the declared options of one invocation, keyed by name.
type Args struct {
	options map[string]domain.Option
}

// ScanOptions walks the raw options once, keeping those that match a declared
// parameter by name and type. Unknown names are ignored. A required parameter
// that is absent yields a user error naming it.
func ScanOptions(params []domain.Param, options []domain.Option) (Args, error) {
	declared := make(map[string]domain.OptionType, len(params))
	for _, p := range params {
		declared[p.Name] = p.Type
	}

	args := Args{options: make(map[string]domain.Option, len(params))}
	for _, opt := range options {
		t, ok := declared[opt.Name]
		if !ok || t != opt.Type {
			continue
		}
		if opt.Type == domain.OptionAttachment && opt.Attachment == nil {
			continue
		}
		args.options[opt.Name] = opt
	}

	for _, p := range params {
		if !p.Required {
			continue
		}
		if _, ok := args.options[p.Name]; !ok {
			return Args{}, domain.NewUserError("missing `%s` required parameter", p.Name)
		}
	}

	return args, nil
}

func (a Args) String(name string) (string, bool) {
	opt, ok := a.options[name]
	return opt.String, ok
}

func (a Args) Bool(name string) (bool, bool) {
	opt, ok := a.options[name]
	return opt.Bool, ok
}

func (a Args) Channel(name string) (string, bool) {
	opt, ok := a.options[name]
	return opt.ChannelID, ok
}

func (a Args) Attachment(name string) (*domain.Attachment, bool) {
	opt, ok := a.options[name]
	return opt.Attachment, ok
}
